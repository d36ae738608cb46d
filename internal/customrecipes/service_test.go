package customrecipes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fdg312/cookbook/internal/catalog"
	"github.com/fdg312/cookbook/internal/collections"
	appcfg "github.com/fdg312/cookbook/internal/config"
	"github.com/fdg312/cookbook/internal/history"
	"github.com/fdg312/cookbook/internal/mealplans"
	"github.com/fdg312/cookbook/internal/meals"
	"github.com/fdg312/cookbook/internal/recipeid"
	"github.com/fdg312/cookbook/internal/storage/memory"
	"github.com/rs/zerolog"
)

type staticSource struct{}

func (staticSource) Name() string { return "static" }

func (staticSource) Fetch(ctx context.Context) ([]catalog.Recipe, error) {
	return []catalog.Recipe{{ID: recipeid.FromInt(1), Title: "Pancakes", Category: "breakfast"}}, nil
}

type env struct {
	svc         *Service
	repo        *Repository
	catalog     *catalog.Catalog
	collections *collections.Store
	history     *history.Store
	plans       *mealplans.Store
}

func newEnv(t *testing.T) env {
	t.Helper()
	kv := memory.New()
	log := zerolog.Nop()

	n := 0
	e := env{
		repo: NewRepository(kv, log).
			WithClock(func() time.Time { return time.UnixMilli(1700000000000) }).
			WithTokens(func() string {
				n++
				return fmt.Sprintf("t%d", n)
			}),
		collections: collections.NewStore(kv, log),
		history:     history.NewStore(kv, log),
		plans:       mealplans.NewStore(kv, log),
	}
	e.catalog = catalog.New(staticSource{}, e.repo, log)
	if err := e.catalog.Load(context.Background()); err != nil {
		t.Fatalf("catalog load: %v", err)
	}
	e.svc = NewService(e.repo, e.collections, e.history, log).WithCatalog(e.catalog)
	return e
}

func TestCreateAppliesDefaults(t *testing.T) {
	e := newEnv(t)

	saved, err := e.svc.Create(context.Background(), catalog.Recipe{
		Title:       "Stew",
		Ingredients: []string{"beef", "  ", "carrots"},
		Steps:       []catalog.Step{{Step: 7, Title: "Brown"}, {Step: 3, Title: "Simmer"}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if saved.ID.String() != "custom-1700000000000-t1" {
		t.Errorf("unexpected id %s", saved.ID)
	}
	if !saved.IsCustom || saved.Servings != DefaultServings || saved.Image != DefaultImage {
		t.Errorf("defaults not applied: %+v", saved)
	}
	if saved.Category != DefaultCategory || saved.Difficulty != DefaultDifficulty {
		t.Errorf("unexpected category/difficulty %q/%q", saved.Category, saved.Difficulty)
	}
	if len(saved.Ingredients) != 2 {
		t.Errorf("blank ingredients must be dropped, got %v", saved.Ingredients)
	}
	if saved.Steps[0].Step != 1 || saved.Steps[1].Step != 2 {
		t.Errorf("steps must be renumbered, got %+v", saved.Steps)
	}
	if _, ok := e.catalog.FindByID(saved.ID); !ok {
		t.Error("catalog must include the new recipe after refresh")
	}

	if _, err := e.svc.Create(context.Background(), catalog.Recipe{Title: " "}); !errors.Is(err, ErrTitleRequired) {
		t.Errorf("expected ErrTitleRequired, got %v", err)
	}
}

func TestSaveWithExistingIDUpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	first, _ := e.repo.Save(ctx, catalog.Recipe{Title: "One"})
	e.repo.Save(ctx, catalog.Recipe{Title: "Two", ID: recipeid.FromString("custom-5-x")})
	updated, err := e.repo.Save(ctx, catalog.Recipe{ID: first.ID, Title: "One v2"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if updated.Title != "One v2" {
		t.Errorf("unexpected saved recipe %+v", updated)
	}

	all, _ := e.repo.List(ctx)
	if len(all) != 2 || all[0].Title != "One v2" || all[1].Title != "Two" {
		t.Errorf("expected in-place update, got %+v", all)
	}

	if _, err := e.svc.Update(ctx, recipeid.FromString("custom-missing"), catalog.Recipe{Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	r, err := e.svc.Create(ctx, catalog.Recipe{Title: "Mine"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	cID, _ := e.collections.Create(ctx, "Weeknight", "")
	e.collections.AddRecipe(ctx, cID, r.ID)
	e.collections.AddRecipe(ctx, cID, recipeid.FromInt(1))
	e.history.AddEntry(ctx, r.ID, "2024-01-01", meals.Dinner)
	e.plans.AddRecipe(ctx, "2024-01-02", meals.Lunch, r.ID)

	result, err := e.svc.Delete(ctx, r.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !result.CollectionsUpdated || !result.HistoryRemoved || result.MealPlansUpdated {
		t.Errorf("unexpected cascade result %+v", result)
	}

	if in, _ := e.collections.IsInCollection(ctx, cID, r.ID); in {
		t.Error("collection must no longer list the recipe")
	}
	if ids, _, _ := e.collections.RecipesIn(ctx, cID); len(ids) != 1 {
		t.Errorf("other members must stay, got %v", ids)
	}
	if _, found, _ := e.history.Get(ctx, r.ID); found {
		t.Error("history must be gone")
	}
	if _, ok := e.catalog.FindByID(r.ID); ok {
		t.Error("catalog must no longer contain the recipe")
	}
	// каскад по плану питания выключен по умолчанию
	if day, _ := e.plans.GetForDate(ctx, "2024-01-02"); len(day[meals.Lunch]) != 1 {
		t.Errorf("meal plan must be untouched without the cascade flag, got %v", day)
	}

	if _, err := e.svc.Delete(ctx, r.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDeleteCascadesMealPlansWhenEnabled(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.svc.WithPlansCascade(e.plans)

	r, _ := e.svc.Create(ctx, catalog.Recipe{Title: "Mine"})
	e.plans.AddRecipe(ctx, "2024-01-02", meals.Lunch, r.ID)

	result, err := e.svc.Delete(ctx, r.ID)
	if err != nil || !result.MealPlansUpdated {
		t.Fatalf("expected meal plan cleanup, result=%+v err=%v", result, err)
	}
	if dates, _ := e.plans.Dates(ctx); len(dates) != 0 {
		t.Errorf("expected no planned dates, got %v", dates)
	}
}

func TestImportExport(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	shapes := []string{
		`[{"title":"A"},{"title":""}]`,
		`{"recipes":[{"id":"custom-9-z","title":"B","servings":2}]}`,
		`{"title":"C","nutrition":{"calories":350}}`,
	}
	total := 0
	for _, body := range shapes {
		res, err := e.svc.Import(ctx, []byte(body))
		if err != nil {
			t.Fatalf("Import(%s): %v", body, err)
		}
		total += res.Imported
	}
	if total != 3 {
		t.Errorf("expected 3 imported, got %d", total)
	}

	if _, err := e.svc.Import(ctx, []byte(`not json`)); !errors.Is(err, ErrNothingToImport) {
		t.Errorf("expected ErrNothingToImport, got %v", err)
	}

	doc, _ := e.svc.Export(ctx)
	if len(doc.Recipes) != 3 {
		t.Fatalf("expected 3 exported recipes, got %d", len(doc.Recipes))
	}
	if b, ok, _ := e.repo.Get(ctx, recipeid.FromString("custom-9-z")); !ok || b.Servings != 2 {
		t.Errorf("imported id must be kept, got %+v", b)
	}
	if len(e.catalog.All()) != 4 {
		t.Errorf("catalog must include imported recipes, got %d", len(e.catalog.All()))
	}
}

type fakeUploads struct {
	key  string
	data []byte
}

func (f *fakeUploads) PutObject(ctx context.Context, key string, data []byte, contentType string) (int64, error) {
	f.key, f.data = key, data
	return int64(len(data)), nil
}

func (f *fakeUploads) GetObject(ctx context.Context, key string) ([]byte, error) {
	return f.data, nil
}

func (f *fakeUploads) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://signed.example/" + key, nil
}

func TestUploadExport(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	if _, err := e.svc.UploadExport(ctx); !errors.Is(err, ErrExportsDisabled) {
		t.Fatalf("expected ErrExportsDisabled, got %v", err)
	}

	up := &fakeUploads{}
	e.svc.WithUploads(up, appcfg.S3Config{PresignTTLSeconds: 300}, "exports")
	e.svc.now = func() time.Time { return time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC) }
	e.svc.Create(ctx, catalog.Recipe{Title: "Mine"})

	res, err := e.svc.UploadExport(ctx)
	if err != nil {
		t.Fatalf("UploadExport: %v", err)
	}
	if res.Key != "exports/custom-recipes-20240501-103000.json" || up.key != res.Key {
		t.Errorf("unexpected key %s", res.Key)
	}
	if res.Count != 1 || res.ExpiresAt == nil || !strings.HasPrefix(res.URL, "https://signed.example/") {
		t.Errorf("unexpected upload result %+v", res)
	}

	var doc catalog.Document
	if err := json.Unmarshal(up.data, &doc); err != nil || len(doc.Recipes) != 1 {
		t.Errorf("uploaded body must be a recipes document: %v", err)
	}
}

func TestHandlers(t *testing.T) {
	e := newEnv(t)
	h := NewHandler(e.svc)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/custom-recipes", h.HandleList)
	mux.HandleFunc("POST /v1/custom-recipes", h.HandleCreate)
	mux.HandleFunc("GET /v1/custom-recipes/{id}", h.HandleGet)
	mux.HandleFunc("PUT /v1/custom-recipes/{id}", h.HandleUpdate)
	mux.HandleFunc("DELETE /v1/custom-recipes/{id}", h.HandleDelete)
	mux.HandleFunc("POST /v1/custom-recipes/import", h.HandleImport)
	mux.HandleFunc("GET /v1/custom-recipes/export", h.HandleExport)
	mux.HandleFunc("POST /v1/custom-recipes/export/upload", h.HandleUploadExport)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/custom-recipes", bytes.NewBufferString(`{"title":"Soup"}`)))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created catalog.Recipe
	json.NewDecoder(w.Body).Decode(&created)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/v1/custom-recipes/"+created.ID.String(), bytes.NewBufferString(`{"title":"Better Soup"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/custom-recipes/"+created.ID.String(), nil))
	var got catalog.Recipe
	json.NewDecoder(w.Body).Decode(&got)
	if got.Title != "Better Soup" {
		t.Errorf("unexpected recipe %+v", got)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/custom-recipes", bytes.NewBufferString(`{"title":""}`)))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/custom-recipes/export", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Header().Get("Content-Disposition"), "cookbook-backup-") {
		t.Errorf("unexpected export response %d %v", w.Code, w.Header())
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/custom-recipes/export/upload", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without object store, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/custom-recipes/import", bytes.NewBufferString(`[{"title":"X"}]`)))
	var imp ImportResult
	json.NewDecoder(w.Body).Decode(&imp)
	if imp.Imported != 1 {
		t.Errorf("expected 1 imported, got %+v", imp)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/custom-recipes/"+created.ID.String(), nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/custom-recipes/"+created.ID.String(), nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}
}
