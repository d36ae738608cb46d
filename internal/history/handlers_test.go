package history

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fdg312/cookbook/internal/storage/memory"
)

func newTestMux() *http.ServeMux {
	h := NewHandler(newTestStore(memory.New()))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/history", h.HandleAll)
	mux.HandleFunc("GET /v1/history/recent", h.HandleRecent)
	mux.HandleFunc("GET /v1/history/{recipeId}", h.HandleGet)
	mux.HandleFunc("DELETE /v1/history/{recipeId}", h.HandleDeleteRecipe)
	mux.HandleFunc("POST /v1/history/{recipeId}/entries", h.HandleAddEntry)
	mux.HandleFunc("POST /v1/history/{recipeId}/cooked", h.HandleCooked)
	mux.HandleFunc("PATCH /v1/history/{recipeId}/entries/{entryId}", h.HandleUpdateEntry)
	mux.HandleFunc("DELETE /v1/history/{recipeId}/entries/{entryId}", h.HandleDeleteEntry)
	return mux
}

func TestHistoryHandlers(t *testing.T) {
	mux := newTestMux()

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/history/5/entries",
		strings.NewReader(`{"date":"2024-03-01","meal":"dinner"}`)))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var rec Record
	json.NewDecoder(w.Body).Decode(&rec)
	if rec.Count != 1 || rec.Entries[0].Meal != "dinner" {
		t.Fatalf("unexpected record %+v", rec)
	}
	entryID := rec.Entries[0].ID

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/history/5/entries",
		strings.NewReader(`{"meal":"brunch"}`)))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid meal, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/history/5/cooked", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/v1/history/5/entries/"+entryID,
		strings.NewReader(`{"meal":"lunch"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/v1/history/5/entries/nope",
		strings.NewReader(`{}`)))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown entry, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/history/recent?limit=5", nil))
	var recent struct {
		Recent []Recent `json:"recent"`
	}
	json.NewDecoder(w.Body).Decode(&recent)
	if len(recent.Recent) != 1 || recent.Recent[0].RecipeID.String() != "5" {
		t.Errorf("unexpected recent list %+v", recent.Recent)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/history/recent?limit=abc", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad limit, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/history/5/entries/"+entryID, nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/history/5", nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/history/5", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}
}
