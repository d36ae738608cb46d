package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fdg312/cookbook/internal/blob"
	"github.com/fdg312/cookbook/internal/bookmarks"
	"github.com/fdg312/cookbook/internal/catalog"
	"github.com/fdg312/cookbook/internal/collections"
	"github.com/fdg312/cookbook/internal/config"
	"github.com/fdg312/cookbook/internal/customrecipes"
	"github.com/fdg312/cookbook/internal/feed"
	"github.com/fdg312/cookbook/internal/history"
	"github.com/fdg312/cookbook/internal/logging"
	"github.com/fdg312/cookbook/internal/mealplans"
	"github.com/fdg312/cookbook/internal/nutrition"
	"github.com/fdg312/cookbook/internal/reports"
	"github.com/fdg312/cookbook/internal/settings"
	"github.com/fdg312/cookbook/internal/storage"
	"github.com/fdg312/cookbook/internal/storage/memory"
	"github.com/fdg312/cookbook/internal/storage/postgres"
	"github.com/fdg312/cookbook/internal/storage/sqlite"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server представляет HTTP сервер
type Server struct {
	config  *config.Config
	logger  zerolog.Logger
	mux     *http.ServeMux
	kv      storage.KV
	blob    blob.Store
	catalog *catalog.Catalog
	http    *http.Server
}

// New создаёт сервер: поднимает storage, catalog и регистрирует маршруты
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	s := &Server{
		config: cfg,
		logger: logger,
		mux:    http.NewServeMux(),
	}

	s.initStorage(ctx)

	store, mode, err := blob.NewBlobStore(ctx, cfg.Blob, logging.Printf{Logger: logger})
	if err != nil {
		s.kv.Close()
		return nil, err
	}
	s.blob = store
	logger.Info().Str("mode", mode).Msg("blob store ready")

	if err := s.routes(ctx); err != nil {
		s.kv.Close()
		return nil, err
	}

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// initStorage выбирает KV по STORAGE_DRIVER; при ошибке fallback на memory
func (s *Server) initStorage(ctx context.Context) {
	var kv storage.KV

	switch s.config.StorageDriver {
	case config.StorageDriverPostgres:
		pg, err := postgres.New(ctx, s.config.DatabaseURL)
		if err != nil {
			s.logger.Warn().Err(err).Msg("postgres unavailable, fallback to in-memory storage")
			break
		}
		s.logger.Info().Msg("postgres connected")
		kv = pg
	case config.StorageDriverSQLite:
		lite, err := sqlite.New(s.config.SQLitePath)
		if err != nil {
			s.logger.Warn().Err(err).Str("path", s.config.SQLitePath).Msg("sqlite unavailable, fallback to in-memory storage")
			break
		}
		s.logger.Info().Str("path", s.config.SQLitePath).Msg("sqlite opened")
		kv = lite
	}

	if kv == nil {
		s.logger.Info().Msg("using in-memory storage")
		kv = memory.New()
	}
	s.kv = storage.Instrumented(kv)
}

func (s *Server) catalogSource() catalog.Source {
	switch s.config.CatalogSource {
	case config.CatalogSourceHTTP:
		return catalog.NewHTTPSource(s.config.CatalogURL, time.Duration(s.config.CatalogTimeoutSeconds)*time.Second)
	case config.CatalogSourceS3:
		return catalog.BlobSource{Store: s.blob, Key: s.config.CatalogS3Key}
	default:
		return catalog.FileSource{Path: s.config.CatalogPath}
	}
}

func (s *Server) goals() nutrition.Goals {
	goals := nutrition.Goals{
		Calories: s.config.GoalCalories,
		Protein:  s.config.GoalProteinG,
		Carbs:    s.config.GoalCarbsG,
	}
	if err := goals.Validate(); err != nil {
		s.logger.Warn().Err(err).Msg("invalid nutrition goals, using defaults")
		return nutrition.DefaultGoals()
	}
	return goals
}

// routes собирает stores и сервисы и регистрирует маршруты
func (s *Server) routes(ctx context.Context) error {
	logger := s.logger

	// Stores
	bookmarkStore := bookmarks.NewStore(s.kv, logger)
	collectionStore := collections.NewStore(s.kv, logger)
	historyStore := history.NewStore(s.kv, logger)
	planStore := mealplans.NewStore(s.kv, logger)
	settingsStore := settings.NewStore(s.kv, logger)
	customRepo := customrecipes.NewRepository(s.kv, logger)

	if _, err := historyStore.Migrate(ctx); err != nil {
		return fmt.Errorf("cook history migration: %w", err)
	}

	// Catalog
	s.catalog = catalog.New(s.catalogSource(), customRepo, logger)
	if err := s.catalog.Load(ctx); err != nil {
		return fmt.Errorf("catalog load: %w", err)
	}

	// Services
	goals := s.goals()
	customService := customrecipes.NewService(customRepo, collectionStore, historyStore, logger).
		WithCatalog(s.catalog)
	if s.config.MealPlanCascadeDelete {
		customService = customService.WithPlansCascade(planStore)
	}
	planner := mealplans.NewService(planStore, historyStore, logger)
	feedService := feed.NewService(s.catalog, logger).
		WithBookmarks(bookmarkStore).
		WithCollections(collectionStore).
		WithHistory(historyStore).
		WithPlans(planStore).
		WithGoals(goals)
	reportService := reports.NewService(feedService)
	if s.blob != nil {
		customService = customService.WithUploads(s.blob, s.config.Blob.S3, s.config.Blob.ExportsPrefix)
		reportService = reportService.WithUploads(s.blob, s.config.Blob.S3, s.config.Blob.ExportsPrefix)
	}

	// Health check и метрики
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	// Recipes
	catalogHandler := catalog.NewHandler(s.catalog)
	feedHandler := feed.NewHandler(feedService)
	collectionsHandler := collections.NewHandler(collectionStore)
	s.mux.HandleFunc("GET /v1/recipes", feedHandler.HandleRecipes)
	s.mux.HandleFunc("GET /v1/recipes/categories", catalogHandler.HandleCategories)
	s.mux.HandleFunc("POST /v1/recipes/reload", catalogHandler.HandleReload)
	s.mux.HandleFunc("GET /v1/recipes/{id}", catalogHandler.HandleGet)
	s.mux.HandleFunc("GET /v1/recipes/{id}/collections", collectionsHandler.HandleForRecipe)
	s.mux.HandleFunc("GET /v1/catalog/status", catalogHandler.HandleStatus)

	// Bookmarks
	bookmarksHandler := bookmarks.NewHandler(bookmarkStore)
	s.mux.HandleFunc("GET /v1/bookmarks", bookmarksHandler.HandleList)
	s.mux.HandleFunc("PUT /v1/bookmarks/{id}", bookmarksHandler.HandleAdd)
	s.mux.HandleFunc("DELETE /v1/bookmarks/{id}", bookmarksHandler.HandleRemove)
	s.mux.HandleFunc("POST /v1/bookmarks/{id}/toggle", bookmarksHandler.HandleToggle)

	// Collections
	s.mux.HandleFunc("GET /v1/collections", collectionsHandler.HandleList)
	s.mux.HandleFunc("POST /v1/collections", collectionsHandler.HandleCreate)
	s.mux.HandleFunc("PATCH /v1/collections/{id}", collectionsHandler.HandleRename)
	s.mux.HandleFunc("DELETE /v1/collections/{id}", collectionsHandler.HandleDelete)
	s.mux.HandleFunc("GET /v1/collections/{id}/recipes", collectionsHandler.HandleRecipes)
	s.mux.HandleFunc("PUT /v1/collections/{id}/recipes/{recipeId}", collectionsHandler.HandleAddRecipe)
	s.mux.HandleFunc("DELETE /v1/collections/{id}/recipes/{recipeId}", collectionsHandler.HandleRemoveRecipe)

	// Cook history
	historyHandler := history.NewHandler(historyStore)
	s.mux.HandleFunc("GET /v1/history", historyHandler.HandleAll)
	s.mux.HandleFunc("GET /v1/history/recent", historyHandler.HandleRecent)
	s.mux.HandleFunc("GET /v1/history/{recipeId}", historyHandler.HandleGet)
	s.mux.HandleFunc("DELETE /v1/history/{recipeId}", historyHandler.HandleDeleteRecipe)
	s.mux.HandleFunc("POST /v1/history/{recipeId}/entries", historyHandler.HandleAddEntry)
	s.mux.HandleFunc("POST /v1/history/{recipeId}/cooked", historyHandler.HandleCooked)
	s.mux.HandleFunc("PATCH /v1/history/{recipeId}/entries/{entryId}", historyHandler.HandleUpdateEntry)
	s.mux.HandleFunc("DELETE /v1/history/{recipeId}/entries/{entryId}", historyHandler.HandleDeleteEntry)

	// Meal plans
	plansHandler := mealplans.NewHandler(planner)
	s.mux.HandleFunc("GET /v1/meal-plan", plansHandler.HandleGet)
	s.mux.HandleFunc("POST /v1/meal-plan/{date}/{slot}", plansHandler.HandleAdd)
	s.mux.HandleFunc("DELETE /v1/meal-plan/{date}/{slot}/{recipeId}", plansHandler.HandleRemove)
	s.mux.HandleFunc("POST /v1/planner/select", plansHandler.HandleSelect)

	// Nutrition и календарь
	nutritionHandler := nutrition.NewHandler(goals)
	s.mux.HandleFunc("GET /v1/nutrition/goals", nutritionHandler.HandleGoals)
	s.mux.HandleFunc("GET /v1/nutrition/day", feedHandler.HandleNutritionDay)
	s.mux.HandleFunc("GET /v1/nutrition/week", feedHandler.HandleNutritionWeek)
	s.mux.HandleFunc("GET /v1/calendar", feedHandler.HandleCalendar)
	s.mux.HandleFunc("GET /v1/calendar/day", feedHandler.HandleCalendarDay)

	// Custom recipes
	customHandler := customrecipes.NewHandler(customService)
	s.mux.HandleFunc("GET /v1/custom-recipes", customHandler.HandleList)
	s.mux.HandleFunc("POST /v1/custom-recipes", customHandler.HandleCreate)
	s.mux.HandleFunc("POST /v1/custom-recipes/import", customHandler.HandleImport)
	s.mux.HandleFunc("GET /v1/custom-recipes/export", customHandler.HandleExport)
	s.mux.HandleFunc("POST /v1/custom-recipes/export/upload", customHandler.HandleUploadExport)
	s.mux.HandleFunc("GET /v1/custom-recipes/{id}", customHandler.HandleGet)
	s.mux.HandleFunc("PUT /v1/custom-recipes/{id}", customHandler.HandleUpdate)
	s.mux.HandleFunc("DELETE /v1/custom-recipes/{id}", customHandler.HandleDelete)

	// Settings
	settingsHandler := settings.NewHandler(settingsStore)
	s.mux.HandleFunc("GET /v1/settings/theme", settingsHandler.HandleGet)
	s.mux.HandleFunc("PUT /v1/settings/theme", settingsHandler.HandlePut)
	s.mux.HandleFunc("PUT /v1/settings/theme/overrides", settingsHandler.HandlePutOverride)
	s.mux.HandleFunc("DELETE /v1/settings/theme/overrides/{theme}", settingsHandler.HandleResetOverrides)

	// Reports
	reportsHandler := reports.NewHandlers(reportService)
	s.mux.HandleFunc("GET /v1/reports/weekly", reportsHandler.HandleWeekly)
	s.mux.HandleFunc("POST /v1/reports/weekly", reportsHandler.HandleUpload)

	return nil
}

// handleHealthz возвращает статус сервера и состояние каталога
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	status := s.catalog.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"degraded": status.Degraded,
		"recipes":  status.Total,
	})
}

// Handler собирает цепочку middleware (внешний первым):
// access log → CORS → rate limit → metrics → router
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	handler = MetricsMiddleware(handler)
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)
	handler = AccessLogMiddleware(s.logger, handler)
	return handler
}

// Start запускает HTTP сервер
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.http.Addr).Msgf("server listening on http://localhost%s", s.http.Addr)
	s.logger.Info().Msgf("health check: http://localhost%s/healthz", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown дожидается активных запросов и останавливает сервер
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Close закрывает storage и освобождает ресурсы
func (s *Server) Close() error {
	if s.kv != nil {
		return s.kv.Close()
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
