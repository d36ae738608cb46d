package customrecipes

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/fdg312/cookbook/internal/blob"
	"github.com/fdg312/cookbook/internal/catalog"
	appcfg "github.com/fdg312/cookbook/internal/config"
	"github.com/fdg312/cookbook/internal/recipeid"
	"github.com/rs/zerolog"
)

// CollectionsCleaner drops a recipe from every collection.
type CollectionsCleaner interface {
	RemoveRecipeFromAll(ctx context.Context, recipeID recipeid.ID) (bool, error)
}

// HistoryCleaner drops a recipe's whole cook history.
type HistoryCleaner interface {
	DeleteForRecipe(ctx context.Context, recipeID recipeid.ID) (bool, error)
}

// PlansCleaner drops a recipe from every planned date.
type PlansCleaner interface {
	RemoveRecipeEverywhere(ctx context.Context, recipeID recipeid.ID) (bool, error)
}

// CatalogRefresher re-merges custom recipes into the catalog.
type CatalogRefresher interface {
	Refresh(ctx context.Context) error
}

// Service wraps the repository with the cross-store effects of writes.
type Service struct {
	repo        *Repository
	collections CollectionsCleaner
	history     HistoryCleaner
	plans       PlansCleaner
	catalog     CatalogRefresher
	uploads     blob.Store
	s3          appcfg.S3Config
	prefix      string
	logger      zerolog.Logger
	now         func() time.Time
}

// NewService creates the custom recipe service. Collections and history
// are always cleaned on delete.
func NewService(repo *Repository, collections CollectionsCleaner, history HistoryCleaner, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		collections: collections,
		history:     history,
		logger:      logger,
		now:         time.Now,
	}
}

// WithPlansCascade also removes deleted recipes from meal plans.
func (s *Service) WithPlansCascade(plans PlansCleaner) *Service {
	s.plans = plans
	return s
}

// WithCatalog refreshes the catalog after every write.
func (s *Service) WithCatalog(c CatalogRefresher) *Service {
	s.catalog = c
	return s
}

// WithUploads enables export upload to an object store under prefix.
func (s *Service) WithUploads(store blob.Store, cfg appcfg.S3Config, prefix string) *Service {
	s.uploads = store
	s.s3 = cfg
	s.prefix = prefix
	return s
}

// Repository exposes the underlying repository for read paths.
func (s *Service) Repository() *Repository {
	return s.repo
}

// Create stores a new recipe, or replaces one with the same id.
func (s *Service) Create(ctx context.Context, recipe catalog.Recipe) (catalog.Recipe, error) {
	saved, err := s.repo.Save(ctx, recipe)
	if err != nil {
		return catalog.Recipe{}, err
	}
	s.refresh(ctx)
	return saved, nil
}

// Update replaces an existing recipe.
func (s *Service) Update(ctx context.Context, id recipeid.ID, recipe catalog.Recipe) (catalog.Recipe, error) {
	saved, err := s.repo.Update(ctx, id, recipe)
	if err != nil {
		return catalog.Recipe{}, err
	}
	s.refresh(ctx)
	return saved, nil
}

// Delete removes the recipe, then its collection memberships and cook
// history (and meal plan entries when that cascade is enabled), then
// refreshes the catalog. The steps are not atomic across keys.
func (s *Service) Delete(ctx context.Context, id recipeid.ID) (DeleteResult, error) {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return DeleteResult{}, fmt.Errorf("failed to delete custom recipe: %w", err)
	}
	if !removed {
		return DeleteResult{}, ErrNotFound
	}

	result := DeleteResult{ID: id}
	if s.collections != nil {
		if result.CollectionsUpdated, err = s.collections.RemoveRecipeFromAll(ctx, id); err != nil {
			return result, fmt.Errorf("failed to clean collections: %w", err)
		}
	}
	if s.history != nil {
		if result.HistoryRemoved, err = s.history.DeleteForRecipe(ctx, id); err != nil {
			return result, fmt.Errorf("failed to clean cook history: %w", err)
		}
	}
	if s.plans != nil {
		if result.MealPlansUpdated, err = s.plans.RemoveRecipeEverywhere(ctx, id); err != nil {
			return result, fmt.Errorf("failed to clean meal plans: %w", err)
		}
	}
	s.refresh(ctx)

	s.logger.Info().
		Str("recipe_id", id.String()).
		Bool("collections", result.CollectionsUpdated).
		Bool("history", result.HistoryRemoved).
		Bool("meal_plans", result.MealPlansUpdated).
		Msg("custom recipe deleted")
	return result, nil
}

// Import decodes data (array, {recipes: [...]} or one recipe) and saves
// every recipe.
func (s *Service) Import(ctx context.Context, data []byte) (ImportResult, error) {
	recipes, err := catalog.DecodeRecipes(data)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %v", ErrNothingToImport, err)
	}
	n, err := s.repo.Import(ctx, recipes)
	if err != nil {
		return ImportResult{}, err
	}
	s.refresh(ctx)
	return ImportResult{Imported: n}, nil
}

// Export returns every custom recipe as {recipes: [...]}.
func (s *Service) Export(ctx context.Context) (catalog.Document, error) {
	return s.repo.Export(ctx)
}

// UploadExport writes the export to the object store and returns a link.
func (s *Service) UploadExport(ctx context.Context) (ExportUpload, error) {
	if s.uploads == nil {
		return ExportUpload{}, ErrExportsDisabled
	}

	doc, err := s.repo.Export(ctx)
	if err != nil {
		return ExportUpload{}, err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return ExportUpload{}, fmt.Errorf("failed to encode export: %w", err)
	}

	key := path.Join(s.prefix, fmt.Sprintf("custom-recipes-%s.json", s.now().UTC().Format("20060102-150405")))
	size, err := s.uploads.PutObject(ctx, key, data, "application/json")
	if err != nil {
		return ExportUpload{}, err
	}

	url, expires, err := blob.DownloadURL(ctx, s.uploads, s.s3, key)
	if err != nil {
		return ExportUpload{}, err
	}

	out := ExportUpload{Key: key, URL: url, Size: size, Count: len(doc.Recipes)}
	if !expires.IsZero() {
		out.ExpiresAt = &expires
	}
	return out, nil
}

func (s *Service) refresh(ctx context.Context) {
	if s.catalog == nil {
		return
	}
	if err := s.catalog.Refresh(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("catalog refresh failed")
	}
}
