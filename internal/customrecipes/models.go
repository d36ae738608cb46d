package customrecipes

import (
	"errors"
	"strings"
	"time"

	"github.com/fdg312/cookbook/internal/catalog"
	"github.com/fdg312/cookbook/internal/recipeid"
)

const (
	DefaultServings   = 4
	DefaultCategory   = "dinner"
	DefaultDifficulty = "medium"
	DefaultImage      = "https://images.unsplash.com/photo-1495521821757-a1efb6729352?w=800&q=80"
)

var (
	ErrNotFound        = errors.New("custom recipe not found")
	ErrTitleRequired   = errors.New("title is required")
	ErrExportsDisabled = errors.New("export upload requires BLOB_MODE=s3 or auto with S3 configured")
	ErrNothingToImport = errors.New("no recipes to import")
)

// DeleteResult reports what the deletion cascade touched.
type DeleteResult struct {
	ID                 recipeid.ID `json:"id"`
	CollectionsUpdated bool        `json:"collectionsUpdated"`
	HistoryRemoved     bool        `json:"historyRemoved"`
	MealPlansUpdated   bool        `json:"mealPlansUpdated"`
}

// ImportResult is the response for POST /v1/custom-recipes/import
type ImportResult struct {
	Imported int `json:"imported"`
}

// ExportUpload is the response for POST /v1/custom-recipes/export/upload
type ExportUpload struct {
	Key       string     `json:"key"`
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Size      int64      `json:"size"`
	Count     int        `json:"count"`
}

// applyDefaults fills what the editor would fill for a blank field and
// renumbers steps from 1.
func applyDefaults(r *catalog.Recipe) {
	r.IsCustom = true
	if r.Servings <= 0 {
		r.Servings = DefaultServings
	}
	if r.Category == "" {
		r.Category = DefaultCategory
	}
	if r.Difficulty == "" {
		r.Difficulty = DefaultDifficulty
	}
	if r.Image == "" {
		r.Image = DefaultImage
	}

	ingredients := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if trimmed := strings.TrimSpace(ing); trimmed != "" {
			ingredients = append(ingredients, ing)
		}
	}
	r.Ingredients = ingredients

	if r.Steps == nil {
		r.Steps = []catalog.Step{}
	}
	for i := range r.Steps {
		r.Steps[i].Step = i + 1
	}
}
