package customrecipes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/fdg312/cookbook/internal/catalog"
	"github.com/fdg312/cookbook/internal/recipeid"
)

const maxImportBytes = 5 << 20

// Handler handles HTTP requests for custom recipes.
type Handler struct {
	service *Service
}

// NewHandler creates a new custom recipes handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleList handles GET /v1/custom-recipes
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.service.Repository().List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list custom recipes")
		return
	}
	writeJSON(w, http.StatusOK, catalog.Document{Recipes: recipes})
}

// HandleGet handles GET /v1/custom-recipes/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	recipe, found, err := h.service.Repository().Get(r.Context(), recipeid.Parse(r.PathValue("id")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to get custom recipe")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "not_found", ErrNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// HandleCreate handles POST /v1/custom-recipes
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var recipe catalog.Recipe
	if err := json.NewDecoder(r.Body).Decode(&recipe); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON")
		return
	}

	saved, err := h.service.Create(r.Context(), recipe)
	if err != nil {
		writeServiceError(w, err, "Failed to save custom recipe")
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// HandleUpdate handles PUT /v1/custom-recipes/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var recipe catalog.Recipe
	if err := json.NewDecoder(r.Body).Decode(&recipe); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON")
		return
	}

	saved, err := h.service.Update(r.Context(), recipeid.Parse(r.PathValue("id")), recipe)
	if err != nil {
		writeServiceError(w, err, "Failed to update custom recipe")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// HandleDelete handles DELETE /v1/custom-recipes/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Delete(r.Context(), recipeid.Parse(r.PathValue("id")))
	if err != nil {
		writeServiceError(w, err, "Failed to delete custom recipe")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleImport handles POST /v1/custom-recipes/import
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Failed to read body")
		return
	}

	result, err := h.service.Import(r.Context(), data)
	if err != nil {
		writeServiceError(w, err, "Failed to import recipes")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleExport handles GET /v1/custom-recipes/export
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Export(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to export recipes")
		return
	}
	name := "cookbook-backup-" + h.service.now().UTC().Format("2006-01-02") + ".json"
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	writeJSON(w, http.StatusOK, doc)
}

// HandleUploadExport handles POST /v1/custom-recipes/export/upload
func (h *Handler) HandleUploadExport(w http.ResponseWriter, r *http.Request) {
	upload, err := h.service.UploadExport(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to upload export")
		return
	}
	writeJSON(w, http.StatusCreated, upload)
}

func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ErrTitleRequired), errors.Is(err, ErrNothingToImport):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, ErrExportsDisabled):
		writeError(w, http.StatusServiceUnavailable, "exports_disabled", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", fallback)
	}
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
