package settings

import (
	"encoding/json"
	"errors"
	"net/http"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// HandleGet handles GET /v1/settings/theme
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	resp, err := h.store.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandlePut handles PUT /v1/settings/theme
func (h *Handler) HandlePut(w http.ResponseWriter, r *http.Request) {
	var req SetThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON")
		return
	}

	resp, err := h.store.SetTheme(r.Context(), req.Theme)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandlePutOverride handles PUT /v1/settings/theme/overrides
func (h *Handler) HandlePutOverride(w http.ResponseWriter, r *http.Request) {
	var req OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON")
		return
	}

	vars, err := h.store.SetOverride(r.Context(), req)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"theme": req.Theme, "overrides": vars})
}

// HandleResetOverrides handles DELETE /v1/settings/theme/overrides/{theme}
func (h *Handler) HandleResetOverrides(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ResetOverrides(r.Context(), r.PathValue("theme")); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidTheme) || errors.Is(err, ErrInvalidVar) || errors.Is(err, ErrInvalidColor) {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
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
