package reports

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fdg312/cookbook/internal/meals"
)

type Handlers struct {
	service *Service
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleWeekly handles GET /v1/reports/weekly?week=YYYY-MM-DD&format=pdf|csv
func (h *Handlers) HandleWeekly(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report, err := h.service.Weekly(r.Context(), q.Get("week"), q.Get("format"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename()+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(report.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(report.Data)
}

// HandleUpload handles POST /v1/reports/weekly?week=YYYY-MM-DD&format=pdf|csv
func (h *Handlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	uploaded, err := h.service.Upload(r.Context(), q.Get("week"), q.Get("format"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, uploaded)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidFormat):
		writeError(w, http.StatusBadRequest, "invalid_format", "Format must be 'pdf' or 'csv'")
	case errors.Is(err, meals.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "invalid_date", "Invalid date format, use YYYY-MM-DD")
	case errors.Is(err, ErrUploadsDisabled):
		writeError(w, http.StatusServiceUnavailable, "uploads_disabled", "Object storage is not configured")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
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
