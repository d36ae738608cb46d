package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appcfg "github.com/fdg312/cookbook/internal/config"
	"github.com/fdg312/cookbook/internal/feed"
	"github.com/fdg312/cookbook/internal/meals"
	"github.com/fdg312/cookbook/internal/nutrition"
	"github.com/fdg312/cookbook/internal/recipeid"
)

type stubWeeks struct {
	anchor string
}

func (s *stubWeeks) WeeklyNutrition(ctx context.Context, anchor string) (feed.WeekNutrition, error) {
	s.anchor = anchor
	if anchor == "bad" {
		return feed.WeekNutrition{}, meals.ErrInvalidDate
	}

	days := make([]feed.DayTotals, 0, 7)
	start := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		days = append(days, feed.DayTotals{Date: start.AddDate(0, 0, i).Format(meals.DateLayout)})
	}
	days[1].Totals = nutrition.Macros{Calories: 650, Protein: 30, Carbs: 80, Fat: 20}

	return feed.WeekNutrition{
		From:   "2024-03-03",
		To:     "2024-03-09",
		Days:   days,
		Totals: days[1].Totals,
		Contributors: []feed.Contributor{
			{RecipeID: recipeid.FromInt(1), Title: "Crème brûlée", Count: 1, PerServing: days[1].Totals},
		},
		Goals:    nutrition.DefaultGoals().Weekly(),
		Progress: nutrition.ProgressOf(days[1].Totals, nutrition.DefaultGoals().Weekly()),
	}, nil
}

type fakeUploads struct {
	key         string
	contentType string
}

func (f *fakeUploads) PutObject(ctx context.Context, key string, data []byte, contentType string) (int64, error) {
	f.key, f.contentType = key, contentType
	return int64(len(data)), nil
}

func (f *fakeUploads) GetObject(ctx context.Context, key string) ([]byte, error) {
	return nil, nil
}

func (f *fakeUploads) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://signed.example/" + key, nil
}

func newMux(s *Service) *http.ServeMux {
	h := NewHandlers(s)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/reports/weekly", h.HandleWeekly)
	mux.HandleFunc("POST /v1/reports/weekly", h.HandleUpload)
	return mux
}

func TestWeeklyCSV(t *testing.T) {
	weeks := &stubWeeks{}
	mux := newMux(NewService(weeks))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/reports/weekly?format=csv&week=2024-03-06", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if weeks.anchor != "2024-03-06" {
		t.Errorf("expected anchor to be passed through, got %q", weeks.anchor)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "nutrition-2024-03-03.csv") {
		t.Errorf("unexpected disposition: %s", w.Header().Get("Content-Disposition"))
	}

	rows, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	// header + 7 days + total
	if len(rows) != 9 {
		t.Fatalf("expected 9 rows, got %d", len(rows))
	}
	if rows[2][0] != "2024-03-04" || rows[2][1] != "650" {
		t.Errorf("unexpected day row: %v", rows[2])
	}
	if rows[8][0] != "total" || rows[8][4] != "20" {
		t.Errorf("unexpected total row: %v", rows[8])
	}
}

func TestWeeklyPDFIsDefault(t *testing.T) {
	mux := newMux(NewService(&stubWeeks{}))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/reports/weekly", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "application/pdf" {
		t.Errorf("unexpected content type: %s", w.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Error("expected a PDF document")
	}
}

func TestWeeklyErrors(t *testing.T) {
	mux := newMux(NewService(&stubWeeks{}))

	tests := []struct {
		url  string
		code int
	}{
		{"/v1/reports/weekly?format=xlsx", http.StatusBadRequest},
		{"/v1/reports/weekly?week=bad", http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.url, nil))
		if w.Code != tt.code {
			t.Errorf("%s: expected %d, got %d", tt.url, tt.code, w.Code)
		}
	}

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/reports/weekly", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without object storage, got %d", w.Code)
	}
}

func TestUpload(t *testing.T) {
	uploads := &fakeUploads{}
	s := NewService(&stubWeeks{}).WithUploads(uploads, appcfg.S3Config{PresignTTLSeconds: 60}, "exports")
	mux := newMux(s)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/reports/weekly?format=csv", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp UploadedReport
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Key != "exports/reports/nutrition-2024-03-03.csv" || uploads.key != resp.Key {
		t.Errorf("unexpected key: %s (stored %s)", resp.Key, uploads.key)
	}
	if resp.DownloadURL != "https://signed.example/"+resp.Key || resp.ExpiresAt == nil {
		t.Errorf("expected presigned url, got %+v", resp)
	}
	if uploads.contentType != "text/csv; charset=utf-8" {
		t.Errorf("unexpected content type: %s", uploads.contentType)
	}
}
