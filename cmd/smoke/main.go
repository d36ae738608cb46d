package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

const defaultAPIBase = "http://localhost:8080"

var (
	apiBase    string
	client     = &http.Client{Timeout: 30 * time.Second}
	testDate   string
	createdIDs = make(map[string]string) // созданные ресурсы для cleanup
)

func main() {
	fmt.Println("=== Cookbook E2E Smoke Test ===")
	fmt.Println()

	apiBase = getEnv("API_BASE_URL", defaultAPIBase)
	fmt.Printf("API Base: %s\n", apiBase)
	fmt.Println()

	testDate = time.Now().UTC().Format("2006-01-02")

	steps := []struct {
		name string
		fn   func() error
	}{
		{"Healthz", testHealthz},
		{"List Recipes", testListRecipes},
		{"Create Custom Recipe", testCreateCustomRecipe},
		{"Toggle Bookmark", testToggleBookmark},
		{"Plan Recipe", testPlanRecipe},
		{"Mark Cooked", testMarkCooked},
		{"Nutrition Day", testNutritionDay},
		{"Weekly Report (CSV)", testWeeklyReport},
		{"Export Custom Recipes", testExport},
		{"Delete Custom Recipe", testDeleteCustomRecipe},
	}

	failed := false
	for i, step := range steps {
		fmt.Printf("[%d/%d] %s... ", i+1, len(steps), step.name)
		if err := step.fn(); err != nil {
			fmt.Printf("❌ FAILED\n")
			fmt.Printf("  Error: %v\n\n", err)
			failed = true
			break
		}
		fmt.Printf("✅ OK\n")
	}

	fmt.Println()
	if failed {
		fmt.Println("❌ SMOKE TEST FAILED")
		os.Exit(1)
	}

	fmt.Println("✅ ALL SMOKE TESTS PASSED")
}

func testHealthz() error {
	_, err := call(http.MethodGet, "/healthz", nil, http.StatusOK)
	return err
}

func testListRecipes() error {
	body, err := call(http.MethodGet, "/v1/recipes", nil, http.StatusOK)
	if err != nil {
		return err
	}
	var resp struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to decode recipes: %w", err)
	}
	fmt.Printf("(total=%d) ", resp.Total)
	return nil
}

func testCreateCustomRecipe() error {
	recipe := map[string]any{
		"title":       "Smoke test omelette",
		"description": "Created by the smoke test",
		"ingredients": []string{"2 eggs", "salt"},
		"steps":       []map[string]any{{"title": "Whisk", "description": "Whisk the eggs"}},
		"nutrition":   map[string]any{"calories": "180 kcal", "protein": "12g", "fat": "14g", "carbs": "1g"},
	}
	body, err := call(http.MethodPost, "/v1/custom-recipes", recipe, http.StatusCreated)
	if err != nil {
		return err
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil || created.ID == "" {
		return fmt.Errorf("no id in response: %s", string(body))
	}
	createdIDs["recipe"] = created.ID
	return nil
}

func testToggleBookmark() error {
	id := createdIDs["recipe"]
	if _, err := call(http.MethodPut, "/v1/bookmarks/"+id, nil, http.StatusOK); err != nil {
		return err
	}
	_, err := call(http.MethodDelete, "/v1/bookmarks/"+id, nil, http.StatusNoContent)
	return err
}

func testPlanRecipe() error {
	req := map[string]any{"date": testDate, "meal": "dinner", "recipeId": createdIDs["recipe"]}
	_, err := call(http.MethodPost, "/v1/planner/select", req, http.StatusCreated)
	return err
}

func testMarkCooked() error {
	_, err := call(http.MethodPost, "/v1/history/"+createdIDs["recipe"]+"/cooked", nil, http.StatusCreated)
	return err
}

func testNutritionDay() error {
	body, err := call(http.MethodGet, "/v1/nutrition/day?date="+testDate, nil, http.StatusOK)
	if err != nil {
		return err
	}
	var day struct {
		Totals struct {
			Calories int `json:"calories"`
		} `json:"totals"`
	}
	if err := json.Unmarshal(body, &day); err != nil {
		return fmt.Errorf("failed to decode nutrition: %w", err)
	}
	if day.Totals.Calories < 180 {
		return fmt.Errorf("expected at least 180 kcal, got %d", day.Totals.Calories)
	}
	return nil
}

func testWeeklyReport() error {
	body, err := call(http.MethodGet, "/v1/reports/weekly?format=csv&week="+testDate, nil, http.StatusOK)
	if err != nil {
		return err
	}
	if !bytes.HasPrefix(body, []byte("date,calories")) {
		return fmt.Errorf("unexpected csv header: %.40s", string(body))
	}
	return nil
}

func testExport() error {
	body, err := call(http.MethodGet, "/v1/custom-recipes/export", nil, http.StatusOK)
	if err != nil {
		return err
	}
	if !bytes.Contains(body, []byte(createdIDs["recipe"])) {
		return fmt.Errorf("export does not contain %s", createdIDs["recipe"])
	}
	return nil
}

func testDeleteCustomRecipe() error {
	id := createdIDs["recipe"]
	if id == "" {
		return fmt.Errorf("no recipe ID to delete")
	}
	if _, err := call(http.MethodDelete, "/v1/custom-recipes/"+id, nil, http.StatusOK); err != nil {
		return err
	}
	_, err := call(http.MethodGet, "/v1/recipes/"+id, nil, http.StatusNotFound)
	return err
}

// Helper functions

func call(method, path string, payload any, wantStatus int) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, apiBase+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if resp.StatusCode != wantStatus {
		return nil, fmt.Errorf("%s %s: status=%d body=%.4096s", method, path, resp.StatusCode, string(data))
	}
	return data, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
