package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fdg312/cookbook/internal/recipeid"
)

// Recipe is a catalog or user-authored recipe.
type Recipe struct {
	ID          recipeid.ID `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Difficulty  string      `json:"difficulty,omitempty"`
	Servings    int         `json:"servings,omitempty"`
	PrepTime    string      `json:"prepTime,omitempty"`
	CookTime    string      `json:"cookTime,omitempty"`
	TotalTime   string      `json:"totalTime,omitempty"`
	Image       string      `json:"image,omitempty"`
	VideoURL    string      `json:"videoUrl,omitempty"`
	Ingredients []string    `json:"ingredients"`
	Steps       []Step      `json:"steps"`
	Nutrition   *Nutrition  `json:"nutrition,omitempty"`
	IsCustom    bool        `json:"isCustom,omitempty"`
}

// Step is one instruction of a recipe.
type Step struct {
	Step         int    `json:"step"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	TimerMinutes int    `json:"timerMinutes"`
	StartTime    string `json:"startTime,omitempty"`
	EndTime      string `json:"endTime,omitempty"`
	Tip          string `json:"tip,omitempty"`
}

// Nutrition holds per-serving values as free text ("350kcal", "18g").
type Nutrition struct {
	Calories Magnitude `json:"calories"`
	Protein  Magnitude `json:"protein"`
	Fat      Magnitude `json:"fat"`
	Carbs    Magnitude `json:"carbs"`
}

// Magnitude is a free-text quantity. JSON numbers are accepted and kept as text.
type Magnitude string

func (m *Magnitude) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = Magnitude(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("nutrition value: %w", err)
	}
	*m = Magnitude(n.String())
	return nil
}

// Document is the static catalog file shape.
type Document struct {
	Recipes []Recipe `json:"recipes"`
}

var ErrEmptyDocument = errors.New("no recipes in document")

// DecodeRecipes accepts a JSON array of recipes, an object {"recipes": [...]}
// or a single recipe object.
func DecodeRecipes(data []byte) ([]Recipe, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}

	if data[0] == '[' {
		var recipes []Recipe
		if err := json.Unmarshal(data, &recipes); err != nil {
			return nil, fmt.Errorf("decode recipe list: %w", err)
		}
		return recipes, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode recipes: %w", err)
	}

	if raw, ok := probe["recipes"]; ok {
		var recipes []Recipe
		if err := json.Unmarshal(raw, &recipes); err != nil {
			return nil, fmt.Errorf("decode recipes field: %w", err)
		}
		return recipes, nil
	}

	var single Recipe
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("decode recipe: %w", err)
	}
	return []Recipe{single}, nil
}
