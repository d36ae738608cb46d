// Package nutrition turns free-text nutrition magnitudes into numbers and
// compares totals against daily goals.
package nutrition

import (
	"strconv"
	"strings"

	"github.com/fdg312/cookbook/internal/catalog"
)

// Parse extracts a number from a free-text magnitude such as "350kcal" by
// dropping every non-digit character. Anything unparsable is 0.
func Parse(s string) int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

// Macros are per-serving or summed nutrition values.
type Macros struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
}

// FromRecipe parses a recipe's nutrition block. A missing block is all zeros.
func FromRecipe(r catalog.Recipe) Macros {
	if r.Nutrition == nil {
		return Macros{}
	}
	return Macros{
		Calories: Parse(string(r.Nutrition.Calories)),
		Protein:  Parse(string(r.Nutrition.Protein)),
		Carbs:    Parse(string(r.Nutrition.Carbs)),
		Fat:      Parse(string(r.Nutrition.Fat)),
	}
}

// Add returns the element-wise sum.
func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: m.Calories + o.Calories,
		Protein:  m.Protein + o.Protein,
		Carbs:    m.Carbs + o.Carbs,
		Fat:      m.Fat + o.Fat,
	}
}

