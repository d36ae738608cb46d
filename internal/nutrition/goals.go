package nutrition

import "fmt"

// Goals are daily targets.
type Goals struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
}

// DefaultGoals returns 2000 kcal, 50 g protein and 275 g carbs per day.
func DefaultGoals() Goals {
	return Goals{Calories: 2000, Protein: 50, Carbs: 275}
}

// Validate checks that configured goals are usable as divisors.
func (g Goals) Validate() error {
	if g.Calories < 800 || g.Calories > 6000 {
		return fmt.Errorf("calories goal must be between 800 and 6000")
	}
	if g.Protein < 1 || g.Protein > 400 {
		return fmt.Errorf("protein goal must be between 1 and 400")
	}
	if g.Carbs < 1 || g.Carbs > 1000 {
		return fmt.Errorf("carbs goal must be between 1 and 1000")
	}
	return nil
}

// Weekly scales daily goals to a 7-day week.
func (g Goals) Weekly() Goals {
	return Goals{Calories: g.Calories * 7, Protein: g.Protein * 7, Carbs: g.Carbs * 7}
}

// Progress is percent of goal reached, rounded and capped at 100.
type Progress struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
}

// ProgressOf compares totals with goals.
func ProgressOf(totals Macros, goals Goals) Progress {
	return Progress{
		Calories: percent(totals.Calories, goals.Calories),
		Protein:  percent(totals.Protein, goals.Protein),
		Carbs:    percent(totals.Carbs, goals.Carbs),
	}
}

func percent(value, goal int) int {
	if goal <= 0 || value <= 0 {
		return 0
	}
	p := (value*200 + goal) / (2 * goal)
	if p > 100 {
		return 100
	}
	return p
}
