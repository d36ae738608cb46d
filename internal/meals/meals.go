// Package meals defines meal slot values shared by history, plans and views.
package meals

import (
	"errors"
	"time"
)

// Slot is a meal of the day.
type Slot string

const (
	Breakfast Slot = "breakfast"
	Lunch     Slot = "lunch"
	Dinner    Slot = "dinner"
	Snack     Slot = "snack"

	// Unknown marks cook entries recorded without a meal (legacy data, "mark cooked").
	Unknown Slot = "unknown"
)

// DateLayout is the persisted calendar date format.
const DateLayout = "2006-01-02"

var (
	ErrInvalidSlot = errors.New("invalid meal slot")
	ErrInvalidDate = errors.New("invalid date format, expected YYYY-MM-DD")
)

// Planned lists the slots a meal plan can hold, in display order.
func Planned() []Slot {
	return []Slot{Breakfast, Lunch, Dinner, Snack}
}

// All lists every slot a cook entry can carry, in display order.
func All() []Slot {
	return []Slot{Breakfast, Lunch, Dinner, Snack, Unknown}
}

// IsPlanned reports whether s is one of the four plannable slots.
func (s Slot) IsPlanned() bool {
	switch s {
	case Breakfast, Lunch, Dinner, Snack:
		return true
	}
	return false
}

// IsValid reports whether s may appear on a cook entry.
func (s Slot) IsValid() bool {
	return s == Unknown || s.IsPlanned()
}

// ParseDate validates a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// Today formats now as a UTC calendar date.
func Today(now time.Time) string {
	return now.UTC().Format(DateLayout)
}
