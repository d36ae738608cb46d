package meals

import (
	"errors"
	"testing"
	"time"
)

func TestSlotValidity(t *testing.T) {
	for _, s := range Planned() {
		if !s.IsPlanned() || !s.IsValid() {
			t.Errorf("%s must be plannable and valid", s)
		}
	}
	if Unknown.IsPlanned() || !Unknown.IsValid() {
		t.Error("unknown is valid for cook entries only")
	}
	if Slot("brunch").IsValid() {
		t.Error("brunch is not a slot")
	}
}

func TestParseDateAndToday(t *testing.T) {
	if _, err := ParseDate("2024-02-30"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate for impossible date, got %v", err)
	}
	if _, err := ParseDate("2024-03-05"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	loc := time.FixedZone("UTC+10", 10*3600)
	now := time.Date(2024, 3, 6, 8, 0, 0, 0, loc)
	if got := Today(now); got != "2024-03-05" {
		t.Errorf("expected UTC calendar date, got %s", got)
	}
}
