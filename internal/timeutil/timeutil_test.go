package timeutil

import (
	"errors"
	"testing"
	"time"
)

func TestLookbackWindowBounds(t *testing.T) {
	now := time.Date(2025, time.June, 15, 14, 30, 0, 0, time.UTC)

	w, err := LookbackWindow(now, 30)
	if err != nil {
		t.Fatalf("lookback window: %v", err)
	}

	wantEnd := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	wantStart := time.Date(2025, time.May, 16, 0, 0, 0, 0, time.UTC)
	if !w.End().Equal(wantEnd) {
		t.Errorf("want end %s, got %s", wantEnd, w.End())
	}
	if !w.Start().Equal(wantStart) {
		t.Errorf("want start %s, got %s", wantStart, w.Start())
	}
	if w.Days() != 30 {
		t.Errorf("want 30 days, got %d", w.Days())
	}
}

func TestLookbackWindowRejectsNonPositiveDays(t *testing.T) {
	now := time.Now()
	for _, days := range []int{0, -1, -365} {
		if _, err := LookbackWindow(now, days); !errors.Is(err, ErrInvalidLookback) {
			t.Errorf("days=%d: want ErrInvalidLookback, got %v", days, err)
		}
	}
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2025, time.June, 15, 0, 10, 0, 0, time.UTC)
	night := time.Date(2025, time.June, 15, 23, 50, 0, 0, time.UTC)
	nextDay := time.Date(2025, time.June, 16, 0, 1, 0, 0, time.UTC)

	if !SameDay(morning, night, time.UTC) {
		t.Error("timestamps on the same date should match")
	}
	if SameDay(night, nextDay, time.UTC) {
		t.Error("timestamps on different dates should not match")
	}
}
