package timeutil

import (
	"errors"
	"time"
)

var ErrInvalidLookback = errors.New("invalid lookback days")

// Window is an inclusive calendar-date range.
type Window struct {
	start time.Time
	end   time.Time
}

// EnsureLocation returns UTC when loc is nil.
func EnsureLocation(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

// LookbackWindow builds the inclusive range [today-days, today] anchored to now's day.
func LookbackWindow(now time.Time, days int) (Window, error) {
	if days <= 0 {
		return Window{}, ErrInvalidLookback
	}
	end := StartOfDay(now)
	start := end.AddDate(0, 0, -days)
	return Window{start: start, end: end}, nil
}

// Start returns the inclusive start date of the window.
func (w Window) Start() time.Time { return w.start }

// End returns the inclusive end date of the window.
func (w Window) End() time.Time { return w.end }

// Days returns the window span in whole days.
func (w Window) Days() int {
	return int(w.end.Sub(w.start) / (24 * time.Hour))
}

// StartOfDay truncates a timestamp to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two timestamps fall on the same calendar date in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	loc = EnsureLocation(loc)
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
