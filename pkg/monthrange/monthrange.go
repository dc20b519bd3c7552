// Package monthrange computes calendar-month query windows.
package monthrange

import (
	"fmt"
	"time"
)

// KeyLayout is the layout used for month keys, e.g. "2020-03".
const KeyLayout = "2006-01"

// Window covers exactly one calendar month. Start is the first day of the
// month and End the last day, both inclusive, at midnight UTC.
type Window struct {
	Year  int
	Month time.Month
	Start time.Time
	End   time.Time
}

// For returns the window for the given year and month.
func For(year int, month time.Month) Window {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	// Day 0 of the next month normalizes to the last day of this one.
	end := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	return Window{
		Year:  start.Year(),
		Month: start.Month(),
		Start: start,
		End:   end,
	}
}

// Containing returns the window of the month t falls in.
func Containing(t time.Time) Window {
	return For(t.Year(), t.Month())
}

// ParseKey parses a "YYYY-MM" key.
func ParseKey(key string) (Window, error) {
	t, err := time.Parse(KeyLayout, key)
	if err != nil {
		return Window{}, fmt.Errorf("monthrange: invalid month key %q: %w", key, err)
	}
	return For(t.Year(), t.Month()), nil
}

// Key returns the "YYYY-MM" key of the window.
func (w Window) Key() string {
	return w.Start.Format(KeyLayout)
}

// Contains reports whether t falls on a day inside the window.
func (w Window) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(w.Start) && t.Before(w.End.AddDate(0, 0, 1))
}

// Next returns the window of the following month.
func (w Window) Next() Window {
	return For(w.Year, w.Month+1)
}

func (w Window) String() string {
	return w.Key()
}

// Months returns every month window from the month of from to the month of to,
// inclusive, in calendar order. It returns nil when to precedes from.
func Months(from, to time.Time) []Window {
	first := Containing(from)
	last := Containing(to)
	if last.Start.Before(first.Start) {
		return nil
	}

	var out []Window
	for w := first; !w.Start.After(last.Start); w = w.Next() {
		out = append(out, w)
	}
	return out
}
