package monthrange

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFor_Boundaries(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month time.Month
		end   time.Time
	}{
		{"january", 2021, time.January, date(2021, time.January, 31)},
		{"leap february", 2020, time.February, date(2020, time.February, 29)},
		{"plain february", 2021, time.February, date(2021, time.February, 28)},
		{"century non-leap", 2100, time.February, date(2100, time.February, 28)},
		{"april", 2023, time.April, date(2023, time.April, 30)},
		{"december", 2023, time.December, date(2023, time.December, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := For(tt.year, tt.month)
			if !w.Start.Equal(date(tt.year, tt.month, 1)) {
				t.Errorf("expected start %v, got %v", date(tt.year, tt.month, 1), w.Start)
			}
			if !w.End.Equal(tt.end) {
				t.Errorf("expected end %v, got %v", tt.end, w.End)
			}
		})
	}
}

func TestMonths_AcrossYearBoundary(t *testing.T) {
	months := Months(date(2019, time.November, 15), date(2020, time.January, 3))
	if len(months) != 3 {
		t.Fatalf("expected 3 months, got %d", len(months))
	}

	want := []string{"2019-11", "2019-12", "2020-01"}
	for i, w := range months {
		if w.Key() != want[i] {
			t.Errorf("month %d: expected %s, got %s", i, want[i], w.Key())
		}
	}

	if !months[1].End.Equal(date(2019, time.December, 31)) {
		t.Errorf("expected december to end on the 31st, got %v", months[1].End)
	}
}

func TestMonths_LeapFebruary(t *testing.T) {
	months := Months(date(2024, time.January, 1), date(2024, time.March, 31))
	if len(months) != 3 {
		t.Fatalf("expected 3 months, got %d", len(months))
	}
	if months[1].End.Day() != 29 {
		t.Errorf("expected february 2024 to end on the 29th, got %d", months[1].End.Day())
	}
}

func TestMonths_Reversed(t *testing.T) {
	if got := Months(date(2021, time.May, 1), date(2021, time.April, 1)); got != nil {
		t.Errorf("expected nil for reversed range, got %v", got)
	}
}

func TestWindow_Contains(t *testing.T) {
	w := For(2020, time.March)
	if !w.Contains(time.Date(2020, time.March, 31, 23, 59, 0, 0, time.UTC)) {
		t.Errorf("expected last minute of month to be contained")
	}
	if w.Contains(date(2020, time.April, 1)) {
		t.Errorf("expected first day of next month to be excluded")
	}
}

func TestParseKey(t *testing.T) {
	w, err := ParseKey("2020-02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Year != 2020 || w.Month != time.February {
		t.Errorf("expected 2020-02, got %s", w)
	}

	if _, err := ParseKey("combined"); err == nil {
		t.Errorf("expected error for non-month key")
	}
}
