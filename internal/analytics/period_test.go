package analytics

import (
	"errors"
	"testing"
)

func TestPeriodRange(t *testing.T) {
	cases := []struct {
		period     Period
		anchor     string
		start, end string
	}{
		{Day, "2024-01-10", "2024-01-10", "2024-01-10"},
		// 2024-01-10 is a Wednesday.
		{Week, "2024-01-10", "2024-01-07", "2024-01-13"},
		{Week, "2024-01-07", "2024-01-07", "2024-01-13"},
		{Week, "2024-01-13", "2024-01-07", "2024-01-13"},
		{Week, "2024-01-01", "2023-12-31", "2024-01-06"},
		{Month, "2024-02-15", "2024-02-01", "2024-02-29"},
		{Month, "2023-02-15", "2023-02-01", "2023-02-28"},
		{Month, "2024-12-31", "2024-12-01", "2024-12-31"},
		{Year, "2024-06-30", "2024-01-01", "2024-12-31"},
	}
	for _, tc := range cases {
		start, end, err := PeriodRange(tc.period, tc.anchor)
		if err != nil {
			t.Fatalf("%s %s: %v", tc.period, tc.anchor, err)
		}
		if start != tc.start || end != tc.end {
			t.Fatalf("%s %s: expected %s..%s, got %s..%s", tc.period, tc.anchor, tc.start, tc.end, start, end)
		}
	}
}

func TestPeriodRangeErrors(t *testing.T) {
	if _, _, err := PeriodRange(Week, "10/01/2024"); err == nil {
		t.Fatal("expected error for malformed anchor")
	}
	if _, _, err := PeriodRange("fortnight", "2024-01-10"); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestParsePeriod(t *testing.T) {
	if p, err := ParsePeriod(""); err != nil || p != Day {
		t.Fatalf("expected day, got %q %v", p, err)
	}
	if p, err := ParsePeriod("month"); err != nil || p != Month {
		t.Fatalf("expected month, got %q %v", p, err)
	}
	if _, err := ParsePeriod("Month"); err == nil {
		t.Fatal("expected error for wrong case")
	}
}
