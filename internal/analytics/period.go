// Package analytics filters and summarises sale records for the dashboard.
package analytics

import (
	"errors"
	"fmt"
	"time"

	"safisha/internal/core"
)

// Period selects an inclusive date range around an anchor date.
type Period string

const (
	Day   Period = "day"
	Week  Period = "week"
	Month Period = "month"
	Year  Period = "year"
)

var ErrInvalidPeriod = errors.New("invalid period")

// ParsePeriod accepts the four period tags; the empty string is Day.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return Day, nil
	case Day, Week, Month, Year:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
}

// PeriodRange returns the first and last date, both inclusive, of the
// period containing anchor. Weeks run Sunday to Saturday. The results are
// YYYY-MM-DD strings and compare correctly as strings.
func PeriodRange(p Period, anchor string) (start, end string, err error) {
	t, err := time.Parse(core.DateLayout, anchor)
	if err != nil {
		return "", "", fmt.Errorf("anchor %q: %w", anchor, err)
	}
	var from, to time.Time
	switch p {
	case Day, "":
		from, to = t, t
	case Week:
		from = t.AddDate(0, 0, -int(t.Weekday()))
		to = from.AddDate(0, 0, 6)
	case Month:
		from = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 1, -1)
	case Year:
		from = time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		to = time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	default:
		return "", "", fmt.Errorf("%w: %q", ErrInvalidPeriod, p)
	}
	return from.Format(core.DateLayout), to.Format(core.DateLayout), nil
}
