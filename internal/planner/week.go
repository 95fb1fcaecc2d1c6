package planner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-date form used for week starts and day dates.
const DateLayout = "2006-01-02"

// ErrInvalidWeek is returned when a week string cannot be parsed.
var ErrInvalidWeek = errors.New("invalid week")

// WeekStart returns the Monday (00:00 UTC) of the ISO week containing t.
func WeekStart(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	return d.AddDate(0, 0, -offset)
}

// ParseWeek accepts a calendar date ("2024-03-06") or an ISO week
// ("2024-W10") and returns the Monday that starts the week.
func ParseWeek(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if year, week, ok := splitISOWeek(s); ok {
		return isoWeekStart(year, week)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: expected YYYY-MM-DD or YYYY-Www", ErrInvalidWeek, s)
	}
	return WeekStart(t), nil
}

// FormatWeek renders a week start as YYYY-MM-DD.
func FormatWeek(t time.Time) string {
	return WeekStart(t).Format(DateLayout)
}

// NormalizeWeek parses s and returns its canonical YYYY-MM-DD Monday.
func NormalizeWeek(s string) (string, error) {
	t, err := ParseWeek(s)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

// WeekDates returns the seven dates starting at start.
func WeekDates(start time.Time) []time.Time {
	dates := make([]time.Time, 7)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	return dates
}

func splitISOWeek(s string) (year, week int, ok bool) {
	y, w, found := strings.Cut(strings.ToUpper(s), "-W")
	if !found || len(y) != 4 || len(w) == 0 || len(w) > 2 {
		return 0, 0, false
	}
	year, err := strconv.Atoi(y)
	if err != nil {
		return 0, 0, false
	}
	week, err = strconv.Atoi(w)
	if err != nil {
		return 0, 0, false
	}
	return year, week, true
}

func isoWeekStart(year, week int) (time.Time, error) {
	// January 4th is always in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	start := WeekStart(jan4).AddDate(0, 0, (week-1)*7)
	if week < 1 {
		return time.Time{}, fmt.Errorf("%w: week %d out of range", ErrInvalidWeek, week)
	}
	if y, w := start.ISOWeek(); y != year || w != week {
		return time.Time{}, fmt.Errorf("%w: %d has no week %d", ErrInvalidWeek, year, week)
	}
	return start, nil
}
