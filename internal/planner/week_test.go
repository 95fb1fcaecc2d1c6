package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeek(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "monday stays", input: "2024-03-04", want: "2024-03-04"},
		{name: "midweek goes back", input: "2024-03-06", want: "2024-03-04"},
		{name: "sunday belongs to previous monday", input: "2024-03-10", want: "2024-03-04"},
		{name: "iso week", input: "2024-W10", want: "2024-03-04"},
		{name: "iso week lowercase", input: "2024-w01", want: "2024-01-01"},
		{name: "iso week 1 in previous year", input: "2026-W01", want: "2025-12-29"},
		{name: "week 53", input: "2020-W53", want: "2020-12-28"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeWeek(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	for _, bad := range []string{"", "next week", "2024-13-01", "2024-W00", "2021-W53"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			_, err := ParseWeek(bad)
			assert.ErrorIs(t, err, ErrInvalidWeek)
		})
	}
}

func TestWeekDates(t *testing.T) {
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	dates := WeekDates(start)
	require.Len(t, dates, 7)
	assert.Equal(t, "2024-03-10", dates[6].Format(DateLayout))
	assert.Equal(t, "2024-03-04", FormatWeek(dates[3]))
}
