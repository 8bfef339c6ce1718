package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit-decision-engine/internal/utils"
)

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		months   int
		expected time.Time
	}{
		{
			name:     "plain advance",
			start:    time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			months:   6,
			expected: time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "clamps jan 31 to feb 28",
			start:    time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "clamps to feb 29 in leap year",
			start:    time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "clamps may 31 to jun 30",
			start:    time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "rolls over the year",
			start:    time.Date(2026, 11, 10, 0, 0, 0, 0, time.UTC),
			months:   3,
			expected: time.Date(2027, 2, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "multi year",
			start:    time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC),
			months:   25,
			expected: time.Date(2028, 9, 21, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "zero months unchanged",
			start:    time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC),
			months:   0,
			expected: time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "negative months unchanged",
			start:    time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC),
			months:   -4,
			expected: time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := utils.AddMonths(tt.start, tt.months)
			assert.True(t, tt.expected.Equal(result),
				"Expected %s, got %s", tt.expected, result)
		})
	}
}

func TestAddMonths_KeepsClock(t *testing.T) {
	start := time.Date(2026, 1, 31, 14, 30, 45, 0, time.UTC)
	result := utils.AddMonths(start, 1)

	assert.Equal(t, 14, result.Hour())
	assert.Equal(t, 30, result.Minute())
	assert.Equal(t, 45, result.Second())
}

func TestParseDate(t *testing.T) {
	expected := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		input string
		ok    bool
	}{
		{"2026-09-30", true},
		{"30/09/2026", true},
		{"30-09-2026", true},
		{" 2026-09-30 ", true},
		{"", false},
		{"   ", false},
		{"not a date", false},
		{"2026/09/30", false},
		{"30.09.2026", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			parsed, ok := utils.ParseDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, expected.Equal(parsed), "Expected %s, got %s", expected, parsed)
			}
		})
	}
}

func TestFormatDate(t *testing.T) {
	date := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-02-03", utils.FormatDate(date))
}

func TestParseDate_RoundTrip(t *testing.T) {
	parsed, ok := utils.ParseDate("17/01/2027")
	require.True(t, ok)
	assert.Equal(t, "2027-01-17", utils.FormatDate(parsed))
}
