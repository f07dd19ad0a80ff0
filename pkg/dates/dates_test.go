package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekStartNormalizesToMonday(t *testing.T) {
	// 2026-07-08 is a Wednesday.
	assert.Equal(t, day(2026, time.July, 6), WeekStart(day(2026, time.July, 8)))
	// Monday maps to itself.
	assert.Equal(t, day(2026, time.July, 6), WeekStart(day(2026, time.July, 6)))
	// Sunday belongs to the week started the previous Monday.
	assert.Equal(t, day(2026, time.July, 6), WeekStart(day(2026, time.July, 12)))
}

func TestWeekDays(t *testing.T) {
	days := WeekDays(day(2026, time.July, 6))
	assert.Equal(t, day(2026, time.July, 6), days[0])
	assert.Equal(t, day(2026, time.July, 12), days[6])
}

func TestWeekdayIndex(t *testing.T) {
	assert.Equal(t, 0, WeekdayIndex(day(2026, time.July, 6)))  // Monday
	assert.Equal(t, 5, WeekdayIndex(day(2026, time.July, 11))) // Saturday
	assert.Equal(t, 6, WeekdayIndex(day(2026, time.July, 12))) // Sunday
}

func TestDaysInclusive(t *testing.T) {
	assert.Equal(t, 1, DaysInclusive(day(2026, time.July, 1), day(2026, time.July, 1)))
	assert.Equal(t, 10, DaysInclusive(day(2026, time.July, 1), day(2026, time.July, 10)))
	assert.Equal(t, 0, DaysInclusive(day(2026, time.July, 2), day(2026, time.July, 1)))
}

func TestClipToYear(t *testing.T) {
	start, end, ok := ClipToYear(day(2025, time.December, 29), day(2026, time.January, 3), 2026)
	require.True(t, ok)
	assert.Equal(t, day(2026, time.January, 1), start)
	assert.Equal(t, day(2026, time.January, 3), end)

	start, end, ok = ClipToYear(day(2025, time.December, 29), day(2026, time.January, 3), 2025)
	require.True(t, ok)
	assert.Equal(t, day(2025, time.December, 29), start)
	assert.Equal(t, day(2025, time.December, 31), end)

	_, _, ok = ClipToYear(day(2025, time.March, 1), day(2025, time.March, 5), 2026)
	assert.False(t, ok)
}

func TestParseDay(t *testing.T) {
	parsed, err := ParseDay("2026-07-06")
	require.NoError(t, err)
	assert.Equal(t, day(2026, time.July, 6), parsed)

	_, err = ParseDay("06/07/2026")
	assert.Error(t, err)
}
