// Package dates holds the pure calendar arithmetic shared by the roster
// core: Monday-based weeks, day iteration and calendar-year clipping.
package dates

import "time"

// DayFormat is the wire format for calendar days (no time component).
const DayFormat = "2006-01-02"

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday of t's week, truncated to midnight UTC.
func WeekStart(t time.Time) time.Time {
	d := Day(t)
	offset := int(d.Weekday()-time.Monday+7) % 7
	return d.AddDate(0, 0, -offset)
}

// WeekDays expands a week start into its 7 consecutive days.
func WeekDays(start time.Time) [7]time.Time {
	var days [7]time.Time
	d := Day(start)
	for i := 0; i < 7; i++ {
		days[i] = d.AddDate(0, 0, i)
	}
	return days
}

// WeekdayIndex maps a date to the 0=Monday..6=Sunday index used by weekly
// templates.
func WeekdayIndex(t time.Time) int {
	return int(t.Weekday()-time.Monday+7) % 7
}

// DaysInclusive counts calendar days between start and end, both included.
// Returns 0 when end precedes start.
func DaysInclusive(start, end time.Time) int {
	s, e := Day(start), Day(end)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

// ClipToYear intersects [start, end] with the given calendar year. The
// returned ok is false when the range does not touch the year.
func ClipToYear(start, end time.Time, year int) (time.Time, time.Time, bool) {
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	s, e := Day(start), Day(end)
	if s.Before(yearStart) {
		s = yearStart
	}
	if e.After(yearEnd) {
		e = yearEnd
	}
	if e.Before(s) {
		return time.Time{}, time.Time{}, false
	}
	return s, e, true
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

// ParseDay parses a YYYY-MM-DD string into a midnight-UTC date.
func ParseDay(raw string) (time.Time, error) {
	return time.ParseInLocation(DayFormat, raw, time.UTC)
}
