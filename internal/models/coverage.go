package models

import "time"

// CoverageDay reports how many employees resolve to the tracked shift on one
// day, against the configured staffing target.
type CoverageDay struct {
	Date   time.Time `json:"date"`
	Count  int       `json:"count"`
	Target int       `json:"target"`
}

// CoverageReport covers one displayed week. Display-only: it never blocks
// an edit.
type CoverageReport struct {
	WeekStart    time.Time      `json:"week_start"`
	TrackedShift ShiftCode      `json:"tracked_shift"`
	Days         [7]CoverageDay `json:"days"`
}
