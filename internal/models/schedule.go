package models

import "time"

// ScheduleEntry is one explicit per-date shift override. It takes precedence
// over the weekly template for its exact date.
type ScheduleEntry struct {
	EmployeeID string    `db:"employee_id" json:"employee_id"`
	Day        time.Time `db:"day" json:"day"`
	Shift      ShiftCode `db:"shift_code" json:"shift_code"`
}

// WeekOverrides maps employee ids to a 7-slot vector of overrides. An empty
// code means "defer to the template" for that day.
type WeekOverrides map[string][7]ShiftCode

// ResolvedDay is one cell of the resolved week board.
type ResolvedDay struct {
	Date        time.Time `json:"date"`
	Shift       ShiftCode `json:"shift"`
	Holiday     bool      `json:"holiday"`
	HolidayName string    `json:"holiday_name,omitempty"`
	Editable    bool      `json:"editable"`
}

// WeekRow is the resolved 7-day vector for one employee.
type WeekRow struct {
	EmployeeID   string         `json:"employee_id"`
	EmployeeName string         `json:"employee_name"`
	Days         [7]ResolvedDay `json:"days"`
}

// WeekBoard is the full resolved week across employees.
type WeekBoard struct {
	WeekStart time.Time    `json:"week_start"`
	Days      [7]time.Time `json:"days"`
	Rows      []WeekRow    `json:"rows"`
}
