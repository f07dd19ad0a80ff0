package models

// WeekPattern is a 7-slot shift vector indexed 0=Monday..6=Sunday.
type WeekPattern [7]ShiftCode

// DefaultWeekPattern is the all-rest vector used when an employee has no
// stored template.
func DefaultWeekPattern() WeekPattern {
	return WeekPattern{ShiftRest, ShiftRest, ShiftRest, ShiftRest, ShiftRest, ShiftRest, ShiftRest}
}

// TemplateRow is one persisted weekly-template cell.
type TemplateRow struct {
	EmployeeID string    `db:"employee_id" json:"employee_id"`
	Weekday    int       `db:"weekday" json:"weekday"`
	Shift      ShiftCode `db:"shift_code" json:"shift_code"`
}
