package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayPart marks whether an absence covers the whole day or a half.
type DayPart string

const (
	PartFull DayPart = "FULL"
	PartAM   DayPart = "AM"
	PartPM   DayPart = "PM"
)

// Valid returns true when the part is a supported value.
func (p DayPart) Valid() bool {
	switch p {
	case PartFull, PartAM, PartPM:
		return true
	default:
		return false
	}
}

// Absence type codes per the labor agreement.
const (
	AbsenceVacation     = "VAC"  // vacaciones
	AbsencePersonalDay  = "AP"   // asuntos propios
	AbsenceSickLeave    = "BAJA" // baja médica
	AbsenceMarriage     = "MAT"  // permiso por matrimonio
	AbsenceBereavement  = "FAL"  // permiso por fallecimiento
	AbsenceChristmasEve = "NAV"  // tarde del 24 de diciembre
)

// Absence is one accepted time-off record. Immutable once accepted, except
// for deletion.
type Absence struct {
	ID         string    `db:"id" json:"id"`
	EmployeeID string    `db:"employee_id" json:"employee_id"`
	TypeCode   string    `db:"type_code" json:"type_code"`
	StartDate  time.Time `db:"start_date" json:"start_date"`
	EndDate    time.Time `db:"end_date" json:"end_date"`
	Part       DayPart   `db:"part" json:"part"`
	Notes      string    `db:"notes" json:"notes"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// FixedDate pins an absence type to one calendar day each year.
type FixedDate struct {
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// AbsenceTypePolicy is the per-type rulebook entry consulted by the policy
// engine. Nil/zero fields mean "rule does not apply to this type".
type AbsenceTypePolicy struct {
	Code        string           `json:"code"`
	Label       string           `json:"label"`
	MaxSpanDays int              `json:"max_span_days,omitempty"`
	ForcedPart  DayPart          `json:"forced_part,omitempty"`
	FixedDate   *FixedDate       `json:"fixed_date,omitempty"`
	AnnualQuota *decimal.Decimal `json:"annual_quota,omitempty"`

	// Exclusive types admit only one employee per covered day.
	Exclusive bool `json:"exclusive,omitempty"`
	// NoVacationAdjacency rejects requests contiguous with own vacation.
	NoVacationAdjacency bool `json:"no_vacation_adjacency,omitempty"`
	// AdvanceNoticeDays is the minimum lead time; 0 disables the rule.
	AdvanceNoticeDays int `json:"advance_notice_days,omitempty"`
}

func quota(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

// DefaultAbsencePolicies returns the convenio rulebook. Vacation quota is
// the 30 natural-days legal minimum; personal days are 2 per year.
func DefaultAbsencePolicies(advanceNoticeDays int) map[string]AbsenceTypePolicy {
	if advanceNoticeDays <= 0 {
		advanceNoticeDays = 7
	}
	return map[string]AbsenceTypePolicy{
		AbsenceVacation: {
			Code:        AbsenceVacation,
			Label:       "Vacaciones",
			AnnualQuota: quota("30"),
		},
		AbsencePersonalDay: {
			Code:                AbsencePersonalDay,
			Label:               "Asuntos propios",
			AnnualQuota:         quota("2"),
			Exclusive:           true,
			NoVacationAdjacency: true,
			AdvanceNoticeDays:   advanceNoticeDays,
		},
		AbsenceSickLeave: {
			Code:  AbsenceSickLeave,
			Label: "Baja médica",
		},
		AbsenceMarriage: {
			Code:        AbsenceMarriage,
			Label:       "Permiso por matrimonio",
			MaxSpanDays: 15,
		},
		AbsenceBereavement: {
			Code:        AbsenceBereavement,
			Label:       "Permiso por fallecimiento",
			MaxSpanDays: 4,
		},
		AbsenceChristmasEve: {
			Code:       AbsenceChristmasEve,
			Label:      "Tarde del 24 de diciembre",
			ForcedPart: PartPM,
			FixedDate:  &FixedDate{Month: time.December, Day: 24},
		},
	}
}
