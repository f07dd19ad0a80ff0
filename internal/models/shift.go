package models

import "strings"

// ShiftCode identifies one entry of the closed shift catalog.
type ShiftCode string

const (
	ShiftMorning1  ShiftCode = "M1"
	ShiftMorning2  ShiftCode = "M2"
	ShiftMorning3  ShiftCode = "M3"
	ShiftMorning4  ShiftCode = "M4"
	ShiftMorning5  ShiftCode = "M5"
	ShiftAfternoon ShiftCode = "T"
	ShiftGuard     ShiftCode = "G"
	ShiftRest      ShiftCode = "L"
)

// ShiftDef carries the display metadata attached to a catalog code.
type ShiftDef struct {
	Code       ShiftCode `json:"code"`
	Label      string    `json:"label"`
	Hours      string    `json:"hours"`
	Background string    `json:"background"`
	Foreground string    `json:"foreground"`
}

// shiftOrder is the order codes are offered in pickers and legends.
var shiftOrder = []ShiftCode{
	ShiftMorning1,
	ShiftMorning2,
	ShiftMorning3,
	ShiftMorning4,
	ShiftMorning5,
	ShiftAfternoon,
	ShiftGuard,
	ShiftRest,
}

var shiftDefs = map[ShiftCode]ShiftDef{
	ShiftMorning1:  {Code: ShiftMorning1, Label: "Mañana 08:30–14:30", Hours: "08:30–14:30", Background: "#DDEBFF", Foreground: "#1F4E79"},
	ShiftMorning2:  {Code: ShiftMorning2, Label: "Mañana 09:00–14:00", Hours: "09:00–14:00", Background: "#DFF7FF", Foreground: "#0B4F6C"},
	ShiftMorning3:  {Code: ShiftMorning3, Label: "Mañana 09:30–14:00", Hours: "09:30–14:00", Background: "#E4FFF0", Foreground: "#0C5A2A"},
	ShiftMorning4:  {Code: ShiftMorning4, Label: "Mañana 10:00–14:30", Hours: "10:00–14:30", Background: "#E9E4FF", Foreground: "#3B2A7A"},
	ShiftMorning5:  {Code: ShiftMorning5, Label: "Mañana 10:00–13:30", Hours: "10:00–13:30", Background: "#FFF2CC", Foreground: "#6B4E00"},
	ShiftAfternoon: {Code: ShiftAfternoon, Label: "Tarde 17:00–20:30", Hours: "17:00–20:30", Background: "#FFE6CC", Foreground: "#7A3E00"},
	ShiftGuard:     {Code: ShiftGuard, Label: "Guardia", Hours: "Guardia", Background: "#FFD9E6", Foreground: "#7A0036"},
	ShiftRest:      {Code: ShiftRest, Label: "Libre", Hours: "No trabaja", Background: "#F2F2F2", Foreground: "#444444"},
}

// Valid returns true when the code is a catalog member.
func (s ShiftCode) Valid() bool {
	_, ok := shiftDefs[s]
	return ok
}

// Def returns the display metadata for the code; unknown codes resolve to
// the rest entry.
func (s ShiftCode) Def() ShiftDef {
	if def, ok := shiftDefs[s]; ok {
		return def
	}
	return shiftDefs[ShiftRest]
}

// NormalizeShift maps arbitrary stored or user input onto the catalog.
// Catalog members normalize to themselves; anything else, including empty
// input, becomes the rest code. Display must never fail on stale data.
func NormalizeShift(raw string) ShiftCode {
	code := ShiftCode(strings.ToUpper(strings.TrimSpace(raw)))
	if code.Valid() {
		return code
	}
	return ShiftRest
}

// ShiftCatalog returns the ordered catalog with metadata, for pickers.
func ShiftCatalog() []ShiftDef {
	out := make([]ShiftDef, 0, len(shiftOrder))
	for _, code := range shiftOrder {
		out = append(out, shiftDefs[code])
	}
	return out
}

// AllShiftCodes returns the ordered code list without metadata.
func AllShiftCodes() []ShiftCode {
	out := make([]ShiftCode, len(shiftOrder))
	copy(out, shiftOrder)
	return out
}
