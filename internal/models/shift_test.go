package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeShiftIdentityOnCatalog(t *testing.T) {
	for _, code := range AllShiftCodes() {
		assert.Equal(t, code, NormalizeShift(string(code)))
	}
}

func TestNormalizeShiftForeignCodesBecomeRest(t *testing.T) {
	for _, raw := range []string{"", "  ", "Z9", "MORNING", "m9", "t2"} {
		assert.Equal(t, ShiftRest, NormalizeShift(raw), "raw=%q", raw)
	}
}

func TestNormalizeShiftTrimsAndUppercases(t *testing.T) {
	assert.Equal(t, ShiftMorning1, NormalizeShift(" m1 "))
	assert.Equal(t, ShiftAfternoon, NormalizeShift("t"))
}

func TestShiftCatalogOrderAndMetadata(t *testing.T) {
	catalog := ShiftCatalog()
	assert.Len(t, catalog, 8)
	assert.Equal(t, ShiftMorning1, catalog[0].Code)
	assert.Equal(t, ShiftRest, catalog[len(catalog)-1].Code)
	for _, def := range catalog {
		assert.NotEmpty(t, def.Label)
		assert.NotEmpty(t, def.Hours)
	}
}

func TestShiftDefUnknownFallsBackToRest(t *testing.T) {
	assert.Equal(t, ShiftRest, ShiftCode("Z9").Def().Code)
}
