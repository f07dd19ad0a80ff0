package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmacal/roster-api/internal/models"
	appErrors "github.com/farmacal/roster-api/pkg/errors"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func absence(typeCode string, start, end time.Time, part models.DayPart) models.Absence {
	return models.Absence{EmployeeID: "e1", TypeCode: typeCode, StartDate: start, EndDate: end, Part: part}
}

var testPolicies = models.DefaultAbsencePolicies(7)

// farPast as "now" keeps the advance-notice rule out of tests that target
// other checks.
var farPast = day(2020, time.January, 1)

func TestValidateAbsenceRangeSanity(t *testing.T) {
	pol := testPolicies[models.AbsenceVacation]

	rej := ValidateAbsence(absence("VAC", day(2026, 7, 10), day(2026, 7, 5), models.PartFull), nil, nil, pol, farPast, false)
	require.NotNil(t, rej)
	assert.Equal(t, RuleRange, rej.Rule)

	rej = ValidateAbsence(absence("VAC", day(2026, 7, 5), day(2026, 7, 6), models.PartAM), nil, nil, pol, farPast, false)
	require.NotNil(t, rej)
	assert.Equal(t, RuleRange, rej.Rule)

	rej = ValidateAbsence(models.Absence{EmployeeID: "e1", TypeCode: "VAC", StartDate: day(2026, 7, 5), EndDate: day(2026, 7, 5), Part: "EVENING"}, nil, nil, pol, farPast, false)
	require.NotNil(t, rej)
	assert.Equal(t, RuleRange, rej.Rule)
}

func TestValidateAbsenceOverlapLaw(t *testing.T) {
	pol := testPolicies[models.AbsenceSickLeave]
	existing := []models.Absence{absence("VAC", day(2026, 7, 1), day(2026, 7, 10), models.PartFull)}

	rej := ValidateAbsence(absence("BAJA", day(2026, 7, 8), day(2026, 7, 12), models.PartFull), existing, nil, pol, farPast, false)
	require.NotNil(t, rej)
	assert.Equal(t, RuleOverlap, rej.Rule)

	// Touching but not overlapping is fine.
	rej = ValidateAbsence(absence("BAJA", day(2026, 7, 11), day(2026, 7, 12), models.PartFull), existing, nil, pol, farPast, false)
	assert.Nil(t, rej)
}

func TestValidateAbsenceHalfDayComplement(t *testing.T) {
	pol := testPolicies[models.AbsenceSickLeave]
	d := day(2026, 9, 14)
	existingAM := []models.Absence{absence("BAJA", d, d, models.PartAM)}

	// AM + PM on the same day coexist.
	rej := ValidateAbsence(absence("BAJA", d, d, models.PartPM), existingAM, nil, pol, farPast, false)
	assert.Nil(t, rej)

	// AM + AM on the same day conflict.
	rej = ValidateAbsence(absence("BAJA", d, d, models.PartAM), existingAM, nil, pol, farPast, false)
	require.NotNil(t, rej)
	assert.Equal(t, RuleOverlap, rej.Rule)

	// A full day over an AM half conflicts too.
	rej = ValidateAbsence(absence("BAJA", d, d, models.PartFull), existingAM, nil, pol, farPast, false)
	require.NotNil(t, rej)
	assert.Equal(t, RuleOverlap, rej.Rule)
}

func TestValidateAbsenceForcedPartAndFixedDate(t *testing.T) {
	pol := testPolicies[models.AbsenceChristmasEve]
	dec24 := day(2026, 12, 24)

	rej := ValidateAbsence(absence("NAV", dec24, dec24, models.PartAM), nil, nil, pol, farPast, false)
	require.NotNil(t, rej)
	assert.Equal(t, RuleForcedPart, rej.Rule)

	rej = ValidateAbsence(absence("NAV", dec24, dec24, models.PartPM), nil, nil, pol, farPast, false)
	assert.Nil(t, rej)

	dec23 := day(2026, 12, 23)
	rej = ValidateAbsence(absence("NAV", dec23, dec23, models.PartPM), nil, nil, pol, farPast, false)
	require.NotNil(t, rej)
	assert.Equal(t, RuleFixedDate, rej.Rule)
}

func TestValidateAbsenceMaxSpan(t *testing.T) {
	pol := testPolicies[models.AbsenceBereavement]

	rej := ValidateAbsence(absence("FAL", day(2026, 3, 2), day(2026, 3, 5), models.PartFull), nil, nil, pol, farPast, false)
	assert.Nil(t, rej)

	rej = ValidateAbsence(absence("FAL", day(2026, 3, 2), day(2026, 3, 6), models.PartFull), nil, nil, pol, farPast, false)
	require.NotNil(t, rej)
	assert.Equal(t, RuleMaxSpan, rej.Rule)
}

func TestValidateAbsenceQuotaBoundary(t *testing.T) {
	pol := testPolicies[models.AbsencePersonalDay]
	// 1.5 units already used in 2026: one full day plus one AM half.
	existing := []models.Absence{
		absence("AP", day(2026, 2, 2), day(2026, 2, 2), models.PartFull),
		absence("AP", day(2026, 3, 3), day(2026, 3, 3), models.PartAM),
	}

	// A further full day would total 2.5 against a quota of 2.
	rej := ValidateAbsence(absence("AP", day(2026, 10, 5), day(2026, 10, 5), models.PartFull), existing, nil, pol, farPast, false)
	require.NotNil(t, rej)
	assert.Equal(t, RuleQuota, rej.Rule)
	assert.Contains(t, rej.Reason, "limit 2")
	assert.Contains(t, rej.Reason, "used 1.5")
	assert.Contains(t, rej.Reason, "remaining 0.5")

	// A half day lands exactly on the quota; equality is allowed.
	rej = ValidateAbsence(absence("AP", day(2026, 10, 5), day(2026, 10, 5), models.PartAM), existing, nil, pol, farPast, false)
	assert.Nil(t, rej)
}

func TestValidateAbsenceQuotaSplitsAcrossYears(t *testing.T) {
	pol := testPolicies[models.AbsenceVacation]
	// 28 days already used in 2026.
	existing := []models.Absence{absence("VAC", day(2026, 6, 1), day(2026, 6, 28), models.PartFull)}

	// Dec 30 .. Jan 3 puts 2 days in 2026 (total 30, allowed) and 3 in 2027.
	rej := ValidateAbsence(absence("VAC", day(2026, 12, 30), day(2027, 1, 3), models.PartFull), existing, nil, pol, farPast, false)
	assert.Nil(t, rej)

	// Dec 29 .. Jan 3 would put 3 days in 2026, exceeding the 30.
	rej = ValidateAbsence(absence("VAC", day(2026, 12, 29), day(2027, 1, 3), models.PartFull), existing, nil, pol, farPast, false)
	require.NotNil(t, rej)
	assert.Equal(t, RuleQuota, rej.Rule)
	assert.Contains(t, rej.Reason, "2026")
}

func TestValidateAbsenceExclusivity(t *testing.T) {
	pol := testPolicies[models.AbsencePersonalDay]
	others := []models.Absence{{EmployeeID: "e2", TypeCode: "AP", StartDate: day(2026, 10, 5), EndDate: day(2026, 10, 5), Part: models.PartFull}}

	rej := ValidateAbsence(absence("AP", day(2026, 10, 5), day(2026, 10, 5), models.PartFull), nil, others, pol, farPast, false)
	require.NotNil(t, rej)
	assert.Equal(t, RuleExclusive, rej.Rule)

	rej = ValidateAbsence(absence("AP", day(2026, 10, 6), day(2026, 10, 6), models.PartFull), nil, others, pol, farPast, false)
	assert.Nil(t, rej)
}

func TestValidateAbsenceVacationAdjacency(t *testing.T) {
	pol := testPolicies[models.AbsencePersonalDay]
	existing := []models.Absence{absence("VAC", day(2026, 7, 1), day(2026, 7, 10), models.PartFull)}

	// Contiguous after the vacation block.
	rej := ValidateAbsence(absence("AP", day(2026, 7, 11), day(2026, 7, 11), models.PartFull), existing, nil, pol, farPast, false)
	require.NotNil(t, rej)
	assert.Equal(t, RuleVacationAdjacency, rej.Rule)

	// Contiguous before it.
	rej = ValidateAbsence(absence("AP", day(2026, 6, 30), day(2026, 6, 30), models.PartFull), existing, nil, pol, farPast, false)
	require.NotNil(t, rej)
	assert.Equal(t, RuleVacationAdjacency, rej.Rule)

	// One day of gap is acceptable.
	rej = ValidateAbsence(absence("AP", day(2026, 7, 13), day(2026, 7, 13), models.PartFull), existing, nil, pol, farPast, false)
	assert.Nil(t, rej)
}

func TestValidateAbsenceAdvanceNotice(t *testing.T) {
	pol := testPolicies[models.AbsencePersonalDay]
	now := day(2026, 10, 1)

	rej := ValidateAbsence(absence("AP", day(2026, 10, 5), day(2026, 10, 5), models.PartFull), nil, nil, pol, now, false)
	require.NotNil(t, rej)
	assert.Equal(t, RuleAdvanceNotice, rej.Rule)

	// Exactly seven days ahead is enough.
	rej = ValidateAbsence(absence("AP", day(2026, 10, 8), day(2026, 10, 8), models.PartFull), nil, nil, pol, now, false)
	assert.Nil(t, rej)

	// Force majeure waives notice, and only notice.
	rej = ValidateAbsence(absence("AP", day(2026, 10, 5), day(2026, 10, 5), models.PartFull), nil, nil, pol, now, true)
	assert.Nil(t, rej)
}

func TestValidateAbsenceDuplicate(t *testing.T) {
	pol := testPolicies[models.AbsenceChristmasEve]
	dec24 := day(2026, 12, 24)
	existing := []models.Absence{absence("NAV", dec24, dec24, models.PartPM)}

	rej := ValidateAbsence(absence("NAV", dec24, dec24, models.PartPM), existing, nil, pol, farPast, false)
	require.NotNil(t, rej)
	// Identical half-days already collide on the overlap check, which runs
	// first.
	assert.Equal(t, RuleOverlap, rej.Rule)
}

type mockAbsenceRepo struct {
	byEmployee map[string][]models.Absence
	byType     []models.Absence
	created    *models.Absence
	deleted    []string
}

func (m *mockAbsenceRepo) ListByEmployee(ctx context.Context, employeeID string) ([]models.Absence, error) {
	return m.byEmployee[employeeID], nil
}

func (m *mockAbsenceRepo) ListByTypeInRange(ctx context.Context, typeCode string, from, to time.Time) ([]models.Absence, error) {
	return m.byType, nil
}

func (m *mockAbsenceRepo) List(ctx context.Context, employeeID string, year int) ([]models.Absence, error) {
	return m.byEmployee[employeeID], nil
}

func (m *mockAbsenceRepo) FindByID(ctx context.Context, id string) (*models.Absence, error) {
	for _, list := range m.byEmployee {
		for _, a := range list {
			if a.ID == id {
				return &a, nil
			}
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAbsenceRepo) Create(ctx context.Context, absence *models.Absence) error {
	absence.ID = "new-absence"
	m.created = absence
	return nil
}

func (m *mockAbsenceRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type mockEmployeeReader struct {
	employees map[string]models.Employee
}

func (m *mockEmployeeReader) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	if e, ok := m.employees[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func newAbsenceFixture(existing map[string][]models.Absence) (*AbsenceService, *mockAbsenceRepo) {
	repo := &mockAbsenceRepo{byEmployee: existing}
	employees := &mockEmployeeReader{employees: map[string]models.Employee{
		"e1": {ID: "e1", FirstName: "Encarni", LastName: "García"},
	}}
	svc := NewAbsenceService(repo, employees, nil, nil, nil, nil)
	svc.now = func() time.Time { return day(2026, 1, 1) }
	return svc, repo
}

func TestAbsenceServiceCreateAccepted(t *testing.T) {
	svc, repo := newAbsenceFixture(nil)

	created, err := svc.Create(context.Background(), CreateAbsenceRequest{
		EmployeeID: "e1",
		TypeCode:   "VAC",
		StartDate:  "2026-08-03",
		EndDate:    "2026-08-07",
		Part:       "FULL",
	})
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	assert.Equal(t, "new-absence", created.ID)
	assert.Equal(t, day(2026, 8, 3), created.StartDate)
}

func TestAbsenceServiceCreateRejected(t *testing.T) {
	existing := map[string][]models.Absence{
		"e1": {absence("VAC", day(2026, 8, 1), day(2026, 8, 10), models.PartFull)},
	}
	svc, repo := newAbsenceFixture(existing)

	_, err := svc.Create(context.Background(), CreateAbsenceRequest{
		EmployeeID: "e1",
		TypeCode:   "VAC",
		StartDate:  "2026-08-05",
		EndDate:    "2026-08-06",
		Part:       "FULL",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrAbsenceRejected.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "overlaps")
	assert.Nil(t, repo.created)
}

func TestAbsenceServiceCreateUnknownEmployee(t *testing.T) {
	svc, _ := newAbsenceFixture(nil)

	_, err := svc.Create(context.Background(), CreateAbsenceRequest{
		EmployeeID: "ghost",
		TypeCode:   "VAC",
		StartDate:  "2026-08-03",
		EndDate:    "2026-08-03",
		Part:       "FULL",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAbsenceServiceDelete(t *testing.T) {
	existing := map[string][]models.Absence{
		"e1": {{ID: "a1", EmployeeID: "e1", TypeCode: "VAC", StartDate: day(2026, 8, 1), EndDate: day(2026, 8, 1), Part: models.PartFull}},
	}
	svc, repo := newAbsenceFixture(existing)

	require.NoError(t, svc.Delete(context.Background(), "a1"))
	assert.Equal(t, []string{"a1"}, repo.deleted)

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
