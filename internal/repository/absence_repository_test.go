package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmacal/roster-api/internal/models"
)

func absenceRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "employee_id", "type_code", "start_date", "end_date", "part", "notes", "created_at"})
}

func TestAbsenceRepositoryListByEmployee(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAbsenceRepository(db)

	start := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	rows := absenceRows().
		AddRow("a1", "e1", "VAC", start, start.AddDate(0, 0, 4), "FULL", "", time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, employee_id, type_code, start_date, end_date, part, notes, created_at FROM absences WHERE employee_id = $1 ORDER BY start_date ASC, part ASC")).
		WithArgs("e1").
		WillReturnRows(rows)

	absences, err := repo.ListByEmployee(context.Background(), "e1")
	require.NoError(t, err)
	require.Len(t, absences, 1)
	assert.Equal(t, "VAC", absences[0].TypeCode)
	assert.Equal(t, models.PartFull, absences[0].Part)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAbsenceRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAbsenceRepository(db)

	yearStart := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, employee_id, type_code, start_date, end_date, part, notes, created_at FROM absences WHERE 1=1 AND employee_id = $1 AND start_date <= $2 AND end_date >= $3 ORDER BY start_date ASC")).
		WithArgs("e1", yearEnd, yearStart).
		WillReturnRows(absenceRows())

	absences, err := repo.List(context.Background(), "e1", 2026)
	require.NoError(t, err)
	assert.Empty(t, absences)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAbsenceRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAbsenceRepository(db)

	mock.ExpectExec("INSERT INTO absences").
		WithArgs(sqlmock.AnyArg(), "e1", "AP", sqlmock.AnyArg(), sqlmock.AnyArg(), "AM", "cita médica", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	absence := &models.Absence{
		EmployeeID: "e1",
		TypeCode:   "AP",
		StartDate:  day,
		EndDate:    day,
		Part:       models.PartAM,
		Notes:      "cita médica",
	}
	require.NoError(t, repo.Create(context.Background(), absence))
	assert.NotEmpty(t, absence.ID)
	assert.False(t, absence.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
