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

func TestScheduleRepositoryLoadWeek(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	monday := time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"employee_id", "day", "shift_code"}).
		AddRow("e1", monday, "M1").
		AddRow("e1", monday.AddDate(0, 0, 3), "T")

	// sqlmock has no bind type, so Rebind leaves the ? placeholders as-is.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT employee_id, day, shift_code FROM schedule_entries WHERE day BETWEEN ? AND ? AND employee_id IN (?) ORDER BY employee_id, day")).
		WithArgs(monday, monday.AddDate(0, 0, 6), "e1").
		WillReturnRows(rows)

	overrides, err := repo.LoadWeek(context.Background(), []string{"e1"}, monday)
	require.NoError(t, err)
	week := overrides["e1"]
	assert.Equal(t, models.ShiftMorning1, week[0])
	assert.Equal(t, models.ShiftAfternoon, week[3])
	assert.Empty(t, week[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryLoadWeekEmptyIDs(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	overrides, err := repo.LoadWeek(context.Background(), nil, time.Now())
	require.NoError(t, err)
	assert.Empty(t, overrides)
}

func TestScheduleRepositoryUpsertWeek(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	monday := time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC)
	week := [7]models.ShiftCode{"m1", "T", "", "G", "X9", "L", "L"}
	normalized := []string{"M1", "T", "L", "G", "L", "L", "L"}

	mock.ExpectBegin()
	for i, code := range normalized {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_entries (employee_id, day, shift_code) VALUES ($1, $2, $3) ON CONFLICT (employee_id, day) DO UPDATE SET shift_code = EXCLUDED.shift_code")).
			WithArgs("e1", monday.AddDate(0, 0, i), code).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, repo.UpsertWeek(context.Background(), "e1", monday, week))
	assert.NoError(t, mock.ExpectationsWereMet())
}
