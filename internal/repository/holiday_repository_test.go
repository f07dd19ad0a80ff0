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

func TestHolidayRepositoryFindByDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewHolidayRepository(db)

	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"date", "name", "country_code", "subdivision_code", "scope", "source", "fetched_at"}).
		AddRow(day, "Año Nuevo", "ES", "", "NATIONAL", "openholidays", time.Now()).
		AddRow(day, "Día local", "ES", "ES-AN", "REGIONAL", "openholidays", time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT date, name, country_code, subdivision_code, scope, source, fetched_at FROM holidays WHERE date = $1 AND country_code = $2")).
		WithArgs(day, "ES").
		WillReturnRows(rows)

	holidays, err := repo.FindByDate(context.Background(), day, "ES")
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	assert.Equal(t, models.ScopeNational, holidays[0].Scope)
	assert.Equal(t, "ES-AN", holidays[1].SubdivisionCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHolidayRepositoryHasSync(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewHolidayRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM holiday_syncs WHERE country_code = $1 AND subdivision_code = $2 AND year = $3 AND status = 'OK' LIMIT 1")).
		WithArgs("ES", "ES-AN", 2026).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	ok, err := repo.HasSync(context.Background(), "ES", "ES-AN", 2026)
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM holiday_syncs")).
		WithArgs("ES", "ES-AN", 2027).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	ok, err = repo.HasSync(context.Background(), "ES", "ES-AN", 2027)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHolidayRepositoryMarkSync(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewHolidayRepository(db)

	msg := "timeout"
	mock.ExpectExec("INSERT INTO holiday_syncs").
		WithArgs("ES", "ES-AN", 2026, sqlmock.AnyArg(), "ERROR", "timeout").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkSync(context.Background(), models.HolidaySync{
		CountryCode:     "ES",
		SubdivisionCode: "ES-AN",
		Year:            2026,
		Status:          models.SyncStatusError,
		ErrorMessage:    &msg,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
