package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmacal/roster-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func employeeRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "first_name", "last_name", "second_last_name", "dni", "email", "role", "is_owner", "created_at", "updated_at"})
}

func TestEmployeeRepositoryListOwnerFirst(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	now := time.Now()
	rows := employeeRows().
		AddRow("e0", "Juan Jose", "", "", "OWNER", "", "MANAGER", true, now, now).
		AddRow("e1", "Encarni", "García", "", "11111111A", "e@farmacia.es", "STAFF", false, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, first_name, last_name, second_last_name, dni, email, role, is_owner, created_at, updated_at FROM employees ORDER BY is_owner DESC, last_name ASC, second_last_name ASC, first_name ASC")).
		WillReturnRows(rows)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].IsOwner)
	assert.Equal(t, "Encarni García", list[1].FullName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryExistsByDNI(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM employees WHERE UPPER(dni) = UPPER($1) LIMIT 1")).
		WithArgs("11111111A").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByDNI(context.Background(), "11111111A", "")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM employees WHERE UPPER(dni) = UPPER($1) AND id <> $2 LIMIT 1")).
		WithArgs("11111111A", "e1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	exists, err = repo.ExistsByDNI(context.Background(), "11111111A", "e1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryCreateAndDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectExec("INSERT INTO employees").
		WithArgs(sqlmock.AnyArg(), "María", "López", "", "22222222B", "m@farmacia.es", "STAFF", false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	emp := &models.Employee{FirstName: "María", LastName: "López", DNI: "22222222B", Email: "m@farmacia.es", Role: models.RoleStaff}
	require.NoError(t, repo.Create(context.Background(), emp))
	assert.NotEmpty(t, emp.ID)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM employees WHERE id = $1")).
		WithArgs(emp.ID).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Delete(context.Background(), emp.ID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryCountReferences(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT (SELECT COUNT(*) FROM absences WHERE employee_id = $1) + (SELECT COUNT(*) FROM schedule_entries WHERE employee_id = $1)")).
		WithArgs("e1").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(3))

	total, err := repo.CountReferences(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
