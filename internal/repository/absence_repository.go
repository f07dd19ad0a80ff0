package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/farmacal/roster-api/internal/models"
	"github.com/farmacal/roster-api/pkg/dates"
)

// AbsenceRepository persists accepted absences. The policy engine itself
// never touches storage; services hand it the lists loaded here.
type AbsenceRepository struct {
	db *sqlx.DB
}

// NewAbsenceRepository creates a new absence repository.
func NewAbsenceRepository(db *sqlx.DB) *AbsenceRepository {
	return &AbsenceRepository{db: db}
}

const absenceColumns = "id, employee_id, type_code, start_date, end_date, part, notes, created_at"

// ListByEmployee returns every absence of one employee, oldest first.
func (r *AbsenceRepository) ListByEmployee(ctx context.Context, employeeID string) ([]models.Absence, error) {
	query := fmt.Sprintf("SELECT %s FROM absences WHERE employee_id = $1 ORDER BY start_date ASC, part ASC", absenceColumns)
	var absences []models.Absence
	if err := r.db.SelectContext(ctx, &absences, query, employeeID); err != nil {
		return nil, fmt.Errorf("list absences by employee: %w", err)
	}
	return absences, nil
}

// ListByTypeInRange returns absences of one type, across all employees,
// whose date range touches [from, to].
func (r *AbsenceRepository) ListByTypeInRange(ctx context.Context, typeCode string, from, to time.Time) ([]models.Absence, error) {
	query := fmt.Sprintf("SELECT %s FROM absences WHERE type_code = $1 AND start_date <= $2 AND end_date >= $3 ORDER BY start_date ASC", absenceColumns)
	var absences []models.Absence
	if err := r.db.SelectContext(ctx, &absences, query, typeCode, dates.Day(to), dates.Day(from)); err != nil {
		return nil, fmt.Errorf("list absences by type: %w", err)
	}
	return absences, nil
}

// List returns absences filtered by optional employee and year.
func (r *AbsenceRepository) List(ctx context.Context, employeeID string, year int) ([]models.Absence, error) {
	base := fmt.Sprintf("SELECT %s FROM absences WHERE 1=1", absenceColumns)
	var args []interface{}

	if employeeID != "" {
		args = append(args, employeeID)
		base += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	if year > 0 {
		yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
		args = append(args, yearEnd)
		base += fmt.Sprintf(" AND start_date <= $%d", len(args))
		args = append(args, yearStart)
		base += fmt.Sprintf(" AND end_date >= $%d", len(args))
	}
	base += " ORDER BY start_date ASC"

	var absences []models.Absence
	if err := r.db.SelectContext(ctx, &absences, base, args...); err != nil {
		return nil, fmt.Errorf("list absences: %w", err)
	}
	return absences, nil
}

// FindByID loads one absence.
func (r *AbsenceRepository) FindByID(ctx context.Context, id string) (*models.Absence, error) {
	query := fmt.Sprintf("SELECT %s FROM absences WHERE id = $1", absenceColumns)
	var absence models.Absence
	if err := r.db.GetContext(ctx, &absence, query, id); err != nil {
		return nil, err
	}
	return &absence, nil
}

// Create stores an accepted absence.
func (r *AbsenceRepository) Create(ctx context.Context, absence *models.Absence) error {
	if absence.ID == "" {
		absence.ID = uuid.NewString()
	}
	if absence.CreatedAt.IsZero() {
		absence.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO absences (id, employee_id, type_code, start_date, end_date, part, notes, created_at) VALUES (:id, :employee_id, :type_code, :start_date, :end_date, :part, :notes, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, absence); err != nil {
		return fmt.Errorf("create absence: %w", err)
	}
	return nil
}

// Delete removes an absence by id.
func (r *AbsenceRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM absences WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete absence: %w", err)
	}
	return nil
}
