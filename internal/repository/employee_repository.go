package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/farmacal/roster-api/internal/models"
)

// EmployeeRepository provides persistence for employees.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository creates a new employee repository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeColumns = "id, first_name, last_name, second_last_name, dni, email, role, is_owner, created_at, updated_at"

// List returns all employees, owner first, then by last names.
func (r *EmployeeRepository) List(ctx context.Context) ([]models.Employee, error) {
	query := fmt.Sprintf("SELECT %s FROM employees ORDER BY is_owner DESC, last_name ASC, second_last_name ASC, first_name ASC", employeeColumns)
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}

// FindByID loads an employee by id.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	query := fmt.Sprintf("SELECT %s FROM employees WHERE id = $1", employeeColumns)
	var emp models.Employee
	if err := r.db.GetContext(ctx, &emp, query, id); err != nil {
		return nil, err
	}
	return &emp, nil
}

// FindOwner returns the owner row when present.
func (r *EmployeeRepository) FindOwner(ctx context.Context) (*models.Employee, error) {
	query := fmt.Sprintf("SELECT %s FROM employees WHERE is_owner = TRUE LIMIT 1", employeeColumns)
	var emp models.Employee
	if err := r.db.GetContext(ctx, &emp, query); err != nil {
		return nil, err
	}
	return &emp, nil
}

// ExistsByDNI checks DNI uniqueness, optionally excluding one id.
func (r *EmployeeRepository) ExistsByDNI(ctx context.Context, dni, excludeID string) (bool, error) {
	query := "SELECT 1 FROM employees WHERE UPPER(dni) = UPPER($1)"
	args := []interface{}{strings.TrimSpace(dni)}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	query += " LIMIT 1"

	var one int
	err := r.db.GetContext(ctx, &one, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check employee dni: %w", err)
	}
	return true, nil
}

// Create stores a new employee record.
func (r *EmployeeRepository) Create(ctx context.Context, emp *models.Employee) error {
	if emp.ID == "" {
		emp.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if emp.CreatedAt.IsZero() {
		emp.CreatedAt = now
	}
	emp.UpdatedAt = now

	const query = `INSERT INTO employees (id, first_name, last_name, second_last_name, dni, email, role, is_owner, created_at, updated_at) VALUES (:id, :first_name, :last_name, :second_last_name, :dni, :email, :role, :is_owner, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, emp); err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

// Update modifies an employee record. The is_owner flag is never updated
// here; ownership is fixed at creation.
func (r *EmployeeRepository) Update(ctx context.Context, emp *models.Employee) error {
	emp.UpdatedAt = time.Now().UTC()
	const query = `UPDATE employees SET first_name = :first_name, last_name = :last_name, second_last_name = :second_last_name, dni = :dni, email = :email, role = :role, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, emp); err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	return nil
}

// Delete removes an employee by id.
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	return nil
}

// CountReferences reports how many absence and schedule rows still point at
// the employee. Deletion is blocked while any remain.
func (r *EmployeeRepository) CountReferences(ctx context.Context, id string) (int, error) {
	const query = `SELECT (SELECT COUNT(*) FROM absences WHERE employee_id = $1) + (SELECT COUNT(*) FROM schedule_entries WHERE employee_id = $1)`
	var total int
	if err := r.db.GetContext(ctx, &total, query, id); err != nil {
		return 0, fmt.Errorf("count employee references: %w", err)
	}
	return total, nil
}
