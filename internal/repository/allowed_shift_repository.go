package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"

	"github.com/farmacal/roster-api/internal/models"
)

// AllowedShiftRepository persists the per-employee shift whitelist. An
// employee without rows is allowed the full catalog.
type AllowedShiftRepository struct {
	db *sqlx.DB
}

// NewAllowedShiftRepository creates a new allowed-shift repository.
func NewAllowedShiftRepository(db *sqlx.DB) *AllowedShiftRepository {
	return &AllowedShiftRepository{db: db}
}

type allowedShiftRow struct {
	EmployeeID string `db:"employee_id"`
	Shift      string `db:"shift_code"`
}

// LoadAll returns the stored whitelist keyed by employee id. Absent
// employees are simply not in the map.
func (r *AllowedShiftRepository) LoadAll(ctx context.Context) (map[string]map[models.ShiftCode]struct{}, error) {
	var rows []allowedShiftRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT employee_id, shift_code FROM allowed_shifts ORDER BY employee_id, shift_code`); err != nil {
		return nil, fmt.Errorf("load allowed shifts: %w", err)
	}

	out := make(map[string]map[models.ShiftCode]struct{})
	for _, row := range rows {
		set, ok := out[row.EmployeeID]
		if !ok {
			set = make(map[models.ShiftCode]struct{})
			out[row.EmployeeID] = set
		}
		set[models.ShiftCode(row.Shift)] = struct{}{}
	}
	return out, nil
}

// Replace swaps the whitelist for one employee.
func (r *AllowedShiftRepository) Replace(ctx context.Context, employeeID string, allowed []models.ShiftCode) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin allowed-shift replace: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM allowed_shifts WHERE employee_id = $1`, employeeID); err != nil {
		return fmt.Errorf("clear allowed shifts: %w", err)
	}

	codes := make([]string, 0, len(allowed))
	for _, code := range allowed {
		codes = append(codes, string(code))
	}
	sort.Strings(codes)

	for _, code := range codes {
		if _, err = tx.ExecContext(ctx, `INSERT INTO allowed_shifts (employee_id, shift_code) VALUES ($1, $2)`, employeeID, code); err != nil {
			return fmt.Errorf("insert allowed shift %s: %w", code, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit allowed-shift replace: %w", err)
	}
	return nil
}
