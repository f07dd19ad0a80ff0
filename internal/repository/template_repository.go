package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/farmacal/roster-api/internal/models"
)

// TemplateRepository persists per-employee weekly templates.
type TemplateRepository struct {
	db *sqlx.DB
}

// NewTemplateRepository creates a new template repository.
func NewTemplateRepository(db *sqlx.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// LoadAll returns the weekly pattern for every requested employee. Employees
// without stored rows default to the all-rest vector; stored codes outside
// the catalog normalize to rest.
func (r *TemplateRepository) LoadAll(ctx context.Context, employeeIDs []string) (map[string]models.WeekPattern, error) {
	out := make(map[string]models.WeekPattern, len(employeeIDs))
	for _, id := range employeeIDs {
		out[id] = models.DefaultWeekPattern()
	}
	if len(employeeIDs) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`SELECT employee_id, weekday, shift_code FROM weekly_templates WHERE employee_id IN (?) ORDER BY employee_id, weekday`, employeeIDs)
	if err != nil {
		return nil, fmt.Errorf("build template query: %w", err)
	}
	query = r.db.Rebind(query)

	var rows []models.TemplateRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("load weekly templates: %w", err)
	}

	for _, row := range rows {
		if row.Weekday < 0 || row.Weekday > 6 {
			continue
		}
		pattern, ok := out[row.EmployeeID]
		if !ok {
			pattern = models.DefaultWeekPattern()
		}
		pattern[row.Weekday] = models.NormalizeShift(string(row.Shift))
		out[row.EmployeeID] = pattern
	}

	return out, nil
}

// UpsertWeek replaces the full 7-day pattern for one employee.
func (r *TemplateRepository) UpsertWeek(ctx context.Context, employeeID string, pattern models.WeekPattern) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin template upsert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO weekly_templates (employee_id, weekday, shift_code) VALUES ($1, $2, $3) ON CONFLICT (employee_id, weekday) DO UPDATE SET shift_code = EXCLUDED.shift_code`
	for weekday := 0; weekday < 7; weekday++ {
		code := models.NormalizeShift(string(pattern[weekday]))
		if _, err = tx.ExecContext(ctx, query, employeeID, weekday, strings.ToUpper(string(code))); err != nil {
			return fmt.Errorf("upsert template weekday %d: %w", weekday, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit template upsert: %w", err)
	}
	return nil
}
