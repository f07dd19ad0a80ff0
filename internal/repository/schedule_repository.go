package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/farmacal/roster-api/internal/models"
	"github.com/farmacal/roster-api/pkg/dates"
)

// ScheduleRepository persists explicit per-date shift overrides.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// LoadWeek returns the stored overrides for the given employees inside the
// week starting at weekStart. Missing cells stay empty, meaning "defer to
// the template".
func (r *ScheduleRepository) LoadWeek(ctx context.Context, employeeIDs []string, weekStart time.Time) (models.WeekOverrides, error) {
	out := make(models.WeekOverrides, len(employeeIDs))
	if len(employeeIDs) == 0 {
		return out, nil
	}

	start := dates.Day(weekStart)
	end := start.AddDate(0, 0, 6)

	query, args, err := sqlx.In(`SELECT employee_id, day, shift_code FROM schedule_entries WHERE day BETWEEN ? AND ? AND employee_id IN (?) ORDER BY employee_id, day`, start, end, employeeIDs)
	if err != nil {
		return nil, fmt.Errorf("build week query: %w", err)
	}
	query = r.db.Rebind(query)

	var rows []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("load week schedule: %w", err)
	}

	for _, row := range rows {
		idx := dates.DaysInclusive(start, row.Day) - 1
		if idx < 0 || idx > 6 {
			continue
		}
		week := out[row.EmployeeID]
		week[idx] = row.Shift
		out[row.EmployeeID] = week
	}

	return out, nil
}

// UpsertWeek stores the full 7-day vector for one employee starting at
// weekStart. Codes are normalized before writing.
func (r *ScheduleRepository) UpsertWeek(ctx context.Context, employeeID string, weekStart time.Time, week [7]models.ShiftCode) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin week upsert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	start := dates.Day(weekStart)
	const query = `INSERT INTO schedule_entries (employee_id, day, shift_code) VALUES ($1, $2, $3) ON CONFLICT (employee_id, day) DO UPDATE SET shift_code = EXCLUDED.shift_code`
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		code := models.NormalizeShift(string(week[i]))
		if _, err = tx.ExecContext(ctx, query, employeeID, day, string(code)); err != nil {
			return fmt.Errorf("upsert schedule day %s: %w", day.Format(dates.DayFormat), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit week upsert: %w", err)
	}
	return nil
}
