package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/farmacal/roster-api/internal/models"
	"github.com/farmacal/roster-api/pkg/dates"
)

// HolidayRepository caches public holidays and their sync marks.
type HolidayRepository struct {
	db *sqlx.DB
}

// NewHolidayRepository creates a new holiday repository.
func NewHolidayRepository(db *sqlx.DB) *HolidayRepository {
	return &HolidayRepository{db: db}
}

// FindByDate returns every cached holiday entry for a country on one day,
// all scopes included. Scope matching is the oracle's concern.
func (r *HolidayRepository) FindByDate(ctx context.Context, day time.Time, countryCode string) ([]models.Holiday, error) {
	const query = `SELECT date, name, country_code, subdivision_code, scope, source, fetched_at FROM holidays WHERE date = $1 AND country_code = $2`
	var holidays []models.Holiday
	if err := r.db.SelectContext(ctx, &holidays, query, dates.Day(day), countryCode); err != nil {
		return nil, fmt.Errorf("find holidays by date: %w", err)
	}
	return holidays, nil
}

// FindRange returns cached holidays inside [from, to] for a country, ordered
// by date.
func (r *HolidayRepository) FindRange(ctx context.Context, from, to time.Time, countryCode string) ([]models.Holiday, error) {
	const query = `SELECT date, name, country_code, subdivision_code, scope, source, fetched_at FROM holidays WHERE date BETWEEN $1 AND $2 AND country_code = $3 ORDER BY date ASC`
	var holidays []models.Holiday
	if err := r.db.SelectContext(ctx, &holidays, query, dates.Day(from), dates.Day(to), countryCode); err != nil {
		return nil, fmt.Errorf("find holidays in range: %w", err)
	}
	return holidays, nil
}

// UpsertMany stores fetched holiday rows.
func (r *HolidayRepository) UpsertMany(ctx context.Context, holidays []models.Holiday) error {
	if len(holidays) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin holiday upsert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO holidays (date, name, country_code, subdivision_code, scope, source, fetched_at) VALUES (:date, :name, :country_code, :subdivision_code, :scope, :source, :fetched_at) ON CONFLICT (date, name, country_code, subdivision_code, scope) DO UPDATE SET source = EXCLUDED.source, fetched_at = EXCLUDED.fetched_at`
	for i := range holidays {
		if _, err = sqlx.NamedExecContext(ctx, tx, query, &holidays[i]); err != nil {
			return fmt.Errorf("upsert holiday %s: %w", holidays[i].Date.Format(dates.DayFormat), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit holiday upsert: %w", err)
	}
	return nil
}

// HasSync reports whether a successful sync mark exists for the triple.
func (r *HolidayRepository) HasSync(ctx context.Context, countryCode, subdivisionCode string, year int) (bool, error) {
	const query = `SELECT 1 FROM holiday_syncs WHERE country_code = $1 AND subdivision_code = $2 AND year = $3 AND status = 'OK' LIMIT 1`
	var one int
	err := r.db.GetContext(ctx, &one, query, countryCode, subdivisionCode, year)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check holiday sync: %w", err)
	}
	return true, nil
}

// MarkSync records the outcome of a sync attempt.
func (r *HolidayRepository) MarkSync(ctx context.Context, mark models.HolidaySync) error {
	if mark.SyncedAt.IsZero() {
		mark.SyncedAt = time.Now().UTC()
	}
	const query = `INSERT INTO holiday_syncs (country_code, subdivision_code, year, synced_at, status, error_message) VALUES (:country_code, :subdivision_code, :year, :synced_at, :status, :error_message) ON CONFLICT (country_code, subdivision_code, year) DO UPDATE SET synced_at = EXCLUDED.synced_at, status = EXCLUDED.status, error_message = EXCLUDED.error_message`
	if _, err := r.db.NamedExecContext(ctx, query, &mark); err != nil {
		return fmt.Errorf("mark holiday sync: %w", err)
	}
	return nil
}
