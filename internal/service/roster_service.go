package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/farmacal/roster-api/internal/models"
	"github.com/farmacal/roster-api/pkg/dates"
	appErrors "github.com/farmacal/roster-api/pkg/errors"
	"github.com/farmacal/roster-api/pkg/export"
)

type rosterEmployeeRepository interface {
	List(ctx context.Context) ([]models.Employee, error)
	FindByID(ctx context.Context, id string) (*models.Employee, error)
}

type templateReader interface {
	LoadAll(ctx context.Context, employeeIDs []string) (map[string]models.WeekPattern, error)
}

type scheduleStore interface {
	LoadWeek(ctx context.Context, employeeIDs []string, weekStart time.Time) (models.WeekOverrides, error)
	UpsertWeek(ctx context.Context, employeeID string, weekStart time.Time, week [7]models.ShiftCode) error
}

type allowedShiftReader interface {
	LoadAll(ctx context.Context) (map[string]map[models.ShiftCode]struct{}, error)
}

// holidayOracle answers holiday questions for the pharmacy's configured
// country and region. A missing year in the cache simply answers false.
type holidayOracle interface {
	IsHoliday(ctx context.Context, day time.Time) (bool, error)
	HolidayName(ctx context.Context, day time.Time) (string, error)
}

// RosterCache caches resolved week boards. Optional; services tolerate a
// nil cache.
type RosterCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type cacheLookupRecorder interface {
	RecordCacheLookup(result string)
}

// HolidayMark is the per-day holiday verdict fed into week resolution.
type HolidayMark struct {
	Holiday bool
	Name    string
}

// SaveWeekRequest carries one employee's full 7-day vector for the week
// starting at WeekStart (normalized to Monday).
type SaveWeekRequest struct {
	EmployeeID string    `json:"employee_id" validate:"required"`
	WeekStart  string    `json:"week_start" validate:"required"`
	Shifts     [7]string `json:"shifts"`
}

// RosterService resolves and edits the weekly shift board.
type RosterService struct {
	employees    rosterEmployeeRepository
	templates    templateReader
	schedule     scheduleStore
	allowed      allowedShiftReader
	holidays     holidayOracle
	cache        RosterCache
	cacheTTL     time.Duration
	metrics      cacheLookupRecorder
	trackedShift models.ShiftCode
	dailyTarget  int
	logger       *zap.Logger
}

// NewRosterService constructs the roster service. cache and metrics may be
// nil when Redis or instrumentation is disabled.
func NewRosterService(employees rosterEmployeeRepository, templates templateReader, schedule scheduleStore, allowed allowedShiftReader, holidays holidayOracle, cache RosterCache, cacheTTL time.Duration, metrics cacheLookupRecorder, trackedShift models.ShiftCode, dailyTarget int, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !trackedShift.Valid() {
		trackedShift = models.ShiftAfternoon
	}
	if dailyTarget <= 0 {
		dailyTarget = 4
	}
	return &RosterService{
		employees:    employees,
		templates:    templates,
		schedule:     schedule,
		allowed:      allowed,
		holidays:     holidays,
		cache:        cache,
		cacheTTL:     cacheTTL,
		metrics:      metrics,
		trackedShift: trackedShift,
		dailyTarget:  dailyTarget,
		logger:       logger,
	}
}

func (s *RosterService) recordCacheLookup(result string) {
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(result)
	}
}

// ResolveWeek layers holiday, explicit override and template into the final
// 7-day vector. A holiday day is forced to rest and locked; an override with
// a non-empty code beats the template; codes outside the catalog collapse to
// rest. Pure over its inputs.
func ResolveWeek(days [7]time.Time, pattern models.WeekPattern, overrides [7]models.ShiftCode, holidays [7]HolidayMark) [7]models.ResolvedDay {
	var out [7]models.ResolvedDay
	for i := 0; i < 7; i++ {
		day := models.ResolvedDay{Date: days[i], Editable: true}
		switch {
		case holidays[i].Holiday:
			day.Shift = models.ShiftRest
			day.Holiday = true
			day.HolidayName = holidays[i].Name
			day.Editable = false
		case strings.TrimSpace(string(overrides[i])) != "":
			day.Shift = models.NormalizeShift(string(overrides[i]))
		default:
			day.Shift = models.NormalizeShift(string(pattern[i]))
		}
		out[i] = day
	}
	return out
}

// GetWeekBoard returns the resolved board for the week containing anchor.
func (s *RosterService) GetWeekBoard(ctx context.Context, anchor time.Time) (*models.WeekBoard, error) {
	weekStart := dates.WeekStart(anchor)
	cacheKey := fmt.Sprintf("week:%s", weekStart.Format(dates.DayFormat))

	if s.cache != nil {
		var cached models.WeekBoard
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.recordCacheLookup("hit")
			return &cached, nil
		}
		s.recordCacheLookup("miss")
	}

	board, err := s.buildWeekBoard(ctx, weekStart)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, board, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache week board", zap.Error(err))
		}
	}
	return board, nil
}

func (s *RosterService) buildWeekBoard(ctx context.Context, weekStart time.Time) (*models.WeekBoard, error) {
	employees, err := s.employees.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}

	ids := make([]string, 0, len(employees))
	for _, emp := range employees {
		ids = append(ids, emp.ID)
	}

	patterns, err := s.templates.LoadAll(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly templates")
	}
	overrides, err := s.schedule.LoadWeek(ctx, ids, weekStart)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load week overrides")
	}

	days := dates.WeekDays(weekStart)
	marks, err := s.weekHolidays(ctx, days)
	if err != nil {
		return nil, err
	}

	board := &models.WeekBoard{WeekStart: weekStart, Days: days}
	for _, emp := range employees {
		pattern, ok := patterns[emp.ID]
		if !ok {
			pattern = models.DefaultWeekPattern()
		}
		row := models.WeekRow{
			EmployeeID:   emp.ID,
			EmployeeName: emp.FullName(),
			Days:         ResolveWeek(days, pattern, overrides[emp.ID], marks),
		}
		board.Rows = append(board.Rows, row)
	}
	return board, nil
}

// weekHolidays consults the oracle once per day. Oracle failures degrade to
// "not a holiday" so a stale cache never blanks the board.
func (s *RosterService) weekHolidays(ctx context.Context, days [7]time.Time) ([7]HolidayMark, error) {
	var marks [7]HolidayMark
	for i, day := range days {
		isHoliday, err := s.holidays.IsHoliday(ctx, day)
		if err != nil {
			s.logger.Warn("holiday lookup failed", zap.String("date", day.Format(dates.DayFormat)), zap.Error(err))
			continue
		}
		if !isHoliday {
			continue
		}
		name, err := s.holidays.HolidayName(ctx, day)
		if err != nil {
			s.logger.Warn("holiday name lookup failed", zap.String("date", day.Format(dates.DayFormat)), zap.Error(err))
		}
		marks[i] = HolidayMark{Holiday: true, Name: name}
	}
	return marks, nil
}

// SaveWeek stores one employee's explicit 7-day vector. Disallowed codes are
// rejected naming the employee; holiday-locked days accept only rest.
func (s *RosterService) SaveWeek(ctx context.Context, req SaveWeekRequest) error {
	weekStart, err := dates.ParseDay(req.WeekStart)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid week_start %q, expected YYYY-MM-DD", req.WeekStart))
	}
	weekStart = dates.WeekStart(weekStart)

	emp, err := s.employees.FindByID(ctx, req.EmployeeID)
	if err != nil {
		return appErrors.Clone(appErrors.ErrNotFound, "employee not found")
	}

	var week [7]models.ShiftCode
	for i, raw := range req.Shifts {
		code := models.ShiftCode(strings.ToUpper(strings.TrimSpace(raw)))
		if code == "" {
			code = models.ShiftRest
		}
		if !code.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown shift code %q on day %d", raw, i+1))
		}
		week[i] = code
	}

	whitelist, err := s.allowed.LoadAll(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load allowed shifts")
	}
	allowedSet := whitelist[emp.ID]

	days := dates.WeekDays(weekStart)
	marks, err := s.weekHolidays(ctx, days)
	if err != nil {
		return err
	}

	for i := 0; i < 7; i++ {
		if marks[i].Holiday {
			if week[i] != models.ShiftRest {
				return appErrors.Clone(appErrors.ErrHolidayLocked, fmt.Sprintf("%s is a public holiday (%s); the day is locked to rest", days[i].Format(dates.DayFormat), marks[i].Name))
			}
			continue
		}
		// An employee without whitelist rows may take any catalog code.
		if allowedSet != nil && week[i] != models.ShiftRest {
			if _, ok := allowedSet[week[i]]; !ok {
				return appErrors.Clone(appErrors.ErrShiftNotAllowed, fmt.Sprintf("shift %s is not allowed for %s", week[i], emp.FullName()))
			}
		}
	}

	if err := s.schedule.UpsertWeek(ctx, emp.ID, weekStart, week); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save week schedule")
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("week:%s", weekStart.Format(dates.DayFormat))); err != nil {
			s.logger.Warn("failed to invalidate week cache", zap.Error(err))
		}
	}
	s.logger.Info("week schedule saved",
		zap.String("employee_id", emp.ID),
		zap.String("week_start", weekStart.Format(dates.DayFormat)))
	return nil
}

// Coverage counts, per day of the resolved week, the employees holding the
// tracked shift. Display-only; it never blocks an edit.
func (s *RosterService) Coverage(ctx context.Context, anchor time.Time) (*models.CoverageReport, error) {
	board, err := s.GetWeekBoard(ctx, anchor)
	if err != nil {
		return nil, err
	}
	report := CoverageFromBoard(board, s.trackedShift, s.dailyTarget)
	return report, nil
}

// CoverageFromBoard aggregates an already-resolved board. Pure.
func CoverageFromBoard(board *models.WeekBoard, tracked models.ShiftCode, target int) *models.CoverageReport {
	report := &models.CoverageReport{WeekStart: board.WeekStart, TrackedShift: tracked}
	for i := 0; i < 7; i++ {
		count := 0
		for _, row := range board.Rows {
			if row.Days[i].Shift == tracked {
				count++
			}
		}
		report.Days[i] = models.CoverageDay{Date: board.Days[i], Count: count, Target: target}
	}
	return report
}

var weekdayLabels = [7]string{"Lun", "Mar", "Mié", "Jue", "Vie", "Sáb", "Dom"}

// WeekDataset flattens a resolved board into the tabular form the exporters
// consume.
func (s *RosterService) WeekDataset(ctx context.Context, anchor time.Time) (export.Dataset, error) {
	board, err := s.GetWeekBoard(ctx, anchor)
	if err != nil {
		return export.Dataset{}, err
	}

	headers := make([]string, 0, 8)
	headers = append(headers, "Empleado")
	for i, day := range board.Days {
		headers = append(headers, fmt.Sprintf("%s %s", weekdayLabels[i], day.Format("02/01")))
	}

	rows := make([]map[string]string, 0, len(board.Rows))
	for _, row := range board.Rows {
		cells := map[string]string{"Empleado": row.EmployeeName}
		for i, day := range row.Days {
			label := string(day.Shift)
			if day.Holiday {
				label = fmt.Sprintf("%s (festivo)", models.ShiftRest)
			}
			cells[headers[i+1]] = label
		}
		rows = append(rows, cells)
	}
	return export.Dataset{Headers: headers, Rows: rows}, nil
}
