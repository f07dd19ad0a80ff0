package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/farmacal/roster-api/internal/models"
	"github.com/farmacal/roster-api/pkg/dates"
	appErrors "github.com/farmacal/roster-api/pkg/errors"
	"github.com/farmacal/roster-api/pkg/openholidays"
)

type holidayRepository interface {
	FindByDate(ctx context.Context, day time.Time, countryCode string) ([]models.Holiday, error)
	FindRange(ctx context.Context, from, to time.Time, countryCode string) ([]models.Holiday, error)
	UpsertMany(ctx context.Context, holidays []models.Holiday) error
	HasSync(ctx context.Context, countryCode, subdivisionCode string, year int) (bool, error)
	MarkSync(ctx context.Context, mark models.HolidaySync) error
}

type holidayFetcher interface {
	PublicHolidays(ctx context.Context, countryCode, subdivisionCode, language string, validFrom, validTo time.Time) ([]openholidays.Holiday, error)
}

type syncRecorder interface {
	RecordHolidaySync(status string)
}

// HolidayService is the holiday oracle plus its remote sync. Lookups answer
// from the local cache only; a year that was never synced simply reports no
// holidays.
type HolidayService struct {
	repo            holidayRepository
	fetcher         holidayFetcher
	metrics         syncRecorder
	countryCode     string
	subdivisionCode string
	language        string
	matchLocal      bool
	logger          *zap.Logger
}

// NewHolidayService constructs the holiday service.
func NewHolidayService(repo holidayRepository, fetcher holidayFetcher, metrics syncRecorder, countryCode, subdivisionCode, language string, matchLocal bool, logger *zap.Logger) *HolidayService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HolidayService{
		repo:            repo,
		fetcher:         fetcher,
		metrics:         metrics,
		countryCode:     countryCode,
		subdivisionCode: subdivisionCode,
		language:        language,
		matchLocal:      matchLocal,
		logger:          logger,
	}
}

// appliesHere reports whether a cached entry binds the pharmacy's region.
// NATIONAL always applies; REGIONAL only on a subdivision match; LOCAL is
// inert unless explicitly enabled.
func (s *HolidayService) appliesHere(h models.Holiday) bool {
	switch h.Scope {
	case models.ScopeNational:
		return true
	case models.ScopeRegional:
		return h.SubdivisionCode == s.subdivisionCode
	case models.ScopeLocal:
		return s.matchLocal && h.SubdivisionCode == s.subdivisionCode
	default:
		return false
	}
}

// IsHoliday reports whether day is a public holiday for the configured
// country and region.
func (s *HolidayService) IsHoliday(ctx context.Context, day time.Time) (bool, error) {
	entries, err := s.repo.FindByDate(ctx, day, s.countryCode)
	if err != nil {
		return false, fmt.Errorf("holiday lookup: %w", err)
	}
	for _, h := range entries {
		if s.appliesHere(h) {
			return true, nil
		}
	}
	return false, nil
}

// HolidayName returns the display name for a holiday date, preferring the
// regional entry over the national one. Empty when day is not a holiday.
func (s *HolidayService) HolidayName(ctx context.Context, day time.Time) (string, error) {
	entries, err := s.repo.FindByDate(ctx, day, s.countryCode)
	if err != nil {
		return "", fmt.Errorf("holiday name lookup: %w", err)
	}
	name := ""
	for _, h := range entries {
		if !s.appliesHere(h) {
			continue
		}
		if h.Scope != models.ScopeNational {
			return h.Name, nil
		}
		if name == "" {
			name = h.Name
		}
	}
	return name, nil
}

// ListYear returns the cached holidays of one year that apply to the
// configured region, ordered by date.
func (s *HolidayService) ListYear(ctx context.Context, year int) ([]models.Holiday, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	entries, err := s.repo.FindRange(ctx, from, to, s.countryCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list holidays")
	}
	out := make([]models.Holiday, 0, len(entries))
	for _, h := range entries {
		if s.appliesHere(h) {
			out = append(out, h)
		}
	}
	return out, nil
}

// SyncYear fetches one year from the remote source and refreshes the cache,
// recording an OK or ERROR mark either way. The error is returned so callers
// can decide whether it matters; lookups keep answering from whatever is
// cached.
func (s *HolidayService) SyncYear(ctx context.Context, year int) error {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	fetched, err := s.fetcher.PublicHolidays(ctx, s.countryCode, s.subdivisionCode, s.language, from, to)
	if err != nil {
		s.markSync(ctx, year, models.SyncStatusError, err.Error())
		if s.metrics != nil {
			s.metrics.RecordHolidaySync("error")
		}
		s.logger.Warn("holiday sync failed", zap.Int("year", year), zap.Error(err))
		return fmt.Errorf("sync holidays for %d: %w", year, err)
	}

	now := time.Now().UTC()
	rows := make([]models.Holiday, 0, len(fetched))
	for _, h := range fetched {
		row := models.Holiday{
			Date:        dates.Day(h.Date),
			Name:        h.Name,
			CountryCode: s.countryCode,
			Scope:       models.ScopeNational,
			Source:      "openholidays",
			FetchedAt:   now,
		}
		if len(h.SubdivisionCodes) > 0 {
			row.Scope = models.ScopeRegional
			row.SubdivisionCode = h.SubdivisionCodes[0]
		}
		rows = append(rows, row)
	}

	if err := s.repo.UpsertMany(ctx, rows); err != nil {
		s.markSync(ctx, year, models.SyncStatusError, err.Error())
		if s.metrics != nil {
			s.metrics.RecordHolidaySync("error")
		}
		return fmt.Errorf("store holidays for %d: %w", year, err)
	}

	s.markSync(ctx, year, models.SyncStatusOK, "")
	if s.metrics != nil {
		s.metrics.RecordHolidaySync("ok")
	}
	s.logger.Info("holiday sync completed", zap.Int("year", year), zap.Int("entries", len(rows)))
	return nil
}

// EnsureYear syncs a year only when no successful mark exists yet.
func (s *HolidayService) EnsureYear(ctx context.Context, year int) error {
	synced, err := s.repo.HasSync(ctx, s.countryCode, s.subdivisionCode, year)
	if err != nil {
		return fmt.Errorf("check sync mark for %d: %w", year, err)
	}
	if synced {
		return nil
	}
	return s.SyncYear(ctx, year)
}

func (s *HolidayService) markSync(ctx context.Context, year int, status string, errMsg string) {
	mark := models.HolidaySync{
		CountryCode:     s.countryCode,
		SubdivisionCode: s.subdivisionCode,
		Year:            year,
		Status:          status,
	}
	if errMsg != "" {
		mark.ErrorMessage = &errMsg
	}
	if err := s.repo.MarkSync(ctx, mark); err != nil {
		s.logger.Warn("failed to record sync mark", zap.Int("year", year), zap.Error(err))
	}
}
