package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/farmacal/roster-api/internal/models"
	appErrors "github.com/farmacal/roster-api/pkg/errors"
)

type templateRepository interface {
	LoadAll(ctx context.Context, employeeIDs []string) (map[string]models.WeekPattern, error)
	UpsertWeek(ctx context.Context, employeeID string, pattern models.WeekPattern) error
}

type allowedShiftRepository interface {
	LoadAll(ctx context.Context) (map[string]map[models.ShiftCode]struct{}, error)
	Replace(ctx context.Context, employeeID string, allowed []models.ShiftCode) error
}

// TemplateService manages the recurring weekly patterns and the per-employee
// shift whitelist. Both are edit-boundary concerns: the resolver trusts what
// is stored, so all code validation happens here.
type TemplateService struct {
	templates templateRepository
	allowed   allowedShiftRepository
	employees absenceEmployeeReader
	cache     RosterCache
	logger    *zap.Logger
}

// NewTemplateService constructs the template service.
func NewTemplateService(templates templateRepository, allowed allowedShiftRepository, employees absenceEmployeeReader, cache RosterCache, logger *zap.Logger) *TemplateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TemplateService{
		templates: templates,
		allowed:   allowed,
		employees: employees,
		cache:     cache,
		logger:    logger,
	}
}

// GetTemplate returns one employee's weekly pattern, defaulting to all-rest.
func (s *TemplateService) GetTemplate(ctx context.Context, employeeID string) (models.WeekPattern, error) {
	if _, err := s.employees.FindByID(ctx, employeeID); err != nil {
		return models.WeekPattern{}, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
	}
	patterns, err := s.templates.LoadAll(ctx, []string{employeeID})
	if err != nil {
		return models.WeekPattern{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load template")
	}
	pattern, ok := patterns[employeeID]
	if !ok {
		pattern = models.DefaultWeekPattern()
	}
	return pattern, nil
}

// PutTemplate replaces one employee's weekly pattern. Codes must come from
// the catalog; the whitelist is enforced as well since this is an editor
// path.
func (s *TemplateService) PutTemplate(ctx context.Context, employeeID string, raw [7]string) (models.WeekPattern, error) {
	emp, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		return models.WeekPattern{}, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
	}

	var pattern models.WeekPattern
	for i, r := range raw {
		code := models.ShiftCode(strings.ToUpper(strings.TrimSpace(r)))
		if code == "" {
			code = models.ShiftRest
		}
		if !code.Valid() {
			return models.WeekPattern{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown shift code %q on weekday %d", r, i))
		}
		pattern[i] = code
	}

	whitelist, err := s.allowed.LoadAll(ctx)
	if err != nil {
		return models.WeekPattern{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load allowed shifts")
	}
	if set := whitelist[employeeID]; set != nil {
		for _, code := range pattern {
			if code == models.ShiftRest {
				continue
			}
			if _, ok := set[code]; !ok {
				return models.WeekPattern{}, appErrors.Clone(appErrors.ErrShiftNotAllowed, fmt.Sprintf("shift %s is not allowed for %s", code, emp.FullName()))
			}
		}
	}

	if err := s.templates.UpsertWeek(ctx, employeeID, pattern); err != nil {
		return models.WeekPattern{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save template")
	}
	s.invalidateBoards(ctx)
	s.logger.Info("weekly template saved", zap.String("employee_id", employeeID))
	return pattern, nil
}

// GetAllowedShifts returns the whitelist for an employee. An employee
// without stored rows gets the full catalog.
func (s *TemplateService) GetAllowedShifts(ctx context.Context, employeeID string) ([]models.ShiftCode, error) {
	if _, err := s.employees.FindByID(ctx, employeeID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
	}
	whitelist, err := s.allowed.LoadAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load allowed shifts")
	}
	set, ok := whitelist[employeeID]
	if !ok {
		return models.AllShiftCodes(), nil
	}
	out := make([]models.ShiftCode, 0, len(set))
	for _, code := range models.AllShiftCodes() {
		if _, allowed := set[code]; allowed {
			out = append(out, code)
		}
	}
	return out, nil
}

// PutAllowedShifts replaces the whitelist. An empty list clears the stored
// rows, restoring the full-catalog default.
func (s *TemplateService) PutAllowedShifts(ctx context.Context, employeeID string, raw []string) ([]models.ShiftCode, error) {
	if _, err := s.employees.FindByID(ctx, employeeID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
	}

	seen := make(map[models.ShiftCode]struct{}, len(raw))
	codes := make([]models.ShiftCode, 0, len(raw))
	for _, r := range raw {
		code := models.ShiftCode(strings.ToUpper(strings.TrimSpace(r)))
		if !code.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown shift code %q", r))
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}

	if err := s.allowed.Replace(ctx, employeeID, codes); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save allowed shifts")
	}
	s.logger.Info("allowed shifts saved", zap.String("employee_id", employeeID), zap.Int("count", len(codes)))
	return codes, nil
}

// Catalog exposes the fixed shift catalog for pickers.
func (s *TemplateService) Catalog() []models.ShiftDef {
	return models.ShiftCatalog()
}

func (s *TemplateService) invalidateBoards(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "week:*"); err != nil {
		s.logger.Warn("failed to invalidate board cache", zap.Error(err))
	}
}
