package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/farmacal/roster-api/internal/models"
	"github.com/farmacal/roster-api/pkg/dates"
	appErrors "github.com/farmacal/roster-api/pkg/errors"
)

type absenceRepository interface {
	ListByEmployee(ctx context.Context, employeeID string) ([]models.Absence, error)
	ListByTypeInRange(ctx context.Context, typeCode string, from, to time.Time) ([]models.Absence, error)
	List(ctx context.Context, employeeID string, year int) ([]models.Absence, error)
	FindByID(ctx context.Context, id string) (*models.Absence, error)
	Create(ctx context.Context, absence *models.Absence) error
	Delete(ctx context.Context, id string) error
}

type absenceEmployeeReader interface {
	FindByID(ctx context.Context, id string) (*models.Employee, error)
}

type rejectionRecorder interface {
	RecordAbsenceRejection(rule string)
}

// Rejection explains why the policy engine refused a candidate absence. Rule
// is a stable machine tag; Reason is the message shown to the requester.
type Rejection struct {
	Rule   string `json:"rule"`
	Reason string `json:"reason"`
}

// CreateAbsenceRequest holds payload for requesting an absence.
type CreateAbsenceRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	TypeCode   string `json:"type_code" validate:"required"`
	StartDate  string `json:"start_date" validate:"required"`
	EndDate    string `json:"end_date" validate:"required"`
	Part       string `json:"part" validate:"required,oneof=FULL AM PM"`
	Notes      string `json:"notes"`

	// ForceMajeure waives only the advance-notice rule, nothing else.
	ForceMajeure bool `json:"force_majeure"`
}

// AbsenceService validates and records time-off requests against the
// convenio rulebook.
type AbsenceService struct {
	repo      absenceRepository
	employees absenceEmployeeReader
	policies  map[string]models.AbsenceTypePolicy
	metrics   rejectionRecorder
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAbsenceService constructs the absence service.
func NewAbsenceService(repo absenceRepository, employees absenceEmployeeReader, policies map[string]models.AbsenceTypePolicy, metrics rejectionRecorder, validate *validator.Validate, logger *zap.Logger) *AbsenceService {
	if policies == nil {
		policies = models.DefaultAbsencePolicies(0)
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AbsenceService{
		repo:      repo,
		employees: employees,
		policies:  policies,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Types returns the rulebook ordered by type code, for pickers.
func (s *AbsenceService) Types() []models.AbsenceTypePolicy {
	out := make([]models.AbsenceTypePolicy, 0, len(s.policies))
	for _, policy := range s.policies {
		out = append(out, policy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// List returns stored absences filtered by optional employee and year.
func (s *AbsenceService) List(ctx context.Context, employeeID string, year int) ([]models.Absence, error) {
	absences, err := s.repo.List(ctx, employeeID, year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list absences")
	}
	return absences, nil
}

// Create validates a candidate absence and stores it when accepted. A policy
// rejection comes back as ABSENCE_REJECTED carrying the human-readable
// reason; it is never logged as an error.
func (s *AbsenceService) Create(ctx context.Context, req CreateAbsenceRequest) (*models.Absence, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid absence payload")
	}

	start, err := dates.ParseDay(req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid start_date %q, expected YYYY-MM-DD", req.StartDate))
	}
	end, err := dates.ParseDay(req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid end_date %q, expected YYYY-MM-DD", req.EndDate))
	}

	policy, ok := s.policies[req.TypeCode]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown absence type %q", req.TypeCode))
	}

	if _, err := s.employees.FindByID(ctx, req.EmployeeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}

	candidate := models.Absence{
		EmployeeID: req.EmployeeID,
		TypeCode:   req.TypeCode,
		StartDate:  start,
		EndDate:    end,
		Part:       models.DayPart(req.Part),
		Notes:      req.Notes,
	}

	existing, err := s.repo.ListByEmployee(ctx, req.EmployeeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing absences")
	}

	var othersSameType []models.Absence
	if policy.Exclusive {
		sameType, err := s.repo.ListByTypeInRange(ctx, req.TypeCode, start, end)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shared-type absences")
		}
		for _, a := range sameType {
			if a.EmployeeID != req.EmployeeID {
				othersSameType = append(othersSameType, a)
			}
		}
	}

	if rej := ValidateAbsence(candidate, existing, othersSameType, policy, s.now(), req.ForceMajeure); rej != nil {
		if s.metrics != nil {
			s.metrics.RecordAbsenceRejection(rej.Rule)
		}
		s.logger.Info("absence rejected",
			zap.String("employee_id", req.EmployeeID),
			zap.String("type", req.TypeCode),
			zap.String("rule", rej.Rule))
		return nil, appErrors.Clone(appErrors.ErrAbsenceRejected, rej.Reason)
	}

	if err := s.repo.Create(ctx, &candidate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store absence")
	}
	s.logger.Info("absence accepted",
		zap.String("id", candidate.ID),
		zap.String("employee_id", candidate.EmployeeID),
		zap.String("type", candidate.TypeCode))
	return &candidate, nil
}

// Delete removes a stored absence.
func (s *AbsenceService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "absence not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load absence")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete absence")
	}
	return nil
}

// Rule tags reported alongside rejections.
const (
	RuleRange             = "range"
	RuleOverlap           = "overlap"
	RuleForcedPart        = "forced_part"
	RuleFixedDate         = "fixed_date"
	RuleMaxSpan           = "max_span"
	RuleQuota             = "quota"
	RuleExclusive         = "exclusive"
	RuleVacationAdjacency = "vacation_adjacency"
	RuleAdvanceNotice     = "advance_notice"
	RuleDuplicate         = "duplicate"
)

// ValidateAbsence runs the ordered policy checks over a candidate. The first
// failing check wins. existing holds every stored absence of the candidate's
// employee; othersSameType holds same-type absences of other employees
// touching the candidate's range (only consulted for exclusive types). A nil
// result means the candidate is admissible.
func ValidateAbsence(candidate models.Absence, existing, othersSameType []models.Absence, policy models.AbsenceTypePolicy, now time.Time, forceMajeure bool) *Rejection {
	start := dates.Day(candidate.StartDate)
	end := dates.Day(candidate.EndDate)

	// 1. Range sanity.
	if !candidate.Part.Valid() {
		return &Rejection{Rule: RuleRange, Reason: fmt.Sprintf("invalid day part %q", candidate.Part)}
	}
	if end.Before(start) {
		return &Rejection{Rule: RuleRange, Reason: "end date is before start date"}
	}
	if candidate.Part != models.PartFull && !start.Equal(end) {
		return &Rejection{Rule: RuleRange, Reason: "a half-day absence must cover exactly one day"}
	}

	// 2. Self-overlap. AM and PM may complement each other on one day.
	for _, a := range existing {
		if !rangesIntersect(start, end, dates.Day(a.StartDate), dates.Day(a.EndDate)) {
			continue
		}
		if halfDayComplement(candidate, a) {
			continue
		}
		return &Rejection{Rule: RuleOverlap, Reason: fmt.Sprintf("overlaps an existing absence (%s %s..%s)", a.TypeCode, a.StartDate.Format(dates.DayFormat), a.EndDate.Format(dates.DayFormat))}
	}

	// 3. Forced part, and fixed calendar date when the type pins one.
	if policy.ForcedPart != "" && candidate.Part != policy.ForcedPart {
		return &Rejection{Rule: RuleForcedPart, Reason: fmt.Sprintf("%s requires part %s", policy.Label, policy.ForcedPart)}
	}
	if policy.FixedDate != nil {
		if !start.Equal(end) || start.Month() != policy.FixedDate.Month || start.Day() != policy.FixedDate.Day {
			return &Rejection{Rule: RuleFixedDate, Reason: fmt.Sprintf("%s must fall exactly on %02d-%02d", policy.Label, int(policy.FixedDate.Month), policy.FixedDate.Day)}
		}
	}

	// 4. Maximum span.
	if policy.MaxSpanDays > 0 {
		if span := dates.DaysInclusive(start, end); span > policy.MaxSpanDays {
			return &Rejection{Rule: RuleMaxSpan, Reason: fmt.Sprintf("%s may span at most %d days, requested %d", policy.Label, policy.MaxSpanDays, span)}
		}
	}

	// 5. Annual quota, per calendar year the candidate touches.
	if policy.AnnualQuota != nil {
		for year := start.Year(); year <= end.Year(); year++ {
			candidateUnits := absenceUnitsInYear(candidate, year)
			if candidateUnits.IsZero() {
				continue
			}
			used := decimal.Zero
			for _, a := range existing {
				if a.TypeCode == candidate.TypeCode {
					used = used.Add(absenceUnitsInYear(a, year))
				}
			}
			total := used.Add(candidateUnits)
			if total.GreaterThan(*policy.AnnualQuota) {
				remaining := policy.AnnualQuota.Sub(used)
				if remaining.IsNegative() {
					remaining = decimal.Zero
				}
				return &Rejection{Rule: RuleQuota, Reason: fmt.Sprintf("annual quota for %s exceeded in %d: limit %s, used %s, remaining %s", policy.Label, year, policy.AnnualQuota.String(), used.String(), remaining.String())}
			}
		}
	}

	// 6. Cross-employee exclusivity.
	if policy.Exclusive {
		for _, a := range othersSameType {
			if rangesIntersect(start, end, dates.Day(a.StartDate), dates.Day(a.EndDate)) {
				return &Rejection{Rule: RuleExclusive, Reason: fmt.Sprintf("another employee already holds %s on %s", policy.Label, dates.Day(a.StartDate).Format(dates.DayFormat))}
			}
		}
	}

	// 7. No gluing onto an own vacation block.
	if policy.NoVacationAdjacency {
		for _, a := range existing {
			if a.TypeCode != models.AbsenceVacation {
				continue
			}
			vacStart := dates.Day(a.StartDate)
			vacEnd := dates.Day(a.EndDate)
			if end.AddDate(0, 0, 1).Equal(vacStart) || vacEnd.AddDate(0, 0, 1).Equal(start) {
				return &Rejection{Rule: RuleVacationAdjacency, Reason: fmt.Sprintf("%s may not be attached to a vacation block (%s..%s)", policy.Label, vacStart.Format(dates.DayFormat), vacEnd.Format(dates.DayFormat))}
			}
		}
	}

	// 8. Advance notice, waivable only by force majeure.
	if policy.AdvanceNoticeDays > 0 && !forceMajeure {
		earliest := dates.Day(now).AddDate(0, 0, policy.AdvanceNoticeDays)
		if start.Before(earliest) {
			return &Rejection{Rule: RuleAdvanceNotice, Reason: fmt.Sprintf("%s must be requested at least %d days in advance", policy.Label, policy.AdvanceNoticeDays)}
		}
	}

	// 9. Exact duplicate.
	for _, a := range existing {
		if a.TypeCode == candidate.TypeCode && a.Part == candidate.Part &&
			dates.SameDay(a.StartDate, start) && dates.SameDay(a.EndDate, end) {
			return &Rejection{Rule: RuleDuplicate, Reason: "an identical absence already exists"}
		}
	}

	return nil
}

func rangesIntersect(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// halfDayComplement reports whether two single-day absences occupy opposite
// halves of the same day.
func halfDayComplement(a, b models.Absence) bool {
	if !dates.SameDay(a.StartDate, a.EndDate) || !dates.SameDay(b.StartDate, b.EndDate) {
		return false
	}
	if !dates.SameDay(a.StartDate, b.StartDate) {
		return false
	}
	return (a.Part == models.PartAM && b.Part == models.PartPM) ||
		(a.Part == models.PartPM && b.Part == models.PartAM)
}

// absenceUnitsInYear computes the quota day-units an absence consumes inside
// one calendar year: 1 per covered day for FULL, 0.5 for a half day.
func absenceUnitsInYear(a models.Absence, year int) decimal.Decimal {
	if a.Part != models.PartFull {
		if dates.Day(a.StartDate).Year() == year {
			return decimal.NewFromFloat(0.5)
		}
		return decimal.Zero
	}
	s, e, ok := dates.ClipToYear(a.StartDate, a.EndDate, year)
	if !ok {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(dates.DaysInclusive(s, e)))
}
