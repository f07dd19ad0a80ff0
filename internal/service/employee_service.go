package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/farmacal/roster-api/internal/models"
	appErrors "github.com/farmacal/roster-api/pkg/errors"
)

type employeeRepository interface {
	List(ctx context.Context) ([]models.Employee, error)
	FindByID(ctx context.Context, id string) (*models.Employee, error)
	FindOwner(ctx context.Context) (*models.Employee, error)
	ExistsByDNI(ctx context.Context, dni, excludeID string) (bool, error)
	Create(ctx context.Context, emp *models.Employee) error
	Update(ctx context.Context, emp *models.Employee) error
	Delete(ctx context.Context, id string) error
	CountReferences(ctx context.Context, id string) (int, error)
}

// CreateEmployeeRequest holds payload for registering employees.
type CreateEmployeeRequest struct {
	FirstName      string `json:"first_name" validate:"required"`
	LastName       string `json:"last_name"`
	SecondLastName string `json:"second_last_name"`
	DNI            string `json:"dni" validate:"required"`
	Email          string `json:"email" validate:"omitempty,email"`
	Role           string `json:"role" validate:"omitempty,oneof=STAFF MANAGER"`
}

// UpdateEmployeeRequest holds payload for editing employees.
type UpdateEmployeeRequest struct {
	FirstName      string `json:"first_name" validate:"required"`
	LastName       string `json:"last_name"`
	SecondLastName string `json:"second_last_name"`
	DNI            string `json:"dni" validate:"required"`
	Email          string `json:"email" validate:"omitempty,email"`
	Role           string `json:"role" validate:"omitempty,oneof=STAFF MANAGER"`
}

// EmployeeService manages the pharmacy staff roster.
type EmployeeService struct {
	repo      employeeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEmployeeService constructs the employee service.
func NewEmployeeService(repo employeeRepository, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{repo: repo, validator: validate, logger: logger}
}

// Seed identity for the pharmacy owner, created on first start when no
// owner row exists yet.
const (
	defaultOwnerFirstName = "Titular"
	defaultOwnerLastName  = "de la Farmacia"
	defaultOwnerDNI       = "00000000T"
)

// EnsureOwner guarantees exactly one owner row exists. Idempotent.
func (s *EmployeeService) EnsureOwner(ctx context.Context) error {
	_, err := s.repo.FindOwner(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("find owner: %w", err)
	}

	owner := &models.Employee{
		FirstName: defaultOwnerFirstName,
		LastName:  defaultOwnerLastName,
		DNI:       defaultOwnerDNI,
		Role:      models.RoleManager,
		IsOwner:   true,
	}
	if err := s.repo.Create(ctx, owner); err != nil {
		return fmt.Errorf("seed owner: %w", err)
	}
	s.logger.Info("owner employee seeded", zap.String("id", owner.ID))
	return nil
}

// List returns every employee, owner first.
func (s *EmployeeService) List(ctx context.Context) ([]models.Employee, error) {
	employees, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}
	return employees, nil
}

// Get loads one employee.
func (s *EmployeeService) Get(ctx context.Context, id string) (*models.Employee, error) {
	emp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	return emp, nil
}

// Create registers a new staff member. The owner flag is never settable
// through this path.
func (s *EmployeeService) Create(ctx context.Context, req CreateEmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}

	dni := strings.ToUpper(strings.TrimSpace(req.DNI))
	exists, err := s.repo.ExistsByDNI(ctx, dni, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check DNI")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("an employee with DNI %s already exists", dni))
	}

	role := models.EmployeeRole(req.Role)
	if role == "" {
		role = models.RoleStaff
	}

	emp := &models.Employee{
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		SecondLastName: strings.TrimSpace(req.SecondLastName),
		DNI:            dni,
		Email:          strings.TrimSpace(req.Email),
		Role:           role,
	}
	if err := s.repo.Create(ctx, emp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create employee")
	}
	s.logger.Info("employee created", zap.String("id", emp.ID), zap.String("dni", emp.DNI))
	return emp, nil
}

// Update edits an employee. The owner's DNI is immutable.
func (s *EmployeeService) Update(ctx context.Context, id string, req UpdateEmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}

	emp, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	dni := strings.ToUpper(strings.TrimSpace(req.DNI))
	if emp.IsOwner && dni != emp.DNI {
		return nil, appErrors.Clone(appErrors.ErrOwnerProtected, "the owner's DNI cannot be changed")
	}

	exists, err := s.repo.ExistsByDNI(ctx, dni, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check DNI")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("an employee with DNI %s already exists", dni))
	}

	emp.FirstName = strings.TrimSpace(req.FirstName)
	emp.LastName = strings.TrimSpace(req.LastName)
	emp.SecondLastName = strings.TrimSpace(req.SecondLastName)
	emp.DNI = dni
	emp.Email = strings.TrimSpace(req.Email)
	if req.Role != "" {
		emp.Role = models.EmployeeRole(req.Role)
	}

	if err := s.repo.Update(ctx, emp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update employee")
	}
	return emp, nil
}

// Delete removes an employee. The owner is undeletable, and employees still
// referenced by absences or schedule rows are kept.
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	emp, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if emp.IsOwner {
		return appErrors.Clone(appErrors.ErrOwnerProtected, "")
	}

	refs, err := s.repo.CountReferences(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check references")
	}
	if refs > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("employee still has %d schedule or absence records", refs))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete employee")
	}
	s.logger.Info("employee deleted", zap.String("id", id))
	return nil
}
