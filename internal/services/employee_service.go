package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pointeuse/internal/common"
	"pointeuse/internal/models"
	"pointeuse/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrInvalidPhone   = errors.New("employee: phone number is not a valid international number")
	ErrPhoneTaken     = errors.New("employee: phone number is already registered")
	ErrTenantNotFound = errors.New("employee: tenant not found")
)

// IdentityService maps inbound phone numbers to employees.
type IdentityService interface {
	// Resolve returns the active employee owning raw with its tenant attached, or
	// (nil, nil) when the number is unknown or malformed.
	Resolve(ctx context.Context, raw string) (*models.Employee, error)
}

// EmployeeService is the write side of employee identity.
type EmployeeService interface {
	IdentityService
	Onboard(ctx context.Context, req *OnboardEmployeeRequest) (*models.Employee, error)
}

type OnboardEmployeeRequest struct {
	TenantID uuid.UUID  `json:"tenant_id" validate:"required"`
	SiteID   *uuid.UUID `json:"site_id"`
	Phone    string     `json:"phone" validate:"required"`
	Name     string     `json:"name" validate:"required,max=120"`
	Role     string     `json:"role" validate:"omitempty,oneof=MANAGER EMPLOYEE"`
}

type employeeService struct {
	employeeRepo repositories.EmployeeRepository
	tenantRepo   repositories.TenantRepository
	validate     *validator.Validate
}

func NewEmployeeService(employeeRepo repositories.EmployeeRepository, tenantRepo repositories.TenantRepository) EmployeeService {
	return &employeeService{
		employeeRepo: employeeRepo,
		tenantRepo:   tenantRepo,
		validate:     validator.New(),
	}
}

func (s *employeeService) Resolve(ctx context.Context, raw string) (*models.Employee, error) {
	phone := common.NormalizePhone(raw)
	if phone == "" {
		return nil, nil
	}

	employee, err := s.employeeRepo.GetByPhone(ctx, phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve employee: %w", err)
	}
	return employee, nil
}

// Onboard stores a new employee with its phone in canonical form.
func (s *employeeService) Onboard(ctx context.Context, req *OnboardEmployeeRequest) (*models.Employee, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	phone := common.NormalizePhone(req.Phone)
	if phone == "" {
		return nil, ErrInvalidPhone
	}

	if _, err := s.tenantRepo.GetByID(ctx, req.TenantID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}

	role := models.RoleEmployee
	if req.Role != "" {
		role = models.EmployeeRole(req.Role)
	}

	employee := &models.Employee{
		ID:       uuid.New(),
		TenantID: req.TenantID,
		SiteID:   req.SiteID,
		Phone:    phone,
		Name:     strings.TrimSpace(req.Name),
		Role:     role,
	}
	if err := s.employeeRepo.Create(ctx, employee); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrPhoneTaken
		}
		return nil, err
	}
	return employee, nil
}
