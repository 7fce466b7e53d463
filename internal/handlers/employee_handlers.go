package handlers

import (
	"errors"
	"net/http"

	"pointeuse/internal/common"
	"pointeuse/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// EmployeeHandlers handles employee onboarding from the back office
type EmployeeHandlers struct {
	employees services.EmployeeService
}

func NewEmployeeHandlers(employees services.EmployeeService) *EmployeeHandlers {
	return &EmployeeHandlers{employees: employees}
}

// CreateEmployee handles POST /admin/employees
func (h *EmployeeHandlers) CreateEmployee(c echo.Context) error {
	var req services.OnboardEmployeeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	employee, err := h.employees.Onboard(c.Request().Context(), &req)
	if err != nil {
		var validationErrs validator.ValidationErrors
		switch {
		case errors.As(err, &validationErrs):
			details := make(map[string]string, len(validationErrs))
			for _, fe := range validationErrs {
				details[fe.Field()] = fe.Tag()
			}
			return c.JSON(http.StatusBadRequest, common.CreateErrorResponse("VALIDATION_ERROR", "Validation failed", details))
		case errors.Is(err, services.ErrInvalidPhone):
			return common.SendValidationError(c, "phone", "must be an international number")
		case errors.Is(err, services.ErrTenantNotFound):
			return common.SendNotFoundError(c, "Tenant")
		case errors.Is(err, services.ErrPhoneTaken):
			return c.JSON(http.StatusConflict, common.CreateErrorResponse("CONFLICT", "Phone number already registered", nil))
		default:
			return common.SendServerError(c, "Failed to create employee")
		}
	}

	return c.JSON(http.StatusCreated, employee)
}
