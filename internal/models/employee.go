package models

import (
	"time"

	"github.com/google/uuid"
)

type EmployeeRole string

const (
	RoleManager  EmployeeRole = "MANAGER"
	RoleEmployee EmployeeRole = "EMPLOYEE"
)

type Employee struct {
	ID                uuid.UUID         `json:"id" db:"id"`
	TenantID          uuid.UUID         `json:"tenant_id" db:"tenant_id"`
	SiteID            *uuid.UUID        `json:"site_id" db:"site_id"`
	Phone             string            `json:"phone" db:"phone"` // canonical digits-only form
	Name              string            `json:"name" db:"name"`
	Role              EmployeeRole      `json:"role" db:"role"`
	ConversationState ConversationState `json:"conversation_state" db:"conversation_state"`
	TempExpenseData   Scratch           `json:"temp_expense_data" db:"temp_expense_data"`
	IsArchived        bool              `json:"is_archived" db:"is_archived"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at" db:"updated_at"`

	Tenant *Tenant `json:"tenant,omitempty" db:"-"`
}

func (e *Employee) IsManager() bool {
	return e.Role == RoleManager
}
