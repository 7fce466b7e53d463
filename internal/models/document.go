package models

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	ID         uuid.UUID `json:"id" db:"id"`
	TenantID   uuid.UUID `json:"tenant_id" db:"tenant_id"`
	EmployeeID uuid.UUID `json:"employee_id" db:"employee_id"`
	Title      string    `json:"title" db:"title"`
	ObjectKey  string    `json:"object_key" db:"object_key"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
