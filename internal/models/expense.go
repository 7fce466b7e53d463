package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ExpenseStatus string

const (
	ExpensePending  ExpenseStatus = "PENDING"
	ExpenseApproved ExpenseStatus = "APPROVED"
	ExpenseRejected ExpenseStatus = "REJECTED"
)

var ExpenseCategories = []string{"REPAS", "TRANSPORT", "CARBURANT", "HEBERGEMENT", "MATERIEL", "AUTRE"}

type Expense struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	EmployeeID uuid.UUID       `json:"employee_id" db:"employee_id"`
	TenantID   uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	Category   string          `json:"category" db:"category"`
	PhotoRef   string          `json:"photo_ref" db:"photo_ref"`
	Status     ExpenseStatus   `json:"status" db:"status"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}
