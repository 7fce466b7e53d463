package repositories

import (
	"context"

	"pointeuse/internal/models"
)

type ExpenseRepository interface {
	Create(ctx context.Context, expense *models.Expense) error
}

type expenseRepo struct {
	db DBTX
}

func NewExpenseRepo(db DBTX) ExpenseRepository {
	return &expenseRepo{db: db}
}

func (r *expenseRepo) Create(ctx context.Context, expense *models.Expense) error {
	query := `
		INSERT INTO expenses (id, employee_id, tenant_id, amount, category, photo_ref, status, created_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, NOW())
	`
	_, err := conn(ctx, r.db).Exec(ctx, query,
		expense.ID, expense.EmployeeID, expense.TenantID, expense.Amount.String(), expense.Category, expense.PhotoRef, expense.Status)
	return err
}
