package repositories

import (
	"context"

	"github.com/google/uuid"
)

type ReminderRepository interface {
	// Claim records (employee, kind, day) and reports whether it was not recorded yet.
	Claim(ctx context.Context, employeeID uuid.UUID, kind, day string) (bool, error)
}

type reminderRepo struct {
	db DBTX
}

func NewReminderRepo(db DBTX) ReminderRepository {
	return &reminderRepo{db: db}
}

func (r *reminderRepo) Claim(ctx context.Context, employeeID uuid.UUID, kind, day string) (bool, error) {
	query := `
		INSERT INTO reminder_markers (employee_id, kind, day, created_at)
		VALUES ($1, $2, $3::date, NOW())
		ON CONFLICT (employee_id, kind, day) DO NOTHING
	`
	tag, err := conn(ctx, r.db).Exec(ctx, query, employeeID, kind, day)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
