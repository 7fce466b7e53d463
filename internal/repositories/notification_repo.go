package repositories

import (
	"context"

	"pointeuse/internal/models"
)

type NotificationRepository interface {
	// Create inserts the notification. When DedupeDay is set the insert is skipped if a
	// row with the same manager, type, employee and day exists; the result says whether
	// a row was written.
	Create(ctx context.Context, n *models.Notification) (bool, error)
}

type notificationRepo struct {
	db DBTX
}

func NewNotificationRepo(db DBTX) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) (bool, error) {
	var dedupeDay *string
	if n.DedupeDay != "" {
		dedupeDay = &n.DedupeDay
	}
	query := `
		INSERT INTO notifications (id, manager_id, tenant_id, type, title, message, employee_id, is_read, dedupe_day, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8::date, $9)
		ON CONFLICT (manager_id, type, employee_id, dedupe_day) WHERE dedupe_day IS NOT NULL DO NOTHING
	`
	tag, err := conn(ctx, r.db).Exec(ctx, query,
		n.ID, n.ManagerID, n.TenantID, n.Type, n.Title, n.Message, n.EmployeeID, dedupeDay, n.CreatedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
