package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationLate     NotificationType = "LATE"
	NotificationAbsence  NotificationType = "ABSENCE"
	NotificationGeofence NotificationType = "GEOFENCE"
	NotificationExpense  NotificationType = "EXPENSE"
)

// AntiSpam reports whether at most one notification per manager, employee and local day
// may exist for this type.
func (t NotificationType) AntiSpam() bool {
	return t == NotificationLate || t == NotificationAbsence
}

type Notification struct {
	ID         uuid.UUID        `json:"id" db:"id"`
	ManagerID  uuid.UUID        `json:"manager_id" db:"manager_id"`
	TenantID   uuid.UUID        `json:"tenant_id" db:"tenant_id"`
	Type       NotificationType `json:"type" db:"type"`
	Title      string           `json:"title" db:"title"`
	Message    string           `json:"message" db:"message"`
	EmployeeID *uuid.UUID       `json:"employee_id" db:"employee_id"`
	IsRead     bool             `json:"is_read" db:"is_read"`
	DedupeDay  string           `json:"-" db:"dedupe_day"` // YYYY-MM-DD, anti-spam types only
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
}

// Reminder kinds recorded in reminder_markers.
const (
	ReminderMorningNudge = "MORNING_NUDGE"
)
