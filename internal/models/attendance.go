package models

import (
	"time"

	"github.com/google/uuid"
)

// GhostReminderCooldown is the rolling window between two end-of-shift reminders for the
// same open session.
const GhostReminderCooldown = 24 * time.Hour

type Attendance struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	EmployeeID         uuid.UUID  `json:"employee_id" db:"employee_id"`
	TenantID           uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	SiteID             *uuid.UUID `json:"site_id" db:"site_id"`
	CheckIn            time.Time  `json:"check_in" db:"check_in"`
	CheckOut           *time.Time `json:"check_out" db:"check_out"`
	LastReminderSentAt *time.Time `json:"last_reminder_sent_at" db:"last_reminder_sent_at"`
	Latitude           *float64   `json:"latitude" db:"latitude"`
	Longitude          *float64   `json:"longitude" db:"longitude"`
	DistanceFromSite   *float64   `json:"distance_from_site" db:"distance_from_site"`
	PhotoRef           *string    `json:"photo_ref" db:"photo_ref"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
}

func (a *Attendance) IsOpen() bool {
	return a.CheckOut == nil
}

// Duration is checkOut-checkIn for a closed session and asOf-checkIn for an open one.
func (a *Attendance) Duration(asOf time.Time) time.Duration {
	if a.CheckOut != nil {
		return a.CheckOut.Sub(a.CheckIn)
	}
	return asOf.Sub(a.CheckIn)
}

// IsGhost reports an open session strictly longer than maxShift.
func (a *Attendance) IsGhost(maxShift time.Duration, asOf time.Time) bool {
	return a.IsOpen() && a.Duration(asOf) > maxShift
}

func (a *Attendance) ShouldRemind(maxShift time.Duration, asOf time.Time, cooldown time.Duration) bool {
	if !a.IsGhost(maxShift, asOf) {
		return false
	}
	return a.LastReminderSentAt == nil || asOf.Sub(*a.LastReminderSentAt) >= cooldown
}

// OpenSession is an open attendance joined with its employee and tenant, as read by the
// ghost-session scan.
type OpenSession struct {
	Attendance Attendance
	Employee   Employee
	Tenant     Tenant
}
