package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"pointeuse/internal/models"
	"pointeuse/internal/repositories"
	"pointeuse/internal/services"
	"pointeuse/internal/vocabulary"
)

type GhostSessionReport struct {
	At             time.Time `json:"at"`
	OpenSessions   int       `json:"open_sessions"`
	Ghosts         int       `json:"ghosts"`
	Reminded       int       `json:"reminded"`
	AlreadyClaimed int       `json:"already_claimed"`
	SendFailed     int       `json:"send_failed"`
	Errors         int       `json:"errors"`
}

// GhostSessionJob reminds employees whose session has stayed open past their tenant's
// maximum shift, at most once per cooldown per session.
type GhostSessionJob struct {
	attendanceRepo repositories.AttendanceRepository
	sender         services.MessageSender
	cooldown       time.Duration
}

func NewGhostSessionJob(attendanceRepo repositories.AttendanceRepository, sender services.MessageSender, cooldown time.Duration) *GhostSessionJob {
	if cooldown <= 0 {
		cooldown = models.GhostReminderCooldown
	}
	return &GhostSessionJob{
		attendanceRepo: attendanceRepo,
		sender:         sender,
		cooldown:       cooldown,
	}
}

// Run scans every open session platform-wide. The reminder marker is claimed before
// the send, so overlapping runs send once; a failed send keeps the marker.
func (j *GhostSessionJob) Run(ctx context.Context, now time.Time) (*GhostSessionReport, error) {
	report := &GhostSessionReport{At: now}

	sessions, err := j.attendanceRepo.ListOpenSessions(ctx)
	if err != nil {
		return report, fmt.Errorf("list open sessions: %w", err)
	}
	report.OpenSessions = len(sessions)

	for _, s := range sessions {
		tenant := &s.Tenant
		if !s.Attendance.IsGhost(tenant.MaxShift(), now) {
			continue
		}
		report.Ghosts++

		if !vocabulary.Feature(tenant, vocabulary.FeatureReminders) {
			continue
		}
		if !s.Attendance.ShouldRemind(tenant.MaxShift(), now, j.cooldown) {
			continue
		}

		claimed, err := j.attendanceRepo.ClaimReminder(ctx, s.Attendance.ID, now, now.Add(-j.cooldown))
		if err != nil {
			log.Printf("[GHOST] Failed to claim reminder for session %s: %v", s.Attendance.ID, err)
			report.Errors++
			continue
		}
		if !claimed {
			report.AlreadyClaimed++
			continue
		}

		body := vocabulary.GhostReminder(tenant, s.Employee.Name, s.Attendance.Duration(now))
		if err := j.sender.Send(ctx, s.Employee.Phone, body); err != nil {
			log.Printf("[GHOST] Reminder to employee %s (session %s) failed: %v", s.Employee.ID, s.Attendance.ID, err)
			report.SendFailed++
			continue
		}
		report.Reminded++
	}

	log.Printf("[GHOST] Scan at %s: %d open, %d ghosts, %d reminded", now.Format(time.RFC3339), report.OpenSessions, report.Ghosts, report.Reminded)
	return report, nil
}
