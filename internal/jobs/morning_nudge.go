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

const (
	nudgeDelay   = 30 * time.Minute
	nudgeWindow  = 30 * time.Minute
	tenantsBatch = 500
)

type MorningNudgeReport struct {
	At              time.Time `json:"at"`
	TenantsScanned  int       `json:"tenants_scanned"`
	TenantsInWindow int       `json:"tenants_in_window"`
	EmployeesLate   int       `json:"employees_late"`
	Nudged          int       `json:"nudged"`
	AlreadyNudged   int       `json:"already_nudged"`
	NudgeFailed     int       `json:"nudge_failed"`
	AlertsSent      int       `json:"alerts_sent"`
	AlertsSkipped   int       `json:"alerts_suppressed"`
	AlertsFailed    int       `json:"alerts_failed"`
	Errors          int       `json:"errors"`
}

// MorningNudgeJob nudges employees who have not checked in by half an hour after their
// tenant's work start and raises a LATE alert to the tenant's managers.
type MorningNudgeJob struct {
	tenantRepo   repositories.TenantRepository
	employeeRepo repositories.EmployeeRepository
	reminderRepo repositories.ReminderRepository
	sender       services.MessageSender
	notifier     services.NotificationService
}

func NewMorningNudgeJob(tenantRepo repositories.TenantRepository, employeeRepo repositories.EmployeeRepository,
	reminderRepo repositories.ReminderRepository, sender services.MessageSender, notifier services.NotificationService) *MorningNudgeJob {
	return &MorningNudgeJob{
		tenantRepo:   tenantRepo,
		employeeRepo: employeeRepo,
		reminderRepo: reminderRepo,
		sender:       sender,
		notifier:     notifier,
	}
}

// InNudgeWindow reports whether now falls in [workStart+30m, workStart+60m) on a
// weekday, both read in the tenant's local time.
func InNudgeWindow(t *models.Tenant, now time.Time) bool {
	local := now.In(t.Location())
	if local.Weekday() == time.Saturday || local.Weekday() == time.Sunday {
		return false
	}
	h, m := t.WorkStart()
	start := time.Date(local.Year(), local.Month(), local.Day(), h, m, 0, 0, local.Location()).Add(nudgeDelay)
	return !local.Before(start) && local.Before(start.Add(nudgeWindow))
}

func (j *MorningNudgeJob) Run(ctx context.Context, now time.Time) (*MorningNudgeReport, error) {
	report := &MorningNudgeReport{At: now}

	for offset := 0; ; offset += tenantsBatch {
		tenants, err := j.tenantRepo.List(ctx, tenantsBatch, offset)
		if err != nil {
			return report, fmt.Errorf("list tenants: %w", err)
		}

		for _, tenant := range tenants {
			report.TenantsScanned++
			if !InNudgeWindow(tenant, now) || !vocabulary.Feature(tenant, vocabulary.FeatureReminders) {
				continue
			}
			report.TenantsInWindow++

			if err := j.scanTenant(ctx, tenant, now, report); err != nil {
				log.Printf("[NUDGE] Failed to scan tenant %s: %v", tenant.ID, err)
				report.Errors++
			}
		}

		if len(tenants) < tenantsBatch {
			break
		}
	}

	log.Printf("[NUDGE] Scan at %s: %d tenants in window, %d late, %d nudged", now.Format(time.RFC3339), report.TenantsInWindow, report.EmployeesLate, report.Nudged)
	return report, nil
}

func (j *MorningNudgeJob) scanTenant(ctx context.Context, tenant *models.Tenant, now time.Time, report *MorningNudgeReport) error {
	dayStart, dayEnd := tenant.DayBounds(now)
	employees, err := j.employeeRepo.ListWithoutCheckIn(ctx, tenant.ID, dayStart, dayEnd)
	if err != nil {
		return err
	}

	day := tenant.LocalDay(now)
	for _, employee := range employees {
		report.EmployeesLate++
		j.nudge(ctx, tenant, employee, day, report)

		alert := services.Alert{
			Type:       models.NotificationLate,
			Title:      vocabulary.LateTitle(tenant, employee.Name),
			Message:    vocabulary.LateMessage(tenant, employee.Name),
			EmployeeID: &employee.ID,
			At:         now,
		}
		results, err := j.notifier.NotifyAll(ctx, tenant, alert)
		if err != nil {
			log.Printf("[NUDGE] Failed to alert managers of tenant %s about %s: %v", tenant.ID, employee.ID, err)
			report.Errors++
			continue
		}
		for _, r := range results {
			switch {
			case r.Err != nil:
				report.Errors++
			case r.Outcome == services.DispatchSent:
				report.AlertsSent++
			case r.Outcome == services.DispatchSuppressed:
				report.AlertsSkipped++
			case r.Outcome == services.DispatchSendFailed:
				report.AlertsFailed++
			}
		}
	}
	return nil
}

func (j *MorningNudgeJob) nudge(ctx context.Context, tenant *models.Tenant, employee *models.Employee, day string, report *MorningNudgeReport) {
	claimed, err := j.reminderRepo.Claim(ctx, employee.ID, models.ReminderMorningNudge, day)
	if err != nil {
		log.Printf("[NUDGE] Failed to claim nudge for employee %s: %v", employee.ID, err)
		report.Errors++
		return
	}
	if !claimed {
		report.AlreadyNudged++
		return
	}
	if err := j.sender.Send(ctx, employee.Phone, vocabulary.MorningNudge(tenant, employee.Name)); err != nil {
		log.Printf("[NUDGE] Nudge to employee %s failed: %v", employee.ID, err)
		report.NudgeFailed++
		return
	}
	report.Nudged++
}
