package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pointeuse/internal/models"
	"pointeuse/internal/repositories"

	"github.com/google/uuid"
)

type DispatchOutcome string

const (
	DispatchSent       DispatchOutcome = "sent"
	DispatchSuppressed DispatchOutcome = "suppressed"
	DispatchSendFailed DispatchOutcome = "send_failed"
)

var ErrForeignManager = errors.New("notification: manager does not belong to tenant")

// Alert is one manager-facing notification before it is addressed.
type Alert struct {
	Type       models.NotificationType
	Title      string
	Message    string
	EmployeeID *uuid.UUID
	// At is the creation instant; it also picks the tenant-local day for anti-spam types.
	// Zero means now.
	At time.Time
}

type DispatchResult struct {
	ManagerID uuid.UUID       `json:"manager_id"`
	Outcome   DispatchOutcome `json:"outcome"`
	Err       error           `json:"-"`
}

// NotificationService records manager alerts and pushes them over WhatsApp.
type NotificationService interface {
	// Notify persists the alert for one manager, then sends it. A LATE or ABSENCE alert
	// about an employee already raised to this manager on the same local day is
	// suppressed. Send failures are logged and reported as DispatchSendFailed.
	Notify(ctx context.Context, tenant *models.Tenant, manager *models.Employee, alert Alert) (DispatchOutcome, error)
	// NotifyAll runs Notify for every manager of the tenant independently.
	NotifyAll(ctx context.Context, tenant *models.Tenant, alert Alert) ([]DispatchResult, error)
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	employeeRepo     repositories.EmployeeRepository
	sender           MessageSender
	now              func() time.Time
}

func NewNotificationService(notificationRepo repositories.NotificationRepository, employeeRepo repositories.EmployeeRepository, sender MessageSender) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		employeeRepo:     employeeRepo,
		sender:           sender,
		now:              time.Now,
	}
}

func (s *notificationService) Notify(ctx context.Context, tenant *models.Tenant, manager *models.Employee, alert Alert) (DispatchOutcome, error) {
	if manager.TenantID != tenant.ID {
		return "", ErrForeignManager
	}

	at := alert.At
	if at.IsZero() {
		at = s.now()
	}

	notification := &models.Notification{
		ID:         uuid.New(),
		ManagerID:  manager.ID,
		TenantID:   tenant.ID,
		Type:       alert.Type,
		Title:      alert.Title,
		Message:    alert.Message,
		EmployeeID: alert.EmployeeID,
		CreatedAt:  at,
	}
	if alert.Type.AntiSpam() && alert.EmployeeID != nil {
		notification.DedupeDay = tenant.LocalDay(at)
	}

	created, err := s.notificationRepo.Create(ctx, notification)
	if err != nil {
		return "", fmt.Errorf("persist notification: %w", err)
	}
	if !created {
		return DispatchSuppressed, nil
	}

	if err := s.sender.Send(ctx, manager.Phone, formatAlert(alert)); err != nil {
		log.Printf("[NOTIFY] Tenant=%s, Manager=%s, Type=%s: send failed: %v", tenant.ID, manager.ID, alert.Type, err)
		return DispatchSendFailed, nil
	}
	return DispatchSent, nil
}

func (s *notificationService) NotifyAll(ctx context.Context, tenant *models.Tenant, alert Alert) ([]DispatchResult, error) {
	managers, err := s.employeeRepo.ListManagers(ctx, tenant.ID)
	if err != nil {
		return nil, fmt.Errorf("list managers: %w", err)
	}

	results := make([]DispatchResult, 0, len(managers))
	for _, manager := range managers {
		outcome, err := s.Notify(ctx, tenant, manager, alert)
		if err != nil {
			log.Printf("[NOTIFY] Tenant=%s, Manager=%s, Type=%s: %v", tenant.ID, manager.ID, alert.Type, err)
		}
		results = append(results, DispatchResult{ManagerID: manager.ID, Outcome: outcome, Err: err})
	}
	return results, nil
}

func formatAlert(alert Alert) string {
	if alert.Title == "" {
		return alert.Message
	}
	return fmt.Sprintf("*%s*\n%s", alert.Title, alert.Message)
}
