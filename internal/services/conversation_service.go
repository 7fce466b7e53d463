package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"pointeuse/internal/models"
	"pointeuse/internal/repositories"
	"pointeuse/internal/vocabulary"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrIncompleteDraft means the conversation lacks data a step needs. The stored
	// state is left untouched so the employee can correct it.
	ErrIncompleteDraft = errors.New("conversation: draft is incomplete")
	// ErrStateConflict means the conversation is not in the state the transition
	// expects, typically because the same message was delivered twice.
	ErrStateConflict   = errors.New("conversation: state changed concurrently")
	ErrInvalidAmount   = errors.New("conversation: amount must be a positive number")
	ErrInvalidCategory = errors.New("conversation: unknown expense category")
)

// Transactor runs fn in one database transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(context.Context) error) error
}

// ConversationService is the per-employee dialogue state store. Every write is a
// single conditional UPDATE or a JSON patch, never a read-modify-write of the row.
type ConversationService interface {
	SetState(ctx context.Context, employeeID uuid.UUID, state models.ConversationState, scratch models.Scratch) error
	// UpdateScratch shallow-merges partial into the stored scratch, creating it if absent.
	UpdateScratch(ctx context.Context, employeeID uuid.UUID, partial models.Scratch) error
	Clear(ctx context.Context, employeeID uuid.UUID) error

	// Current decodes the employee's persisted state into its typed step.
	Current(employee *models.Employee) (models.Step, error)
	StartExpense(ctx context.Context, employee *models.Employee) error
	AttachPhoto(ctx context.Context, employee *models.Employee, photoRef string) error
	SetAmount(ctx context.Context, employee *models.Employee, amount decimal.Decimal) error
	// CommitExpense turns a complete draft into a PENDING expense and clears the
	// conversation in the same transaction, then alerts the tenant's managers.
	CommitExpense(ctx context.Context, employee *models.Employee, category string) (*models.Expense, error)
	// Cancel abandons whatever step is in progress. It reports whether anything was
	// in progress.
	Cancel(ctx context.Context, employee *models.Employee) (bool, error)
}

type conversationService struct {
	employeeRepo repositories.EmployeeRepository
	expenseRepo  repositories.ExpenseRepository
	tx           Transactor
	notifier     NotificationService
	now          func() time.Time
}

func NewConversationService(employeeRepo repositories.EmployeeRepository, expenseRepo repositories.ExpenseRepository,
	tx Transactor, notifier NotificationService) ConversationService {
	return &conversationService{
		employeeRepo: employeeRepo,
		expenseRepo:  expenseRepo,
		tx:           tx,
		notifier:     notifier,
		now:          time.Now,
	}
}

// SetState writes state and, when scratch is non-nil, replaces the scratch. A step
// that needs data its predecessors provide is refused when that data is missing.
func (s *conversationService) SetState(ctx context.Context, employeeID uuid.UUID, state models.ConversationState, scratch models.Scratch) error {
	check := scratch
	if check == nil && state != models.ConversationIdle {
		employee, err := s.employeeRepo.GetByID(ctx, employeeID)
		if err != nil {
			return err
		}
		check = employee.TempExpenseData
	}
	if _, err := models.DecodeStep(state, check); err != nil {
		return fmt.Errorf("%w: %v", ErrIncompleteDraft, err)
	}
	return s.employeeRepo.SetConversation(ctx, employeeID, state, scratch)
}

func (s *conversationService) UpdateScratch(ctx context.Context, employeeID uuid.UUID, partial models.Scratch) error {
	if len(partial) == 0 {
		return nil
	}
	return s.employeeRepo.PatchScratch(ctx, employeeID, partial)
}

func (s *conversationService) Clear(ctx context.Context, employeeID uuid.UUID) error {
	return s.employeeRepo.ClearConversation(ctx, employeeID)
}

func (s *conversationService) Current(employee *models.Employee) (models.Step, error) {
	return models.DecodeStep(employee.ConversationState, employee.TempExpenseData)
}

func (s *conversationService) StartExpense(ctx context.Context, employee *models.Employee) error {
	ok, err := s.employeeRepo.ResetConversation(ctx, employee.ID, models.ConversationIdle, models.ConversationAwaitingPhoto)
	if err != nil {
		return err
	}
	if !ok {
		return ErrStateConflict
	}
	return nil
}

func (s *conversationService) AttachPhoto(ctx context.Context, employee *models.Employee, photoRef string) error {
	if strings.TrimSpace(photoRef) == "" {
		return fmt.Errorf("%w: %s", ErrIncompleteDraft, models.ScratchPhotoRef)
	}
	return s.transition(ctx, employee.ID, models.ConversationAwaitingPhoto, models.ConversationAwaitingAmount,
		models.Scratch{models.ScratchPhotoRef: photoRef})
}

func (s *conversationService) SetAmount(ctx context.Context, employee *models.Employee, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	return s.transition(ctx, employee.ID, models.ConversationAwaitingAmount, models.ConversationAwaitingCategory,
		models.Scratch{models.ScratchAmount: amount.StringFixed(2)})
}

func (s *conversationService) transition(ctx context.Context, employeeID uuid.UUID, from, to models.ConversationState, patch models.Scratch) error {
	ok, err := s.employeeRepo.TransitionConversation(ctx, employeeID, from, to, patch)
	if err != nil {
		return err
	}
	if !ok {
		return ErrStateConflict
	}
	return nil
}

func (s *conversationService) CommitExpense(ctx context.Context, employee *models.Employee, category string) (*models.Expense, error) {
	category, err := NormalizeCategory(category)
	if err != nil {
		return nil, err
	}

	var expense *models.Expense
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		scratch, ok, err := s.employeeRepo.TakeConversation(ctx, employee.ID, models.ConversationAwaitingCategory)
		if err != nil {
			return err
		}
		if !ok {
			return ErrStateConflict
		}

		step, err := models.DecodeStep(models.ConversationAwaitingCategory, scratch)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIncompleteDraft, err)
		}
		draft := step.(models.AwaitingCategoryStep)

		expense = &models.Expense{
			ID:         uuid.New(),
			EmployeeID: employee.ID,
			TenantID:   employee.TenantID,
			Amount:     draft.Amount,
			Category:   category,
			PhotoRef:   draft.PhotoRef,
			Status:     models.ExpensePending,
			CreatedAt:  s.now(),
		}
		return s.expenseRepo.Create(ctx, expense)
	})
	if err != nil {
		return nil, err
	}

	if employee.Tenant != nil && s.notifier != nil {
		alert := Alert{
			Type:       models.NotificationExpense,
			Title:      vocabulary.ExpenseTitle(employee.Tenant, employee.Name),
			Message:    vocabulary.ExpenseMessage(employee.Tenant, employee.Name, expense),
			EmployeeID: &employee.ID,
			At:         expense.CreatedAt,
		}
		if _, err := s.notifier.NotifyAll(ctx, employee.Tenant, alert); err != nil {
			log.Printf("[NOTIFY] Tenant=%s: expense %s alert: %v", employee.TenantID, expense.ID, err)
		}
	}
	return expense, nil
}

func (s *conversationService) Cancel(ctx context.Context, employee *models.Employee) (bool, error) {
	if employee.ConversationState == models.ConversationIdle {
		return false, nil
	}
	ok, err := s.employeeRepo.ResetConversation(ctx, employee.ID, employee.ConversationState, models.ConversationIdle)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// NormalizeCategory matches free text against the expense categories, ignoring case
// and accents on the common spellings.
func NormalizeCategory(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.NewReplacer("É", "E", "È", "E", "Ê", "E", "À", "A", "Ô", "O").Replace(s)
	for _, c := range models.ExpenseCategories {
		if s == c {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

// ParseAmount reads "12,50", "12.50 €" or "12" as a positive amount.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.NewReplacer("€", "", "EUR", "", "eur", "", " ", "", " ", "").Replace(s)
	s = strings.Replace(s, ",", ".", 1)
	amount, err := decimal.NewFromString(s)
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}
