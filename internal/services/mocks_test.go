package services

import (
	"context"
	"io"
	"time"

	"pointeuse/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	args := m.Called(ctx, employee)
	return args.Error(0)
}

func (m *MockEmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) GetByPhone(ctx context.Context, phone string) (*models.Employee, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) ListManagers(ctx context.Context, tenantID uuid.UUID) ([]*models.Employee, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) ListWithoutCheckIn(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]*models.Employee, error) {
	args := m.Called(ctx, tenantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) SetConversation(ctx context.Context, id uuid.UUID, state models.ConversationState, scratch models.Scratch) error {
	args := m.Called(ctx, id, state, scratch)
	return args.Error(0)
}

func (m *MockEmployeeRepository) PatchScratch(ctx context.Context, id uuid.UUID, partial models.Scratch) error {
	args := m.Called(ctx, id, partial)
	return args.Error(0)
}

func (m *MockEmployeeRepository) ClearConversation(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEmployeeRepository) TransitionConversation(ctx context.Context, id uuid.UUID, from, to models.ConversationState, patch models.Scratch) (bool, error) {
	args := m.Called(ctx, id, from, to, patch)
	return args.Bool(0), args.Error(1)
}

func (m *MockEmployeeRepository) ResetConversation(ctx context.Context, id uuid.UUID, from, to models.ConversationState) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockEmployeeRepository) TakeConversation(ctx context.Context, id uuid.UUID, from models.ConversationState) (models.Scratch, bool, error) {
	args := m.Called(ctx, id, from)
	scratch, _ := args.Get(0).(models.Scratch)
	return scratch, args.Bool(1), args.Error(2)
}

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Tenant), args.Error(1)
}

type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *models.Notification) (bool, error) {
	args := m.Called(ctx, n)
	return args.Bool(0), args.Error(1)
}

type MockAttendanceRepository struct {
	mock.Mock
}

func (m *MockAttendanceRepository) Create(ctx context.Context, attendance *models.Attendance) error {
	args := m.Called(ctx, attendance)
	return args.Error(0)
}

func (m *MockAttendanceRepository) GetOpenByEmployee(ctx context.Context, employeeID uuid.UUID) (*models.Attendance, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attendance), args.Error(1)
}

func (m *MockAttendanceRepository) CloseOpen(ctx context.Context, employeeID uuid.UUID, at time.Time) (*models.Attendance, error) {
	args := m.Called(ctx, employeeID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attendance), args.Error(1)
}

func (m *MockAttendanceRepository) ListOpenSessions(ctx context.Context) ([]*models.OpenSession, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OpenSession), args.Error(1)
}

func (m *MockAttendanceRepository) ClaimReminder(ctx context.Context, id uuid.UUID, now, notBefore time.Time) (bool, error) {
	args := m.Called(ctx, id, now, notBefore)
	return args.Bool(0), args.Error(1)
}

type MockSiteRepository struct {
	mock.Mock
}

func (m *MockSiteRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Site, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Site), args.Error(1)
}

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) ListByEmployee(ctx context.Context, tenantID, employeeID uuid.UUID, limit int) ([]*models.Document, error) {
	args := m.Called(ctx, tenantID, employeeID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Document), args.Error(1)
}

type MockWhatsAppService struct {
	mock.Mock
}

func (m *MockWhatsAppService) Send(ctx context.Context, to, body string) error {
	args := m.Called(ctx, to, body)
	return args.Error(0)
}

func (m *MockWhatsAppService) DownloadMedia(ctx context.Context, mediaID string) (*Media, error) {
	args := m.Called(ctx, mediaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Media), args.Error(1)
}

type MockMinioService struct {
	mock.Mock
}

func (m *MockMinioService) Upload(ctx context.Context, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	args := m.Called(ctx, objectName, reader, objectSize, contentType)
	return args.Error(0)
}

func (m *MockMinioService) GetPresignedURL(ctx context.Context, objectName string) (string, error) {
	args := m.Called(ctx, objectName)
	return args.String(0), args.Error(1)
}

func (m *MockMinioService) EnsureBucketExists(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Notify(ctx context.Context, tenant *models.Tenant, manager *models.Employee, alert Alert) (DispatchOutcome, error) {
	args := m.Called(ctx, tenant, manager, alert)
	return args.Get(0).(DispatchOutcome), args.Error(1)
}

func (m *MockNotificationService) NotifyAll(ctx context.Context, tenant *models.Tenant, alert Alert) ([]DispatchResult, error) {
	args := m.Called(ctx, tenant, alert)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]DispatchResult), args.Error(1)
}

// passthroughTx runs the callback directly, recording whether it failed.
type passthroughTx struct {
	calls int
	err   error
}

func (p *passthroughTx) WithinTx(ctx context.Context, fn func(context.Context) error) error {
	p.calls++
	p.err = fn(ctx)
	return p.err
}
