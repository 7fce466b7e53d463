package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"pointeuse/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type NotificationServiceTestSuite struct {
	suite.Suite
	notifications *MockNotificationRepository
	employees     *MockEmployeeRepository
	sender        *MockWhatsAppService
	service       NotificationService

	tenant  *models.Tenant
	manager *models.Employee
	worker  uuid.UUID
	context context.Context
}

func (suite *NotificationServiceTestSuite) SetupTest() {
	suite.notifications = &MockNotificationRepository{}
	suite.employees = &MockEmployeeRepository{}
	suite.sender = &MockWhatsAppService{}
	suite.service = NewNotificationService(suite.notifications, suite.employees, suite.sender)

	suite.tenant = &models.Tenant{ID: uuid.New(), Timezone: "Europe/Paris"}
	suite.manager = &models.Employee{ID: uuid.New(), TenantID: suite.tenant.ID, Phone: "33622222222", Role: models.RoleManager}
	suite.worker = uuid.New()
	suite.context = context.Background()

	suite.notifications.Test(suite.T())
	suite.employees.Test(suite.T())
	suite.sender.Test(suite.T())
}

func (suite *NotificationServiceTestSuite) TearDownTest() {
	suite.notifications.AssertExpectations(suite.T())
	suite.employees.AssertExpectations(suite.T())
	suite.sender.AssertExpectations(suite.T())
}

func TestNotificationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(NotificationServiceTestSuite))
}

func (suite *NotificationServiceTestSuite) lateAlert(at time.Time) Alert {
	return Alert{Type: models.NotificationLate, Title: "Retard", Message: "Karim n'a pas pointé", EmployeeID: &suite.worker, At: at}
}

func (suite *NotificationServiceTestSuite) TestNotify_LateUsesTenantLocalDay() {
	// 23:30 UTC on March 3rd is March 4th in Paris.
	at := time.Date(2025, 3, 3, 23, 30, 0, 0, time.UTC)
	suite.notifications.On("Create", suite.context, mock.MatchedBy(func(n *models.Notification) bool {
		return n.DedupeDay == "2025-03-04" && n.ManagerID == suite.manager.ID && n.TenantID == suite.tenant.ID
	})).Return(true, nil).Once()
	suite.sender.On("Send", suite.context, "33622222222", "*Retard*\nKarim n'a pas pointé").Return(nil).Once()

	outcome, err := suite.service.Notify(suite.context, suite.tenant, suite.manager, suite.lateAlert(at))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), DispatchSent, outcome)
}

func (suite *NotificationServiceTestSuite) TestNotify_DuplicateLateIsSuppressed() {
	suite.notifications.On("Create", suite.context, mock.Anything).Return(false, nil).Once()

	outcome, err := suite.service.Notify(suite.context, suite.tenant, suite.manager, suite.lateAlert(time.Now()))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), DispatchSuppressed, outcome)
	suite.sender.AssertNotCalled(suite.T(), "Send", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *NotificationServiceTestSuite) TestNotify_ExpenseIsNeverDeduplicated() {
	suite.notifications.On("Create", suite.context, mock.MatchedBy(func(n *models.Notification) bool {
		return n.DedupeDay == "" && n.Type == models.NotificationExpense
	})).Return(true, nil).Once()
	suite.sender.On("Send", suite.context, suite.manager.Phone, mock.Anything).Return(nil).Once()

	alert := Alert{Type: models.NotificationExpense, Message: "12,50 €", EmployeeID: &suite.worker}
	outcome, err := suite.service.Notify(suite.context, suite.tenant, suite.manager, alert)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), DispatchSent, outcome)
}

func (suite *NotificationServiceTestSuite) TestNotify_SendFailureKeepsRecord() {
	suite.notifications.On("Create", suite.context, mock.Anything).Return(true, nil).Once()
	suite.sender.On("Send", suite.context, suite.manager.Phone, mock.Anything).Return(errors.New("whatsapp down")).Once()

	outcome, err := suite.service.Notify(suite.context, suite.tenant, suite.manager, suite.lateAlert(time.Now()))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), DispatchSendFailed, outcome)
}

func (suite *NotificationServiceTestSuite) TestNotify_PersistFailureIsReturned() {
	suite.notifications.On("Create", suite.context, mock.Anything).Return(false, errors.New("database unavailable")).Once()

	_, err := suite.service.Notify(suite.context, suite.tenant, suite.manager, suite.lateAlert(time.Now()))
	assert.Error(suite.T(), err)
}

func (suite *NotificationServiceTestSuite) TestNotify_ForeignManagerIsRefused() {
	stranger := &models.Employee{ID: uuid.New(), TenantID: uuid.New(), Role: models.RoleManager}

	_, err := suite.service.Notify(suite.context, suite.tenant, stranger, suite.lateAlert(time.Now()))
	assert.ErrorIs(suite.T(), err, ErrForeignManager)
}

func (suite *NotificationServiceTestSuite) TestNotifyAll_EachManagerIndependently() {
	other := &models.Employee{ID: uuid.New(), TenantID: suite.tenant.ID, Phone: "33633333333", Role: models.RoleManager}
	suite.employees.On("ListManagers", suite.context, suite.tenant.ID).Return([]*models.Employee{suite.manager, other}, nil).Once()
	suite.notifications.On("Create", suite.context, mock.MatchedBy(func(n *models.Notification) bool {
		return n.ManagerID == suite.manager.ID
	})).Return(false, errors.New("database unavailable")).Once()
	suite.notifications.On("Create", suite.context, mock.MatchedBy(func(n *models.Notification) bool {
		return n.ManagerID == other.ID
	})).Return(true, nil).Once()
	suite.sender.On("Send", suite.context, other.Phone, mock.Anything).Return(nil).Once()

	results, err := suite.service.NotifyAll(suite.context, suite.tenant, suite.lateAlert(time.Now()))
	require.NoError(suite.T(), err)
	require.Len(suite.T(), results, 2)
	assert.Error(suite.T(), results[0].Err)
	assert.Equal(suite.T(), DispatchSent, results[1].Outcome)
}

func (suite *NotificationServiceTestSuite) TestNotifyAll_ListFailure() {
	suite.employees.On("ListManagers", suite.context, suite.tenant.ID).Return(nil, errors.New("database unavailable")).Once()

	_, err := suite.service.NotifyAll(suite.context, suite.tenant, suite.lateAlert(time.Now()))
	assert.Error(suite.T(), err)
}
