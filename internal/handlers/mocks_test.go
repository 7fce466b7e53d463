package handlers

import (
	"context"
	"time"

	"pointeuse/internal/jobs"
	"pointeuse/internal/jobs/background"
	"pointeuse/internal/models"
	"pointeuse/internal/services"

	"github.com/stretchr/testify/mock"
)

type MockBotService struct {
	mock.Mock
}

func (m *MockBotService) HandleMessage(ctx context.Context, msg services.InboundMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) RunMorningNudgeScan(ctx context.Context, now time.Time) (*jobs.MorningNudgeReport, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jobs.MorningNudgeReport), args.Error(1)
}

func (m *MockRunner) RunGhostSessionScan(ctx context.Context, now time.Time) (*jobs.GhostSessionReport, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jobs.GhostSessionReport), args.Error(1)
}

type staticStatus []background.JobStatus

func (s staticStatus) Status() []background.JobStatus { return s }

type MockEmployeeService struct {
	mock.Mock
}

func (m *MockEmployeeService) Resolve(ctx context.Context, raw string) (*models.Employee, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Employee), args.Error(1)
}

func (m *MockEmployeeService) Onboard(ctx context.Context, req *services.OnboardEmployeeRequest) (*models.Employee, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Employee), args.Error(1)
}

type pinger struct{ err error }

func (p pinger) Ping(ctx context.Context) error { return p.err }
