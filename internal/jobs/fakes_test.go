package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"pointeuse/internal/models"
	"pointeuse/internal/repositories"

	"github.com/google/uuid"
)

// In-memory stand-ins that keep state across scan runs, for the time-travel tests.

type sentMessage struct {
	To   string
	Body string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	fail map[string]error
}

func (f *fakeSender) Send(ctx context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[to]; err != nil {
		return err
	}
	f.sent = append(f.sent, sentMessage{To: to, Body: body})
	return nil
}

func (f *fakeSender) sentTo(phone string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.sent {
		if m.To == phone {
			n++
		}
	}
	return n
}

type fakeAttendanceRepo struct {
	repositories.AttendanceRepository

	mu       sync.Mutex
	sessions []*models.OpenSession
	claims   int
	claimErr map[uuid.UUID]error
	listErr  error
}

func (f *fakeAttendanceRepo) ListOpenSessions(ctx context.Context) ([]*models.OpenSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*models.OpenSession, 0, len(f.sessions))
	for _, s := range f.sessions {
		if !s.Attendance.IsOpen() {
			continue
		}
		cp := *s
		cp.Employee.Tenant = &cp.Tenant
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeAttendanceRepo) ClaimReminder(ctx context.Context, id uuid.UUID, now, notBefore time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.claimErr[id]; err != nil {
		return false, err
	}
	for _, s := range f.sessions {
		a := &s.Attendance
		if a.ID != id || !a.IsOpen() {
			continue
		}
		if a.LastReminderSentAt != nil && a.LastReminderSentAt.After(notBefore) {
			return false, nil
		}
		stamped := now
		a.LastReminderSentAt = &stamped
		f.claims++
		return true, nil
	}
	return false, nil
}

func (f *fakeAttendanceRepo) get(id uuid.UUID) models.Attendance {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.Attendance.ID == id {
			return s.Attendance
		}
	}
	return models.Attendance{}
}

type fakeTenantRepo struct {
	repositories.TenantRepository
	tenants []*models.Tenant
}

func (f *fakeTenantRepo) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	if offset >= len(f.tenants) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.tenants) {
		end = len(f.tenants)
	}
	return f.tenants[offset:end], nil
}

type fakeEmployeeRepo struct {
	repositories.EmployeeRepository

	mu        sync.Mutex
	employees []*models.Employee
	checkIns  map[uuid.UUID][]time.Time
	scans     int
	scanErr   map[uuid.UUID]error
}

func (f *fakeEmployeeRepo) ListManagers(ctx context.Context, tenantID uuid.UUID) ([]*models.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Employee
	for _, e := range f.employees {
		if e.TenantID == tenantID && e.IsManager() && !e.IsArchived {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmployeeRepo) ListWithoutCheckIn(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]*models.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans++
	if err := f.scanErr[tenantID]; err != nil {
		return nil, err
	}
	var out []*models.Employee
	for _, e := range f.employees {
		if e.TenantID != tenantID || e.IsManager() || e.IsArchived {
			continue
		}
		checkedIn := false
		for _, at := range f.checkIns[e.ID] {
			if !at.Before(from) && at.Before(to) {
				checkedIn = true
			}
		}
		if !checkedIn {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmployeeRepo) checkIn(employeeID uuid.UUID, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.checkIns == nil {
		f.checkIns = map[uuid.UUID][]time.Time{}
	}
	f.checkIns[employeeID] = append(f.checkIns[employeeID], at)
}

type fakeReminderRepo struct {
	mu      sync.Mutex
	markers map[string]bool
}

func (f *fakeReminderRepo) Claim(ctx context.Context, employeeID uuid.UUID, kind, day string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markers == nil {
		f.markers = map[string]bool{}
	}
	key := employeeID.String() + "|" + kind + "|" + day
	if f.markers[key] {
		return false, nil
	}
	f.markers[key] = true
	return true, nil
}

type fakeNotificationRepo struct {
	mu   sync.Mutex
	rows []*models.Notification
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *models.Notification) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n.DedupeDay != "" && n.EmployeeID != nil {
		for _, r := range f.rows {
			if r.ManagerID == n.ManagerID && r.Type == n.Type && r.DedupeDay == n.DedupeDay &&
				r.EmployeeID != nil && *r.EmployeeID == *n.EmployeeID {
				return false, nil
			}
		}
	}
	cp := *n
	f.rows = append(f.rows, &cp)
	return true, nil
}

func (f *fakeNotificationRepo) count(managerID uuid.UUID, typ models.NotificationType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.rows {
		if r.ManagerID == managerID && r.Type == typ {
			n++
		}
	}
	return n
}

var errDatabaseDown = errors.New("database unavailable")
