package repositories

import (
	"context"
	"time"

	"pointeuse/internal/models"

	"github.com/google/uuid"
)

type AttendanceRepository interface {
	Create(ctx context.Context, attendance *models.Attendance) error
	GetOpenByEmployee(ctx context.Context, employeeID uuid.UUID) (*models.Attendance, error)
	// CloseOpen sets check_out on the employee's open session and returns it.
	CloseOpen(ctx context.Context, employeeID uuid.UUID, at time.Time) (*models.Attendance, error)
	// ListOpenSessions returns every open session platform-wide with employee and tenant.
	ListOpenSessions(ctx context.Context) ([]*models.OpenSession, error)
	// ClaimReminder stamps last_reminder_sent_at = now if the session is still open and
	// no reminder was stamped after notBefore. It reports whether this caller won.
	ClaimReminder(ctx context.Context, id uuid.UUID, now, notBefore time.Time) (bool, error)
}

type attendanceRepo struct {
	db DBTX
}

func NewAttendanceRepo(db DBTX) AttendanceRepository {
	return &attendanceRepo{db: db}
}

const attendanceColumns = `id, employee_id, tenant_id, site_id, check_in, check_out, last_reminder_sent_at, latitude, longitude, distance_from_site, photo_ref, created_at`

func attendanceDest(a *models.Attendance) []any {
	return []any{&a.ID, &a.EmployeeID, &a.TenantID, &a.SiteID, &a.CheckIn, &a.CheckOut, &a.LastReminderSentAt, &a.Latitude, &a.Longitude, &a.DistanceFromSite, &a.PhotoRef, &a.CreatedAt}
}

func (r *attendanceRepo) Create(ctx context.Context, attendance *models.Attendance) error {
	query := `
		INSERT INTO attendances (id, employee_id, tenant_id, site_id, check_in, latitude, longitude, distance_from_site, photo_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	`
	_, err := conn(ctx, r.db).Exec(ctx, query,
		attendance.ID, attendance.EmployeeID, attendance.TenantID, attendance.SiteID, attendance.CheckIn,
		attendance.Latitude, attendance.Longitude, attendance.DistanceFromSite, attendance.PhotoRef)
	return err
}

func (r *attendanceRepo) GetOpenByEmployee(ctx context.Context, employeeID uuid.UUID) (*models.Attendance, error) {
	attendance := &models.Attendance{}
	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE employee_id = $1 AND check_out IS NULL
		ORDER BY check_in DESC
		LIMIT 1
	`
	if err := conn(ctx, r.db).QueryRow(ctx, query, employeeID).Scan(attendanceDest(attendance)...); err != nil {
		return nil, err
	}
	return attendance, nil
}

func (r *attendanceRepo) CloseOpen(ctx context.Context, employeeID uuid.UUID, at time.Time) (*models.Attendance, error) {
	attendance := &models.Attendance{}
	query := `
		UPDATE attendances
		SET check_out = $2
		WHERE employee_id = $1 AND check_out IS NULL
		RETURNING ` + attendanceColumns
	if err := conn(ctx, r.db).QueryRow(ctx, query, employeeID, at).Scan(attendanceDest(attendance)...); err != nil {
		return nil, err
	}
	return attendance, nil
}

func (r *attendanceRepo) ListOpenSessions(ctx context.Context) ([]*models.OpenSession, error) {
	query := `
		SELECT ` + prefixed("a", attendanceColumns) + `, ` + employeeColumns + `, ` + prefixed("t", tenantColumns) + `
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		JOIN tenants t ON t.id = a.tenant_id
		WHERE a.check_out IS NULL
		ORDER BY a.check_in
	`
	rows, err := conn(ctx, r.db).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.OpenSession
	for rows.Next() {
		s := &models.OpenSession{}
		dest := attendanceDest(&s.Attendance)
		dest = append(dest, employeeDest(&s.Employee)...)
		dest = append(dest, tenantDest(&s.Tenant)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		s.Employee.Tenant = &s.Tenant
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *attendanceRepo) ClaimReminder(ctx context.Context, id uuid.UUID, now, notBefore time.Time) (bool, error) {
	query := `
		UPDATE attendances
		SET last_reminder_sent_at = $2
		WHERE id = $1 AND check_out IS NULL
		AND (last_reminder_sent_at IS NULL OR last_reminder_sent_at <= $3)
	`
	tag, err := conn(ctx, r.db).Exec(ctx, query, id, now, notBefore)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
