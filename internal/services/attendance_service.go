package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pointeuse/internal/models"
	"pointeuse/internal/repositories"
	"pointeuse/internal/vocabulary"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrSessionAlreadyOpen = errors.New("attendance: a session is already open")
	ErrNoOpenSession      = errors.New("attendance: no open session")
)

type Location struct {
	Latitude  float64
	Longitude float64
}

type CheckInRequest struct {
	Location *Location
	PhotoRef *string
	At       time.Time
}

type CheckInResult struct {
	Attendance *models.Attendance
	Site       *models.Site
	// OutsideSite is set when a location was given and lies beyond the site radius.
	OutsideSite bool
}

// AttendanceService opens and closes attendance sessions.
type AttendanceService interface {
	// CheckIn opens a session. While another one is open it returns ErrSessionAlreadyOpen
	// together with a result holding that session.
	CheckIn(ctx context.Context, employee *models.Employee, req CheckInRequest) (*CheckInResult, error)
	CheckOut(ctx context.Context, employee *models.Employee, at time.Time) (*models.Attendance, error)
	OpenSession(ctx context.Context, employeeID uuid.UUID) (*models.Attendance, error)
}

type attendanceService struct {
	attendanceRepo repositories.AttendanceRepository
	siteRepo       repositories.SiteRepository
	notifier       NotificationService
}

func NewAttendanceService(attendanceRepo repositories.AttendanceRepository, siteRepo repositories.SiteRepository, notifier NotificationService) AttendanceService {
	return &attendanceService{
		attendanceRepo: attendanceRepo,
		siteRepo:       siteRepo,
		notifier:       notifier,
	}
}

func (s *attendanceService) OpenSession(ctx context.Context, employeeID uuid.UUID) (*models.Attendance, error) {
	open, err := s.attendanceRepo.GetOpenByEmployee(ctx, employeeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return open, err
}

func (s *attendanceService) CheckIn(ctx context.Context, employee *models.Employee, req CheckInRequest) (*CheckInResult, error) {
	at := req.At
	if at.IsZero() {
		at = time.Now()
	}

	open, err := s.OpenSession(ctx, employee.ID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return &CheckInResult{Attendance: open}, ErrSessionAlreadyOpen
	}

	attendance := &models.Attendance{
		ID:         uuid.New(),
		EmployeeID: employee.ID,
		TenantID:   employee.TenantID,
		SiteID:     employee.SiteID,
		CheckIn:    at,
		PhotoRef:   req.PhotoRef,
	}
	result := &CheckInResult{Attendance: attendance}

	if req.Location != nil && (employee.Tenant == nil || vocabulary.Feature(employee.Tenant, vocabulary.FeatureGPS)) {
		lat, lon := req.Location.Latitude, req.Location.Longitude
		attendance.Latitude = &lat
		attendance.Longitude = &lon

		if employee.SiteID != nil {
			site, err := s.siteRepo.GetByID(ctx, employee.TenantID, *employee.SiteID)
			switch {
			case err == nil:
				distance := site.DistanceMeters(lat, lon)
				attendance.DistanceFromSite = &distance
				result.Site = site
				result.OutsideSite = distance > float64(site.RadiusMeters)
			case errors.Is(err, pgx.ErrNoRows):
			default:
				return nil, fmt.Errorf("load site: %w", err)
			}
		}
	}

	if err := s.attendanceRepo.Create(ctx, attendance); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrSessionAlreadyOpen
		}
		return nil, err
	}

	if result.OutsideSite && employee.Tenant != nil {
		alert := Alert{
			Type:       models.NotificationGeofence,
			Title:      vocabulary.GeofenceTitle(employee.Tenant, employee.Name),
			Message:    vocabulary.GeofenceMessage(employee.Tenant, employee.Name, result.Site.Name, *attendance.DistanceFromSite, result.Site.RadiusMeters),
			EmployeeID: &employee.ID,
			At:         at,
		}
		if _, err := s.notifier.NotifyAll(ctx, employee.Tenant, alert); err != nil {
			log.Printf("[NOTIFY] Tenant=%s: geofence alert for %s: %v", employee.TenantID, employee.ID, err)
		}
	}
	return result, nil
}

func (s *attendanceService) CheckOut(ctx context.Context, employee *models.Employee, at time.Time) (*models.Attendance, error) {
	if at.IsZero() {
		at = time.Now()
	}
	closed, err := s.attendanceRepo.CloseOpen(ctx, employee.ID, at)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoOpenSession
	}
	if err != nil {
		return nil, err
	}
	return closed, nil
}
