package handlers

import (
	"net/http"
	"time"

	"pointeuse/internal/common"
	"pointeuse/internal/jobs"
	"pointeuse/internal/jobs/background"

	"github.com/labstack/echo/v4"
)

// JobStatusProvider reports the scheduled scans.
type JobStatusProvider interface {
	Status() []background.JobStatus
}

// JobHandlers exposes manual triggers for the reminder scans.
type JobHandlers struct {
	runner    jobs.Runner
	scheduler JobStatusProvider
}

func NewJobHandlers(runner jobs.Runner, scheduler JobStatusProvider) *JobHandlers {
	return &JobHandlers{runner: runner, scheduler: scheduler}
}

// ListJobs handles GET /admin/jobs
func (h *JobHandlers) ListJobs(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"jobs": h.scheduler.Status(),
	})
}

// RunMorningNudge handles POST /admin/jobs/morning-nudge/run
func (h *JobHandlers) RunMorningNudge(c echo.Context) error {
	at, ok := runAt(c)
	if !ok {
		return common.SendValidationError(c, "at", "must be an RFC3339 timestamp")
	}

	report, err := h.runner.RunMorningNudgeScan(c.Request().Context(), at)
	if err != nil {
		return common.SendServerError(c, "Morning nudge scan failed")
	}
	return c.JSON(http.StatusOK, report)
}

// RunGhostSessions handles POST /admin/jobs/ghost-sessions/run
func (h *JobHandlers) RunGhostSessions(c echo.Context) error {
	at, ok := runAt(c)
	if !ok {
		return common.SendValidationError(c, "at", "must be an RFC3339 timestamp")
	}

	report, err := h.runner.RunGhostSessionScan(c.Request().Context(), at)
	if err != nil {
		return common.SendServerError(c, "Ghost session scan failed")
	}
	return c.JSON(http.StatusOK, report)
}

// runAt reads the optional "at" query parameter, defaulting to now.
func runAt(c echo.Context) (time.Time, bool) {
	raw := c.QueryParam("at")
	if raw == "" {
		return time.Now(), true
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}
