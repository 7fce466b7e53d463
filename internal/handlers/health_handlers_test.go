package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pointeuse/internal/secrets"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func readiness(db, cache Pinger, credentials secrets.Status) *httptest.ResponseRecorder {
	h := NewHealthHandlers(db, cache, credentials, "test")
	e := echo.New()
	e.GET("/health", h.LivenessCheck)
	e.GET("/health/ready", h.ReadinessCheck)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	return rec
}

func TestReadinessCheck_Ready(t *testing.T) {
	rec := readiness(pinger{}, pinger{}, secrets.StatusOK)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"whatsapp_credentials":"ok"`)
}

func TestReadinessCheck_CorruptedCredentialIsReportedOnly(t *testing.T) {
	rec := readiness(pinger{}, pinger{}, secrets.StatusCorrupted)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"whatsapp_credentials":"corrupted"`)
}

func TestReadinessCheck_DependencyDown(t *testing.T) {
	rec := readiness(pinger{}, pinger{err: errors.New("connection refused")}, secrets.StatusOK)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"unhealthy"`)
	assert.Contains(t, rec.Body.String(), `"database":"healthy"`)
}

func TestLivenessCheck(t *testing.T) {
	h := NewHealthHandlers(pinger{err: errors.New("down")}, pinger{}, secrets.StatusMissing, "test")
	e := echo.New()
	e.GET("/health", h.LivenessCheck)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"alive"`)
}
