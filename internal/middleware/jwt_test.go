package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-0123456789"

func serveAdmin(t *testing.T, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.GET("/admin/jobs", func(c echo.Context) error {
		claims, err := AdminFromContext(c)
		require.NoError(t, err)
		return c.String(http.StatusOK, claims.Subject)
	}, AdminJWT(testSecret))

	req := httptest.NewRequest(http.MethodGet, "/admin/jobs", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAdminJWT_AcceptsAdminToken(t *testing.T) {
	token, err := NewAdminToken(testSecret, "ops@example.com", time.Hour)
	require.NoError(t, err)

	rec := serveAdmin(t, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ops@example.com", rec.Body.String())
}

func TestAdminJWT_RejectsMissingOrForeignTokens(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, serveAdmin(t, "").Code)

	foreign, err := NewAdminToken("another-secret-0123456789", "ops", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serveAdmin(t, "Bearer "+foreign).Code)

	expired, err := NewAdminToken(testSecret, "ops", -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serveAdmin(t, "Bearer "+expired).Code)
}

func TestAdminJWT_RequiresAdminRole(t *testing.T) {
	claims := &AdminClaims{Role: "manager", RegisteredClaims: jwt.RegisteredClaims{Subject: "sophie"}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, serveAdmin(t, "Bearer "+token).Code)
}
