package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func serveWebhook(secret, method, body, signature string) (*httptest.ResponseRecorder, string) {
	var received string
	e := echo.New()
	handler := func(c echo.Context) error {
		b, _ := io.ReadAll(c.Request().Body)
		received = string(b)
		return c.NoContent(http.StatusOK)
	}
	e.Add(method, "/webhooks/whatsapp", handler, WebhookSignature(secret))

	req := httptest.NewRequest(method, "/webhooks/whatsapp", strings.NewReader(body))
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, received
}

func TestWebhookSignature_ValidBodyReachesHandler(t *testing.T) {
	body := `{"object":"whatsapp_business_account"}`

	rec, received := serveWebhook("app-secret", http.MethodPost, body, "sha256="+Sign("app-secret", []byte(body)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body, received)
}

func TestWebhookSignature_Rejects(t *testing.T) {
	body := `{"object":"whatsapp_business_account"}`

	rec, _ := serveWebhook("app-secret", http.MethodPost, body, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = serveWebhook("app-secret", http.MethodPost, body, "sha256="+Sign("other", []byte(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = serveWebhook("app-secret", http.MethodPost, body+" ", "sha256="+Sign("app-secret", []byte(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookSignature_SkipsVerificationChallengeAndEmptySecret(t *testing.T) {
	rec, _ := serveWebhook("app-secret", http.MethodGet, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = serveWebhook("", http.MethodPost, "{}", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVerifySignature(t *testing.T) {
	assert.True(t, VerifySignature("s", Sign("s", []byte("payload")), []byte("payload")))
	assert.False(t, VerifySignature("s", "deadbeef", []byte("payload")))
}
