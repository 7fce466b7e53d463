package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	SignatureHeader = "X-Hub-Signature-256"

	signaturePrefix = "sha256="
	maxWebhookBody  = 1 << 20
)

// WebhookSignature rejects POST bodies whose X-Hub-Signature-256 does not match the
// HMAC-SHA256 of the body under appSecret. The body is restored for the next handler.
// With an empty appSecret every request is let through.
func WebhookSignature(appSecret string) echo.MiddlewareFunc {
	if appSecret == "" {
		log.Printf("WARNING: webhook app secret is empty, signatures are not verified")
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if appSecret == "" || req.Method != http.MethodPost {
				return next(c)
			}

			body, err := io.ReadAll(io.LimitReader(req.Body, maxWebhookBody))
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "Failed to read request body")
			}
			req.Body = io.NopCloser(bytes.NewReader(body))

			signature := req.Header.Get(SignatureHeader)
			if signature == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing webhook signature")
			}
			if !VerifySignature(appSecret, strings.TrimPrefix(signature, signaturePrefix), body) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid webhook signature")
			}
			return next(c)
		}
	}
}

// VerifySignature compares a hex HMAC-SHA256 of body in constant time.
func VerifySignature(secret, signature string, body []byte) bool {
	return hmac.Equal([]byte(signature), []byte(Sign(secret, body)))
}

// Sign returns the hex HMAC-SHA256 of body.
func Sign(secret string, body []byte) string {
	hash := hmac.New(sha256.New, []byte(secret))
	hash.Write(body)
	return hex.EncodeToString(hash.Sum(nil))
}
