package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	AdminRole = "admin"

	adminContextKey = "admin"
)

// AdminClaims are carried by the tokens the back office uses to reach /admin.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AdminJWT validates HS256 bearer tokens signed with secret and only lets admin-role
// tokens through.
func AdminJWT(secret string) echo.MiddlewareFunc {
	validate := echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		ContextKey: adminContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(AdminClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return validate(func(c echo.Context) error {
			claims, err := AdminFromContext(c)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid claims")
			}
			if claims.Role != AdminRole {
				return echo.NewHTTPError(http.StatusForbidden, "Admin role required")
			}
			return next(c)
		})
	}
}

// AdminFromContext returns the claims AdminJWT stored on the request.
func AdminFromContext(c echo.Context) (*AdminClaims, error) {
	token, ok := c.Get(adminContextKey).(*jwt.Token)
	if !ok {
		return nil, errors.New("missing admin token")
	}
	claims, ok := token.Claims.(*AdminClaims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}
	return claims, nil
}

// NewAdminToken signs an admin token for subject, valid for ttl.
func NewAdminToken(secret, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &AdminClaims{
		Role: AdminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
