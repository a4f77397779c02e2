package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jsbarre1/jwt-pizza/internal/auth"
)

// claimsKey is the echo context key under which Authenticate stores
// the decoded token claims.
const claimsKey = "claims"

// Authenticate returns an Echo middleware that validates a Bearer
// session token and injects its claims into the request context.
// Absence of a token, a bad signature, or a revoked token all yield
// 401 with a structured {message} body. Handlers read the caller's
// identity and roles via ClaimsFrom.
func Authenticate(tokens *auth.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			claims, err := tokens.Decode(c.Request().Context(), raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}

			c.Set(claimsKey, claims)
			c.Set(tokenKey, raw)
			return next(c)
		}
	}
}

// tokenKey stores the raw bearer string so the logout handler can
// revoke the exact token that authenticated the request.
const tokenKey = "token"

// ClaimsFrom returns the claims stored by Authenticate, or nil when
// the route was reached without authentication.
func ClaimsFrom(c echo.Context) *auth.Claims {
	if v, ok := c.Get(claimsKey).(*auth.Claims); ok {
		return v
	}
	return nil
}

// TokenFrom returns the raw bearer token of the current request.
func TokenFrom(c echo.Context) string {
	if v, ok := c.Get(tokenKey).(string); ok {
		return v
	}
	return ""
}
