package middleware

import (
	"net/http"
	"strings"

	"github.com/anonto42/property-listing/backend/internal/models"
	"github.com/labstack/echo/v4"
)

const userContextKey = "user"

// TokenVerifier validates a bearer token and returns its claims
type TokenVerifier interface {
	Verify(token string) (*models.JwtCustomClaims, error)
}

// JWTAuthMiddleware checks for a valid JWT and stores its claims in the context
func JWTAuthMiddleware(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "No token provided")
			}

			// Expecting "Bearer <token>"
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			claims, err := verifier.Verify(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(userContextKey, claims)
			return next(c)
		}
	}
}

// ClaimsFromContext returns the claims stored by JWTAuthMiddleware, or nil
func ClaimsFromContext(c echo.Context) *models.JwtCustomClaims {
	claims, _ := c.Get(userContextKey).(*models.JwtCustomClaims)
	return claims
}

// UserIDFromContext returns the authenticated user's id, or "" when unauthenticated
func UserIDFromContext(c echo.Context) string {
	if claims := ClaimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return ""
}
