package handlers

import (
	"net/http"

	"github.com/anonto42/property-listing/backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// getUserIDFromContext extracts the authenticated user's id set by JWTAuthMiddleware
func getUserIDFromContext(c echo.Context) string {
	return middleware.UserIDFromContext(c)
}

// bindAndValidate decodes the request body into req and runs the registered validator
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}
