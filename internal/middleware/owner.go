package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/anonto42/property-listing/backend/internal/models"
	"github.com/anonto42/property-listing/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

const propertyContextKey = "property"

// PropertyGetter is the part of the listing store the ownership guard needs
type PropertyGetter interface {
	GetPropertyByID(ctx context.Context, id string) (*models.Property, error)
}

// PropertyOwnerMiddleware lets the request through only when the authenticated user
// created the listing named by the :id path parameter. It must run after
// JWTAuthMiddleware. The loaded listing is available via PropertyFromContext.
func PropertyOwnerMiddleware(properties PropertyGetter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			property, err := properties.GetPropertyByID(c.Request().Context(), c.Param("id"))
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) || errors.Is(err, repositories.ErrInvalidID) {
					return echo.NewHTTPError(http.StatusNotFound, "Property not found")
				}
				return err
			}

			userID := UserIDFromContext(c)
			if userID == "" || property.CreatedBy != userID {
				return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
			}

			c.Set(propertyContextKey, property)
			return next(c)
		}
	}
}

// PropertyFromContext returns the listing loaded by PropertyOwnerMiddleware
func PropertyFromContext(c echo.Context) *models.Property {
	p, _ := c.Get(propertyContextKey).(*models.Property)
	return p
}
