package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/property-listing/backend/internal/filters"
	"github.com/anonto42/property-listing/backend/internal/middleware"
	"github.com/anonto42/property-listing/backend/internal/models"
	"github.com/anonto42/property-listing/backend/internal/repositories"
	"github.com/anonto42/property-listing/backend/pkg/events"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// PropertyHandler handles listing HTTP requests
type PropertyHandler struct {
	propertyRepository repositories.PropertyRepository
	cache              *middleware.ResponseCache
	publisher          events.Publisher
}

// NewPropertyHandler creates a new PropertyHandler. cache may be nil.
func NewPropertyHandler(propertyRepo repositories.PropertyRepository, cache *middleware.ResponseCache, publisher events.Publisher) *PropertyHandler {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &PropertyHandler{
		propertyRepository: propertyRepo,
		cache:              cache,
		publisher:          publisher,
	}
}

// RegisterPropertyRoutes registers listing routes. Reads are public and cached, writes
// need requireAuth and the mutating ones also ownership of the listing.
func (h *PropertyHandler) RegisterPropertyRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	isOwner := middleware.PropertyOwnerMiddleware(h.propertyRepository)

	g.GET("/properties", h.GetProperties, h.cache.Middleware(middleware.QueryKey("properties"), middleware.StaticTag(middleware.PropertiesTag)))
	g.GET("/properties/:id", h.GetProperty, h.cache.Middleware(middleware.ParamKey("property", "id"), requestedPropertyTag))
	g.POST("/properties", h.CreateProperty, requireAuth)
	g.PUT("/properties/:id", h.UpdateProperty, requireAuth, isOwner)
	g.DELETE("/properties/:id", h.DeleteProperty, requireAuth, isOwner)
}

// GetProperties searches listings by the query string filters
func (h *PropertyHandler) GetProperties(c echo.Context) error {
	filter := filters.FromQuery(c.QueryParams())
	if filter.Unsatisfiable() {
		log.Debug().Strs("params", filter.Invalid()).Msg("unparseable search parameters, returning no listings")
	}

	properties, err := h.propertyRepository.FindProperties(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	for i := range properties {
		middleware.AddCacheTags(c, middleware.PropertyTag(properties[i].ID.Hex()))
	}
	return c.JSON(http.StatusOK, properties)
}

// GetProperty returns a single listing
func (h *PropertyHandler) GetProperty(c echo.Context) error {
	property, err := h.propertyRepository.GetPropertyByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) || errors.Is(err, repositories.ErrInvalidID) {
			return echo.NewHTTPError(http.StatusNotFound, "Property not found")
		}
		return err
	}

	middleware.AddCacheTags(c, middleware.PropertyTag(property.ID.Hex()))
	return c.JSON(http.StatusOK, property)
}

// CreateProperty stores a listing owned by the caller
func (h *PropertyHandler) CreateProperty(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreatePropertyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	property := req.ToProperty(currentUserID)
	if err := h.propertyRepository.CreateProperty(ctx, property); err != nil {
		return err
	}

	h.cache.Invalidate(ctx, middleware.PropertiesTag)
	h.publish(ctx, events.PropertyCreated, property)
	return c.JSON(http.StatusOK, property)
}

// UpdateProperty merges the supplied fields into the listing
func (h *PropertyHandler) UpdateProperty(c echo.Context) error {
	var req models.UpdatePropertyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	id := c.Param("id")
	updated, err := h.propertyRepository.UpdateProperty(ctx, id, req.SetDocument())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Property not found")
		}
		return err
	}

	h.cache.Invalidate(ctx, middleware.PropertiesTag, middleware.PropertyTag(updated.ID.Hex()))
	h.publish(ctx, events.PropertyUpdated, updated)
	return c.JSON(http.StatusOK, updated)
}

// DeleteProperty removes the listing
func (h *PropertyHandler) DeleteProperty(c echo.Context) error {
	ctx := c.Request().Context()
	property := middleware.PropertyFromContext(c)
	id := c.Param("id")

	if err := h.propertyRepository.DeleteProperty(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Property not found")
		}
		return err
	}

	h.cache.Invalidate(ctx, middleware.PropertiesTag, middleware.PropertyTag(id))
	if property != nil {
		h.publish(ctx, events.PropertyDeleted, property)
	}
	return c.String(http.StatusOK, "Deleted")
}

// requestedPropertyTag tags a single-listing read before the listing is loaded. Hex ids
// are case-insensitive and writes invalidate the lower-case form.
func requestedPropertyTag(c echo.Context) string {
	return middleware.PropertyTag(strings.ToLower(c.Param("id")))
}

func (h *PropertyHandler) publish(ctx context.Context, key string, property *models.Property) {
	if err := h.publisher.PublishJSON(ctx, key, property); err != nil {
		log.Warn().Err(err).Str("routing_key", key).Str("property_id", property.ID.Hex()).Msg("failed to publish listing event")
	}
}
