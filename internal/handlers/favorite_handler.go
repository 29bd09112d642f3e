package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/property-listing/backend/internal/models"
	"github.com/anonto42/property-listing/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FavoriteHandler handles favorite HTTP requests
type FavoriteHandler struct {
	favoriteRepository repositories.FavoriteRepository
	propertyRepository repositories.PropertyRepository
}

// NewFavoriteHandler creates a new FavoriteHandler
func NewFavoriteHandler(favoriteRepo repositories.FavoriteRepository, propertyRepo repositories.PropertyRepository) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteRepository: favoriteRepo,
		propertyRepository: propertyRepo,
	}
}

// RegisterFavoriteRoutes registers favorite routes behind m
func (h *FavoriteHandler) RegisterFavoriteRoutes(g *echo.Group, m ...echo.MiddlewareFunc) {
	g.POST("/favorites", h.CreateFavorite, m...)
	g.GET("/favorites", h.GetFavorites, m...)
	g.DELETE("/favorites/:id", h.DeleteFavorite, m...)
}

// CreateFavorite bookmarks a listing for the caller. Favoriting the same listing twice
// creates two records.
func (h *FavoriteHandler) CreateFavorite(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateFavoriteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	propertyID, err := repositories.ObjectIDFromHex(req.PropertyID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid property id")
	}

	favorite := &models.Favorite{
		UserID:     currentUserID,
		PropertyID: propertyID,
	}
	if err := h.favoriteRepository.CreateFavorite(c.Request().Context(), favorite); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, favorite)
}

// GetFavorites lists the caller's favorites with each listing joined in
func (h *FavoriteHandler) GetFavorites(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	favorites, err := h.favoriteRepository.GetFavoritesByUser(ctx, currentUserID)
	if err != nil {
		return err
	}

	ids := make([]primitive.ObjectID, 0, len(favorites))
	for _, f := range favorites {
		ids = append(ids, f.PropertyID)
	}
	properties, err := h.propertyRepository.GetPropertiesByIDs(ctx, ids)
	if err != nil {
		return err
	}

	views := make([]models.FavoriteView, 0, len(favorites))
	for _, f := range favorites {
		view := models.FavoriteView{ID: f.ID, UserID: f.UserID, CreatedAt: f.CreatedAt}
		if p, ok := properties[f.PropertyID]; ok {
			view.Property = &p
		}
		views = append(views, view)
	}
	return c.JSON(http.StatusOK, views)
}

// DeleteFavorite removes one of the caller's favorites
func (h *FavoriteHandler) DeleteFavorite(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	id := c.Param("id")
	favorite, err := h.favoriteRepository.GetFavoriteByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) || errors.Is(err, repositories.ErrInvalidID) {
			return echo.NewHTTPError(http.StatusNotFound, "Favorite not found")
		}
		return err
	}
	if favorite.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
	}

	if err := h.favoriteRepository.DeleteFavorite(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Favorite not found")
		}
		return err
	}
	return c.String(http.StatusOK, "Deleted")
}
