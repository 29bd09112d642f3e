package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/anonto42/property-listing/backend/internal/models"
	"github.com/anonto42/property-listing/backend/internal/repositories"
	"github.com/anonto42/property-listing/backend/pkg/events"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecommendationHandler handles recommendation HTTP requests
type RecommendationHandler struct {
	recommendationRepository repositories.RecommendationRepository
	userRepository           repositories.UserRepository
	propertyRepository       repositories.PropertyRepository
	publisher                events.Publisher
}

// NewRecommendationHandler creates a new RecommendationHandler
func NewRecommendationHandler(
	recommendationRepo repositories.RecommendationRepository,
	userRepo repositories.UserRepository,
	propertyRepo repositories.PropertyRepository,
	publisher events.Publisher,
) *RecommendationHandler {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &RecommendationHandler{
		recommendationRepository: recommendationRepo,
		userRepository:           userRepo,
		propertyRepository:       propertyRepo,
		publisher:                publisher,
	}
}

// RegisterRecommendationRoutes registers recommendation routes behind m
func (h *RecommendationHandler) RegisterRecommendationRoutes(g *echo.Group, m ...echo.MiddlewareFunc) {
	g.POST("/recommend", h.Recommend, m...)
	g.GET("/recommendations", h.GetRecommendations, m...)
}

// Recommend sends a listing to another user identified by email
func (h *RecommendationHandler) Recommend(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateRecommendationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	recipient, err := h.userRepository.GetUserByEmail(ctx, req.RecipientEmail)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Recipient not found")
		}
		return err
	}

	propertyID, err := repositories.ObjectIDFromHex(req.PropertyID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid property id")
	}

	rec := &models.Recommendation{
		FromUserID:    currentUserID,
		ToUserID:      recipient.ID,
		PropertyID:    propertyID,
		Message:       req.Message,
		RecommendedAt: time.Now(),
	}
	if err := h.recommendationRepository.CreateRecommendation(ctx, rec); err != nil {
		return err
	}

	if err := h.publisher.PublishJSON(ctx, events.RecommendationCreated, rec); err != nil {
		log.Warn().Err(err).Str("recommendation_id", rec.ID.Hex()).Msg("failed to publish recommendation event")
	}

	return c.JSON(http.StatusOK, models.RecommendationResponse{
		Message:        "Property recommended successfully",
		Recommendation: rec,
	})
}

// GetRecommendations lists the recommendations the caller received, newest first, with
// the sender and the listing joined in
func (h *RecommendationHandler) GetRecommendations(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	recs, err := h.recommendationRepository.GetRecommendationsForUser(ctx, currentUserID)
	if err != nil {
		return err
	}

	senderIDs := make([]string, 0, len(recs))
	propertyIDs := make([]primitive.ObjectID, 0, len(recs))
	for _, r := range recs {
		senderIDs = append(senderIDs, r.FromUserID)
		propertyIDs = append(propertyIDs, r.PropertyID)
	}

	senders, err := h.userRepository.GetUsersByIDs(ctx, senderIDs)
	if err != nil {
		return err
	}
	properties, err := h.propertyRepository.GetPropertiesByIDs(ctx, propertyIDs)
	if err != nil {
		return err
	}

	views := make([]models.RecommendationView, 0, len(recs))
	for _, r := range recs {
		view := models.RecommendationView{
			ID:            r.ID,
			ToUserID:      r.ToUserID,
			Message:       r.Message,
			RecommendedAt: r.RecommendedAt,
		}
		if u, ok := senders[r.FromUserID]; ok {
			view.From = &models.UserCompact{ID: u.ID, Email: u.Email}
		}
		if p, ok := properties[r.PropertyID]; ok {
			view.Property = &p
		}
		views = append(views, view)
	}
	return c.JSON(http.StatusOK, views)
}
