package router

import (
	"context"
	"fmt"

	"github.com/anonto42/property-listing/backend/internal/auth"
	"github.com/anonto42/property-listing/backend/internal/handlers"
	"github.com/anonto42/property-listing/backend/internal/middleware"
	"github.com/anonto42/property-listing/backend/internal/repositories"
	"github.com/anonto42/property-listing/backend/pkg/config"
	"github.com/anonto42/property-listing/backend/pkg/events"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Dependencies are the shared resources the routes are built from
type Dependencies struct {
	DB            *config.DB
	UserStore     string
	ResponseCache *middleware.ResponseCache // nil disables response caching
	Tokens        *auth.TokenIssuer
	FirebaseAuth  handlers.IDTokenVerifier // nil disables the Firebase exchange
	Publisher     events.Publisher
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(ctx context.Context, e *echo.Echo, deps Dependencies) error {
	database := deps.DB.Database

	// --- Initialize Repositories ---
	userRepo, err := newUserRepository(ctx, deps)
	if err != nil {
		return err
	}
	propertyRepo := repositories.NewMongoPropertyRepository(database)
	favoriteRepo := repositories.NewMongoFavoriteRepository(database)
	recommendationRepo := repositories.NewMongoRecommendationRepository(database)

	for _, r := range []indexer{propertyRepo, favoriteRepo, recommendationRepo} {
		if err := r.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}
	log.Info().Msg("MongoDB indexes ensured.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/", handlers.Root)

	api := e.Group("/api")

	// --- Unprotected routes for authentication ---
	authHandler := handlers.NewAuthHandler(userRepo, deps.Tokens, deps.FirebaseAuth)
	authHandler.RegisterAuthRoutes(api.Group("/auth"))
	log.Info().Msg("Auth routes configured.")

	requireAuth := middleware.JWTAuthMiddleware(deps.Tokens)

	// Listing routes: public cached reads, owner-guarded writes
	propertyHandler := handlers.NewPropertyHandler(propertyRepo, deps.ResponseCache, deps.Publisher)
	propertyHandler.RegisterPropertyRoutes(api, requireAuth)
	log.Info().Msg("Property routes configured.")

	// --- Protected routes (require JWT authentication) ---
	// Guarded per route so unknown /api paths stay 404
	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterProfileRoutes(api, requireAuth)
	log.Info().Msg("User profile routes configured.")

	favoriteHandler := handlers.NewFavoriteHandler(favoriteRepo, propertyRepo)
	favoriteHandler.RegisterFavoriteRoutes(api, requireAuth)
	log.Info().Msg("Favorite routes configured.")

	recommendationHandler := handlers.NewRecommendationHandler(recommendationRepo, userRepo, propertyRepo, deps.Publisher)
	recommendationHandler.RegisterRecommendationRoutes(api, requireAuth)
	log.Info().Msg("Recommendation routes configured.")

	return nil
}

func newUserRepository(ctx context.Context, deps Dependencies) (repositories.UserRepository, error) {
	if deps.UserStore == config.UserStorePostgres {
		repo := repositories.NewPostgresUserRepository(deps.DB.Postgres)
		if err := repo.Migrate(); err != nil {
			return nil, fmt.Errorf("failed to auto migrate users: %w", err)
		}
		log.Info().Msg("PostgreSQL auto-migrations completed for users.")
		return repo, nil
	}

	repo := repositories.NewMongoUserRepository(deps.DB.Database)
	if err := repo.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create user indexes: %w", err)
	}
	return repo, nil
}
