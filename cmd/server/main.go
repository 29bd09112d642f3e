package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/property-listing/backend/internal/auth"
	"github.com/anonto42/property-listing/backend/internal/handlers"
	"github.com/anonto42/property-listing/backend/internal/middleware"
	"github.com/anonto42/property-listing/backend/internal/router"
	"github.com/anonto42/property-listing/backend/pkg/cache"
	"github.com/anonto42/property-listing/backend/pkg/config"
	"github.com/anonto42/property-listing/backend/pkg/events"
	"github.com/anonto42/property-listing/backend/pkg/firebase"
	"github.com/anonto42/property-listing/backend/pkg/logger"
	"github.com/anonto42/property-listing/backend/pkg/retry"
	"github.com/anonto42/property-listing/backend/validators"
	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init("property-listing", cfg.Env)

	sentryEnabled, err := config.InitSentry(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("Sentry initialization failed, continuing without error reporting")
	}
	if sentryEnabled {
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize databases")
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	responseCache, closeCache := setupCache(ctx, cfg)
	defer closeCache()
	publisher := setupPublisher(cfg)
	defer publisher.Close()

	// Firebase is optional; without it the token exchange answers 503
	var firebaseAuth handlers.IDTokenVerifier
	if cfg.FirebaseCredentialsPath != "" {
		client, err := firebase.NewAuthClient(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Warn().Err(err).Msg("Firebase disabled")
		} else {
			log.Info().Msg("Firebase token exchange enabled")
			firebaseAuth = client
		}
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	// Setup global middleware
	config.SetupMiddleware(e, sentryEnabled)

	// Setup routes and dependencies
	err = router.SetupRoutes(ctx, e, router.Dependencies{
		DB:            db,
		UserStore:     cfg.UserStore,
		ResponseCache: responseCache,
		Tokens:        auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry),
		FirebaseAuth:  firebaseAuth,
		Publisher:     publisher,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up routes")
	}

	// Start server
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server stopped unexpectedly")
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("Server started")

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
}

// setupCache connects to Redis when configured. A Redis that is down at startup leaves the
// cache in place; lookups fail and requests are served uncached until it comes back.
func setupCache(ctx context.Context, cfg *config.Config) (*middleware.ResponseCache, func()) {
	if cfg.RedisURL == "" {
		log.Info().Msg("REDIS_URL not set, response cache disabled")
		return nil, func() {}
	}

	client, err := cache.NewRedisClient(ctx, cache.Options{
		URL:      cfg.RedisURL,
		Password: cfg.RedisPassword,
		TLS:      cfg.RedisTLS,
	}, retry.DefaultConfig())
	if client == nil {
		log.Error().Err(err).Msg("Response cache disabled")
		return nil, func() {}
	}
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable at startup, serving uncached until it recovers")
	}

	closeClient := func() {
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing Redis connection")
		}
	}
	return middleware.NewResponseCache(cache.NewRedisStore(client), cfg.CacheTTL, cfg.CacheInvalidateOnWrite), closeClient
}

func setupPublisher(cfg *config.Config) events.Publisher {
	if cfg.RabbitMQURL == "" {
		return events.NopPublisher{}
	}
	publisher, err := events.NewAMQPPublisher(cfg.RabbitMQURL, events.DefaultExchange)
	if err != nil {
		log.Warn().Err(err).Msg("RabbitMQ unavailable, change events disabled")
		return events.NopPublisher{}
	}
	log.Info().Str("exchange", events.DefaultExchange).Msg("Publishing change events to RabbitMQ")
	return publisher
}
