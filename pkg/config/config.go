package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

const (
	UserStoreMongo    = "mongo"
	UserStorePostgres = "postgres"
)

type Config struct {
	Port string `envconfig:"PORT" default:"3000"`
	Env  string `envconfig:"ENV" default:"development"`

	MongoURI      string `envconfig:"MONGO_URI" required:"true"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"propertydb"`

	// Credential store backend: "mongo" or "postgres"
	UserStore   string `envconfig:"USER_STORE" default:"mongo"`
	PostgresUrl string `envconfig:"POSTGRES_CONN_STR"`

	// Response cache; disabled when RedisURL is empty
	RedisURL               string        `envconfig:"REDIS_URL"`
	RedisPassword          string        `envconfig:"REDIS_PASSWORD"`
	RedisTLS               bool          `envconfig:"REDIS_TLS" default:"false"`
	CacheTTL               time.Duration `envconfig:"CACHE_TTL" default:"1h"`
	CacheInvalidateOnWrite bool          `envconfig:"CACHE_INVALIDATE_ON_WRITE" default:"true"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTExpiry time.Duration `envconfig:"JWT_EXPIRY" default:"72h"`

	FirebaseCredentialsPath string `envconfig:"FIREBASE_CREDENTIALS_PATH"`
	RabbitMQURL             string `envconfig:"RABBITMQ_URL"`
	SentryDSN               string `envconfig:"SENTRY_DSN"`
}

// Load reads .env (when present) into the environment and then decodes the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, assuming environment variables are set.")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI environment variable not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set")
	}

	switch cfg.UserStore {
	case UserStoreMongo:
	case UserStorePostgres:
		if cfg.PostgresUrl == "" {
			return nil, fmt.Errorf("POSTGRES_CONN_STR is required when USER_STORE=%s", UserStorePostgres)
		}
	default:
		return nil, fmt.Errorf("unknown USER_STORE %q", cfg.UserStore)
	}

	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
