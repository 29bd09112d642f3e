package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "propertydb", cfg.MongoDatabase)
	assert.Equal(t, UserStoreMongo, cfg.UserStore)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.True(t, cfg.CacheInvalidateOnWrite)
	assert.Equal(t, 72*time.Hour, cfg.JWTExpiry)
	assert.Empty(t, cfg.RedisURL)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REDIS_URL", "rediss://cache.example.com:6379")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("CACHE_INVALIDATE_ON_WRITE", "false")
	t.Setenv("USER_STORE", "postgres")
	t.Setenv("POSTGRES_CONN_STR", "postgres://u:p@localhost/users")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "rediss://cache.example.com:6379", cfg.RedisURL)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.False(t, cfg.CacheInvalidateOnWrite)
	assert.Equal(t, UserStorePostgres, cfg.UserStore)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("MONGO_URI", "placeholder")
	require.NoError(t, os.Unsetenv("MONGO_URI"))

	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_PostgresNeedsConnString(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("USER_STORE", "postgres")
	t.Setenv("POSTGRES_CONN_STR", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_UnknownUserStore(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("USER_STORE", "ldap")

	_, err := Load()
	assert.Error(t, err)
}
