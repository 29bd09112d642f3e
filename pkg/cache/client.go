package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/anonto42/property-listing/backend/pkg/retry"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Options describes how to reach the Redis server
type Options struct {
	URL      string // redis://, rediss:// or a bare host:port
	Password string // overrides any password in URL
	TLS      bool   // force TLS even for redis:// URLs (hosted Redis)
}

func (o Options) redisOptions() (*redis.Options, error) {
	raw := strings.TrimSpace(o.URL)
	if !strings.Contains(raw, "://") {
		raw = "redis://" + raw
	}
	opts, err := redis.ParseURL(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if o.Password != "" {
		opts.Password = o.Password
	}
	if o.TLS && opts.TLSConfig == nil {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts, nil
}

// NewRedisClient builds the shared Redis client and waits for it to answer a PING, retrying
// with backoff. When every attempt fails the client is still returned together with the
// error: go-redis reconnects on demand, so the caller may keep serving with a cache that is
// unavailable for now.
func NewRedisClient(ctx context.Context, o Options, rc retry.Config) (*redis.Client, error) {
	opts, err := o.redisOptions()
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	err = retry.Do(ctx, rc, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		return client.Ping(pingCtx).Err()
	}, func(attempt int, err error, next time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", next).Str("addr", opts.Addr).Msg("redis not reachable yet")
	})
	if err != nil {
		return client, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	log.Info().Str("addr", opts.Addr).Msg("Successfully connected to Redis!")
	return client, nil
}
