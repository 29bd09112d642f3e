package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/anonto42/property-listing/backend/pkg/cache"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const (
	cacheTagsContextKey = "cache.tags"
	cacheHeader         = "X-Cache"

	// PropertiesTag marks every cached listing search
	PropertiesTag = "properties"
)

// PropertyTag marks cached responses that contain the listing with the given id
func PropertyTag(id string) string {
	return "property:" + id
}

// KeyFunc derives the cache key of a request
type KeyFunc func(c echo.Context) string

// QueryKey keys a request by its query parameters. url.Values.Encode sorts by name, so
// the same parameters in a different order share an entry.
func QueryKey(prefix string) KeyFunc {
	return func(c echo.Context) string {
		return prefix + ":" + c.QueryParams().Encode()
	}
}

// ParamKey keys a request by one path parameter
func ParamKey(prefix, name string) KeyFunc {
	return func(c echo.Context) string {
		return prefix + ":" + c.Param(name)
	}
}

// TagFunc derives a cache tag from a request before the handler runs
type TagFunc func(c echo.Context) string

// StaticTag is a TagFunc that always returns tag
func StaticTag(tag string) TagFunc {
	return func(echo.Context) string { return tag }
}

// AddCacheTags attaches tags to the response being produced. They are recorded with the
// cache entry on a miss.
func AddCacheTags(c echo.Context, tags ...string) {
	existing, _ := c.Get(cacheTagsContextKey).([]string)
	c.Set(cacheTagsContextKey, append(existing, tags...))
}

func cacheTagsFromContext(c echo.Context) []string {
	tags, _ := c.Get(cacheTagsContextKey).([]string)
	return tags
}

// ResponseCache memoizes successful JSON responses of read endpoints. Backend failures
// never fail a request: the handler simply runs uncached.
type ResponseCache struct {
	store             cache.Store
	ttl               time.Duration
	invalidateOnWrite bool
}

// NewResponseCache creates a ResponseCache. A nil store disables caching.
func NewResponseCache(store cache.Store, ttl time.Duration, invalidateOnWrite bool) *ResponseCache {
	return &ResponseCache{store: store, ttl: ttl, invalidateOnWrite: invalidateOnWrite}
}

func (rc *ResponseCache) enabled() bool {
	return rc != nil && rc.store != nil
}

// Middleware caches GET responses under key, tagged with tags plus any added by the
// handler through AddCacheTags. Only tags are guarded against concurrent invalidation:
// when one of them is invalidated while the handler runs, the response is not stored.
func (rc *ResponseCache) Middleware(key KeyFunc, tags ...TagFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rc.enabled() || c.Request().Method != http.MethodGet {
				return next(c)
			}

			ctx := c.Request().Context()
			cacheKey := key(c)

			cached, ok, err := rc.store.Get(ctx, cacheKey)
			if err != nil {
				log.Warn().Err(err).Str("key", cacheKey).Msg("cache lookup failed, serving uncached")
				c.Response().Header().Set(cacheHeader, "BYPASS")
				return next(c)
			}
			if ok {
				log.Debug().Str("key", cacheKey).Msg("serving from cache")
				c.Response().Header().Set(cacheHeader, "HIT")
				return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, cached)
			}

			requestTags := make([]string, len(tags))
			for i, tag := range tags {
				requestTags[i] = tag(c)
			}
			gens, err := rc.store.Generations(ctx, requestTags...)
			if err != nil {
				log.Warn().Err(err).Str("key", cacheKey).Msg("cache generation lookup failed, serving uncached")
				c.Response().Header().Set(cacheHeader, "BYPASS")
				return next(c)
			}

			c.Response().Header().Set(cacheHeader, "MISS")
			recorder := &bodyRecorder{ResponseWriter: c.Response().Writer}
			c.Response().Writer = recorder
			err = next(c)
			c.Response().Writer = recorder.ResponseWriter
			if err != nil {
				return err
			}

			if c.Response().Status != http.StatusOK || recorder.body.Len() == 0 {
				return nil
			}

			allTags := append(requestTags, cacheTagsFromContext(c)...)
			// the client may already be gone; the entry is still worth keeping
			storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
			defer cancel()
			err = rc.store.Set(storeCtx, cacheKey, recorder.body.Bytes(), rc.ttl, gens, allTags...)
			switch {
			case errors.Is(err, cache.ErrStale):
				log.Debug().Str("key", cacheKey).Msg("response outdated by a concurrent write, not cached")
			case err != nil:
				log.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache response")
			}
			return nil
		}
	}
}

// Invalidate drops every cached response carrying one of tags. It is a no-op when caching
// is disabled or invalidation on write is turned off; failures are only logged.
func (rc *ResponseCache) Invalidate(ctx context.Context, tags ...string) {
	if !rc.enabled() || !rc.invalidateOnWrite || len(tags) == 0 {
		return
	}
	if err := rc.store.InvalidateTags(ctx, tags...); err != nil {
		log.Warn().Err(err).Strs("tags", tags).Msg("cache invalidation failed")
	}
}

// bodyRecorder copies everything written to the client
type bodyRecorder struct {
	http.ResponseWriter
	body bytes.Buffer
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *bodyRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
