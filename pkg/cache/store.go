// Package cache stores serialized responses in Redis with a fixed lifetime. Entries can be
// tagged on write so that a later write to the underlying data can drop every entry that
// carried a tag.
//
// Each tag also has a generation counter that invalidation bumps. A value computed while
// one of its tags was invalidated is refused by Set, so a slow cache miss cannot put back
// an entry that a concurrent write just purged.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	tagKeyPrefix = "cache:tag:"
	genKeyPrefix = "cache:gen:"

	// generation counters outlive any entry they guard
	genTTL = 7 * 24 * time.Hour
)

// ErrStale is returned by Set when a tag was invalidated after its generation was read
var ErrStale = errors.New("cache: tag invalidated while the value was computed")

// Generations is a snapshot of tag generations, taken before the cached value is computed
type Generations map[string]int64

// Store is the response cache backend
type Store interface {
	// Get returns the stored value. A missing or expired key is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Generations reads the current generation of each tag
	Generations(ctx context.Context, tags ...string) (Generations, error)

	// Set stores value under key for ttl and records key under each tag. It returns
	// ErrStale without writing when any tag in gens has moved on since the snapshot.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, gens Generations, tags ...string) error

	// InvalidateTags bumps the generation of the tags and deletes every key recorded under them
	InvalidateTags(ctx context.Context, tags ...string) error
}

// RedisStore implements Store on a Redis server. Each tag is a set of cache keys.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a new RedisStore
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func tagKey(tag string) string {
	return tagKeyPrefix + tag
}

func genKey(tag string) string {
	return genKeyPrefix + tag
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get from cache: %w", err)
	}
	return val, true, nil
}

func (s *RedisStore) Generations(ctx context.Context, tags ...string) (Generations, error) {
	gens := make(Generations, len(tags))
	if len(tags) == 0 {
		return gens, nil
	}
	keys := make([]string, len(tags))
	for i, tag := range tags {
		keys[i] = genKey(tag)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cache generations: %w", err)
	}
	for i, v := range vals {
		gens[tags[i]] = parseGeneration(v)
	}
	return gens, nil
}

func parseGeneration(v interface{}) int64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration, gens Generations, tags ...string) error {
	watched := make([]string, 0, len(gens))
	for tag := range gens {
		watched = append(watched, genKey(tag))
	}

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		for tag, want := range gens {
			current, err := tx.Get(ctx, genKey(tag)).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if parseGeneration(current) != want {
				return ErrStale
			}
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, value, ttl)
			for _, tag := range tags {
				pipe.SAdd(ctx, tagKey(tag), key)
				// the tag set lives as long as its newest member
				pipe.Expire(ctx, tagKey(tag), ttl)
			}
			return nil
		})
		return err
	}, watched...)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStale), errors.Is(err, redis.TxFailedErr):
		return ErrStale
	default:
		return fmt.Errorf("failed to set in cache: %w", err)
	}
}

func (s *RedisStore) InvalidateTags(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		// bump first: a Set racing with this call either lands before the members are read
		// or is refused
		_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Incr(ctx, genKey(tag))
			pipe.Expire(ctx, genKey(tag), genTTL)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to bump cache tag %s: %w", tag, err)
		}

		keys, err := s.client.SMembers(ctx, tagKey(tag)).Result()
		if err != nil {
			return fmt.Errorf("failed to read cache tag %s: %w", tag, err)
		}
		keys = append(keys, tagKey(tag))
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to invalidate cache tag %s: %w", tag, err)
		}
	}
	return nil
}
