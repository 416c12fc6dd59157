package jwks

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by a Cache that holds no document for a URI.
var ErrCacheMiss = errors.New("jwks: cache miss")

// Cache shares fetched JWKS documents between resolvers, typically across
// processes, so that a fleet performs one fetch per refresh window.
type Cache interface {
	// Get returns the document stored for uri and the time it was fetched
	// from the endpoint, or ErrCacheMiss.
	Get(ctx context.Context, uri string) (document []byte, fetchedAt time.Time, err error)

	// Set stores document, fetched from uri at fetchedAt, for ttl.
	Set(ctx context.Context, uri string, document []byte, fetchedAt time.Time, ttl time.Duration) error
}

// DefaultRedisKeyPrefix prefixes the Redis keys written by RedisCache.
const DefaultRedisKeyPrefix = "jwks:"

const (
	fieldDocument  = "document"
	fieldFetchedAt = "fetched_at"
)

// RedisCache is a Cache backed by Redis. Each document is a hash holding the
// document and its fetch time in Unix nanoseconds.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisCache returns a Cache storing documents in client under prefix.
// An empty prefix selects DefaultRedisKeyPrefix.
func NewRedisCache(client redis.UniversalClient, prefix string) (*RedisCache, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &RedisCache{client: client, prefix: prefix}, nil
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, uri string) ([]byte, time.Time, error) {
	values, err := c.client.HGetAll(ctx, c.prefix+uri).Result()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to read JWKS from redis: %w", err)
	}

	document, ok := values[fieldDocument]
	if !ok {
		return nil, time.Time{}, ErrCacheMiss
	}
	nanos, err := strconv.ParseInt(values[fieldFetchedAt], 10, 64)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("invalid JWKS fetch time in redis: %w", err)
	}

	return []byte(document), time.Unix(0, nanos), nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, uri string, document []byte, fetchedAt time.Time, ttl time.Duration) error {
	key := c.prefix + uri
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fieldDocument, document, fieldFetchedAt, fetchedAt.UnixNano())
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write JWKS to redis: %w", err)
	}
	return nil
}
