package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Finder is the lookup shape shared by the patient and doctor stores.
type Finder[T any] interface {
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
}

// CachedFinder is a read-through cache in front of a Finder. Only hits are
// cached. Redis failures fall through to the wrapped Finder.
type CachedFinder[T any] struct {
	client *redis.Client
	next   Finder[T]
	kind   string
	ttl    time.Duration
	log    zerolog.Logger
}

func NewCachedFinder[T any](client *redis.Client, next Finder[T], kind string, ttl time.Duration, log zerolog.Logger) *CachedFinder[T] {
	return &CachedFinder[T]{
		client: client,
		next:   next,
		kind:   kind,
		ttl:    ttl,
		log:    log.With().Str("component", "lookup_cache").Str("kind", kind).Logger(),
	}
}

func (c *CachedFinder[T]) key(id uuid.UUID) string {
	return fmt.Sprintf("lookup:%s:%s", c.kind, id.String())
}

func (c *CachedFinder[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	key := c.key(id)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v T
		if jsonErr := json.Unmarshal(raw, &v); jsonErr == nil {
			return &v, nil
		}
		c.log.Warn().Str("key", key).Msg("dropping undecodable cache entry")
		_ = c.client.Del(ctx, key).Err()
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}

	v, err := c.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(v); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return v, nil
}

// Invalidate drops the cached copy of id.
func (c *CachedFinder[T]) Invalidate(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("invalidate %s: %w", c.key(id), err)
	}
	return nil
}
