package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"grunnlag/internal/grunnlag/models"
	"grunnlag/pkg/domain"
	"grunnlag/pkg/platform/sentinel"
)

// RedisCache shares snapshots between instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, sakID domain.SakID, versjon int64) (*models.Opplysningsgrunnlag, error) {
	b, err := c.client.Get(ctx, key(sakID, versjon)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cached snapshot: %w", err)
	}
	return decode(b)
}

func (c *RedisCache) Set(ctx context.Context, g *models.Opplysningsgrunnlag) error {
	if g == nil {
		return nil
	}
	b, err := g.Canonical()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := c.client.Set(ctx, key(g.SakID, g.Versjon), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached snapshot: %w", err)
	}
	return nil
}
