// Package cache stores assembled snapshots by (sak, versjon).
//
// A snapshot for a given version never changes, so entries are only evicted
// by TTL or capacity, never invalidated. Both caches hold the canonical JSON
// and decode a fresh snapshot on every hit, so callers never share one.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"grunnlag/internal/grunnlag/models"
	"grunnlag/pkg/domain"
	"grunnlag/pkg/platform/sentinel"
)

const defaultCapacity = 1024

func key(sakID domain.SakID, versjon int64) string {
	return fmt.Sprintf("grunnlag:snapshot:%d:%d", sakID, versjon)
}

func decode(b []byte) (*models.Opplysningsgrunnlag, error) {
	var g models.Opplysningsgrunnlag
	if err := json.Unmarshal(b, &g); err != nil {
		return nil, fmt.Errorf("decode cached snapshot: %w", err)
	}
	return &g, nil
}

// InMemoryCache keeps snapshots in process memory, least recently used
// first out, with a TTL.
type InMemoryCache struct {
	lru *expirable.LRU[string, []byte]
}

func NewInMemoryCache(ttl time.Duration, capacity int) *InMemoryCache {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &InMemoryCache{lru: expirable.NewLRU[string, []byte](capacity, nil, ttl)}
}

// Get returns sentinel.ErrNotFound on a miss or an expired entry.
func (c *InMemoryCache) Get(_ context.Context, sakID domain.SakID, versjon int64) (*models.Opplysningsgrunnlag, error) {
	b, ok := c.lru.Get(key(sakID, versjon))
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return decode(b)
}

func (c *InMemoryCache) Set(_ context.Context, g *models.Opplysningsgrunnlag) error {
	if g == nil {
		return nil
	}
	b, err := g.Canonical()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	c.lru.Add(key(g.SakID, g.Versjon), b)
	return nil
}
