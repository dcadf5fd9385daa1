package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grunnlag/internal/grunnlag/models"
	"grunnlag/pkg/domain"
	"grunnlag/pkg/platform/sentinel"
)

func snapshot(versjon int64) *models.Opplysningsgrunnlag {
	g := models.Tomt(1)
	g.Versjon = versjon
	return g
}

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("hit after set, keyed by version", func(t *testing.T) {
		c := NewInMemoryCache(time.Minute, 10)
		require.NoError(t, c.Set(ctx, snapshot(3)))

		got, err := c.Get(ctx, 1, 3)
		require.NoError(t, err)
		assert.Equal(t, snapshot(3), got)

		_, err = c.Get(ctx, 1, 2)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("every hit is a fresh copy", func(t *testing.T) {
		c := NewInMemoryCache(time.Minute, 10)
		g := snapshot(2)
		g.Personer = []models.Persongrunnlag{{
			Rolle:        models.RolleSoeker,
			Fnr:          domain.MustFolkeregisteridentifikator("09498230323"),
			Opplysninger: models.Opplysninger{},
		}}
		require.NoError(t, c.Set(ctx, g))
		g.Personer = nil

		first, err := c.Get(ctx, 1, 2)
		require.NoError(t, err)
		require.Len(t, first.Personer, 1)
		first.Personer[0].Rolle = models.RolleAvdoed
		first.Sak[models.TypeSpraak] = models.Grunnlagsverdi{}

		second, err := c.Get(ctx, 1, 2)
		require.NoError(t, err)
		assert.NotSame(t, first, second)
		assert.Equal(t, models.RolleSoeker, second.Personer[0].Rolle)
		assert.Empty(t, second.Sak)
	})

	t.Run("entries expire after ttl", func(t *testing.T) {
		c := NewInMemoryCache(20*time.Millisecond, 10)
		require.NoError(t, c.Set(ctx, snapshot(0)))

		assert.Eventually(t, func() bool {
			_, err := c.Get(ctx, 1, 0)
			return err != nil
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("least recently used entry is evicted at capacity", func(t *testing.T) {
		c := NewInMemoryCache(time.Minute, 2)
		require.NoError(t, c.Set(ctx, snapshot(1)))
		require.NoError(t, c.Set(ctx, snapshot(2)))
		_, err := c.Get(ctx, 1, 1)
		require.NoError(t, err)
		require.NoError(t, c.Set(ctx, snapshot(3)))

		_, err = c.Get(ctx, 1, 2)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		_, err = c.Get(ctx, 1, 1)
		assert.NoError(t, err)
		_, err = c.Get(ctx, 1, 3)
		assert.NoError(t, err)
	})
}
