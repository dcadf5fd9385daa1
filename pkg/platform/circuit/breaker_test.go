package circuit

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerStartsClosed(t *testing.T) {
	b := New("grunnlag-outbox")
	assert.Equal(t, "grunnlag-outbox", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "closed", b.State().String())
}

func TestBreakerTransitions(t *testing.T) {
	t.Run("consecutive failures open the circuit once", func(t *testing.T) {
		b := New("outbox", WithFailureThreshold(3))
		var opened int
		for i := 0; i < 5; i++ {
			_, change := b.RecordFailure()
			if change.Opened {
				opened++
			}
		}
		assert.Equal(t, 1, opened)
		assert.Equal(t, "open", b.State().String())
	})

	t.Run("a success in between restarts the failure run", func(t *testing.T) {
		b := New("outbox", WithFailureThreshold(2))
		b.RecordFailure()
		b.RecordSuccess()
		b.RecordFailure()
		assert.False(t, b.IsOpen())
		b.RecordFailure()
		assert.True(t, b.IsOpen())
	})

	t.Run("closing needs an unbroken run of successes", func(t *testing.T) {
		b := New("outbox", WithFailureThreshold(1), WithSuccessThreshold(2))
		b.RecordFailure()
		require.True(t, b.IsOpen())

		primary, _ := b.RecordSuccess()
		assert.False(t, primary)
		fallback, change := b.RecordFailure()
		assert.True(t, fallback)
		assert.False(t, change.Opened, "already open")

		b.RecordSuccess()
		primary, change = b.RecordSuccess()
		assert.True(t, primary)
		assert.True(t, change.Closed)
		assert.False(t, b.IsOpen())
	})

	t.Run("reset closes immediately", func(t *testing.T) {
		b := New("outbox", WithFailureThreshold(1))
		b.RecordFailure()
		b.Reset()
		assert.Equal(t, StateClosed, b.State())
	})

	t.Run("non-positive options keep defaults", func(t *testing.T) {
		b := New("outbox", WithFailureThreshold(0), WithSuccessThreshold(-1))
		assert.Equal(t, 5, b.failureThreshold)
		assert.Equal(t, 2, b.successThreshold)
	})
}

func TestBreakerConcurrentUse(t *testing.T) {
	b := New("outbox", WithFailureThreshold(1000))
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.RecordFailure()
			b.RecordSuccess()
			_ = b.IsOpen()
		}()
	}
	wg.Wait()
	assert.False(t, b.IsOpen())
}
