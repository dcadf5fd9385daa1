package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"grunnlag/internal/grunnlag/metrics"
	"grunnlag/pkg/platform/circuit"
)

// Publisher delivers a batch of entries to the event bus. The batch either
// succeeds as a whole or is retried as a whole.
type Publisher interface {
	Publish(ctx context.Context, entries []Entry) error
}

const (
	defaultPollInterval  = time.Second
	defaultBatchSize     = 100
	defaultProbeInterval = 30 * time.Second
)

// Relay moves unpublished outbox entries to the Publisher. Delivery is at
// least once: a crash between publish and commit republishes the batch.
type Relay struct {
	source    Source
	publisher Publisher
	breaker   *circuit.Breaker
	logger    *slog.Logger
	metrics   *metrics.Metrics
	clock     func() time.Time

	pollInterval  time.Duration
	batchSize     int
	probeInterval time.Duration

	mu        sync.Mutex
	nextProbe time.Time
}

type RelayOption func(*Relay)

func WithLogger(logger *slog.Logger) RelayOption {
	return func(r *Relay) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) RelayOption {
	return func(r *Relay) {
		r.metrics = m
	}
}

func WithPollInterval(d time.Duration) RelayOption {
	return func(r *Relay) {
		if d > 0 {
			r.pollInterval = d
		}
	}
}

func WithBatchSize(n int) RelayOption {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithBreaker replaces the default breaker. While it is open the relay only
// sends a single-entry probe every probe interval.
func WithBreaker(b *circuit.Breaker, probeInterval time.Duration) RelayOption {
	return func(r *Relay) {
		if b != nil {
			r.breaker = b
		}
		if probeInterval > 0 {
			r.probeInterval = probeInterval
		}
	}
}

func WithClock(clock func() time.Time) RelayOption {
	return func(r *Relay) {
		r.clock = clock
	}
}

func NewRelay(source Source, publisher Publisher, opts ...RelayOption) *Relay {
	r := &Relay{
		source:        source,
		publisher:     publisher,
		breaker:       circuit.New("grunnlag-outbox"),
		logger:        slog.Default(),
		clock:         time.Now,
		pollInterval:  defaultPollInterval,
		batchSize:     defaultBatchSize,
		probeInterval: defaultProbeInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls until ctx is cancelled. Publish failures are logged and retried
// on the next tick; only context cancellation ends the loop.
func (r *Relay) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "outbox relay started",
		"poll_interval", r.pollInterval,
		"batch_size", r.batchSize,
	)
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		if _, err := r.Drain(ctx); err != nil && ctx.Err() == nil {
			r.logger.WarnContext(ctx, "outbox relay tick failed", "error", err)
		}
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "outbox relay stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Drain publishes full batches until the outbox is empty, a batch fails or
// the breaker opens. It returns the number of entries published.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	total := 0
	for {
		limit, ok := r.allowance()
		if !ok {
			return total, nil
		}
		n, err := r.source.ClaimOutbox(ctx, limit, r.publish)
		total += n
		if err != nil {
			return total, err
		}
		if n < limit || r.breaker.IsOpen() {
			return total, nil
		}
	}
}

// allowance returns the batch size to claim, or false while the breaker is
// open and the next probe is not due.
func (r *Relay) allowance() (int, bool) {
	if !r.breaker.IsOpen() {
		return r.batchSize, true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock()
	if now.Before(r.nextProbe) {
		return 0, false
	}
	r.nextProbe = now.Add(r.probeInterval)
	return 1, true
}

func (r *Relay) publish(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := r.publisher.Publish(ctx, entries); err != nil {
		r.metrics.IncrementOutboxFailure()
		_, change := r.breaker.RecordFailure()
		if change.Opened {
			r.mu.Lock()
			r.nextProbe = r.clock().Add(r.probeInterval)
			r.mu.Unlock()
			r.metrics.SetBreakerOpen(true)
			r.logger.ErrorContext(ctx, "outbox circuit opened",
				"breaker", r.breaker.Name(),
				"error", err,
			)
		}
		return fmt.Errorf("publish %d outbox entries: %w", len(entries), err)
	}

	_, change := r.breaker.RecordSuccess()
	if change.Closed {
		r.metrics.SetBreakerOpen(false)
		r.logger.InfoContext(ctx, "outbox circuit closed", "breaker", r.breaker.Name())
	}
	r.metrics.AddOutboxPublished(len(entries))
	r.logger.DebugContext(ctx, "outbox entries published",
		"count", len(entries),
		"first_sak_id", entries[0].SakID,
	)
	return nil
}
