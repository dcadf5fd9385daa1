package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"grunnlag/internal/grunnlag/models"
	"grunnlag/internal/grunnlag/outbox"
	"grunnlag/internal/grunnlag/store"
	"grunnlag/pkg/domain"
	"grunnlag/pkg/platform/circuit"
)

var now = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type fakePublisher struct {
	mu      sync.Mutex
	fail    bool
	calls   int
	batches [][]outbox.Entry
}

func (p *fakePublisher) Publish(_ context.Context, entries []outbox.Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.batches = append(p.batches, append([]outbox.Entry(nil), entries...))
	return nil
}

func (p *fakePublisher) published() []outbox.Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []outbox.Entry
	for _, b := range p.batches {
		out = append(out, b...)
	}
	return out
}

type RelaySuite struct {
	suite.Suite
	ctx       context.Context
	store     *store.InMemoryStore
	publisher *fakePublisher
	clock     time.Time
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, new(RelaySuite))
}

func (s *RelaySuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewInMemoryStore(store.WithMemoryClock(func() time.Time { return now }))
	s.publisher = &fakePublisher{}
	s.clock = now
}

func (s *RelaySuite) appendGallery(sakID domain.SakID, n int) {
	soeker := domain.MustFolkeregisteridentifikator("09498230323")
	nye := make([]models.NyOpplysning, n)
	for i := range nye {
		nye[i] = models.NyOpplysning{
			Type:  models.TypePersongalleri,
			Kilde: models.UkjentInnsender{Registrert: now},
			Verdi: models.Persongalleri{Soeker: soeker},
		}
	}
	_, err := s.store.Append(s.ctx, sakID, nye)
	s.Require().NoError(err)
}

func (s *RelaySuite) relay(opts ...outbox.RelayOption) *outbox.Relay {
	opts = append([]outbox.RelayOption{
		outbox.WithBatchSize(2),
		outbox.WithClock(func() time.Time { return s.clock }),
	}, opts...)
	return outbox.NewRelay(s.store, s.publisher, opts...)
}

func (s *RelaySuite) TestDrainPublishesInOrder() {
	s.appendGallery(1, 3)
	s.appendGallery(2, 2)

	n, err := s.relay().Drain(s.ctx)
	s.Require().NoError(err)
	s.Equal(5, n)
	s.Equal(0, s.store.PendingOutbox())

	published := s.publisher.published()
	s.Require().Len(published, 5)
	var last int64
	for _, e := range published[:3] {
		s.Equal(domain.SakID(1), e.SakID)
		s.Equal([]byte("1"), e.Key())
		var payload outbox.OpplysningLagtTil
		s.Require().NoError(json.Unmarshal(e.Payload, &payload))
		s.Equal(outbox.HendelseOpplysningLagtTil, payload.Hendelse)
		s.Greater(payload.Hendelsenummer, last)
		last = payload.Hendelsenummer
	}
}

func (s *RelaySuite) TestFailedBatchStaysPending() {
	s.appendGallery(1, 2)
	s.publisher.fail = true

	_, err := s.relay().Drain(s.ctx)
	s.Require().Error(err)
	s.Equal(2, s.store.PendingOutbox())

	s.publisher.fail = false
	n, err := s.relay().Drain(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, n)
	s.Equal(0, s.store.PendingOutbox())
}

func (s *RelaySuite) TestBreakerLimitsToProbes() {
	s.appendGallery(1, 4)
	s.publisher.fail = true
	breaker := circuit.New("test", circuit.WithFailureThreshold(1), circuit.WithSuccessThreshold(1))
	r := s.relay(outbox.WithBreaker(breaker, time.Minute))

	_, err := r.Drain(s.ctx)
	s.Require().Error(err)
	s.True(breaker.IsOpen())
	s.Equal(1, s.publisher.calls)

	s.Run("no probe before the interval", func() {
		n, err := r.Drain(s.ctx)
		s.Require().NoError(err)
		s.Zero(n)
		s.Equal(1, s.publisher.calls)
	})

	s.Run("successful probe closes the circuit", func() {
		s.publisher.fail = false
		s.clock = s.clock.Add(2 * time.Minute)

		n, err := r.Drain(s.ctx)
		s.Require().NoError(err)
		s.False(breaker.IsOpen())
		s.Equal(4, n)
		s.Equal(0, s.store.PendingOutbox())
		s.Len(s.publisher.batches[0], 1, "probe carries a single entry")
	})
}

func (s *RelaySuite) TestRunStopsOnCancel() {
	s.appendGallery(1, 1)
	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan error, 1)
	go func() {
		done <- s.relay(outbox.WithPollInterval(10 * time.Millisecond)).Run(ctx)
	}()

	s.Eventually(func() bool { return s.store.PendingOutbox() == 0 }, time.Second, 10*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(time.Second):
		s.Fail("relay did not stop")
	}
}
