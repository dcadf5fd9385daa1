package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"grunnlag/internal/grunnlag/models"
	"grunnlag/internal/grunnlag/outbox"
	"grunnlag/pkg/domain"
	"grunnlag/pkg/platform/sentinel"
)

// numSakShards spreads append serialization over N mutexes keyed by sak id,
// so appends to different saker rarely contend.
const numSakShards = 64

// InMemoryStore keeps the opplysning log in process memory. It is used by
// tests and by the server when no database is configured.
type InMemoryStore struct {
	shards [numSakShards]sync.Mutex

	mu           sync.RWMutex
	saker        map[domain.SakID][]models.Opplysning
	behandlinger map[domain.BehandlingID]models.BehandlingVersjon
	outbox       []memoryOutboxEntry
	outboxMu     sync.Mutex

	clock func() time.Time
}

type memoryOutboxEntry struct {
	entry     outbox.Entry
	published bool
}

type InMemoryOption func(*InMemoryStore)

// WithMemoryClock sets the clock used for Opprettet.
func WithMemoryClock(clock func() time.Time) InMemoryOption {
	return func(s *InMemoryStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewInMemoryStore(opts ...InMemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		saker:        make(map[domain.SakID][]models.Opplysning),
		behandlinger: make(map[domain.BehandlingID]models.BehandlingVersjon),
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) shard(sakID domain.SakID) *sync.Mutex {
	return &s.shards[uint64(sakID)%numSakShards]
}

// Append stores nye atomically with consecutive hendelsenumre.
func (s *InMemoryStore) Append(ctx context.Context, sakID domain.SakID, nye []models.NyOpplysning) ([]models.Opplysning, error) {
	normalized, err := normalizeBatch(sakID, nye)
	if err != nil {
		return nil, err
	}

	lock := s.shard(sakID)
	lock.Lock()
	defer lock.Unlock()

	// Nothing is visible until the final write below, so a cancelled
	// context leaves no trace.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	siste := int64(len(s.saker[sakID]))
	s.mu.RUnlock()

	now := s.clock().UTC()
	stored := make([]models.Opplysning, 0, len(normalized))
	entries := make([]outbox.Entry, 0, len(normalized))
	for i, ny := range normalized {
		o := fromNy(sakID, siste+int64(i)+1, ny, now)
		entry, err := outbox.NewEntry(o)
		if err != nil {
			return nil, err
		}
		stored = append(stored, o)
		entries = append(entries, entry)
	}

	s.mu.Lock()
	s.saker[sakID] = append(s.saker[sakID], stored...)
	s.mu.Unlock()

	s.outboxMu.Lock()
	for _, e := range entries {
		s.outbox = append(s.outbox, memoryOutboxEntry{entry: e})
	}
	s.outboxMu.Unlock()

	return cloneRecords(stored), nil
}

func (s *InMemoryStore) AllRecords(ctx context.Context, sakID domain.SakID) ([]models.Opplysning, error) {
	return s.RecordsUpTo(ctx, sakID, -1)
}

// RecordsUpTo returns records with hendelsenummer <= max in ascending order.
// A negative max returns everything.
func (s *InMemoryStore) RecordsUpTo(ctx context.Context, sakID domain.SakID, max int64) ([]models.Opplysning, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.saker[sakID]
	if max >= 0 && max < int64(len(records)) {
		records = records[:max]
	}
	return cloneRecords(records), nil
}

// cloneRecords detaches returned records from the log so callers cannot
// rewrite stored history.
func cloneRecords(records []models.Opplysning) []models.Opplysning {
	out := make([]models.Opplysning, len(records))
	for i, o := range records {
		out[i] = o.Clone()
	}
	return out
}

func (s *InMemoryStore) LatestOfType(ctx context.Context, sakID domain.SakID, typ models.Opplysningstype) (*models.Opplysning, error) {
	return s.LatestOfTypeUpTo(ctx, sakID, typ, -1)
}

func (s *InMemoryStore) LatestOfTypeUpTo(ctx context.Context, sakID domain.SakID, typ models.Opplysningstype, max int64) (*models.Opplysning, error) {
	records, err := s.RecordsUpTo(ctx, sakID, max)
	if err != nil {
		return nil, err
	}
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Type == typ {
			o := records[i]
			return &o, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) MaxHendelsenummer(ctx context.Context, sakID domain.SakID) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.saker[sakID])), nil
}

// SakerMedPerson lists saker with facts about fnr or a gallery naming fnr.
func (s *InMemoryStore) SakerMedPerson(ctx context.Context, fnr domain.Folkeregisteridentifikator) ([]domain.SakID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.SakID
	for sakID, records := range s.saker {
		if slices.ContainsFunc(records, func(o models.Opplysning) bool { return nevner(o, fnr) }) {
			out = append(out, sakID)
		}
	}
	slices.Sort(out)
	return out, nil
}

func nevner(o models.Opplysning, fnr domain.Folkeregisteridentifikator) bool {
	if o.Fnr != nil && *o.Fnr == fnr {
		return true
	}
	g, ok := o.Verdi.(models.Persongalleri)
	if !ok {
		return false
	}
	return g.Soeker == fnr ||
		slices.Contains(g.Avdoed, fnr) ||
		slices.Contains(g.Gjenlevende, fnr) ||
		slices.Contains(g.Soesken, fnr)
}

// KnyttBehandling points behandlingID at hendelsenummer. Locked behandlinger
// cannot be repointed.
func (s *InMemoryStore) KnyttBehandling(ctx context.Context, bv models.BehandlingVersjon) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.behandlinger[bv.BehandlingID]; ok {
		if existing.SakID != bv.SakID {
			return fmt.Errorf("behandling %s belongs to sak %s: %w", bv.BehandlingID, existing.SakID, sentinel.ErrConflict)
		}
		if existing.Laast {
			return models.ErrBehandlingLaast
		}
	}
	bv.Laast = false
	s.behandlinger[bv.BehandlingID] = bv
	return nil
}

func (s *InMemoryStore) LaasBehandling(ctx context.Context, behandlingID domain.BehandlingID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	bv, ok := s.behandlinger[behandlingID]
	if !ok {
		return sentinel.ErrNotFound
	}
	bv.Laast = true
	s.behandlinger[behandlingID] = bv
	return nil
}

func (s *InMemoryStore) BehandlingVersjon(ctx context.Context, behandlingID domain.BehandlingID) (*models.BehandlingVersjon, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	bv, ok := s.behandlinger[behandlingID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &bv, nil
}

// ClaimOutbox hands up to limit unpublished entries to publish, oldest first.
func (s *InMemoryStore) ClaimOutbox(ctx context.Context, limit int, publish outbox.PublishFunc) (int, error) {
	s.outboxMu.Lock()
	defer s.outboxMu.Unlock()

	var (
		idx     []int
		entries []outbox.Entry
	)
	for i, e := range s.outbox {
		if len(entries) == limit {
			break
		}
		if !e.published {
			idx = append(idx, i)
			entries = append(entries, e.entry)
		}
	}
	if len(entries) == 0 {
		return 0, nil
	}
	if err := publish(ctx, entries); err != nil {
		return 0, err
	}
	for _, i := range idx {
		s.outbox[i].published = true
	}
	return len(entries), nil
}

// PendingOutbox counts unpublished entries.
func (s *InMemoryStore) PendingOutbox() int {
	s.outboxMu.Lock()
	defer s.outboxMu.Unlock()
	n := 0
	for _, e := range s.outbox {
		if !e.published {
			n++
		}
	}
	return n
}
