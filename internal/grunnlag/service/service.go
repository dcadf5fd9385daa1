package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"grunnlag/internal/grunnlag/assembler"
	"grunnlag/internal/grunnlag/metrics"
	"grunnlag/internal/grunnlag/models"
	"grunnlag/pkg/domain"
	dErrors "grunnlag/pkg/domain-errors"
	"grunnlag/pkg/platform/sentinel"
	"grunnlag/pkg/requestcontext"
)

// Store is the persistence port. Implemented by store.PostgresStore and
// store.InMemoryStore.
type Store interface {
	Append(ctx context.Context, sakID domain.SakID, nye []models.NyOpplysning) ([]models.Opplysning, error)
	AllRecords(ctx context.Context, sakID domain.SakID) ([]models.Opplysning, error)
	RecordsUpTo(ctx context.Context, sakID domain.SakID, max int64) ([]models.Opplysning, error)
	LatestOfType(ctx context.Context, sakID domain.SakID, typ models.Opplysningstype) (*models.Opplysning, error)
	LatestOfTypeUpTo(ctx context.Context, sakID domain.SakID, typ models.Opplysningstype, max int64) (*models.Opplysning, error)
	MaxHendelsenummer(ctx context.Context, sakID domain.SakID) (int64, error)
	SakerMedPerson(ctx context.Context, fnr domain.Folkeregisteridentifikator) ([]domain.SakID, error)
	KnyttBehandling(ctx context.Context, bv models.BehandlingVersjon) error
	LaasBehandling(ctx context.Context, behandlingID domain.BehandlingID) error
	BehandlingVersjon(ctx context.Context, behandlingID domain.BehandlingID) (*models.BehandlingVersjon, error)
}

// SnapshotCache stores assembled snapshots by version. Get returns
// sentinel.ErrNotFound on a miss.
type SnapshotCache interface {
	Get(ctx context.Context, sakID domain.SakID, versjon int64) (*models.Opplysningsgrunnlag, error)
	Set(ctx context.Context, g *models.Opplysningsgrunnlag) error
}

// sakerForPersonConcurrency bounds gallery lookups fanned out by SakerForPerson.
const sakerForPersonConcurrency = 8

// Service is the grunnlag facade: append facts, read snapshots.
type Service struct {
	store   Store
	cache   SnapshotCache
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithCache enables the versioned snapshot cache.
func WithCache(c SnapshotCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		tracer: otel.Tracer("grunnlag"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append stores one opplysning and returns its hendelsenummer.
func (s *Service) Append(ctx context.Context, sakID domain.SakID, ny models.NyOpplysning) (int64, error) {
	numre, err := s.AppendAll(ctx, sakID, []models.NyOpplysning{ny})
	if err != nil {
		return 0, err
	}
	return numre[0], nil
}

// AppendAll stores nye atomically and returns their hendelsenumre in order.
func (s *Service) AppendAll(ctx context.Context, sakID domain.SakID, nye []models.NyOpplysning) ([]int64, error) {
	ctx, span := s.tracer.Start(ctx, "grunnlag.Service.AppendAll",
		trace.WithAttributes(attribute.Int64("sak_id", int64(sakID)), attribute.Int("count", len(nye))))
	defer span.End()

	start := time.Now()
	stored, err := s.store.Append(ctx, sakID, nye)
	s.metrics.ObserveAppendLatency(time.Since(start))
	if err != nil {
		recordSpanError(span, err)
		s.logger.ErrorContext(ctx, "failed to append opplysninger",
			"request_id", requestcontext.RequestID(ctx),
			"sak_id", sakID,
			"count", len(nye),
			"error", err,
		)
		return nil, translate(err, "failed to append opplysninger")
	}

	numre := make([]int64, len(stored))
	typer := make([]string, len(stored))
	for i, o := range stored {
		numre[i] = o.Hendelsenummer
		typer[i] = string(o.Type)
		s.metrics.IncrementAppended(string(o.Type))
	}
	span.SetAttributes(attribute.Int64("versjon", numre[len(numre)-1]))
	s.logger.InfoContext(ctx, "opplysninger appended",
		"request_id", requestcontext.RequestID(ctx),
		"saksbehandler", requestcontext.Saksbehandler(ctx),
		"sak_id", sakID,
		"fra_hendelsenummer", numre[0],
		"til_hendelsenummer", numre[len(numre)-1],
		"typer", typer,
	)
	return numre, nil
}

// CurrentSnapshot assembles the snapshot at the latest version. A sak
// without facts yields an empty snapshot.
func (s *Service) CurrentSnapshot(ctx context.Context, sakID domain.SakID) (*models.Opplysningsgrunnlag, error) {
	ctx, span := s.tracer.Start(ctx, "grunnlag.Service.CurrentSnapshot",
		trace.WithAttributes(attribute.Int64("sak_id", int64(sakID))))
	defer span.End()

	max, err := s.store.MaxHendelsenummer(ctx, sakID)
	if err != nil {
		recordSpanError(span, err)
		return nil, translate(err, "failed to read grunnlag")
	}
	if max == 0 {
		return models.Tomt(sakID), nil
	}
	g, err := s.snapshotAt(ctx, sakID, max)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return g, nil
}

// SnapshotAsOf assembles the snapshot as it was at versjon. Versions above
// the latest hendelsenummer fail with models.ErrVersionNotFound.
func (s *Service) SnapshotAsOf(ctx context.Context, sakID domain.SakID, versjon int64) (*models.Opplysningsgrunnlag, error) {
	ctx, span := s.tracer.Start(ctx, "grunnlag.Service.SnapshotAsOf",
		trace.WithAttributes(attribute.Int64("sak_id", int64(sakID)), attribute.Int64("versjon", versjon)))
	defer span.End()

	if versjon < 1 {
		return nil, dErrors.Wrap(models.ErrInvalidVersion, dErrors.CodeBadRequest, "versjon must be at least 1")
	}
	max, err := s.store.MaxHendelsenummer(ctx, sakID)
	if err != nil {
		recordSpanError(span, err)
		return nil, translate(err, "failed to read grunnlag")
	}
	if versjon > max {
		err := &models.VersionNotFoundError{SakID: sakID, Versjon: versjon, Siste: max}
		recordSpanError(span, err)
		return nil, translate(err, "")
	}
	g, err := s.snapshotAt(ctx, sakID, versjon)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return g, nil
}

// snapshotAt replays up to versjon, which the caller has checked exists.
func (s *Service) snapshotAt(ctx context.Context, sakID domain.SakID, versjon int64) (*models.Opplysningsgrunnlag, error) {
	if g, ok := s.cached(ctx, sakID, versjon); ok {
		return g, nil
	}

	records, err := s.store.RecordsUpTo(ctx, sakID, versjon)
	if err != nil {
		return nil, translate(err, "failed to read grunnlag")
	}

	start := time.Now()
	result := assembler.Assemble(sakID, records)
	g := result.Grunnlag
	s.metrics.ObserveAssemble(time.Since(start), len(g.Personer))
	s.metrics.AddDropped(result.Droppet)

	if result.Droppet > 0 {
		s.logger.DebugContext(ctx, "opplysninger about persons outside persongalleri skipped",
			"sak_id", sakID,
			"versjon", versjon,
			"count", result.Droppet,
		)
	}
	for _, k := range g.Konflikter {
		s.metrics.IncrementConflict(string(k.Type))
		s.logger.WarnContext(ctx, "grunnlag data integrity conflict",
			"request_id", requestcontext.RequestID(ctx),
			"sak_id", sakID,
			"versjon", versjon,
			"rolle", k.Rolle,
			"opplysning_type", k.Type,
			"hendelsenumre", k.Hendelsenumre,
		)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, g); err != nil {
			s.logger.WarnContext(ctx, "failed to cache snapshot", "sak_id", sakID, "versjon", versjon, "error", err)
		}
	}
	return g, nil
}

func (s *Service) cached(ctx context.Context, sakID domain.SakID, versjon int64) (*models.Opplysningsgrunnlag, bool) {
	if s.cache == nil {
		return nil, false
	}
	g, err := s.cache.Get(ctx, sakID, versjon)
	switch {
	case err == nil:
		s.metrics.RecordCacheLookup("hit")
		return g, true
	case errors.Is(err, sentinel.ErrNotFound):
		s.metrics.RecordCacheLookup("miss")
	default:
		s.metrics.RecordCacheLookup("error")
		s.logger.WarnContext(ctx, "snapshot cache lookup failed", "sak_id", sakID, "versjon", versjon, "error", err)
	}
	return nil, false
}

// FactOfType returns the raw opplysning of typ with the highest
// hendelsenummer in the sak, across all persons, without assembling a
// snapshot. For periodized types that is the latest appended window only;
// use CurrentSnapshot for the resolved list of windows per person.
func (s *Service) FactOfType(ctx context.Context, sakID domain.SakID, typ models.Opplysningstype) (*models.Opplysning, bool, error) {
	ctx, span := s.tracer.Start(ctx, "grunnlag.Service.FactOfType",
		trace.WithAttributes(attribute.Int64("sak_id", int64(sakID)), attribute.String("opplysning_type", string(typ))))
	defer span.End()

	if !typ.Valid() {
		return nil, false, dErrors.New(dErrors.CodeBadRequest, "unknown opplysningstype "+string(typ))
	}
	o, err := s.store.LatestOfType(ctx, sakID, typ)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		recordSpanError(span, err)
		return nil, false, translate(err, "failed to read opplysning")
	}
	return o, true, nil
}

// Persongalleri returns the latest gallery of the sak.
func (s *Service) Persongalleri(ctx context.Context, sakID domain.SakID) (*models.Persongalleri, error) {
	o, found, err := s.FactOfType(ctx, sakID, models.TypePersongalleri)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, dErrors.New(dErrors.CodeNotFound, "sak has no persongalleri")
	}
	g := o.Verdi.(models.Persongalleri)
	return &g, nil
}

// SakerForPerson lists every sak that mentions fnr, with the role the
// latest gallery gives the person there.
func (s *Service) SakerForPerson(ctx context.Context, fnr domain.Folkeregisteridentifikator) ([]models.SakOgRolle, error) {
	ctx, span := s.tracer.Start(ctx, "grunnlag.Service.SakerForPerson")
	defer span.End()

	saker, err := s.store.SakerMedPerson(ctx, fnr)
	if err != nil {
		recordSpanError(span, err)
		return nil, translate(err, "failed to look up saker")
	}

	out := make([]models.SakOgRolle, len(saker))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sakerForPersonConcurrency)
	for i, sakID := range saker {
		i, sakID := i, sakID
		g.Go(func() error {
			rolle := models.RolleUkjent
			o, err := s.store.LatestOfType(gctx, sakID, models.TypePersongalleri)
			switch {
			case err == nil:
				galleri := o.Verdi.(models.Persongalleri)
				rolle = assembler.RoleFor(&galleri, fnr)
			case !errors.Is(err, sentinel.ErrNotFound):
				return err
			}
			out[i] = models.SakOgRolle{SakID: sakID, Rolle: rolle}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		recordSpanError(span, err)
		return nil, translate(err, "failed to resolve roller")
	}
	span.SetAttributes(attribute.Int("result_count", len(out)))
	return out, nil
}

// KnyttBehandling pins behandlingID to the current version of the sak.
func (s *Service) KnyttBehandling(ctx context.Context, behandlingID domain.BehandlingID, sakID domain.SakID) (*models.BehandlingVersjon, error) {
	ctx, span := s.tracer.Start(ctx, "grunnlag.Service.KnyttBehandling",
		trace.WithAttributes(attribute.Int64("sak_id", int64(sakID)), attribute.String("behandling_id", behandlingID.String())))
	defer span.End()

	max, err := s.store.MaxHendelsenummer(ctx, sakID)
	if err != nil {
		recordSpanError(span, err)
		return nil, translate(err, "failed to read grunnlag")
	}
	if max == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "sak has no grunnlag to pin")
	}

	bv := models.BehandlingVersjon{BehandlingID: behandlingID, SakID: sakID, Hendelsenummer: max}
	if err := s.store.KnyttBehandling(ctx, bv); err != nil {
		recordSpanError(span, err)
		return nil, translate(err, "failed to pin behandling")
	}
	s.logger.InfoContext(ctx, "behandling pinned to grunnlag version",
		"request_id", requestcontext.RequestID(ctx),
		"behandling_id", behandlingID,
		"sak_id", sakID,
		"versjon", max,
	)
	return &bv, nil
}

// LaasBehandling freezes the pinned version of a behandling.
func (s *Service) LaasBehandling(ctx context.Context, behandlingID domain.BehandlingID) error {
	if err := s.store.LaasBehandling(ctx, behandlingID); err != nil {
		return translate(err, "failed to lock behandling")
	}
	s.logger.InfoContext(ctx, "behandling grunnlag locked",
		"request_id", requestcontext.RequestID(ctx),
		"behandling_id", behandlingID,
	)
	return nil
}

// SnapshotForBehandling returns the snapshot at the version pinned for behandlingID.
func (s *Service) SnapshotForBehandling(ctx context.Context, behandlingID domain.BehandlingID) (*models.Opplysningsgrunnlag, error) {
	bv, err := s.store.BehandlingVersjon(ctx, behandlingID)
	if err != nil {
		return nil, translate(err, "failed to read behandling")
	}
	return s.snapshotAt(ctx, bv.SakID, bv.Hendelsenummer)
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
