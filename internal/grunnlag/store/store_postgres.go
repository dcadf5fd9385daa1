package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"grunnlag/internal/grunnlag/models"
	"grunnlag/internal/grunnlag/outbox"
	"grunnlag/pkg/domain"
	"grunnlag/pkg/platform/sentinel"
)

const defaultTxTimeout = 5 * time.Second

// PostgresStore persists the opplysning log in PostgreSQL.
//
// Hendelsenumre come from a per-sak counter row in grunnlag_sekvens. The
// counter is bumped with INSERT ... ON CONFLICT DO UPDATE inside the append
// transaction, which row-locks the sak until commit: concurrent appends to the
// same sak queue behind each other, other saker are unaffected, and a rolled
// back append gives its numbers back.
type PostgresStore struct {
	db        *sql.DB
	clock     func() time.Time
	txTimeout time.Duration
}

type PostgresOption func(*PostgresStore)

func WithPostgresClock(clock func() time.Time) PostgresOption {
	return func(s *PostgresStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithTxTimeout bounds transactions started without a context deadline.
func WithTxTimeout(d time.Duration) PostgresOption {
	return func(s *PostgresStore) {
		if d > 0 {
			s.txTimeout = d
		}
	}
}

func NewPostgresStore(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{
		db:        db,
		clock:     time.Now,
		txTimeout: defaultTxTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// RunInTx runs fn in a transaction. The transaction is passed explicitly;
// nothing is stored in ctx. fn's error rolls back.
func (s *PostgresStore) RunInTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return classify("commit transaction", err)
	}
	return nil
}

// Append stores nye atomically with consecutive hendelsenumre.
func (s *PostgresStore) Append(ctx context.Context, sakID domain.SakID, nye []models.NyOpplysning) ([]models.Opplysning, error) {
	var stored []models.Opplysning
	err := s.RunInTx(ctx, func(tx *sql.Tx) error {
		var err error
		stored, err = s.AppendInTx(ctx, tx, sakID, nye)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// AppendInTx appends within a caller-owned transaction, for callers that
// write other rows atomically with the opplysninger. Numbers are reserved
// until tx commits or rolls back.
func (s *PostgresStore) AppendInTx(ctx context.Context, tx *sql.Tx, sakID domain.SakID, nye []models.NyOpplysning) ([]models.Opplysning, error) {
	normalized, err := normalizeBatch(sakID, nye)
	if err != nil {
		return nil, err
	}

	var siste int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO grunnlag_sekvens (sak_id, siste_hendelsenummer)
		VALUES ($1, $2)
		ON CONFLICT (sak_id) DO UPDATE SET
			siste_hendelsenummer = grunnlag_sekvens.siste_hendelsenummer + EXCLUDED.siste_hendelsenummer
		RETURNING siste_hendelsenummer
	`, int64(sakID), len(normalized)).Scan(&siste)
	if err != nil {
		return nil, classify("reserve hendelsenummer", err)
	}
	first := siste - int64(len(normalized)) + 1

	now := s.clock().UTC().Truncate(time.Microsecond)
	stored := make([]models.Opplysning, 0, len(normalized))
	for i, ny := range normalized {
		o := fromNy(sakID, first+int64(i), ny, now)
		if err := insertOpplysning(ctx, tx, o); err != nil {
			return nil, err
		}
		entry, err := outbox.NewEntry(o)
		if err != nil {
			return nil, err
		}
		if err := insertOutbox(ctx, tx, entry); err != nil {
			return nil, err
		}
		stored = append(stored, o)
	}
	return stored, nil
}

func insertOpplysning(ctx context.Context, q queryer, o models.Opplysning) error {
	kilde, err := json.Marshal(o.Kilde)
	if err != nil {
		return fmt.Errorf("marshal kilde: %w", err)
	}
	verdi, err := json.Marshal(o.Verdi)
	if err != nil {
		return fmt.Errorf("marshal opplysning: %w", err)
	}

	var fnr sql.NullString
	if o.Fnr != nil {
		fnr = sql.NullString{String: o.Fnr.String(), Valid: true}
	}
	var fom, tom sql.NullTime
	if o.Periode != nil {
		fom = sql.NullTime{Time: maanedStart(o.Periode.Fom), Valid: true}
		if o.Periode.Tom != nil {
			tom = sql.NullTime{Time: maanedStart(*o.Periode.Tom), Valid: true}
		}
	}
	var attestasjon []byte
	if len(o.Attestasjon) > 0 {
		attestasjon = o.Attestasjon
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO grunnlagshendelse (
			sak_id, hendelsenummer, id, fnr, opplysning_type,
			kilde, opplysning, fom, tom, attestasjon, opprettet
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		int64(o.SakID),
		o.Hendelsenummer,
		uuid.UUID(o.ID),
		fnr,
		string(o.Type),
		kilde,
		verdi,
		fom,
		tom,
		attestasjon,
		o.Opprettet,
	)
	if err != nil {
		return classify("insert opplysning", err)
	}
	return nil
}

func insertOutbox(ctx context.Context, q queryer, e outbox.Entry) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO grunnlag_outbox (id, sak_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, e.ID, int64(e.SakID), e.EventType, e.Payload, e.CreatedAt)
	if err != nil {
		return classify("insert outbox entry", err)
	}
	return nil
}

const selectOpplysning = `
	SELECT sak_id, hendelsenummer, id, fnr, opplysning_type,
	       kilde, opplysning, fom, tom, attestasjon, opprettet
	FROM grunnlagshendelse
`

func (s *PostgresStore) AllRecords(ctx context.Context, sakID domain.SakID) ([]models.Opplysning, error) {
	rows, err := s.db.QueryContext(ctx, selectOpplysning+`
		WHERE sak_id = $1
		ORDER BY hendelsenummer
	`, int64(sakID))
	if err != nil {
		return nil, classify("query opplysninger", err)
	}
	return scanOpplysninger(rows)
}

// RecordsUpTo returns records with hendelsenummer <= max in ascending order.
func (s *PostgresStore) RecordsUpTo(ctx context.Context, sakID domain.SakID, max int64) ([]models.Opplysning, error) {
	rows, err := s.db.QueryContext(ctx, selectOpplysning+`
		WHERE sak_id = $1 AND hendelsenummer <= $2
		ORDER BY hendelsenummer
	`, int64(sakID), max)
	if err != nil {
		return nil, classify("query opplysninger up to version", err)
	}
	return scanOpplysninger(rows)
}

func (s *PostgresStore) LatestOfType(ctx context.Context, sakID domain.SakID, typ models.Opplysningstype) (*models.Opplysning, error) {
	row := s.db.QueryRowContext(ctx, selectOpplysning+`
		WHERE sak_id = $1 AND opplysning_type = $2
		ORDER BY hendelsenummer DESC
		LIMIT 1
	`, int64(sakID), string(typ))
	return scanSingle(row)
}

func (s *PostgresStore) LatestOfTypeUpTo(ctx context.Context, sakID domain.SakID, typ models.Opplysningstype, max int64) (*models.Opplysning, error) {
	row := s.db.QueryRowContext(ctx, selectOpplysning+`
		WHERE sak_id = $1 AND opplysning_type = $2 AND hendelsenummer <= $3
		ORDER BY hendelsenummer DESC
		LIMIT 1
	`, int64(sakID), string(typ), max)
	return scanSingle(row)
}

// MaxHendelsenummer reads the committed counter; 0 for unknown saker.
func (s *PostgresStore) MaxHendelsenummer(ctx context.Context, sakID domain.SakID) (int64, error) {
	var siste int64
	err := s.db.QueryRowContext(ctx,
		`SELECT siste_hendelsenummer FROM grunnlag_sekvens WHERE sak_id = $1`, int64(sakID),
	).Scan(&siste)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, classify("read max hendelsenummer", err)
	}
	return siste, nil
}

// SakerMedPerson lists saker with facts about fnr or a persongalleri naming fnr.
func (s *PostgresStore) SakerMedPerson(ctx context.Context, fnr domain.Folkeregisteridentifikator) ([]domain.SakID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT sak_id
		FROM grunnlagshendelse
		WHERE fnr = $1
		   OR (opplysning_type = $2 AND (
		           opplysning->>'soeker' = $1
		        OR opplysning->'avdoed' ? $1
		        OR opplysning->'gjenlevende' ? $1
		        OR opplysning->'soesken' ? $1))
		ORDER BY sak_id
	`, fnr.String(), string(models.TypePersongalleri))
	if err != nil {
		return nil, classify("query saker for person", err)
	}
	defer rows.Close()

	var out []domain.SakID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, classify("scan sak id", err)
		}
		out = append(out, domain.SakID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate saker for person", err)
	}
	return out, nil
}

// KnyttBehandling points a behandling at a version. Locked behandlinger are
// left untouched and return models.ErrBehandlingLaast.
func (s *PostgresStore) KnyttBehandling(ctx context.Context, bv models.BehandlingVersjon) error {
	return s.RunInTx(ctx, func(tx *sql.Tx) error {
		var (
			sakID int64
			laast bool
		)
		err := tx.QueryRowContext(ctx,
			`SELECT sak_id, laast FROM behandling_versjon WHERE behandling_id = $1 FOR UPDATE`,
			uuid.UUID(bv.BehandlingID),
		).Scan(&sakID, &laast)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return classify("read behandling versjon", err)
		case domain.SakID(sakID) != bv.SakID:
			return fmt.Errorf("behandling %s belongs to sak %d: %w", bv.BehandlingID, sakID, sentinel.ErrConflict)
		case laast:
			return models.ErrBehandlingLaast
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO behandling_versjon (behandling_id, sak_id, hendelsenummer, laast)
			VALUES ($1, $2, $3, FALSE)
			ON CONFLICT (behandling_id) DO UPDATE SET
				hendelsenummer = EXCLUDED.hendelsenummer
		`, uuid.UUID(bv.BehandlingID), int64(bv.SakID), bv.Hendelsenummer)
		if err != nil {
			return classify("upsert behandling versjon", err)
		}
		return nil
	})
}

func (s *PostgresStore) LaasBehandling(ctx context.Context, behandlingID domain.BehandlingID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE behandling_versjon SET laast = TRUE WHERE behandling_id = $1`, uuid.UUID(behandlingID))
	if err != nil {
		return classify("lock behandling versjon", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify("lock behandling versjon", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) BehandlingVersjon(ctx context.Context, behandlingID domain.BehandlingID) (*models.BehandlingVersjon, error) {
	var (
		sakID int64
		bv    = models.BehandlingVersjon{BehandlingID: behandlingID}
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT sak_id, hendelsenummer, laast FROM behandling_versjon WHERE behandling_id = $1`,
		uuid.UUID(behandlingID),
	).Scan(&sakID, &bv.Hendelsenummer, &bv.Laast)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, classify("read behandling versjon", err)
	}
	bv.SakID = domain.SakID(sakID)
	return &bv, nil
}

// ClaimOutbox locks up to limit unpublished rows (SKIP LOCKED, so several
// relays can run), publishes them and marks them published in one transaction.
func (s *PostgresStore) ClaimOutbox(ctx context.Context, limit int, publish outbox.PublishFunc) (int, error) {
	var claimed int
	err := s.RunInTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT id, sak_id, event_type, payload, created_at
			FROM grunnlag_outbox
			WHERE published_at IS NULL
			ORDER BY created_at, sak_id, (payload->>'hendelsenummer')::bigint
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		`, limit)
		if err != nil {
			return classify("claim outbox", err)
		}
		entries, err := scanOutbox(rows)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		if err := publish(ctx, entries); err != nil {
			return err
		}

		ids := make([]string, len(entries))
		for i, e := range entries {
			ids[i] = e.ID.String()
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE grunnlag_outbox SET published_at = $1 WHERE id = ANY($2::uuid[])`,
			s.clock().UTC(), pq.Array(ids),
		); err != nil {
			return classify("mark outbox published", err)
		}
		claimed = len(entries)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return claimed, nil
}

func scanOutbox(rows *sql.Rows) ([]outbox.Entry, error) {
	defer rows.Close()
	var out []outbox.Entry
	for rows.Next() {
		var (
			e     outbox.Entry
			sakID int64
		)
		if err := rows.Scan(&e.ID, &sakID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, classify("scan outbox entry", err)
		}
		e.SakID = domain.SakID(sakID)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate outbox", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOpplysning(row rowScanner) (models.Opplysning, error) {
	var (
		o           models.Opplysning
		sakID       int64
		id          uuid.UUID
		fnr         sql.NullString
		typ         string
		kilde       []byte
		verdi       []byte
		fom, tom    sql.NullTime
		attestasjon []byte
	)
	if err := row.Scan(&sakID, &o.Hendelsenummer, &id, &fnr, &typ, &kilde, &verdi, &fom, &tom, &attestasjon, &o.Opprettet); err != nil {
		return o, err
	}
	o.SakID = domain.SakID(sakID)
	o.ID = domain.OpplysningID(id)
	o.Type = models.Opplysningstype(typ)
	if fnr.Valid {
		parsed, err := domain.ParseFolkeregisteridentifikator(fnr.String)
		if err != nil {
			return o, fmt.Errorf("stored fnr for hendelse %d: %w", o.Hendelsenummer, err)
		}
		o.Fnr = &parsed
	}
	if fom.Valid {
		p := models.Periode{Fom: models.NyMaaned(fom.Time)}
		if tom.Valid {
			t := models.NyMaaned(tom.Time)
			p.Tom = &t
		}
		o.Periode = &p
	}
	if len(attestasjon) > 0 {
		o.Attestasjon = json.RawMessage(attestasjon)
	}
	if err := models.DecodeStored(&o, kilde, verdi); err != nil {
		return o, err
	}
	return o, nil
}

func scanOpplysninger(rows *sql.Rows) ([]models.Opplysning, error) {
	defer rows.Close()
	out := []models.Opplysning{}
	for rows.Next() {
		o, err := scanOpplysning(rows)
		if err != nil {
			return nil, classify("scan opplysning", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate opplysninger", err)
	}
	return out, nil
}

func scanSingle(row *sql.Row) (*models.Opplysning, error) {
	o, err := scanOpplysning(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, classify("scan opplysning", err)
	}
	return &o, nil
}

func maanedStart(m models.Maaned) time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// classify turns driver errors into StorageError. Context errors, decode
// failures and integrity violations keep their own identity.
func classify(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, models.ErrInvalidOpplysning) {
		return fmt.Errorf("%s: %w", op, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "23" {
		return fmt.Errorf("%s: %s: %w", op, pqErr.Code.Name(), sentinel.ErrConflict)
	}
	return models.NewStorageError(op, err)
}
