// Package outbox publishes "opplysning lagt til" events written by the store
// in the same transaction as the opplysning itself.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"grunnlag/internal/grunnlag/models"
	"grunnlag/pkg/domain"
)

// HendelseOpplysningLagtTil is the event name on the grunnlag topic.
const HendelseOpplysningLagtTil = "GRUNNLAG:OPPLYSNING_LAGT_TIL"

// Entry is one unpublished outbox row.
type Entry struct {
	ID        uuid.UUID
	SakID     domain.SakID
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

// Key partitions events by sak so consumers see them in hendelsenummer order.
func (e Entry) Key() []byte {
	return []byte(e.SakID.String())
}

// OpplysningLagtTil is the published payload. It carries no personal data;
// consumers read the snapshot to see values.
type OpplysningLagtTil struct {
	Hendelse       string                 `json:"hendelse"`
	SakID          domain.SakID           `json:"sakId"`
	Hendelsenummer int64                  `json:"hendelsenummer"`
	OpplysningID   domain.OpplysningID    `json:"opplysningId"`
	OpplysningType models.Opplysningstype `json:"opplysningType"`
	Kilde          models.KildeType       `json:"kilde"`
	Opprettet      time.Time              `json:"opprettet"`
}

// NewEntry builds the outbox row for a stored opplysning.
func NewEntry(o models.Opplysning) (Entry, error) {
	payload, err := json.Marshal(OpplysningLagtTil{
		Hendelse:       HendelseOpplysningLagtTil,
		SakID:          o.SakID,
		Hendelsenummer: o.Hendelsenummer,
		OpplysningID:   o.ID,
		OpplysningType: o.Type,
		Kilde:          o.Kilde.Type(),
		Opprettet:      o.Opprettet,
	})
	if err != nil {
		return Entry{}, fmt.Errorf("marshal outbox payload: %w", err)
	}
	return Entry{
		ID:        uuid.New(),
		SakID:     o.SakID,
		EventType: HendelseOpplysningLagtTil,
		Payload:   payload,
		CreatedAt: o.Opprettet,
	}, nil
}

// PublishFunc publishes a batch. A returned error leaves every entry of the
// batch unpublished.
type PublishFunc func(ctx context.Context, entries []Entry) error

// Source hands out unpublished entries. Implementations claim up to limit
// entries, call publish, and mark them published only if publish succeeds.
type Source interface {
	ClaimOutbox(ctx context.Context, limit int, publish PublishFunc) (int, error)
}
