// Package store persists the append-only opplysning log.
//
// Stores are pure I/O: they validate records at the boundary, assign
// hendelsenumre and replay. Snapshot assembly lives in the assembler package.
package store

import (
	"fmt"
	"time"

	"grunnlag/internal/grunnlag/models"
	"grunnlag/pkg/domain"
)

// normalizeBatch validates every record before anything is written.
func normalizeBatch(sakID domain.SakID, nye []models.NyOpplysning) ([]models.NyOpplysning, error) {
	if sakID.IsZero() {
		return nil, fmt.Errorf("%w: sak id is required", models.ErrInvalidOpplysning)
	}
	if len(nye) == 0 {
		return nil, fmt.Errorf("%w: no opplysninger to append", models.ErrInvalidOpplysning)
	}
	out := make([]models.NyOpplysning, len(nye))
	for i, ny := range nye {
		n, err := ny.Normalize()
		if err != nil {
			return nil, fmt.Errorf("opplysning %d: %w", i, err)
		}
		out[i] = n
	}
	return out, nil
}

func fromNy(sakID domain.SakID, hendelsenummer int64, ny models.NyOpplysning, opprettet time.Time) models.Opplysning {
	return models.Opplysning{
		ID:             domain.NewOpplysningID(),
		SakID:          sakID,
		Hendelsenummer: hendelsenummer,
		Fnr:            ny.Fnr,
		Type:           ny.Type,
		Kilde:          ny.Kilde,
		Verdi:          ny.Verdi,
		Periode:        ny.Periode,
		Attestasjon:    ny.Attestasjon,
		Opprettet:      opprettet,
	}
}
