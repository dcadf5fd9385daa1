package models

import (
	"encoding/json"
	"fmt"
	"time"

	"grunnlag/pkg/domain"
)

// Opplysning is one immutable, versioned fact. Corrections are new appends.
type Opplysning struct {
	ID             domain.OpplysningID
	SakID          domain.SakID
	Hendelsenummer int64
	Fnr            *domain.Folkeregisteridentifikator
	Type           Opplysningstype
	Kilde          Kilde
	Verdi          Verdi
	Periode        *Periode
	Attestasjon    json.RawMessage
	Opprettet      time.Time
}

// Periodisert reports whether the record carries a validity window.
func (o Opplysning) Periodisert() bool {
	return o.Periode != nil
}

// NyOpplysning is what a producer hands to Append. The store assigns ID,
// SakID, Hendelsenummer and Opprettet.
type NyOpplysning struct {
	Fnr         *domain.Folkeregisteridentifikator
	Type        Opplysningstype
	Kilde       Kilde
	Verdi       Verdi
	Periode     *Periode
	Attestasjon json.RawMessage
}

// Normalize validates n and returns a deep copy with the payload stored by
// value, so later changes to the caller's pointers and slices do not reach
// the stored record. Errors wrap ErrInvalidOpplysning.
func (n NyOpplysning) Normalize() (NyOpplysning, error) {
	if !n.Type.Valid() {
		return n, invalid("unknown opplysningstype %q", n.Type)
	}
	switch n.Type.Subjekt() {
	case SubjektSak:
		if n.Fnr != nil {
			return n, invalid("%s is a sak-level fact and takes no fnr", n.Type)
		}
	case SubjektPerson:
		if n.Fnr == nil || n.Fnr.IsZero() {
			return n, invalid("%s requires fnr", n.Type)
		}
	}
	if err := validateKilde(n.Kilde); err != nil {
		return n, invalid("%s: %v", n.Type, err)
	}
	verdi, err := normalizeVerdi(n.Type, n.Verdi)
	if err != nil {
		return n, invalid("%v", err)
	}
	n.Verdi = verdi
	if n.Periode != nil {
		if err := n.Periode.Validate(); err != nil {
			return n, invalid("%s: %v", n.Type, err)
		}
	}
	if len(n.Attestasjon) > 0 && !json.Valid(n.Attestasjon) {
		return n, invalid("%s: attestasjon is not valid JSON", n.Type)
	}
	return deepCopy(n), nil
}

// opplysningJSON is the wire shape shared by Opplysning and NyOpplysning.
type opplysningJSON struct {
	ID             *domain.OpplysningID               `json:"id,omitempty"`
	SakID          domain.SakID                       `json:"sakId,omitempty"`
	Hendelsenummer int64                              `json:"hendelsenummer,omitempty"`
	Fnr            *domain.Folkeregisteridentifikator `json:"fnr,omitempty"`
	Type           Opplysningstype                    `json:"opplysningType"`
	Kilde          json.RawMessage                    `json:"kilde"`
	Verdi          json.RawMessage                    `json:"opplysning"`
	Periode        *Periode                           `json:"periode,omitempty"`
	Attestasjon    json.RawMessage                    `json:"attestasjon,omitempty"`
	Opprettet      *time.Time                         `json:"opprettet,omitempty"`
}

func (o Opplysning) MarshalJSON() ([]byte, error) {
	kilde, err := json.Marshal(o.Kilde)
	if err != nil {
		return nil, err
	}
	verdi, err := json.Marshal(o.Verdi)
	if err != nil {
		return nil, err
	}
	id := o.ID
	opprettet := o.Opprettet
	return json.Marshal(opplysningJSON{
		ID:             &id,
		SakID:          o.SakID,
		Hendelsenummer: o.Hendelsenummer,
		Fnr:            o.Fnr,
		Type:           o.Type,
		Kilde:          kilde,
		Verdi:          verdi,
		Periode:        o.Periode,
		Attestasjon:    o.Attestasjon,
		Opprettet:      &opprettet,
	})
}

func (o *Opplysning) UnmarshalJSON(b []byte) error {
	var w opplysningJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	kilde, verdi, err := decodeKildeOgVerdi(w.Type, w.Kilde, w.Verdi)
	if err != nil {
		return err
	}
	*o = Opplysning{
		SakID:          w.SakID,
		Hendelsenummer: w.Hendelsenummer,
		Fnr:            w.Fnr,
		Type:           w.Type,
		Kilde:          kilde,
		Verdi:          verdi,
		Periode:        w.Periode,
		Attestasjon:    w.Attestasjon,
	}
	if w.ID != nil {
		o.ID = *w.ID
	}
	if w.Opprettet != nil {
		o.Opprettet = *w.Opprettet
	}
	return nil
}

func (n NyOpplysning) MarshalJSON() ([]byte, error) {
	kilde, err := json.Marshal(n.Kilde)
	if err != nil {
		return nil, err
	}
	verdi, err := json.Marshal(n.Verdi)
	if err != nil {
		return nil, err
	}
	return json.Marshal(opplysningJSON{
		Fnr:         n.Fnr,
		Type:        n.Type,
		Kilde:       kilde,
		Verdi:       verdi,
		Periode:     n.Periode,
		Attestasjon: n.Attestasjon,
	})
}

func (n *NyOpplysning) UnmarshalJSON(b []byte) error {
	var w opplysningJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	kilde, verdi, err := decodeKildeOgVerdi(w.Type, w.Kilde, w.Verdi)
	if err != nil {
		return err
	}
	*n = NyOpplysning{
		Fnr:         w.Fnr,
		Type:        w.Type,
		Kilde:       kilde,
		Verdi:       verdi,
		Periode:     w.Periode,
		Attestasjon: w.Attestasjon,
	}
	return nil
}

func decodeKildeOgVerdi(t Opplysningstype, rawKilde, rawVerdi json.RawMessage) (Kilde, Verdi, error) {
	if !t.Valid() {
		return nil, nil, invalid("unknown opplysningstype %q", t)
	}
	if len(rawKilde) == 0 {
		return nil, nil, invalid("%s: kilde is required", t)
	}
	kilde, err := UnmarshalKilde(rawKilde)
	if err != nil {
		return nil, nil, invalid("%v", err)
	}
	if len(rawVerdi) == 0 {
		return nil, nil, invalid("%s: opplysning is required", t)
	}
	verdi, err := DecodeVerdi(t, rawVerdi)
	if err != nil {
		return nil, nil, invalid("%v", err)
	}
	return kilde, verdi, nil
}

// DecodeStored rebuilds an Opplysning from persisted columns.
func DecodeStored(o *Opplysning, rawKilde, rawVerdi []byte) error {
	kilde, verdi, err := decodeKildeOgVerdi(o.Type, rawKilde, rawVerdi)
	if err != nil {
		return fmt.Errorf("decode stored opplysning %d in sak %s: %w", o.Hendelsenummer, o.SakID, err)
	}
	o.Kilde = kilde
	o.Verdi = verdi
	return nil
}
