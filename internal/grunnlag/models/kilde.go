package models

import (
	"encoding/json"
	"fmt"
	"time"

	"grunnlag/pkg/domain"
)

// KildeType is the JSON discriminator of a Kilde.
type KildeType string

const (
	KildeFolkeregisteret KildeType = "pdl"
	KildeSaksbehandler   KildeType = "saksbehandler"
	KildePrivatperson    KildeType = "privatperson"
	KildeUkjent          KildeType = "ukjent"
)

// Kilde is the provenance of an opplysning. The set of implementations is
// closed; Kilde is recorded verbatim and never inferred.
type Kilde interface {
	Type() KildeType
	Tidspunkt() time.Time
	kilde()
}

// Folkeregisteret is a fact ingested from the population registry.
type Folkeregisteret struct {
	Registerreferanse string    `json:"registerreferanse"`
	Registrert        time.Time `json:"tidspunkt"`
}

// Saksbehandler is a fact entered by a case worker.
type Saksbehandler struct {
	Ident      string    `json:"ident"`
	Registrert time.Time `json:"tidspunkt"`
}

// Privatperson is a fact submitted by a private individual, typically in an application.
type Privatperson struct {
	Fnr        domain.Folkeregisteridentifikator `json:"fnr"`
	Registrert time.Time                         `json:"tidspunkt"`
}

// UkjentInnsender is a fact whose submitter is not known.
type UkjentInnsender struct {
	Registrert time.Time `json:"tidspunkt"`
}

func (Folkeregisteret) Type() KildeType { return KildeFolkeregisteret }
func (Saksbehandler) Type() KildeType   { return KildeSaksbehandler }
func (Privatperson) Type() KildeType    { return KildePrivatperson }
func (UkjentInnsender) Type() KildeType { return KildeUkjent }

func (k Folkeregisteret) Tidspunkt() time.Time { return k.Registrert }
func (k Saksbehandler) Tidspunkt() time.Time   { return k.Registrert }
func (k Privatperson) Tidspunkt() time.Time    { return k.Registrert }
func (k UkjentInnsender) Tidspunkt() time.Time { return k.Registrert }

func (Folkeregisteret) kilde() {}
func (Saksbehandler) kilde()   {}
func (Privatperson) kilde()    {}
func (UkjentInnsender) kilde() {}

func (k Folkeregisteret) MarshalJSON() ([]byte, error) {
	type alias Folkeregisteret
	return json.Marshal(struct {
		Type KildeType `json:"type"`
		alias
	}{k.Type(), alias(k)})
}

func (k Saksbehandler) MarshalJSON() ([]byte, error) {
	type alias Saksbehandler
	return json.Marshal(struct {
		Type KildeType `json:"type"`
		alias
	}{k.Type(), alias(k)})
}

func (k Privatperson) MarshalJSON() ([]byte, error) {
	type alias Privatperson
	return json.Marshal(struct {
		Type KildeType `json:"type"`
		alias
	}{k.Type(), alias(k)})
}

func (k UkjentInnsender) MarshalJSON() ([]byte, error) {
	type alias UkjentInnsender
	return json.Marshal(struct {
		Type KildeType `json:"type"`
		alias
	}{k.Type(), alias(k)})
}

// UnmarshalKilde decodes a tagged kilde. Unknown tags are rejected.
func UnmarshalKilde(b []byte) (Kilde, error) {
	var head struct {
		Type KildeType `json:"type"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return nil, fmt.Errorf("decode kilde: %w", err)
	}

	switch head.Type {
	case KildeFolkeregisteret:
		var k Folkeregisteret
		err := json.Unmarshal(b, &k)
		return k, wrapKildeErr(err)
	case KildeSaksbehandler:
		var k Saksbehandler
		err := json.Unmarshal(b, &k)
		return k, wrapKildeErr(err)
	case KildePrivatperson:
		var k Privatperson
		err := json.Unmarshal(b, &k)
		return k, wrapKildeErr(err)
	case KildeUkjent:
		var k UkjentInnsender
		err := json.Unmarshal(b, &k)
		return k, wrapKildeErr(err)
	default:
		return nil, fmt.Errorf("decode kilde: unknown type %q", head.Type)
	}
}

func wrapKildeErr(err error) error {
	if err != nil {
		return fmt.Errorf("decode kilde: %w", err)
	}
	return nil
}

func validateKilde(k Kilde) error {
	switch v := k.(type) {
	case nil:
		return fmt.Errorf("kilde is required")
	case Folkeregisteret:
		if v.Registerreferanse == "" {
			return fmt.Errorf("kilde pdl: registerreferanse is required")
		}
	case Saksbehandler:
		if v.Ident == "" {
			return fmt.Errorf("kilde saksbehandler: ident is required")
		}
	case Privatperson:
		if v.Fnr.IsZero() {
			return fmt.Errorf("kilde privatperson: fnr is required")
		}
	case UkjentInnsender:
	default:
		return fmt.Errorf("unsupported kilde %T", k)
	}
	if k.Tidspunkt().IsZero() {
		return fmt.Errorf("kilde %s: tidspunkt is required", k.Type())
	}
	return nil
}
