// Package domain holds typed identifiers shared across the grunnlag modules.
//
// Identifiers are parsed at trust boundaries (HTTP, Kafka, CLI) and passed
// around as distinct types so a sak id can never be used where a behandling id
// is expected.
package domain

import (
	"encoding/json"
	"regexp"
	"strconv"

	"github.com/google/uuid"

	dErrors "grunnlag/pkg/domain-errors"
)

// SakID identifies a case. Always positive.
type SakID int64

// ParseSakID parses a decimal sak id.
func ParseSakID(s string) (SakID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid sak id")
	}
	if n <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "sak id must be positive")
	}
	return SakID(n), nil
}

func (id SakID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func (id SakID) IsZero() bool {
	return id <= 0
}

// BehandlingID identifies a treatment of a case.
type BehandlingID uuid.UUID

// OpplysningID identifies a single stored fact.
type OpplysningID uuid.UUID

func ParseBehandlingID(s string) (BehandlingID, error) {
	u, err := parseUUID(s, "behandling id")
	return BehandlingID(u), err
}

func ParseOpplysningID(s string) (OpplysningID, error) {
	u, err := parseUUID(s, "opplysning id")
	return OpplysningID(u), err
}

func NewOpplysningID() OpplysningID {
	return OpplysningID(uuid.New())
}

func (id BehandlingID) String() string { return uuid.UUID(id).String() }
func (id BehandlingID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id OpplysningID) String() string { return uuid.UUID(id).String() }
func (id OpplysningID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id BehandlingID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id OpplysningID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *BehandlingID) UnmarshalText(b []byte) error {
	parsed, err := ParseBehandlingID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *OpplysningID) UnmarshalText(b []byte) error {
	parsed, err := ParseOpplysningID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" cannot be nil")
	}
	return u, nil
}

// Folkeregisteridentifikator is a validated national identity number
// (fødselsnummer, d-nummer or h-nummer).
//
// Invariants:
//   - Exactly 11 ASCII digits
//
// Control digits are not verified; synthetic test identities from the
// population registry do not always satisfy them.
type Folkeregisteridentifikator struct {
	value string
}

var fnrPattern = regexp.MustCompile(`^[0-9]{11}$`)

// ParseFolkeregisteridentifikator validates and wraps an 11-digit identity number.
func ParseFolkeregisteridentifikator(s string) (Folkeregisteridentifikator, error) {
	if !fnrPattern.MatchString(s) {
		return Folkeregisteridentifikator{}, dErrors.New(dErrors.CodeInvalidInput, "folkeregisteridentifikator must be 11 digits")
	}
	return Folkeregisteridentifikator{value: s}, nil
}

// MustFolkeregisteridentifikator panics on invalid input. Tests and constants only.
func MustFolkeregisteridentifikator(s string) Folkeregisteridentifikator {
	fnr, err := ParseFolkeregisteridentifikator(s)
	if err != nil {
		panic(err)
	}
	return fnr
}

func (f Folkeregisteridentifikator) String() string {
	return f.value
}

func (f Folkeregisteridentifikator) IsZero() bool {
	return f.value == ""
}

func (f Folkeregisteridentifikator) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.value)
}

func (f *Folkeregisteridentifikator) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "folkeregisteridentifikator must be a string")
	}
	parsed, err := ParseFolkeregisteridentifikator(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
