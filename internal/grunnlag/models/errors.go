package models

import (
	"errors"
	"fmt"
	"strings"

	"grunnlag/pkg/domain"
	"grunnlag/pkg/platform/sentinel"
)

var (
	ErrStorageUnavailable    = errors.New("grunnlag storage unavailable")
	ErrVersionNotFound       = errors.New("grunnlag version not found")
	ErrDataIntegrityConflict = errors.New("grunnlag data integrity conflict")
	ErrInvalidOpplysning     = errors.New("invalid opplysning")
	ErrInvalidVersion        = errors.New("invalid grunnlag version")
	ErrBehandlingLaast       = errors.New("behandling is locked to a grunnlag version")
)

// StorageError wraps a persistence failure. It matches ErrStorageUnavailable
// and sentinel.ErrUnavailable.
type StorageError struct {
	Op  string
	Err error
}

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorageUnavailable, e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorageUnavailable, sentinel.ErrUnavailable, e.Err}
}

// VersionNotFoundError is returned when a requested version is above the
// highest hendelsenummer of the sak.
type VersionNotFoundError struct {
	SakID   domain.SakID
	Versjon int64
	Siste   int64
}

func (e *VersionNotFoundError) Error() string {
	return fmt.Sprintf("%s: sak %s has no version %d (latest is %d)", ErrVersionNotFound, e.SakID, e.Versjon, e.Siste)
}

func (e *VersionNotFoundError) Unwrap() error {
	return ErrVersionNotFound
}

// DataIntegrityError lists groups that mix constant and periodized records.
type DataIntegrityError struct {
	SakID      domain.SakID
	Konflikter []Integritetskonflikt
}

func (e *DataIntegrityError) Error() string {
	parts := make([]string, 0, len(e.Konflikter))
	for _, k := range e.Konflikter {
		parts = append(parts, k.String())
	}
	return fmt.Sprintf("%s in sak %s: %s", ErrDataIntegrityConflict, e.SakID, strings.Join(parts, "; "))
}

func (e *DataIntegrityError) Unwrap() error {
	return ErrDataIntegrityConflict
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOpplysning, fmt.Sprintf(format, args...))
}
