package service

import (
	"context"
	"errors"

	"grunnlag/internal/grunnlag/models"
	dErrors "grunnlag/pkg/domain-errors"
	"grunnlag/pkg/platform/sentinel"
)

// translate maps store and model errors to coded domain errors. The underlying
// error stays in the chain so errors.Is keeps working for callers.
func translate(err error, internalMsg string) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, models.ErrInvalidOpplysning):
		return dErrors.Wrap(err, dErrors.CodeBadRequest, err.Error())
	case errors.Is(err, models.ErrVersionNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, err.Error())
	case errors.Is(err, models.ErrBehandlingLaast):
		return dErrors.Wrap(err, dErrors.CodeConflict, "behandling is locked")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "conflicting update")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "not found")
	case errors.Is(err, models.ErrStorageUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "grunnlag storage unavailable")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "request cancelled")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, internalMsg)
	}
}
