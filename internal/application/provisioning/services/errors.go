package services

import (
	"errors"
	"strings"

	"invprov/internal/domain/inventory"
	apperrors "invprov/internal/shared/errors"
)

// MapError translates domain failures into application errors. AppErrors and nil pass
// through unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if apperrors.IsAppError(err) {
		return err
	}

	var partial *inventory.PartialRenameError
	if errors.As(err, &partial) {
		details := "stage " + string(partial.Stage) + ", entity " + partial.Entity
		if len(partial.Applied) > 0 {
			details += ", applied: " + strings.Join(partial.Applied, "; ")
		}
		return apperrors.NewPartialRenameError("rename stopped partway", details).WithCause(err)
	}

	var tooLong *inventory.NameTooLongError
	switch {
	case errors.As(err, &tooLong):
		return apperrors.NewValidationError("canonical name exceeds 100 characters", tooLong.Name).WithCause(err)
	case errors.Is(err, inventory.ErrInvalidIdentifier),
		errors.Is(err, inventory.ErrInvalidKind),
		errors.Is(err, inventory.ErrInvalidProperty),
		errors.Is(err, inventory.ErrKindMismatch):
		return apperrors.NewValidationError(err.Error()).WithCause(err)
	case errors.Is(err, inventory.ErrNotFound):
		return apperrors.NewNotFoundError(err.Error()).WithCause(err)
	case errors.Is(err, inventory.ErrDuplicateName):
		return apperrors.NewDuplicateEntryError(err.Error()).WithCause(err)
	case errors.Is(err, inventory.ErrVLANExhausted):
		return apperrors.NewResourceExhaustedError(inventory.ErrVLANExhausted.Error(), err.Error()).WithCause(err)
	case errors.Is(err, inventory.ErrNoFreeVoicePort):
		return apperrors.NewResourceExhaustedError(inventory.ErrNoFreeVoicePort.Error(), err.Error()).WithCause(err)
	case errors.Is(err, inventory.ErrSlotsExhausted):
		return apperrors.NewSlotsExhaustedError(inventory.ErrSlotsExhausted.Error(), err.Error()).WithCause(err)
	case errors.Is(err, inventory.ErrStoreUnavailable):
		return apperrors.NewStoreUnavailableError("inventory store unavailable").WithCause(err)
	default:
		return apperrors.NewInternalError("provisioning failed", err.Error()).WithCause(err)
	}
}
