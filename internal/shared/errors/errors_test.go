package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors_StatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantCode int
	}{
		{"validation", NewValidationError("bad"), ErrorTypeValidation, http.StatusBadRequest},
		{"not found", NewNotFoundError("missing"), ErrorTypeNotFound, http.StatusNotFound},
		{"duplicate", NewDuplicateEntryError("exists"), ErrorTypeDuplicateEntry, http.StatusConflict},
		{"vlan exhausted", NewResourceExhaustedError("full"), ErrorTypeResourceExhausted, http.StatusUnprocessableEntity},
		{"slots exhausted", NewSlotsExhaustedError("full"), ErrorTypeSlotsExhausted, http.StatusUnprocessableEntity},
		{"store down", NewStoreUnavailableError("down"), ErrorTypeStoreUnavailable, http.StatusInternalServerError},
		{"partial rename", NewPartialRenameError("stopped"), ErrorTypePartialRename, http.StatusInternalServerError},
		{"internal", NewInternalError("oops"), ErrorTypeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantCode, tt.err.Code)
		})
	}
}

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	sentinel := errors.New("entity not found")
	err := NewNotFoundError("subscription not found", "SUB1_100").WithCause(sentinel)

	assert.Equal(t, "not_found: subscription not found (SUB1_100)", err.Error())
	assert.ErrorIs(t, err, sentinel)

	wrapped := fmt.Errorf("get service: %w", err)
	assert.True(t, IsNotFoundError(wrapped))
	assert.False(t, IsValidationError(wrapped))
	assert.Same(t, err, GetAppError(wrapped))
}

func TestHelpers_NonAppError(t *testing.T) {
	plain := errors.New("plain")
	assert.False(t, IsAppError(plain))
	assert.Nil(t, GetAppError(plain))
	assert.False(t, HasType(nil, ErrorTypeInternal))
	assert.True(t, IsDuplicateEntryError(NewDuplicateEntryError("exists")))
}

func TestIsDuplicateError(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"Error 1062 (23000): Duplicate entry 'LogicalDevice-STB_S1' for key 'uk_kind_name'", true},
		{"UNIQUE constraint failed: inventory_entities.kind, inventory_entities.name", true},
		{"ERROR: duplicate key value violates unique constraint", true},
		{"connection refused", false},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDuplicateError(errors.New(tt.msg)))
		})
	}
	assert.False(t, IsDuplicateError(nil))
}
