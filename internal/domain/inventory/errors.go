package inventory

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrInvalidKind       = errors.New("invalid entity kind")
	ErrInvalidProperty   = errors.New("invalid property value")
	ErrKindMismatch      = errors.New("entity kind mismatch")
	ErrNameTooLong       = errors.New("canonical name too long")
	ErrNotFound          = errors.New("entity not found")
	ErrDuplicateName     = errors.New("canonical name already in use")
	ErrConcurrentUpdate  = errors.New("entity modified concurrently")
	ErrStoreUnavailable  = errors.New("inventory store unavailable")
	ErrVLANExhausted     = errors.New("no unused VLAN in range")
	ErrSlotsExhausted    = errors.New("more than 8 VLANs not allowed on this port")
	ErrNoFreeVoicePort   = errors.New("no free voice port on device")
)

// NameTooLongError carries the computed name that broke the length limit.
type NameTooLongError struct {
	Kind Kind
	Name string
}

func (e *NameTooLongError) Error() string {
	return fmt.Sprintf("%s name exceeds %d characters: %s", e.Kind, MaxNameLength, e.Name)
}

func (e *NameTooLongError) Is(target error) bool {
	return target == ErrNameTooLong
}

// PartialRenameError reports a rename cascade that stopped partway. Applied lists the
// renames written before the failure; nothing here rolls them back.
type PartialRenameError struct {
	Stage   Kind
	Entity  string
	Applied []string
	Err     error
}

func (e *PartialRenameError) Error() string {
	return fmt.Sprintf("rename stopped at %s %q after %d applied [%s]: %v",
		e.Stage, e.Entity, len(e.Applied), strings.Join(e.Applied, ", "), e.Err)
}

func (e *PartialRenameError) Unwrap() error {
	return e.Err
}

func ErrEntityNotFound(kind Kind, name string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, name)
}

func ErrNameInUse(kind Kind, name string) error {
	return fmt.Errorf("%w: %s %q", ErrDuplicateName, kind, name)
}
