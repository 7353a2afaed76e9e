package services

import (
	"context"
	"fmt"

	"invprov/internal/shared/constants"
)

// Locker serializes allocations that share a scope. The returned func releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

func vlanLockKey(menm string) string {
	return constants.LockPrefixVLAN + menm
}

func slotLockKey(serial string, port int) string {
	return fmt.Sprintf("%s%s:%d", constants.LockPrefixSlot, serial, port)
}

func counterLockKey(device string) string {
	return constants.LockPrefixCounter + device
}
