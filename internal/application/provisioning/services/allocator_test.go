package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invprov/internal/application/provisioning/testutil"
	"invprov/internal/domain/inventory"
	"invprov/internal/shared/constants"
)

func newTestAllocator(store *testutil.MockGraphStore, locker Locker) *Allocator {
	if locker == nil {
		locker = &testutil.NoopLocker{}
	}
	return NewAllocator(store, locker, DefaultVLANRange(), testutil.NewTestLogger())
}

func seedInterface(store *testutil.MockGraphStore, name string) {
	store.MustSeed(inventory.KindLogicalInterface, name, "", nil)
}

func TestAllocator_AllocateVLAN(t *testing.T) {
	rng := VLANRange{Start: 1000, End: 1003}

	tests := []struct {
		name     string
		occupied []int
		expected int
		wantErr  error
	}{
		{name: "first value free", occupied: nil, expected: 1000},
		{name: "skips occupied values", occupied: []int{1000, 1001}, expected: 1002},
		{name: "fills a gap", occupied: []int{1000, 1002}, expected: 1001},
		{name: "range exhausted", occupied: []int{1000, 1001, 1002}, wantErr: inventory.ErrVLANExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore()
			for _, v := range tt.occupied {
				seedInterface(store, fmt.Sprintf("MENM01_%d", v))
			}
			// another scope sharing no names must not interfere
			seedInterface(store, "MENM02_1000")

			allocator := newTestAllocator(store, nil)
			iface, err := allocator.AllocateVLAN(context.Background(), VLANRequest{
				MENM:   "MENM01",
				Device: "OLT-NORTH-01",
				Range:  &rng,
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, iface.VLANID())
			assert.Equal(t, fmt.Sprintf("MENM01_%d", tt.expected), iface.Name())
			assert.Equal(t, "MENM01", iface.MENM())
			assert.Equal(t, "OLT-NORTH-01", iface.DeviceName())
			assert.True(t, store.Exists(inventory.KindLogicalInterface, iface.Name()))
		})
	}
}

func TestAllocator_AllocateVLAN_UsesConfiguredRange(t *testing.T) {
	store := newTestStore()
	allocator := newTestAllocator(store, nil)

	iface, err := allocator.AllocateVLAN(context.Background(), VLANRequest{MENM: "MENM01"})

	require.NoError(t, err)
	assert.Equal(t, DefaultVLANRangeStart, iface.VLANID())
}

func TestAllocator_AllocateVLAN_ResumesScanAfterLostRace(t *testing.T) {
	store := newTestStore()
	store.SetBeforeCreate(func(e *inventory.Entity) {
		if e.Name() == "MENM01_1000" {
			store.SetBeforeCreate(nil)
			seedInterface(store, e.Name())
		}
	})
	allocator := newTestAllocator(store, nil)

	iface, err := allocator.AllocateVLAN(context.Background(), VLANRequest{MENM: "MENM01"})

	require.NoError(t, err)
	assert.Equal(t, 1001, iface.VLANID())
}

func TestAllocator_AllocateVLAN_ConcurrentCallersGetDistinctValues(t *testing.T) {
	store := newTestStore()
	allocator := newTestAllocator(store, newMutexLocker())

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan int, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			iface, err := allocator.AllocateVLAN(context.Background(), VLANRequest{MENM: "MENM01"})
			if assert.NoError(t, err) {
				results <- iface.VLANID()
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int]bool)
	for v := range results {
		assert.False(t, seen[v], "VLAN %d allocated twice", v)
		seen[v] = true
	}
	assert.Len(t, seen, callers)
}

func TestAllocator_AllocateVLAN_Validation(t *testing.T) {
	allocator := newTestAllocator(newTestStore(), nil)

	_, err := allocator.AllocateVLAN(context.Background(), VLANRequest{MENM: ""})
	assert.ErrorIs(t, err, inventory.ErrInvalidIdentifier)

	_, err = allocator.AllocateVLAN(context.Background(), VLANRequest{MENM: "MENM01", Range: &VLANRange{Start: 10, End: 10}})
	assert.ErrorIs(t, err, inventory.ErrInvalidIdentifier)
}

func TestAllocator_AllocateSingleTaggedSlot(t *testing.T) {
	tests := []struct {
		name     string
		occupied []int
		expected int
		wantErr  error
	}{
		{name: "first slot is 2", expected: 2},
		{name: "2..6 occupied yields 7", occupied: []int{2, 3, 4, 5, 6}, expected: 7},
		{name: "gap is reused", occupied: []int{2, 4}, expected: 3},
		{name: "2..8 occupied is exhausted", occupied: []int{2, 3, 4, 5, 6, 7, 8}, wantErr: inventory.ErrSlotsExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore()
			for _, slot := range tt.occupied {
				seedInterface(store, fmt.Sprintf("ALCL0001_P3_SINGLETAGGED_%d", slot))
			}
			// other port of the same ONT
			seedInterface(store, "ALCL0001_P4_SINGLETAGGED_2")

			locker := &testutil.NoopLocker{}
			allocator := newTestAllocator(store, locker)
			iface, err := allocator.AllocateSingleTaggedSlot(context.Background(), SlotRequest{
				Serial: "ALCL0001",
				Port:   3,
				Device: "ONTALCL0001",
			})

			assert.Equal(t, []string{constants.LockPrefixSlot + "ALCL0001:3"}, locker.Acquired)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), "more than 8 VLANs not allowed on this port")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, iface.Slot())
			assert.Equal(t, 3, iface.Port())
			assert.Equal(t, fmt.Sprintf("ALCL0001_P3_SINGLETAGGED_%d", tt.expected), iface.Name())
		})
	}
}

func TestAllocator_IncrementPortCounter(t *testing.T) {
	tests := []struct {
		name     string
		port     int
		current  string
		expected int
	}{
		{name: "port 2 keeps the pre-increment value", port: 2, current: "5", expected: 5},
		{name: "port 3 increments", port: 3, current: "5", expected: 6},
		{name: "missing counter starts from zero", port: 3, expected: 1},
		{name: "unparsable counter starts from zero", port: 3, current: "abc", expected: 1},
		{name: "unparsable port 2 counter records zero", port: 2, current: "abc", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore()
			ref := seedDevice(t, store, inventory.DeviceONT, "ALCL0001", func(d inventory.LogicalDevice) {
				if tt.current != "" {
					d.Properties().SetString(inventory.PortCounterKey(tt.port), tt.current)
				}
			})
			allocator := newTestAllocator(store, nil)

			recorded, err := allocator.IncrementPortCounter(context.Background(), ref.Name, tt.port)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, recorded)
			stored := store.Get(inventory.KindLogicalDevice, ref.Name)
			assert.Equal(t, fmt.Sprint(tt.expected), stored.Property(inventory.PortCounterKey(tt.port)))
			assert.Equal(t, 1, store.LockedReads())
		})
	}
}

func TestAllocator_IncrementPortCounter_UnknownDevice(t *testing.T) {
	allocator := newTestAllocator(newTestStore(), nil)

	_, err := allocator.IncrementPortCounter(context.Background(), "ONTMISSING", 3)

	assert.ErrorIs(t, err, inventory.ErrNotFound)
}

func TestAllocator_LockFailureStopsAllocation(t *testing.T) {
	lockErr := errors.New("lock backend down")
	store := newTestStore()
	allocator := newTestAllocator(store, lockerFunc(func(ctx context.Context, key string) (func(), error) {
		return nil, lockErr
	}))

	_, err := allocator.AllocateVLAN(context.Background(), VLANRequest{MENM: "MENM01"})

	assert.ErrorIs(t, err, lockErr)
	creates, _, _ := store.Writes()
	assert.Zero(t, creates)
}

type lockerFunc func(ctx context.Context, key string) (func(), error)

func (f lockerFunc) Lock(ctx context.Context, key string) (func(), error) {
	return f(ctx, key)
}

// mutexLocker is a keyed in-process lock for concurrency tests.
type mutexLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newMutexLocker() *mutexLocker {
	return &mutexLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *mutexLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}
