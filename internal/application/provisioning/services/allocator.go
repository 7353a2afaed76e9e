package services

import (
	"context"
	"errors"
	"fmt"

	"invprov/internal/domain/inventory"
	"invprov/internal/shared/logger"
)

const (
	// DefaultVLANRangeStart and DefaultVLANRangeEnd bound the VLAN search, end exclusive.
	DefaultVLANRangeStart = 1000
	DefaultVLANRangeEnd   = 4000

	// Single-tagged slots 2..8 are usable; reaching 9 means the port is full.
	firstSingleTaggedSlot     = 2
	exhaustedSingleTaggedSlot = 9

	// maxCounterAttempts bounds retries of a port counter update that lost a version race.
	maxCounterAttempts = 3
)

// VLANRange is the half-open interval [Start, End) scanned for a free VLAN.
type VLANRange struct {
	Start int
	End   int
}

func DefaultVLANRange() VLANRange {
	return VLANRange{Start: DefaultVLANRangeStart, End: DefaultVLANRangeEnd}
}

func (r VLANRange) Validate() error {
	if r.Start <= 0 || r.End <= r.Start {
		return fmt.Errorf("%w: VLAN range [%d, %d) is empty", inventory.ErrInvalidIdentifier, r.Start, r.End)
	}
	return nil
}

// VLANRequest asks for the lowest free VLAN of a MENM scope.
type VLANRequest struct {
	MENM string
	// Device owns the reserved interface; optional.
	Device      string
	TemplateRef string
	// Range overrides the allocator's configured range when set.
	Range *VLANRange
}

// SlotRequest asks for the lowest free single-tagged slot of an ONT port.
type SlotRequest struct {
	Serial      string
	Port        int
	Device      string
	TemplateRef string
}

// Allocator hands out VLAN IDs, single-tagged slots and port counters. Every scan runs
// under a lock keyed by its allocation scope and reserves the value with a conditional
// create, so a lost race resumes the scan instead of double allocating.
type Allocator struct {
	store     inventory.GraphStore
	locker    Locker
	vlanRange VLANRange
	logger    logger.Interface
}

func NewAllocator(store inventory.GraphStore, locker Locker, vlanRange VLANRange, logger logger.Interface) *Allocator {
	return &Allocator{
		store:     store,
		locker:    locker,
		vlanRange: vlanRange,
		logger:    logger,
	}
}

// AllocateVLAN reserves the lowest VLAN in range for which no <menm>_<vlan> interface
// exists and returns the reserved interface.
func (a *Allocator) AllocateVLAN(ctx context.Context, req VLANRequest) (inventory.LogicalInterface, error) {
	if err := inventory.ValidateIdentifier("MENM", req.MENM); err != nil {
		return inventory.LogicalInterface{}, err
	}
	rng := a.vlanRange
	if req.Range != nil {
		rng = *req.Range
	}
	if err := rng.Validate(); err != nil {
		return inventory.LogicalInterface{}, err
	}

	unlock, err := a.locker.Lock(ctx, vlanLockKey(req.MENM))
	if err != nil {
		return inventory.LogicalInterface{}, err
	}
	defer unlock()

	used, err := a.usedNames(ctx, req.MENM+inventory.Separator)
	if err != nil {
		return inventory.LogicalInterface{}, err
	}

	for vlan := rng.Start; vlan < rng.End; vlan++ {
		name, err := inventory.VLANInterfaceName(req.MENM, vlan)
		if err != nil {
			return inventory.LogicalInterface{}, err
		}
		if used[name] {
			continue
		}

		iface, err := a.reserve(ctx, name, req.Device, func(e *inventory.Entity) {
			e.Properties().SetInt(inventory.PropVLANID, vlan)
			e.Properties().SetString(inventory.PropMENM, req.MENM)
			if req.TemplateRef != "" {
				e.Properties().SetString(inventory.PropTemplateRef, req.TemplateRef)
			}
		})
		if errors.Is(err, inventory.ErrDuplicateName) {
			continue
		}
		if err != nil {
			return inventory.LogicalInterface{}, err
		}

		a.logger.Infow("VLAN allocated", "menm", req.MENM, "vlan_id", vlan, "interface", name)
		return iface, nil
	}

	a.logger.Warnw("VLAN range exhausted", "menm", req.MENM, "range_start", rng.Start, "range_end", rng.End)
	return inventory.LogicalInterface{}, fmt.Errorf("%w: MENM %s [%d, %d)", inventory.ErrVLANExhausted, req.MENM, rng.Start, rng.End)
}

// AllocateSingleTaggedSlot reserves the lowest free slot 2..8 of a serial and port.
func (a *Allocator) AllocateSingleTaggedSlot(ctx context.Context, req SlotRequest) (inventory.LogicalInterface, error) {
	if err := inventory.ValidateIdentifier("ONT serial", req.Serial); err != nil {
		return inventory.LogicalInterface{}, err
	}
	if req.Port <= 0 {
		return inventory.LogicalInterface{}, fmt.Errorf("%w: port must be positive", inventory.ErrInvalidIdentifier)
	}

	unlock, err := a.locker.Lock(ctx, slotLockKey(req.Serial, req.Port))
	if err != nil {
		return inventory.LogicalInterface{}, err
	}
	defer unlock()

	for slot := firstSingleTaggedSlot; slot < exhaustedSingleTaggedSlot; slot++ {
		name, err := inventory.SingleTaggedInterfaceName(req.Serial, req.Port, slot)
		if err != nil {
			return inventory.LogicalInterface{}, err
		}
		existing, err := a.store.FindByName(ctx, inventory.KindLogicalInterface, name)
		if err != nil {
			return inventory.LogicalInterface{}, err
		}
		if existing != nil {
			continue
		}

		iface, err := a.reserve(ctx, name, req.Device, func(e *inventory.Entity) {
			e.Properties().SetInt(inventory.PropPort, req.Port)
			e.Properties().SetInt(inventory.PropSlot, slot)
			e.Properties().SetString(inventory.PropSerialNo, req.Serial)
			if req.TemplateRef != "" {
				e.Properties().SetString(inventory.PropTemplateRef, req.TemplateRef)
			}
		})
		if errors.Is(err, inventory.ErrDuplicateName) {
			continue
		}
		if err != nil {
			return inventory.LogicalInterface{}, err
		}

		a.logger.Infow("single-tagged slot allocated", "serial", req.Serial, "port", req.Port, "slot", slot)
		return iface, nil
	}

	a.logger.Warnw("single-tagged slots exhausted", "serial", req.Serial, "port", req.Port)
	return inventory.LogicalInterface{}, fmt.Errorf("%w: %s port %d", inventory.ErrSlotsExhausted, req.Serial, req.Port)
}

// IncrementPortCounter bumps the usage counter of a device port and returns the value
// recorded on the device.
func (a *Allocator) IncrementPortCounter(ctx context.Context, deviceName string, port int) (int, error) {
	if port <= 0 {
		return 0, fmt.Errorf("%w: port must be positive", inventory.ErrInvalidIdentifier)
	}

	unlock, err := a.locker.Lock(ctx, counterLockKey(deviceName))
	if err != nil {
		return 0, err
	}
	defer unlock()

	for attempt := 1; ; attempt++ {
		entity, err := a.store.FindByNameForUpdate(ctx, inventory.KindLogicalDevice, deviceName)
		if err != nil {
			return 0, err
		}
		if entity == nil {
			return 0, inventory.ErrEntityNotFound(inventory.KindLogicalDevice, deviceName)
		}
		device, err := inventory.AsLogicalDevice(entity)
		if err != nil {
			return 0, err
		}

		recorded := device.IncrementPortCounter(port)
		err = a.store.Save(ctx, entity)
		if err == nil {
			a.logger.Debugw("port counter incremented", "device", deviceName, "port", port, "recorded", recorded)
			return recorded, nil
		}
		if !errors.Is(err, inventory.ErrConcurrentUpdate) || attempt == maxCounterAttempts {
			return 0, err
		}
		a.logger.Warnw("port counter update lost a version race, retrying", "device", deviceName, "attempt", attempt)
	}
}

func (a *Allocator) reserve(ctx context.Context, name, device string, init func(e *inventory.Entity)) (inventory.LogicalInterface, error) {
	entity, err := inventory.NewEntity(inventory.KindLogicalInterface, name)
	if err != nil {
		return inventory.LogicalInterface{}, err
	}
	entity.SetParent(device)
	init(entity)

	if err := a.store.Create(ctx, entity); err != nil {
		return inventory.LogicalInterface{}, err
	}
	return inventory.AsLogicalInterface(entity)
}

// usedNames loads the interface names sharing a prefix in one query.
func (a *Allocator) usedNames(ctx context.Context, prefix string) (map[string]bool, error) {
	existing, err := a.store.FindAll(ctx, inventory.EntityFilter{
		Kind:       inventory.KindLogicalInterface,
		NamePrefix: prefix,
	})
	if err != nil {
		return nil, err
	}
	used := make(map[string]bool, len(existing))
	for _, e := range existing {
		used[e.Name()] = true
	}
	return used, nil
}
