package usecases

import (
	"context"
	"fmt"

	"invprov/internal/application/provisioning/services"
	"invprov/internal/domain/inventory"
	"invprov/internal/shared/errors"
	"invprov/internal/shared/logger"
)

// DeviceSeed describes one device to preload into the free pool.
type DeviceSeed struct {
	Type       string
	Serial     string
	Parent     string
	MACAddress string
	Model      string
	Properties map[string]any
}

type SeedInventoryCommand struct {
	Devices []DeviceSeed
}

type SeedInventoryResult struct {
	Created []string
	Skipped []string
}

// SeedInventoryUseCase preloads devices in the Available state. Existing devices are
// left untouched, so seeding can be rerun.
type SeedInventoryUseCase struct {
	resolver *services.Resolver
	tx       TxRunner
	logger   logger.Interface
}

func NewSeedInventoryUseCase(
	resolver *services.Resolver,
	tx TxRunner,
	logger logger.Interface,
) *SeedInventoryUseCase {
	return &SeedInventoryUseCase{
		resolver: resolver,
		tx:       tx,
		logger:   logger,
	}
}

func (uc *SeedInventoryUseCase) Execute(ctx context.Context, cmd SeedInventoryCommand) (*SeedInventoryResult, error) {
	uc.logger.Infow("executing seed inventory use case", "devices", len(cmd.Devices))

	for i, d := range cmd.Devices {
		if !inventory.DeviceType(d.Type).IsValid() {
			return nil, errors.NewValidationError("invalid device type", fmt.Sprintf("device %d: %q", i, d.Type))
		}
		if d.Serial == "" {
			return nil, errors.NewValidationError("device serial is required", fmt.Sprintf("device %d", i))
		}
	}

	result := &SeedInventoryResult{}
	err := uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, d := range cmd.Devices {
			deviceType := inventory.DeviceType(d.Type)
			name, err := inventory.DeviceName(deviceType, d.Serial)
			if err != nil {
				return err
			}
			extra, err := toProperties(d.Properties)
			if err != nil {
				return err
			}

			device, existed, err := uc.resolver.ResolveOrCreate(ctx, inventory.KindLogicalDevice, name, func(e *inventory.Entity) {
				e.MergeProperties(extra)
				inventory.LogicalDevice{Entity: e}.InitDefaults(deviceType, d.Serial)
				e.SetParent(d.Parent)
				setIfPresent(e.Properties(), inventory.PropMACAddress, d.MACAddress)
				setIfPresent(e.Properties(), inventory.PropModel, d.Model)
			})
			if err != nil {
				return err
			}
			if existed {
				result.Skipped = append(result.Skipped, device.Name())
				continue
			}
			result.Created = append(result.Created, device.Name())
		}
		return nil
	})
	if err != nil {
		uc.logger.Errorw("failed to seed inventory", "error", err)
		return nil, services.MapError(err)
	}

	uc.logger.Infow("inventory seeded", "created", len(result.Created), "skipped", len(result.Skipped))
	return result, nil
}
