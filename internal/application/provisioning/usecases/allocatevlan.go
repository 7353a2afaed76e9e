package usecases

import (
	"context"

	"invprov/internal/application/provisioning/dto"
	"invprov/internal/application/provisioning/services"
	"invprov/internal/shared/errors"
	"invprov/internal/shared/logger"
)

type AllocateVLANCommand struct {
	MENM        string
	Device      string
	TemplateRef string
	// RangeStart and RangeEnd override the configured range when both are set.
	RangeStart int
	RangeEnd   int
}

type AllocateVLANResult struct {
	VLANID    int
	Interface *dto.EntityDTO
}

// AllocateVLANUseCase reserves a VLAN in inventory without provisioning a service.
type AllocateVLANUseCase struct {
	allocator *services.Allocator
	logger    logger.Interface
}

func NewAllocateVLANUseCase(
	allocator *services.Allocator,
	logger logger.Interface,
) *AllocateVLANUseCase {
	return &AllocateVLANUseCase{
		allocator: allocator,
		logger:    logger,
	}
}

func (uc *AllocateVLANUseCase) Execute(ctx context.Context, cmd AllocateVLANCommand) (*AllocateVLANResult, error) {
	uc.logger.Infow("executing allocate VLAN use case", "menm", cmd.MENM, "device", cmd.Device)

	if cmd.MENM == "" {
		return nil, errors.NewValidationError("MENM is required")
	}

	req := services.VLANRequest{
		MENM:        cmd.MENM,
		Device:      cmd.Device,
		TemplateRef: cmd.TemplateRef,
	}
	if cmd.RangeStart != 0 || cmd.RangeEnd != 0 {
		req.Range = &services.VLANRange{Start: cmd.RangeStart, End: cmd.RangeEnd}
	}

	iface, err := uc.allocator.AllocateVLAN(ctx, req)
	if err != nil {
		uc.logger.Errorw("failed to allocate VLAN", "menm", cmd.MENM, "error", err)
		return nil, services.MapError(err)
	}

	return &AllocateVLANResult{
		VLANID:    iface.VLANID(),
		Interface: dto.ToEntityDTO(iface.Entity),
	}, nil
}
