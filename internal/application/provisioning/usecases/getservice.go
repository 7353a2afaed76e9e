package usecases

import (
	"context"

	"invprov/internal/application/provisioning/dto"
	"invprov/internal/application/provisioning/services"
	"invprov/internal/domain/inventory"
	"invprov/internal/shared/errors"
	"invprov/internal/shared/logger"
)

type GetServiceQuery struct {
	SubscriptionName string
}

type GetServiceUseCase struct {
	store  inventory.GraphStore
	logger logger.Interface
}

func NewGetServiceUseCase(
	store inventory.GraphStore,
	logger logger.Interface,
) *GetServiceUseCase {
	return &GetServiceUseCase{
		store:  store,
		logger: logger,
	}
}

func (uc *GetServiceUseCase) Execute(ctx context.Context, query GetServiceQuery) (*dto.ServiceDTO, error) {
	if query.SubscriptionName == "" {
		return nil, errors.NewValidationError("subscription name is required")
	}

	chain, err := loadChain(ctx, uc.store, query.SubscriptionName, true)
	if err != nil {
		uc.logger.Errorw("failed to load service", "subscription", query.SubscriptionName, "error", err)
		return nil, services.MapError(err)
	}

	return &dto.ServiceDTO{
		Subscriber:   dto.ToEntityDTO(chain.subscriber),
		Subscription: dto.ToEntityDTO(chain.subscription),
		Products:     dto.ToEntityDTOs(chain.products),
		CFS:          dto.ToEntityDTO(chain.cfs),
		RFS:          dto.ToEntityDTO(chain.rfs),
		Devices:      dto.ToEntityDTOs(chain.devices),
		Interfaces:   dto.ToEntityDTOs(chain.interfaces),
	}, nil
}
