package usecases

import (
	"context"

	"invprov/internal/application/provisioning/services"
	"invprov/internal/domain/inventory"
	"invprov/internal/shared/errors"
	"invprov/internal/shared/logger"
)

type ChangeServiceStatusCommand struct {
	SubscriptionName string
	Status           string
}

type ChangeServiceStatusResult struct {
	Subscription string
	Status       string
	Updated      []string
}

// ChangeServiceStatusUseCase suspends, resumes or deactivates a whole service chain.
type ChangeServiceStatusUseCase struct {
	store  inventory.GraphStore
	tx     TxRunner
	logger logger.Interface
}

func NewChangeServiceStatusUseCase(
	store inventory.GraphStore,
	tx TxRunner,
	logger logger.Interface,
) *ChangeServiceStatusUseCase {
	return &ChangeServiceStatusUseCase{
		store:  store,
		tx:     tx,
		logger: logger,
	}
}

func (uc *ChangeServiceStatusUseCase) Execute(ctx context.Context, cmd ChangeServiceStatusCommand) (*ChangeServiceStatusResult, error) {
	uc.logger.Infow("executing change service status use case", "subscription", cmd.SubscriptionName, "status", cmd.Status)

	if cmd.SubscriptionName == "" {
		return nil, errors.NewValidationError("subscription name is required")
	}
	if !inventory.IsValidStatus(cmd.Status) {
		return nil, errors.NewValidationError("invalid status", cmd.Status)
	}

	result := &ChangeServiceStatusResult{
		Subscription: cmd.SubscriptionName,
		Status:       cmd.Status,
	}
	err := uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		chain, err := loadChain(ctx, uc.store, cmd.SubscriptionName, false)
		if err != nil {
			return err
		}
		for _, e := range chain.serviceEntities() {
			applyStatus(e, cmd.Status)
			if err := uc.store.Save(ctx, e); err != nil {
				return err
			}
			result.Updated = append(result.Updated, e.Ref().String())
		}
		return nil
	})
	if err != nil {
		uc.logger.Errorw("failed to change service status", "subscription", cmd.SubscriptionName, "error", err)
		return nil, services.MapError(err)
	}

	uc.logger.Infow("service status changed", "subscription", cmd.SubscriptionName, "status", cmd.Status)
	return result, nil
}
