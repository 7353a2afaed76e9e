package usecases

import (
	"context"

	"invprov/internal/application/provisioning/services"
	"invprov/internal/domain/inventory"
	"invprov/internal/shared/errors"
	"invprov/internal/shared/logger"
)

type ModifyServiceCommand struct {
	SubscriptionName string
	// NewServiceID renames the whole subgraph when it differs from the current one.
	NewServiceID      string
	QoSProfile        *string
	Status            *string
	Properties        map[string]any
	ProductProperties map[string]any
}

type ModifyServiceResult struct {
	Subscription string
	Renamed      bool
	Renames      [][2]string
}

type ModifyServiceUseCase struct {
	store   inventory.GraphStore
	cascade *services.Cascade
	tx      TxRunner
	logger  logger.Interface
}

func NewModifyServiceUseCase(
	store inventory.GraphStore,
	cascade *services.Cascade,
	tx TxRunner,
	logger logger.Interface,
) *ModifyServiceUseCase {
	return &ModifyServiceUseCase{
		store:   store,
		cascade: cascade,
		tx:      tx,
		logger:  logger,
	}
}

func (uc *ModifyServiceUseCase) Execute(ctx context.Context, cmd ModifyServiceCommand) (*ModifyServiceResult, error) {
	uc.logger.Infow("executing modify service use case", "subscription", cmd.SubscriptionName)

	if err := uc.validateCommand(cmd); err != nil {
		uc.logger.Errorw("invalid modify service command", "error", err)
		return nil, err
	}

	subProps, err := toProperties(cmd.Properties)
	if err != nil {
		return nil, services.MapError(err)
	}
	productProps, err := toProperties(cmd.ProductProperties)
	if err != nil {
		return nil, services.MapError(err)
	}

	result := &ModifyServiceResult{Subscription: cmd.SubscriptionName}
	err = uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := loadChain(ctx, uc.store, cmd.SubscriptionName, false)
		if err != nil {
			return err
		}

		oldServiceID := current.subscription.Property(inventory.PropServiceID)
		if cmd.NewServiceID != "" && cmd.NewServiceID != oldServiceID {
			plan, err := uc.cascade.PlanServiceID(ctx, oldServiceID, cmd.NewServiceID, cmd.SubscriptionName)
			if err != nil {
				return err
			}
			if err := uc.cascade.Apply(ctx, plan); err != nil {
				return err
			}
			result.Subscription = plan.NewSubscriptionName()
			result.Renamed = true
			result.Renames = plan.Renames()
		}

		chain, err := loadChain(ctx, uc.store, result.Subscription, false)
		if err != nil {
			return err
		}

		sub := chain.subscription
		sub.MergeProperties(subProps)
		if cmd.QoSProfile != nil {
			sub.SetStringProperty(inventory.PropQoSProfile, *cmd.QoSProfile)
		}
		if cmd.Status == nil && len(subProps) == 0 && cmd.QoSProfile == nil && len(productProps) == 0 {
			return nil
		}

		for _, e := range chain.serviceEntities() {
			if cmd.Status != nil {
				applyStatus(e, *cmd.Status)
			}
			if e.Kind() == inventory.KindProduct {
				e.MergeProperties(productProps)
			}
			if err := uc.store.Save(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		uc.logger.Errorw("failed to modify service", "subscription", cmd.SubscriptionName, "error", err)
		return nil, services.MapError(err)
	}

	uc.logger.Infow("service modified successfully",
		"subscription", result.Subscription,
		"renamed", result.Renamed,
	)
	return result, nil
}

func (uc *ModifyServiceUseCase) validateCommand(cmd ModifyServiceCommand) error {
	if cmd.SubscriptionName == "" {
		return errors.NewValidationError("subscription name is required")
	}
	if cmd.Status != nil && !inventory.IsValidStatus(*cmd.Status) {
		return errors.NewValidationError("invalid status", *cmd.Status)
	}
	return nil
}
