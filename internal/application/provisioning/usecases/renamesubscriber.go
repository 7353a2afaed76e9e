package usecases

import (
	"context"

	"invprov/internal/application/provisioning/services"
	"invprov/internal/domain/inventory"
	"invprov/internal/shared/errors"
	"invprov/internal/shared/logger"
)

type RenameSubscriberCommand struct {
	SubscriberName   string
	NewAccountNumber string
}

type RenameSubscriberResult struct {
	Subscriber string
}

// RenameSubscriberUseCase renumbers an account across all of its subscriptions.
type RenameSubscriberUseCase struct {
	resolver *services.Resolver
	cascade  *services.Cascade
	tx       TxRunner
	logger   logger.Interface
}

func NewRenameSubscriberUseCase(
	resolver *services.Resolver,
	cascade *services.Cascade,
	tx TxRunner,
	logger logger.Interface,
) *RenameSubscriberUseCase {
	return &RenameSubscriberUseCase{
		resolver: resolver,
		cascade:  cascade,
		tx:       tx,
		logger:   logger,
	}
}

func (uc *RenameSubscriberUseCase) Execute(ctx context.Context, cmd RenameSubscriberCommand) (*RenameSubscriberResult, error) {
	uc.logger.Infow("executing rename subscriber use case", "subscriber", cmd.SubscriberName, "new_account", cmd.NewAccountNumber)

	if cmd.SubscriberName == "" {
		return nil, errors.NewValidationError("subscriber name is required")
	}
	if err := inventory.ValidateIdentifier("account number", cmd.NewAccountNumber); err != nil {
		return nil, services.MapError(err)
	}

	result := &RenameSubscriberResult{}
	err := uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		subscriber, err := uc.resolver.Get(ctx, inventory.KindSubscriber, cmd.SubscriberName)
		if err != nil {
			return err
		}
		oldAccount := subscriber.Property(inventory.PropAccountNumber)
		if oldAccount == "" {
			oldAccount = subscriber.Name()
		}

		result.Subscriber, err = uc.cascade.RenameSubscriber(ctx, cmd.SubscriberName, oldAccount, cmd.NewAccountNumber)
		return err
	})
	if err != nil {
		uc.logger.Errorw("failed to rename subscriber", "subscriber", cmd.SubscriberName, "error", err)
		return nil, services.MapError(err)
	}

	uc.logger.Infow("subscriber renamed successfully", "subscriber", cmd.SubscriberName, "new_subscriber", result.Subscriber)
	return result, nil
}
