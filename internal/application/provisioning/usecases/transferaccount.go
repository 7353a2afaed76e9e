package usecases

import (
	"context"

	"invprov/internal/application/provisioning/services"
	"invprov/internal/domain/inventory"
	"invprov/internal/shared/errors"
	"invprov/internal/shared/logger"
)

type TransferAccountCommand struct {
	SubscriptionName string
	NewAccountNumber string
	NewQualifier     string
}

type TransferAccountResult struct {
	Subscription       string
	Subscriber         string
	SubscriberCreated  bool
	PreviousSubscriber string
	PreviousDeleted    bool
	Renames            [][2]string
}

// TransferAccountUseCase moves a subscription and its products to another account.
type TransferAccountUseCase struct {
	store    inventory.GraphStore
	resolver *services.Resolver
	cascade  *services.Cascade
	tx       TxRunner
	logger   logger.Interface
}

func NewTransferAccountUseCase(
	store inventory.GraphStore,
	resolver *services.Resolver,
	cascade *services.Cascade,
	tx TxRunner,
	logger logger.Interface,
) *TransferAccountUseCase {
	return &TransferAccountUseCase{
		store:    store,
		resolver: resolver,
		cascade:  cascade,
		tx:       tx,
		logger:   logger,
	}
}

func (uc *TransferAccountUseCase) Execute(ctx context.Context, cmd TransferAccountCommand) (*TransferAccountResult, error) {
	uc.logger.Infow("executing transfer account use case",
		"subscription", cmd.SubscriptionName,
		"new_account", cmd.NewAccountNumber,
	)

	if cmd.SubscriptionName == "" {
		return nil, errors.NewValidationError("subscription name is required")
	}
	target, err := inventory.SubscriberName(cmd.NewAccountNumber, cmd.NewQualifier)
	if err != nil {
		return nil, services.MapError(err)
	}

	result := &TransferAccountResult{Subscriber: target}
	err = uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		sub, err := uc.resolver.Get(ctx, inventory.KindSubscription, cmd.SubscriptionName)
		if err != nil {
			return err
		}
		previous, err := uc.resolver.Get(ctx, inventory.KindSubscriber, sub.Parent())
		if err != nil {
			return err
		}
		result.PreviousSubscriber = previous.Name()
		if previous.Name() == target {
			return inventory.ErrNameInUse(inventory.KindSubscriber, target)
		}

		subscriber, existed, err := uc.resolver.ResolveOrCreate(ctx, inventory.KindSubscriber, target, func(e *inventory.Entity) {
			e.Properties().SetString(inventory.PropAccountNumber, cmd.NewAccountNumber)
			for _, key := range []string{inventory.PropType, inventory.PropHouseholdID} {
				if v, ok := previous.Properties().Get(key); ok {
					e.Properties()[key] = v
				}
			}
		})
		if err != nil {
			return err
		}
		result.SubscriberCreated = !existed

		plan, err := uc.cascade.PlanTransfer(ctx, cmd.SubscriptionName, subscriber.Name())
		if err != nil {
			return err
		}
		if err := uc.cascade.Apply(ctx, plan); err != nil {
			return err
		}
		result.Subscription = plan.NewSubscriptionName()
		result.Renames = plan.Renames()

		remaining, err := uc.store.Count(ctx, inventory.EntityFilter{
			Kind:   inventory.KindSubscription,
			Parent: inventory.ParentIs(previous.Name()),
		})
		if err != nil {
			return err
		}
		if remaining == 0 {
			if err := uc.store.Delete(ctx, previous); err != nil {
				return err
			}
			result.PreviousDeleted = true
		}
		return nil
	})
	if err != nil {
		uc.logger.Errorw("failed to transfer account", "subscription", cmd.SubscriptionName, "error", err)
		return nil, services.MapError(err)
	}

	uc.logger.Infow("account transferred successfully",
		"subscription", result.Subscription,
		"subscriber", result.Subscriber,
		"previous_subscriber_deleted", result.PreviousDeleted,
	)
	return result, nil
}
