package usecases

import (
	"context"

	"invprov/internal/application/provisioning/services"
	"invprov/internal/shared/errors"
	"invprov/internal/shared/logger"
)

type DeleteServiceCommand struct {
	SubscriptionName string
}

type DeleteServiceResult struct {
	Subscription       string
	Deleted            []string
	ResetDevices       []string
	ReleasedVoicePorts int
	FreedInterfaces    []string
	SubscriberDeleted  bool
}

type DeleteServiceUseCase struct {
	reclaimer *services.Reclaimer
	tx        TxRunner
	logger    logger.Interface
}

func NewDeleteServiceUseCase(
	reclaimer *services.Reclaimer,
	tx TxRunner,
	logger logger.Interface,
) *DeleteServiceUseCase {
	return &DeleteServiceUseCase{
		reclaimer: reclaimer,
		tx:        tx,
		logger:    logger,
	}
}

func (uc *DeleteServiceUseCase) Execute(ctx context.Context, cmd DeleteServiceCommand) (*DeleteServiceResult, error) {
	uc.logger.Infow("executing delete service use case", "subscription", cmd.SubscriptionName)

	if cmd.SubscriptionName == "" {
		return nil, errors.NewValidationError("subscription name is required")
	}

	var report *services.DeletionReport
	err := uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		report, err = uc.reclaimer.DeleteServiceChain(ctx, cmd.SubscriptionName)
		return err
	})
	if err != nil {
		uc.logger.Errorw("failed to delete service", "subscription", cmd.SubscriptionName, "error", err)
		return nil, services.MapError(err)
	}

	uc.logger.Infow("service deleted successfully",
		"subscription", cmd.SubscriptionName,
		"subscriber_deleted", report.SubscriberDeleted,
	)

	return &DeleteServiceResult{
		Subscription:       report.Subscription,
		Deleted:            report.DeletedEntities,
		ResetDevices:       report.ResetDevices,
		ReleasedVoicePorts: report.ReleasedVoicePorts,
		FreedInterfaces:    report.DeletedInterfaces,
		SubscriberDeleted:  report.SubscriberDeleted,
	}, nil
}
