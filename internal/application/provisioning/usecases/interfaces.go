package usecases

import (
	"context"

	"invprov/internal/application/provisioning/dto"
)

// TxRunner runs a multi-entity action as one unit of work when the store supports it.
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type CreateServiceExecutor interface {
	Execute(ctx context.Context, cmd CreateServiceCommand) (*CreateServiceResult, error)
}

type ModifyServiceExecutor interface {
	Execute(ctx context.Context, cmd ModifyServiceCommand) (*ModifyServiceResult, error)
}

type ChangeServiceStatusExecutor interface {
	Execute(ctx context.Context, cmd ChangeServiceStatusCommand) (*ChangeServiceStatusResult, error)
}

type DeleteServiceExecutor interface {
	Execute(ctx context.Context, cmd DeleteServiceCommand) (*DeleteServiceResult, error)
}

type TransferAccountExecutor interface {
	Execute(ctx context.Context, cmd TransferAccountCommand) (*TransferAccountResult, error)
}

type RenameSubscriberExecutor interface {
	Execute(ctx context.Context, cmd RenameSubscriberCommand) (*RenameSubscriberResult, error)
}

type GetServiceExecutor interface {
	Execute(ctx context.Context, query GetServiceQuery) (*dto.ServiceDTO, error)
}

type AllocateVLANExecutor interface {
	Execute(ctx context.Context, cmd AllocateVLANCommand) (*AllocateVLANResult, error)
}

type SeedInventoryExecutor interface {
	Execute(ctx context.Context, cmd SeedInventoryCommand) (*SeedInventoryResult, error)
}
