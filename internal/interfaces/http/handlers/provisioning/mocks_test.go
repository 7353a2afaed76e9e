package provisioning

import (
	"context"

	"invprov/internal/application/provisioning/dto"
	"invprov/internal/application/provisioning/usecases"
	"invprov/internal/shared/logger"
)

type mockCreateService struct {
	executeFn func(ctx context.Context, cmd usecases.CreateServiceCommand) (*usecases.CreateServiceResult, error)
}

func (m *mockCreateService) Execute(ctx context.Context, cmd usecases.CreateServiceCommand) (*usecases.CreateServiceResult, error) {
	if m.executeFn != nil {
		return m.executeFn(ctx, cmd)
	}
	return &usecases.CreateServiceResult{}, nil
}

type mockModifyService struct {
	executeFn func(ctx context.Context, cmd usecases.ModifyServiceCommand) (*usecases.ModifyServiceResult, error)
}

func (m *mockModifyService) Execute(ctx context.Context, cmd usecases.ModifyServiceCommand) (*usecases.ModifyServiceResult, error) {
	if m.executeFn != nil {
		return m.executeFn(ctx, cmd)
	}
	return &usecases.ModifyServiceResult{}, nil
}

type mockChangeStatus struct {
	executeFn func(ctx context.Context, cmd usecases.ChangeServiceStatusCommand) (*usecases.ChangeServiceStatusResult, error)
}

func (m *mockChangeStatus) Execute(ctx context.Context, cmd usecases.ChangeServiceStatusCommand) (*usecases.ChangeServiceStatusResult, error) {
	if m.executeFn != nil {
		return m.executeFn(ctx, cmd)
	}
	return &usecases.ChangeServiceStatusResult{}, nil
}

type mockDeleteService struct {
	executeFn func(ctx context.Context, cmd usecases.DeleteServiceCommand) (*usecases.DeleteServiceResult, error)
}

func (m *mockDeleteService) Execute(ctx context.Context, cmd usecases.DeleteServiceCommand) (*usecases.DeleteServiceResult, error) {
	if m.executeFn != nil {
		return m.executeFn(ctx, cmd)
	}
	return &usecases.DeleteServiceResult{}, nil
}

type mockTransferAccount struct {
	executeFn func(ctx context.Context, cmd usecases.TransferAccountCommand) (*usecases.TransferAccountResult, error)
}

func (m *mockTransferAccount) Execute(ctx context.Context, cmd usecases.TransferAccountCommand) (*usecases.TransferAccountResult, error) {
	if m.executeFn != nil {
		return m.executeFn(ctx, cmd)
	}
	return &usecases.TransferAccountResult{}, nil
}

type mockRenameSubscriber struct {
	executeFn func(ctx context.Context, cmd usecases.RenameSubscriberCommand) (*usecases.RenameSubscriberResult, error)
}

func (m *mockRenameSubscriber) Execute(ctx context.Context, cmd usecases.RenameSubscriberCommand) (*usecases.RenameSubscriberResult, error) {
	if m.executeFn != nil {
		return m.executeFn(ctx, cmd)
	}
	return &usecases.RenameSubscriberResult{}, nil
}

type mockGetService struct {
	executeFn func(ctx context.Context, query usecases.GetServiceQuery) (*dto.ServiceDTO, error)
}

func (m *mockGetService) Execute(ctx context.Context, query usecases.GetServiceQuery) (*dto.ServiceDTO, error) {
	if m.executeFn != nil {
		return m.executeFn(ctx, query)
	}
	return &dto.ServiceDTO{}, nil
}

type mockAllocateVLAN struct {
	executeFn func(ctx context.Context, cmd usecases.AllocateVLANCommand) (*usecases.AllocateVLANResult, error)
}

func (m *mockAllocateVLAN) Execute(ctx context.Context, cmd usecases.AllocateVLANCommand) (*usecases.AllocateVLANResult, error) {
	if m.executeFn != nil {
		return m.executeFn(ctx, cmd)
	}
	return &usecases.AllocateVLANResult{}, nil
}

type mockSeedInventory struct {
	executeFn func(ctx context.Context, cmd usecases.SeedInventoryCommand) (*usecases.SeedInventoryResult, error)
}

func (m *mockSeedInventory) Execute(ctx context.Context, cmd usecases.SeedInventoryCommand) (*usecases.SeedInventoryResult, error) {
	if m.executeFn != nil {
		return m.executeFn(ctx, cmd)
	}
	return &usecases.SeedInventoryResult{}, nil
}

type mocks struct {
	create   *mockCreateService
	modify   *mockModifyService
	status   *mockChangeStatus
	del      *mockDeleteService
	transfer *mockTransferAccount
	rename   *mockRenameSubscriber
	get      *mockGetService
	vlan     *mockAllocateVLAN
	seed     *mockSeedInventory
}

func newTestHandler() (*Handler, *mocks) {
	m := &mocks{
		create:   &mockCreateService{},
		modify:   &mockModifyService{},
		status:   &mockChangeStatus{},
		del:      &mockDeleteService{},
		transfer: &mockTransferAccount{},
		rename:   &mockRenameSubscriber{},
		get:      &mockGetService{},
		vlan:     &mockAllocateVLAN{},
		seed:     &mockSeedInventory{},
	}
	h := NewHandler(m.create, m.modify, m.status, m.del, m.transfer, m.rename, m.get, m.vlan, m.seed, logger.NewNopLogger())
	return h, m
}
