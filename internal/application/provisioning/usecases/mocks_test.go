package usecases

import (
	"context"

	"invprov/internal/application/provisioning/services"
	"invprov/internal/application/provisioning/testutil"
)

type mockTxRunner struct {
	RunInTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
	calls                int
}

func (m *mockTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	if m.RunInTransactionFunc != nil {
		return m.RunInTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

// testEnv wires the provisioning services over an in-memory store.
type testEnv struct {
	store     *testutil.MockGraphStore
	tx        *mockTxRunner
	resolver  *services.Resolver
	allocator *services.Allocator
	cascade   *services.Cascade
	reclaimer *services.Reclaimer
}

func newTestEnv() *testEnv {
	store := testutil.NewMockGraphStore()
	log := testutil.NewTestLogger()
	return &testEnv{
		store:     store,
		tx:        &mockTxRunner{},
		resolver:  services.NewResolver(store, log),
		allocator: services.NewAllocator(store, &testutil.NoopLocker{}, services.DefaultVLANRange(), log),
		cascade:   services.NewCascade(store, log),
		reclaimer: services.NewReclaimer(store, log),
	}
}

func (e *testEnv) createService() *CreateServiceUseCase {
	return NewCreateServiceUseCase(e.store, e.resolver, e.allocator, e.tx, testutil.NewTestLogger())
}

func baseCreateCommand() CreateServiceCommand {
	return CreateServiceCommand{
		AccountNumber:  "SUB1",
		SubscriberType: "Residential",
		ServiceID:      "100",
		ServiceLink:    "ONT",
		ServiceSubType: "HSI",
		ServiceType:    "Broadband",
		QoSProfile:     "GOLD",
		SerialNo:       "ALCL0001",
		OLTName:        "OLT-NORTH-01",
	}
}
