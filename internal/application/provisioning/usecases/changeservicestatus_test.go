package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invprov/internal/application/provisioning/testutil"
	"invprov/internal/domain/inventory"
	apperrors "invprov/internal/shared/errors"
)

func TestChangeServiceStatusUseCase_Execute(t *testing.T) {
	env := newTestEnv()
	_, err := env.createService().Execute(context.Background(), baseCreateCommand())
	require.NoError(t, err)

	uc := NewChangeServiceStatusUseCase(env.store, env.tx, testutil.NewTestLogger())
	result, err := uc.Execute(context.Background(), ChangeServiceStatusCommand{
		SubscriptionName: "SUB1_100",
		Status:           inventory.StatusInactive,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{
		"Subscription/SUB1_100",
		"Product/SUB1_HSI_100",
		"CustomerFacingService/CFS_SUB1_100",
		"ResourceFacingService/RFS_SUB1_100",
	}, result.Updated)
	assert.Equal(t, inventory.StatusInactive, env.store.Get(inventory.KindCFS, "CFS_SUB1_100").Property(inventory.PropServiceStatus))
	// the subscriber is not part of the service chain
	assert.Equal(t, inventory.StatusActive, env.store.Get(inventory.KindSubscriber, "SUB1").Status())
}

func TestChangeServiceStatusUseCase_Execute_InvalidStatus(t *testing.T) {
	env := newTestEnv()
	uc := NewChangeServiceStatusUseCase(env.store, env.tx, testutil.NewTestLogger())

	_, err := uc.Execute(context.Background(), ChangeServiceStatusCommand{SubscriptionName: "SUB1_100", Status: "Paused"})

	assert.True(t, apperrors.IsValidationError(err))
}
