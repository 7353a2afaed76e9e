package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invprov/internal/application/provisioning/testutil"
	apperrors "invprov/internal/shared/errors"
)

func TestGetServiceUseCase_Execute(t *testing.T) {
	env := newTestEnv()
	cmd := baseCreateCommand()
	cmd.MENM = "MENM01"
	_, err := env.createService().Execute(context.Background(), cmd)
	require.NoError(t, err)

	uc := NewGetServiceUseCase(env.store, testutil.NewTestLogger())
	service, err := uc.Execute(context.Background(), GetServiceQuery{SubscriptionName: "SUB1_100"})

	require.NoError(t, err)
	assert.Equal(t, "SUB1", service.Subscriber.Name)
	assert.Equal(t, "SUB1_100", service.Subscription.Name)
	require.Len(t, service.Products, 1)
	assert.Equal(t, "SUB1_HSI_100", service.Products[0].Name)
	assert.Equal(t, "CFS_SUB1_100", service.CFS.Name)
	assert.Equal(t, "RFS_SUB1_100", service.RFS.Name)
	require.Len(t, service.Devices, 1)
	assert.Equal(t, "ONTALCL0001", service.Devices[0].Name)
	require.Len(t, service.Interfaces, 1)
	assert.Equal(t, int64(1000), service.Interfaces[0].Properties["vlanId"])
}

func TestGetServiceUseCase_Execute_NotFound(t *testing.T) {
	env := newTestEnv()
	uc := NewGetServiceUseCase(env.store, testutil.NewTestLogger())

	_, err := uc.Execute(context.Background(), GetServiceQuery{SubscriptionName: "SUB1_100"})

	assert.True(t, apperrors.IsNotFoundError(err))
}
