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

func TestSeedInventoryUseCase_Execute(t *testing.T) {
	env := newTestEnv()
	uc := NewSeedInventoryUseCase(env.resolver, env.tx, testutil.NewTestLogger())
	cmd := SeedInventoryCommand{Devices: []DeviceSeed{
		{Type: "OLT", Serial: "OLT-NORTH-01", Model: "7360"},
		{Type: "ONT", Serial: "ALCL0001", Parent: "OLT-NORTH-01", Properties: map[string]any{"port2Counter": "5"}},
		{Type: "STB", Serial: "S1", MACAddress: "00:11:22:33:44:55"},
	}}

	result, err := uc.Execute(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, []string{"OLT-NORTH-01", "ONTALCL0001", "STB_S1"}, result.Created)

	ont, err := inventory.AsLogicalDevice(env.store.Get(inventory.KindLogicalDevice, "ONTALCL0001"))
	require.NoError(t, err)
	assert.Equal(t, inventory.StateAvailable, ont.AdministrativeState())
	assert.Equal(t, inventory.StateAvailable, ont.Property(inventory.PropPotsPort1Number))
	assert.Equal(t, "OLT-NORTH-01", ont.Parent())
	assert.Equal(t, 5, ont.PortCounter(2))

	again, err := uc.Execute(context.Background(), cmd)
	require.NoError(t, err)
	assert.Empty(t, again.Created)
	assert.Len(t, again.Skipped, 3)
}

func TestSeedInventoryUseCase_Execute_InvalidType(t *testing.T) {
	env := newTestEnv()
	uc := NewSeedInventoryUseCase(env.resolver, env.tx, testutil.NewTestLogger())

	_, err := uc.Execute(context.Background(), SeedInventoryCommand{Devices: []DeviceSeed{{Type: "ROUTER", Serial: "R1"}}})

	assert.True(t, apperrors.IsValidationError(err))
	assert.Empty(t, env.store.Names(inventory.KindLogicalDevice))
}
