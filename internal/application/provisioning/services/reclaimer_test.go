package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invprov/internal/application/provisioning/testutil"
	"invprov/internal/domain/inventory"
)

func TestReclaimer_SubscriberDeletionThreshold(t *testing.T) {
	tests := []struct {
		name              string
		subscriptions     []string
		deleteServiceID   string
		subscriberDeleted bool
	}{
		{name: "last subscription removes the subscriber", subscriptions: []string{"100"}, deleteServiceID: "100", subscriberDeleted: true},
		{name: "one of two keeps the subscriber", subscriptions: []string{"100", "101"}, deleteServiceID: "100", subscriberDeleted: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore()
			var target serviceFixture
			for _, id := range tt.subscriptions {
				f := seedService(t, store, "SUB1", "HSI", id)
				if id == tt.deleteServiceID {
					target = f
				}
			}

			reclaimer := NewReclaimer(store, testutil.NewTestLogger())
			report, err := reclaimer.DeleteServiceChain(context.Background(), target.subscription)

			require.NoError(t, err)
			assert.Equal(t, tt.subscriberDeleted, report.SubscriberDeleted)
			assert.Equal(t, !tt.subscriberDeleted, store.Exists(inventory.KindSubscriber, "SUB1"))
			assert.False(t, store.Exists(inventory.KindSubscription, target.subscription))
			assert.False(t, store.Exists(inventory.KindProduct, target.product))
			assert.False(t, store.Exists(inventory.KindCFS, target.cfs))
			assert.False(t, store.Exists(inventory.KindRFS, target.rfs))
		})
	}
}

func TestReclaimer_ReclaimsDeviceState(t *testing.T) {
	store := newTestStore()
	ont := seedDevice(t, store, inventory.DeviceONT, "ALCL0001", func(d inventory.LogicalDevice) {
		d.Allocate()
		_, _ = d.AssignVoicePort("5551000")
		_, _ = d.AssignVoicePort("5559999")
	})
	stb := seedDevice(t, store, inventory.DeviceSTB, "S1", func(d inventory.LogicalDevice) {
		d.Allocate()
	})
	cbm := seedDevice(t, store, inventory.DeviceCBM, "AABBCC", func(d inventory.LogicalDevice) {
		d.Allocate()
		_, _ = d.AssignVoicePort("5551000")
	})
	vlan := inventory.Ref{Kind: inventory.KindLogicalInterface, Name: "MENM01_1000"}
	store.MustSeed(vlan.Kind, vlan.Name, "", nil)

	f := seedService(t, store, "SUB1", "VOIP", "100", ont, stb, cbm, vlan)
	sub := store.Get(inventory.KindSubscription, f.subscription)
	sub.SetStringProperty(inventory.PropVoipNumber1, "5551000")
	require.NoError(t, store.Save(context.Background(), sub))

	reclaimer := NewReclaimer(store, testutil.NewTestLogger())
	report, err := reclaimer.DeleteServiceChain(context.Background(), f.subscription)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{stb.Name, cbm.Name}, report.ResetDevices)
	assert.Equal(t, 1, report.ReleasedVoicePorts)
	assert.Equal(t, []string{vlan.Name}, report.DeletedInterfaces)
	assert.False(t, store.Exists(vlan.Kind, vlan.Name))

	ontAfter, err := inventory.AsLogicalDevice(store.Get(inventory.KindLogicalDevice, ont.Name))
	require.NoError(t, err)
	assert.Equal(t, inventory.StateAvailable, ontAfter.Property(inventory.PropPotsPort1Number))
	assert.Equal(t, "5559999", ontAfter.Property(inventory.PropPotsPort2Number))
	// ONTs are shared and stay allocated
	assert.Equal(t, inventory.StateAllocated, ontAfter.AdministrativeState())

	for _, ref := range []inventory.Ref{stb, cbm} {
		d, err := inventory.AsLogicalDevice(store.Get(ref.Kind, ref.Name))
		require.NoError(t, err)
		assert.Equal(t, inventory.StateAvailable, d.AdministrativeState())
		assert.Equal(t, inventory.StateAvailable, d.OperationalState())
	}
	cbmAfter := store.Get(inventory.KindLogicalDevice, cbm.Name)
	assert.Equal(t, inventory.StateAvailable, cbmAfter.Property(inventory.PropVoipPort1))
}

func TestReclaimer_UnknownSubscription(t *testing.T) {
	reclaimer := NewReclaimer(newTestStore(), testutil.NewTestLogger())

	_, err := reclaimer.DeleteServiceChain(context.Background(), "SUB1_100")

	assert.ErrorIs(t, err, inventory.ErrNotFound)
}

func TestReclaimer_StoreFailureStops(t *testing.T) {
	store := newTestStore()
	f := seedService(t, store, "SUB1", "HSI", "100")
	storeDown := errors.New("connection reset")
	store.SetDeleteError(storeDown)

	reclaimer := NewReclaimer(store, testutil.NewTestLogger())
	_, err := reclaimer.DeleteServiceChain(context.Background(), f.subscription)

	assert.ErrorIs(t, err, storeDown)
	assert.True(t, store.Exists(inventory.KindSubscriber, "SUB1"))
}
