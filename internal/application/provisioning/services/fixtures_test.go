package services

import (
	"testing"

	"invprov/internal/application/provisioning/testutil"
	"invprov/internal/domain/inventory"
)

type serviceFixture struct {
	subscriber   string
	subscription string
	product      string
	cfs          string
	rfs          string
}

// seedService stores a complete chain subscriber -> subscription -> product -> CFS -> RFS
// whose RFS uses the given resources.
func seedService(t *testing.T, store *testutil.MockGraphStore, subscriber, subType, serviceID string, resources ...inventory.Ref) serviceFixture {
	t.Helper()

	f := serviceFixture{
		subscriber:   subscriber,
		subscription: subscriber + "_" + serviceID,
		product:      subscriber + "_" + subType + "_" + serviceID,
	}
	f.cfs = "CFS_" + f.subscription
	f.rfs = "RFS_" + f.subscription

	if !store.Exists(inventory.KindSubscriber, subscriber) {
		store.MustSeed(inventory.KindSubscriber, subscriber, "", map[string]string{
			inventory.PropAccountNumber: subscriber,
		})
	}
	store.MustSeed(inventory.KindSubscription, f.subscription, subscriber, map[string]string{
		inventory.PropServiceID:   serviceID,
		inventory.PropQoSProfile:  "GOLD",
		inventory.PropServiceLink: string(inventory.LinkONT),
	}, inventory.Ref{Kind: inventory.KindProduct, Name: f.product})
	store.MustSeed(inventory.KindProduct, f.product, subscriber, map[string]string{
		inventory.PropProductType: subType,
	})
	store.MustSeed(inventory.KindCFS, f.cfs, f.product, nil)
	store.MustSeed(inventory.KindRFS, f.rfs, f.cfs, nil, resources...)
	return f
}

func seedDevice(t *testing.T, store *testutil.MockGraphStore, typ inventory.DeviceType, serial string, mutate func(d inventory.LogicalDevice)) inventory.Ref {
	t.Helper()

	d, err := inventory.NewLogicalDevice(typ, serial)
	if err != nil {
		t.Fatalf("build device: %v", err)
	}
	if mutate != nil {
		mutate(d)
	}
	store.Seed(d.Entity)
	return d.Ref()
}

func newTestStore() *testutil.MockGraphStore {
	return testutil.NewMockGraphStore()
}
