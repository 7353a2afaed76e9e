package usecases

import (
	"context"

	"invprov/internal/domain/inventory"
)

// serviceChain is the loaded subgraph of one subscription. Missing links are nil.
type serviceChain struct {
	subscriber   *inventory.Entity
	subscription *inventory.Entity
	products     []*inventory.Entity
	cfs          *inventory.Entity
	rfs          *inventory.Entity
	devices      []*inventory.Entity
	interfaces   []*inventory.Entity
}

// loadChain reads the subscription and everything hanging off it. The subscription
// itself must exist.
func loadChain(ctx context.Context, store inventory.GraphStore, subscriptionName string, withResources bool) (*serviceChain, error) {
	sub, err := store.FindByName(ctx, inventory.KindSubscription, subscriptionName)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, inventory.ErrEntityNotFound(inventory.KindSubscription, subscriptionName)
	}

	chain := &serviceChain{subscription: sub}
	if chain.subscriber, err = store.FindByName(ctx, inventory.KindSubscriber, sub.Parent()); err != nil {
		return nil, err
	}

	for _, name := range sub.RefsOf(inventory.KindProduct) {
		product, err := store.FindByName(ctx, inventory.KindProduct, name)
		if err != nil {
			return nil, err
		}
		if product != nil {
			chain.products = append(chain.products, product)
		}
	}

	if cfsName, err := inventory.CFSName(subscriptionName); err == nil {
		if chain.cfs, err = store.FindByName(ctx, inventory.KindCFS, cfsName); err != nil {
			return nil, err
		}
	}
	if rfsName, err := inventory.RFSName(subscriptionName); err == nil {
		if chain.rfs, err = store.FindByName(ctx, inventory.KindRFS, rfsName); err != nil {
			return nil, err
		}
	}

	if !withResources || chain.rfs == nil {
		return chain, nil
	}

	for _, ref := range chain.rfs.Refs() {
		e, err := store.FindByName(ctx, ref.Kind, ref.Name)
		if err != nil {
			return nil, err
		}
		if e == nil {
			continue
		}
		switch ref.Kind {
		case inventory.KindLogicalDevice:
			chain.devices = append(chain.devices, e)
		case inventory.KindLogicalInterface:
			chain.interfaces = append(chain.interfaces, e)
		}
	}
	return chain, nil
}

// serviceEntities returns the chain members that carry a service status, in chain order.
func (c *serviceChain) serviceEntities() []*inventory.Entity {
	out := []*inventory.Entity{c.subscription}
	out = append(out, c.products...)
	if c.cfs != nil {
		out = append(out, c.cfs)
	}
	if c.rfs != nil {
		out = append(out, c.rfs)
	}
	return out
}

// applyStatus sets the status key appropriate to each kind.
func applyStatus(e *inventory.Entity, status string) {
	switch e.Kind() {
	case inventory.KindCFS, inventory.KindRFS:
		e.SetStringProperty(inventory.PropServiceStatus, status)
	default:
		e.SetStatus(status)
	}
}

func toProperties(m map[string]any) (inventory.Properties, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return inventory.PropertiesFromMap(m)
}
