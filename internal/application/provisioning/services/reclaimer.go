package services

import (
	"context"

	"invprov/internal/domain/inventory"
	"invprov/internal/shared/logger"
)

// DeletionReport summarizes what deleting a service chain touched.
type DeletionReport struct {
	Subscription       string
	ResetDevices       []string
	ReleasedVoicePorts int
	DeletedInterfaces  []string
	DeletedEntities    []string
	SubscriberDeleted  bool
}

// Reclaimer deletes a service chain and returns the resources it held to the free pool.
type Reclaimer struct {
	store  inventory.GraphStore
	logger logger.Interface
}

func NewReclaimer(store inventory.GraphStore, logger logger.Interface) *Reclaimer {
	return &Reclaimer{
		store:  store,
		logger: logger,
	}
}

// DeleteServiceChain removes RFS, CFS, the linked products and the subscription. Device
// state is reclaimed first. The subscriber is removed as well when this subscription was
// its only one.
func (r *Reclaimer) DeleteServiceChain(ctx context.Context, subscriptionName string) (*DeletionReport, error) {
	subEntity, err := r.store.FindByName(ctx, inventory.KindSubscription, subscriptionName)
	if err != nil {
		return nil, err
	}
	if subEntity == nil {
		return nil, inventory.ErrEntityNotFound(inventory.KindSubscription, subscriptionName)
	}
	subscription, err := inventory.AsSubscription(subEntity)
	if err != nil {
		return nil, err
	}

	report := &DeletionReport{Subscription: subscriptionName}

	remaining, err := r.store.Count(ctx, inventory.EntityFilter{
		Kind:   inventory.KindSubscription,
		Parent: inventory.ParentIs(subscription.SubscriberName()),
	})
	if err != nil {
		return nil, err
	}

	rfsName, _ := inventory.RFSName(subscriptionName)
	rfs, err := r.store.FindByName(ctx, inventory.KindRFS, rfsName)
	if err != nil {
		return nil, err
	}
	if rfs != nil {
		if err := r.reclaim(ctx, rfs, subscription, report); err != nil {
			return nil, err
		}
		if err := r.delete(ctx, rfs, report); err != nil {
			return nil, err
		}
	}

	cfsName, _ := inventory.CFSName(subscriptionName)
	cfs, err := r.store.FindByName(ctx, inventory.KindCFS, cfsName)
	if err != nil {
		return nil, err
	}
	if cfs != nil {
		if err := r.delete(ctx, cfs, report); err != nil {
			return nil, err
		}
	}

	for _, name := range subscription.Services() {
		product, err := r.store.FindByName(ctx, inventory.KindProduct, name)
		if err != nil {
			return nil, err
		}
		if product == nil {
			continue
		}
		if err := r.delete(ctx, product, report); err != nil {
			return nil, err
		}
	}

	if err := r.delete(ctx, subEntity, report); err != nil {
		return nil, err
	}

	if remaining == 1 {
		subscriber, err := r.store.FindByName(ctx, inventory.KindSubscriber, subscription.SubscriberName())
		if err != nil {
			return nil, err
		}
		if subscriber != nil {
			if err := r.delete(ctx, subscriber, report); err != nil {
				return nil, err
			}
			report.SubscriberDeleted = true
		}
	}

	r.logger.Infow("service chain deleted",
		"subscription", subscriptionName,
		"subscriber_deleted", report.SubscriberDeleted,
		"reset_devices", len(report.ResetDevices),
		"deleted_interfaces", len(report.DeletedInterfaces),
	)
	return report, nil
}

// reclaim resets exclusively owned devices, frees voice ports holding the
// subscription's numbers and deletes the interfaces the RFS reserved.
func (r *Reclaimer) reclaim(ctx context.Context, rfs *inventory.Entity, subscription inventory.Subscription, report *DeletionReport) error {
	numbers := subscription.VoiceNumbers()

	for _, name := range rfs.RefsOf(inventory.KindLogicalDevice) {
		entity, err := r.store.FindByName(ctx, inventory.KindLogicalDevice, name)
		if err != nil {
			return err
		}
		if entity == nil {
			r.logger.Warnw("device used by RFS is missing", "rfs", rfs.Name(), "device", name)
			continue
		}
		device, err := inventory.AsLogicalDevice(entity)
		if err != nil {
			return err
		}

		changed := false
		if device.DeviceType().IsExclusive() {
			device.Reset()
			report.ResetDevices = append(report.ResetDevices, name)
			changed = true
		} else if released := device.ReleaseVoicePorts(numbers); released > 0 {
			report.ReleasedVoicePorts += released
			changed = true
		}
		if !changed {
			continue
		}
		if err := r.store.Save(ctx, entity); err != nil {
			return err
		}
	}

	for _, name := range rfs.RefsOf(inventory.KindLogicalInterface) {
		iface, err := r.store.FindByName(ctx, inventory.KindLogicalInterface, name)
		if err != nil {
			return err
		}
		if iface == nil {
			continue
		}
		if err := r.store.Delete(ctx, iface); err != nil {
			return err
		}
		report.DeletedInterfaces = append(report.DeletedInterfaces, name)
	}
	return nil
}

func (r *Reclaimer) delete(ctx context.Context, entity *inventory.Entity, report *DeletionReport) error {
	if err := r.store.Delete(ctx, entity); err != nil {
		r.logger.Errorw("failed to delete entity", "kind", entity.Kind(), "name", entity.Name(), "error", err)
		return err
	}
	report.DeletedEntities = append(report.DeletedEntities, entity.Ref().String())
	return nil
}
