package services

import (
	"context"
	"errors"
	"fmt"

	"invprov/internal/domain/inventory"
	"invprov/internal/shared/logger"
)

// parentKinds maps each kind to the kind of its parent link.
var parentKinds = map[inventory.Kind]inventory.Kind{
	inventory.KindSubscription:     inventory.KindSubscriber,
	inventory.KindProduct:          inventory.KindSubscriber,
	inventory.KindCFS:              inventory.KindProduct,
	inventory.KindRFS:              inventory.KindCFS,
	inventory.KindLogicalDevice:    inventory.KindLogicalDevice,
	inventory.KindLogicalInterface: inventory.KindLogicalDevice,
	inventory.KindLogicalComponent: inventory.KindLogicalDevice,
}

// mirroredKeys are properties that repeat a business key embedded in names.
var mirroredKeys = []string{
	inventory.PropAccountNumber,
	inventory.PropServiceID,
	inventory.PropSerialNo,
}

// keyScope selects where in the names a plan looks for the changed key.
type keyScope int

const (
	// scopeAnyToken replaces the first bounded occurrence of the key. A device whose
	// serial is the key is renamed along with its interfaces and ports.
	scopeAnyToken keyScope = iota
	// scopeServiceID replaces the key only after the subscriber segment of a name.
	scopeServiceID
	// scopeSubscriber replaces the whole subscriber segment; the key is a subscriber name.
	scopeSubscriber
)

type renameStep struct {
	entity  *inventory.Entity
	oldName string
	newName string
	changed bool
}

// RenamePlan is a validated set of entity updates ready to be written. Building a plan
// performs no writes. An entity reached from several subscriptions is loaded and
// written once.
type RenamePlan struct {
	scope           keyScope
	oldFragment     string
	newFragment     string
	subscription    string
	newSubscription string
	// subscriptions maps every planned subscription to its new name.
	subscriptions map[string]string
	steps         []*renameStep
	planned       map[inventory.Ref]*renameStep
	renames       map[inventory.Ref]string
}

func newRenamePlan(scope keyScope, oldFragment, newFragment string) *RenamePlan {
	return &RenamePlan{
		scope:         scope,
		oldFragment:   oldFragment,
		newFragment:   newFragment,
		subscriptions: make(map[string]string),
		planned:       make(map[inventory.Ref]*renameStep),
		renames:       make(map[inventory.Ref]string),
	}
}

// NewSubscriptionName is the subscription name after the plan is applied.
func (p *RenamePlan) NewSubscriptionName() string {
	return p.newSubscription
}

// Len returns the number of entities the plan writes.
func (p *RenamePlan) Len() int {
	n := 0
	for _, s := range p.steps {
		if s.changed {
			n++
		}
	}
	return n
}

// Renames returns old name to new name for every renamed entity, in write order.
func (p *RenamePlan) Renames() [][2]string {
	var out [][2]string
	for _, s := range p.steps {
		if s.oldName != s.newName {
			out = append(out, [2]string{s.oldName, s.newName})
		}
	}
	return out
}

// add plans an entity once. A later call may still give a planned, so far unrenamed
// entity its new name.
func (p *RenamePlan) add(entity *inventory.Entity, newName string) *renameStep {
	ref := entity.Ref()
	if step, ok := p.planned[ref]; ok {
		if step.newName == step.oldName && newName != step.oldName {
			step.newName = newName
			p.renames[ref] = newName
		}
		return step
	}
	step := &renameStep{entity: entity, oldName: entity.Name(), newName: newName}
	p.steps = append(p.steps, step)
	p.planned[ref] = step
	if newName != step.oldName {
		p.renames[ref] = newName
	}
	return step
}

// shared returns the planned copy of e when there is one.
func (p *RenamePlan) shared(e *inventory.Entity) *inventory.Entity {
	if step, ok := p.planned[e.Ref()]; ok {
		return step.entity
	}
	return e
}

// rename applies the key change to a name of the subgraph owned by subscriber.
func (p *RenamePlan) rename(name, subscriber string) string {
	var renamed string
	switch p.scope {
	case scopeServiceID:
		renamed, _ = inventory.ReplaceTokenAfter(name, subscriber, p.oldFragment, p.newFragment)
	default:
		renamed, _ = inventory.ReplaceToken(name, p.oldFragment, p.newFragment)
	}
	return renamed
}

func (p *RenamePlan) mirroredKeys() []string {
	switch p.scope {
	case scopeServiceID:
		return []string{inventory.PropServiceID}
	case scopeSubscriber:
		return nil
	default:
		return mirroredKeys
	}
}

// Cascade propagates a business key change through a subscription's subgraph.
type Cascade struct {
	store  inventory.GraphStore
	logger logger.Interface
}

func NewCascade(store inventory.GraphStore, logger logger.Interface) *Cascade {
	return &Cascade{
		store:  store,
		logger: logger,
	}
}

// RenameSubgraph replaces oldFragment with newFragment in every name and mirrored
// property of the subscription's subgraph. Nothing is written unless every new name is
// valid and free. A failure after the first write returns *inventory.PartialRenameError.
func (c *Cascade) RenameSubgraph(ctx context.Context, oldFragment, newFragment, subscriptionName string) error {
	plan, err := c.Plan(ctx, oldFragment, newFragment, subscriptionName)
	if err != nil {
		return err
	}
	return c.Apply(ctx, plan)
}

// Plan loads the subgraph, computes every new name and validates them. The first
// bounded occurrence of oldFragment is replaced.
// Order: Subscription, Products, CFS, RFS, then devices and their children.
func (c *Cascade) Plan(ctx context.Context, oldFragment, newFragment, subscriptionName string) (*RenamePlan, error) {
	return c.plan(ctx, scopeAnyToken, oldFragment, newFragment, subscriptionName)
}

// PlanServiceID plans a service ID change. Only the service ID field of each name is
// rewritten, so an account number equal to the service ID is left alone.
func (c *Cascade) PlanServiceID(ctx context.Context, oldServiceID, newServiceID, subscriptionName string) (*RenamePlan, error) {
	return c.plan(ctx, scopeServiceID, oldServiceID, newServiceID, subscriptionName)
}

// PlanTransfer plans moving a subscription under targetSubscriber. The subscriber
// segment of every name is replaced as a whole, qualifier included.
func (c *Cascade) PlanTransfer(ctx context.Context, subscriptionName, targetSubscriber string) (*RenamePlan, error) {
	sub, err := c.mustFind(ctx, nil, inventory.KindSubscription, subscriptionName)
	if err != nil {
		return nil, err
	}
	return c.plan(ctx, scopeSubscriber, sub.Parent(), targetSubscriber, subscriptionName)
}

func (c *Cascade) plan(ctx context.Context, scope keyScope, oldFragment, newFragment, subscriptionName string) (*RenamePlan, error) {
	if err := inventory.ValidateIdentifier("old key", oldFragment); err != nil {
		return nil, err
	}
	if err := inventory.ValidateIdentifier("new key", newFragment); err != nil {
		return nil, err
	}

	plan := newRenamePlan(scope, oldFragment, newFragment)
	if oldFragment == newFragment {
		if _, err := c.mustFind(ctx, plan, inventory.KindSubscription, subscriptionName); err != nil {
			return nil, err
		}
		plan.subscription = subscriptionName
		plan.newSubscription = subscriptionName
		return plan, nil
	}

	if err := c.planSubscription(ctx, plan, subscriptionName); err != nil {
		return nil, err
	}
	if err := c.validate(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Apply writes the changed entities of the plan in order.
func (c *Cascade) Apply(ctx context.Context, plan *RenamePlan) error {
	_, err := c.apply(ctx, plan, nil)
	return err
}

func (c *Cascade) apply(ctx context.Context, plan *RenamePlan, applied []string) ([]string, error) {
	for _, step := range plan.steps {
		if !step.changed {
			continue
		}
		if err := c.store.Save(ctx, step.entity); err != nil {
			c.logger.Errorw("rename cascade stopped",
				"stage", step.entity.Kind(),
				"entity", step.oldName,
				"applied", len(applied),
				"error", err,
			)
			if len(applied) == 0 {
				return applied, err
			}
			return applied, &inventory.PartialRenameError{
				Stage:   step.entity.Kind(),
				Entity:  step.oldName,
				Applied: append([]string(nil), applied...),
				Err:     err,
			}
		}
		applied = append(applied, fmt.Sprintf("%s %s->%s", step.entity.Kind(), step.oldName, step.newName))
	}

	c.logger.Infow("rename cascade applied",
		"subscription", plan.subscription,
		"new_subscription", plan.newSubscription,
		"old_key", plan.oldFragment,
		"new_key", plan.newFragment,
		"entities", plan.Len(),
	)
	return applied, nil
}

// RenameSubscriber renames the account token of a subscriber across every one of its
// subscriptions, then renames the subscriber itself.
func (c *Cascade) RenameSubscriber(ctx context.Context, subscriberName, oldAccount, newAccount string) (string, error) {
	if err := inventory.ValidateIdentifier("new account", newAccount); err != nil {
		return "", err
	}
	subscriber, err := c.mustFind(ctx, nil, inventory.KindSubscriber, subscriberName)
	if err != nil {
		return "", err
	}
	newName, ok := inventory.ReplaceToken(subscriberName, oldAccount, newAccount)
	if !ok {
		return "", fmt.Errorf("%w: account %q is not a token of subscriber %q",
			inventory.ErrInvalidIdentifier, oldAccount, subscriberName)
	}
	if err := subscriber.Rename(newName); err != nil {
		return "", err
	}
	if subscriber.Property(inventory.PropAccountNumber) == oldAccount {
		subscriber.SetStringProperty(inventory.PropAccountNumber, newAccount)
	}
	if err := c.ensureFree(ctx, inventory.KindSubscriber, newName, subscriber.ID()); err != nil {
		return "", err
	}

	subscriptions, err := c.store.FindAll(ctx, inventory.EntityFilter{
		Kind:   inventory.KindSubscription,
		Parent: inventory.ParentIs(subscriberName),
	})
	if err != nil {
		return "", err
	}

	plan := newRenamePlan(scopeSubscriber, subscriberName, newName)
	for _, s := range subscriptions {
		if err := c.planSubscription(ctx, plan, s.Name()); err != nil {
			return "", err
		}
	}
	if err := c.validate(ctx, plan); err != nil {
		return "", err
	}

	applied, err := c.apply(ctx, plan, nil)
	if err != nil {
		return "", err
	}

	if err := c.store.Save(ctx, subscriber); err != nil {
		if len(applied) == 0 {
			return "", err
		}
		return "", &inventory.PartialRenameError{
			Stage:   inventory.KindSubscriber,
			Entity:  subscriberName,
			Applied: applied,
			Err:     err,
		}
	}

	c.logger.Infow("subscriber renamed",
		"subscriber", subscriberName,
		"new_subscriber", newName,
		"subscriptions", len(subscriptions),
	)
	return newName, nil
}

// planSubscription adds one subscription and everything hanging off it to the plan.
func (c *Cascade) planSubscription(ctx context.Context, plan *RenamePlan, subscriptionName string) error {
	subEntity, err := c.mustFind(ctx, plan, inventory.KindSubscription, subscriptionName)
	if err != nil {
		return err
	}
	subscription, err := inventory.AsSubscription(subEntity)
	if err != nil {
		return err
	}
	owner := subscription.SubscriberName()

	step := plan.add(subEntity, plan.rename(subscriptionName, owner))
	plan.subscriptions[subscriptionName] = step.newName
	if plan.subscription == "" {
		plan.subscription = subscriptionName
		plan.newSubscription = step.newName
	}

	for _, name := range subscription.Services() {
		if err := c.planLinked(ctx, plan, inventory.KindProduct, name, owner); err != nil {
			return err
		}
	}

	if cfsName, err := inventory.CFSName(subscriptionName); err == nil {
		if err := c.planLinked(ctx, plan, inventory.KindCFS, cfsName, owner); err != nil {
			return err
		}
	}

	rfsName, err := inventory.RFSName(subscriptionName)
	if err != nil {
		return nil
	}
	rfs, err := c.find(ctx, plan, inventory.KindRFS, rfsName)
	if err != nil {
		return err
	}
	if rfs == nil {
		return nil
	}
	plan.add(rfs, plan.rename(rfsName, owner))
	return c.planResources(ctx, plan, rfs)
}

func (c *Cascade) planLinked(ctx context.Context, plan *RenamePlan, kind inventory.Kind, name, owner string) error {
	entity, err := c.find(ctx, plan, kind, name)
	if err != nil {
		return err
	}
	if entity == nil {
		c.logger.Warnw("linked entity missing during rename", "kind", kind, "name", name)
		return nil
	}
	plan.add(entity, plan.rename(name, owner))
	return nil
}

// planResources covers the devices and interfaces used by the RFS. A device is renamed
// only when its serial is the key being changed; its interfaces and ports follow it.
func (c *Cascade) planResources(ctx context.Context, plan *RenamePlan, rfs *inventory.Entity) error {
	for _, name := range rfs.RefsOf(inventory.KindLogicalDevice) {
		entity, err := c.find(ctx, plan, inventory.KindLogicalDevice, name)
		if err != nil {
			return err
		}
		if entity == nil {
			c.logger.Warnw("device used by RFS is missing", "rfs", rfs.Name(), "device", name)
			continue
		}
		device, err := inventory.AsLogicalDevice(entity)
		if err != nil {
			return err
		}

		newName := name
		if plan.scope == scopeAnyToken && device.SerialNo() == plan.oldFragment {
			if newName, err = inventory.DeviceName(device.DeviceType(), plan.newFragment); err != nil {
				return err
			}
		}
		plan.add(entity, newName)

		if newName != name {
			if err := c.planDeviceChildren(ctx, plan, name, newName); err != nil {
				return err
			}
		}
	}

	for _, name := range rfs.RefsOf(inventory.KindLogicalInterface) {
		entity, err := c.find(ctx, plan, inventory.KindLogicalInterface, name)
		if err != nil {
			return err
		}
		if entity == nil {
			continue
		}
		plan.add(entity, c.interfaceName(entity, plan))
	}
	return nil
}

// planDeviceChildren moves the interfaces and port components of a renamed device and
// rewrites other services that use it.
func (c *Cascade) planDeviceChildren(ctx context.Context, plan *RenamePlan, oldDevice, newDevice string) error {
	interfaces, err := c.store.FindAll(ctx, inventory.EntityFilter{
		Kind:   inventory.KindLogicalInterface,
		Parent: inventory.ParentIs(oldDevice),
	})
	if err != nil {
		return err
	}
	for _, iface := range interfaces {
		iface = plan.shared(iface)
		plan.add(iface, c.interfaceName(iface, plan))
	}

	components, err := c.store.FindAll(ctx, inventory.EntityFilter{
		Kind:   inventory.KindLogicalComponent,
		Parent: inventory.ParentIs(oldDevice),
	})
	if err != nil {
		return err
	}
	for _, comp := range components {
		comp = plan.shared(comp)
		renamed, _ := inventory.ReplaceToken(comp.Name(), oldDevice, newDevice)
		plan.add(comp, renamed)
	}

	users, err := c.store.FindAll(ctx, inventory.EntityFilter{
		Kind: inventory.KindRFS,
		Ref:  &inventory.Ref{Kind: inventory.KindLogicalDevice, Name: oldDevice},
	})
	if err != nil {
		return err
	}
	for _, rfs := range users {
		rfs = plan.shared(rfs)
		plan.add(rfs, rfs.Name())
	}
	return nil
}

// interfaceName renames single-tagged interfaces whose serial is the changed key. VLAN
// interfaces are named by MENM and VLAN ID and never change.
func (c *Cascade) interfaceName(entity *inventory.Entity, plan *RenamePlan) string {
	if plan.scope != scopeAnyToken {
		return entity.Name()
	}
	iface, err := inventory.AsLogicalInterface(entity)
	if err != nil || entity.Property(inventory.PropSerialNo) != plan.oldFragment {
		return entity.Name()
	}
	name, err := inventory.SingleTaggedInterfaceName(plan.newFragment, iface.Port(), iface.Slot())
	if err != nil {
		return entity.Name()
	}
	return name
}

// validate rewrites every planned entity in memory, marks the ones that changed and
// checks the new names for length and conflicts.
func (c *Cascade) validate(ctx context.Context, plan *RenamePlan) error {
	targets := make(map[inventory.Ref]string, len(plan.steps))
	for _, step := range plan.steps {
		before := step.entity.Clone()
		if err := c.rewrite(step, plan); err != nil {
			return err
		}
		step.changed = !before.SameState(step.entity)

		target := inventory.Ref{Kind: step.entity.Kind(), Name: step.newName}
		if other, clash := targets[target]; clash {
			return fmt.Errorf("%w: %s and %s both map to %s",
				inventory.ErrDuplicateName, other, step.oldName, step.newName)
		}
		targets[target] = step.oldName

		if step.newName != step.oldName {
			if err := c.ensureFree(ctx, step.entity.Kind(), step.newName, step.entity.ID()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Cascade) rewrite(step *renameStep, plan *RenamePlan) error {
	e := step.entity
	if step.newName != step.oldName {
		if err := e.Rename(step.newName); err != nil {
			return err
		}
	}

	for _, key := range plan.mirroredKeys() {
		if e.Property(key) == plan.oldFragment {
			e.SetStringProperty(key, plan.newFragment)
		}
	}

	if e.Kind() == inventory.KindLogicalDevice {
		device, err := inventory.AsLogicalDevice(e)
		if err != nil {
			return err
		}
		if plan.scope == scopeAnyToken {
			device.ReplaceVoicePortValue(plan.oldFragment, plan.newFragment)
		}
		for old, renamed := range plan.subscriptions {
			if old != renamed {
				device.ReplaceVoicePortValue(old, renamed)
			}
		}
	}

	if parent := e.Parent(); parent != "" {
		parentRef := inventory.Ref{Kind: parentKinds[e.Kind()], Name: parent}
		if renamed, ok := plan.renames[parentRef]; ok {
			e.SetParent(renamed)
		} else if parentRef.Kind == inventory.KindSubscriber {
			switch plan.scope {
			case scopeAnyToken:
				if renamed, ok := inventory.ReplaceToken(parent, plan.oldFragment, plan.newFragment); ok {
					e.SetParent(renamed)
				}
			case scopeSubscriber:
				if parent == plan.oldFragment {
					e.SetParent(plan.newFragment)
				}
			}
		}
	}

	for _, ref := range e.Refs() {
		if renamed, ok := plan.renames[ref]; ok {
			e.ReplaceRef(ref, inventory.Ref{Kind: ref.Kind, Name: renamed})
		}
	}
	return nil
}

func (c *Cascade) ensureFree(ctx context.Context, kind inventory.Kind, name string, selfID uint) error {
	holder, err := c.store.FindByName(ctx, kind, name)
	if err != nil {
		return err
	}
	if holder != nil && holder.ID() != selfID {
		return inventory.ErrNameInUse(kind, name)
	}
	return nil
}

// find returns the planned copy of an entity, loading it when the plan has none.
// plan may be nil.
func (c *Cascade) find(ctx context.Context, plan *RenamePlan, kind inventory.Kind, name string) (*inventory.Entity, error) {
	if plan != nil {
		if step, ok := plan.planned[inventory.Ref{Kind: kind, Name: name}]; ok {
			return step.entity, nil
		}
	}
	return c.store.FindByName(ctx, kind, name)
}

func (c *Cascade) mustFind(ctx context.Context, plan *RenamePlan, kind inventory.Kind, name string) (*inventory.Entity, error) {
	entity, err := c.find(ctx, plan, kind, name)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, inventory.ErrEntityNotFound(kind, name)
	}
	return entity, nil
}

// IsPartialRename reports whether err is a cascade that stopped after some writes.
func IsPartialRename(err error) bool {
	var partial *inventory.PartialRenameError
	return errors.As(err, &partial)
}
