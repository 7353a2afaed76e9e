// Package services holds the provisioning core shared by every action: find-or-create
// resolution, bounded resource allocation, rename cascades and state reclamation.
package services

import (
	"context"
	"errors"
	"fmt"

	"invprov/internal/domain/inventory"
	"invprov/internal/shared/logger"
)

// Defaults populates a freshly built entity before it is persisted.
type Defaults func(e *inventory.Entity)

// Resolver implements find-or-create over the graph store.
type Resolver struct {
	store  inventory.GraphStore
	logger logger.Interface
}

func NewResolver(store inventory.GraphStore, logger logger.Interface) *Resolver {
	return &Resolver{
		store:  store,
		logger: logger,
	}
}

// ResolveOrCreate returns the entity stored under name, or builds one with the kind's
// default template plus defaults and persists it. existed reports whether the entity
// was already there. A concurrent creator of the same name wins; this call then
// converges on the stored record.
func (r *Resolver) ResolveOrCreate(ctx context.Context, kind inventory.Kind, name string, defaults Defaults) (*inventory.Entity, bool, error) {
	existing, err := r.store.FindByName(ctx, kind, name)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, true, nil
	}

	entity, err := inventory.NewEntity(kind, name)
	if err != nil {
		return nil, false, err
	}
	if defaults != nil {
		defaults(entity)
	}

	if err := r.store.Create(ctx, entity); err != nil {
		if !errors.Is(err, inventory.ErrDuplicateName) {
			r.logger.Errorw("failed to create entity", "kind", kind, "name", name, "error", err)
			return nil, false, err
		}

		// the snapshot read above cannot see the winner's row; a locking read can
		winner, findErr := r.store.FindByNameForUpdate(ctx, kind, name)
		if findErr != nil {
			return nil, false, findErr
		}
		if winner == nil {
			return nil, false, fmt.Errorf("%w: %s %q conflicted on create but cannot be read back",
				inventory.ErrStoreUnavailable, kind, name)
		}
		r.logger.Infow("converged on concurrently created entity", "kind", kind, "name", name, "id", winner.ID())
		return winner, true, nil
	}

	r.logger.Debugw("entity created", "kind", kind, "name", name, "id", entity.ID())
	return entity, false, nil
}

// Get loads an entity that must exist.
func (r *Resolver) Get(ctx context.Context, kind inventory.Kind, name string) (*inventory.Entity, error) {
	entity, err := r.store.FindByName(ctx, kind, name)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, inventory.ErrEntityNotFound(kind, name)
	}
	return entity, nil
}

// Resolution tracks the existed flags of the entities resolved by one action.
type Resolution struct {
	entries []resolved
}

type resolved struct {
	ref     inventory.Ref
	existed bool
}

// Track records one resolution result.
func (r *Resolution) Track(entity *inventory.Entity, existed bool) {
	r.entries = append(r.entries, resolved{ref: entity.Ref(), existed: existed})
}

// AllExisted reports whether every tracked entity pre-existed. An empty resolution
// reports false.
func (r *Resolution) AllExisted() bool {
	if len(r.entries) == 0 {
		return false
	}
	for _, e := range r.entries {
		if !e.existed {
			return false
		}
	}
	return true
}

// Created returns the entities this action created, in resolution order.
func (r *Resolution) Created() []inventory.Ref {
	var out []inventory.Ref
	for _, e := range r.entries {
		if !e.existed {
			out = append(out, e.ref)
		}
	}
	return out
}
