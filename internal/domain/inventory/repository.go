package inventory

import "context"

// GraphStore is the persistence facade over the inventory graph. Every method is scoped
// by entity kind; canonical names are unique per kind.
type GraphStore interface {
	// FindByName returns nil, nil when no entity of that kind carries the name.
	FindByName(ctx context.Context, kind Kind, name string) (*Entity, error)
	// FindByNameForUpdate is FindByName reading the latest committed row instead of the
	// transaction snapshot, and holding a row lock until the transaction ends.
	FindByNameForUpdate(ctx context.Context, kind Kind, name string) (*Entity, error)
	// Create inserts a new entity and fails with ErrDuplicateName when the name is taken.
	Create(ctx context.Context, entity *Entity) error
	// Save inserts or updates by identity. A stale version yields ErrConcurrentUpdate.
	Save(ctx context.Context, entity *Entity) error
	Delete(ctx context.Context, entity *Entity) error
	FindAll(ctx context.Context, filter EntityFilter) ([]*Entity, error)
	Count(ctx context.Context, filter EntityFilter) (int64, error)
}

// EntityFilter narrows FindAll and Count. Zero-valued fields do not filter.
type EntityFilter struct {
	Kind       Kind
	Parent     *string
	NamePrefix string
	// Property/PropertyValue match entities whose property equals the value.
	Property      string
	PropertyValue string
	// Ref matches entities referencing the given entity.
	Ref *Ref
}

// Matches applies the filter in memory. Stores without an index for a field use it
// as the predicate of a scan.
func (f EntityFilter) Matches(e *Entity) bool {
	if f.Kind != "" && e.Kind() != f.Kind {
		return false
	}
	if f.Parent != nil && e.Parent() != *f.Parent {
		return false
	}
	if f.NamePrefix != "" && (len(e.Name()) < len(f.NamePrefix) || e.Name()[:len(f.NamePrefix)] != f.NamePrefix) {
		return false
	}
	if f.Property != "" && e.Property(f.Property) != f.PropertyValue {
		return false
	}
	if f.Ref != nil && !e.HasRef(*f.Ref) {
		return false
	}
	return true
}

// ParentIs is a convenience for building a Parent filter.
func ParentIs(name string) *string {
	return &name
}
