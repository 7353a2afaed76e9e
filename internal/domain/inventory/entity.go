package inventory

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// Ref points at another entity by kind and canonical name.
type Ref struct {
	Kind Kind   `json:"kind"`
	Name string `json:"name"`
}

func (r Ref) String() string {
	return fmt.Sprintf("%s/%s", r.Kind, r.Name)
}

// Entity is the single record type behind every inventory kind. Kind-specific
// behaviour lives on the typed views (Subscription, LogicalDevice, ...).
//
// parent is the single owning or used entity (Subscription -> Subscriber,
// CFS -> Product, RFS -> CFS, interface -> device). refs is the ordered
// multi-reference set (a Subscription's products, the resources an RFS uses).
type Entity struct {
	id         uint
	kind       Kind
	name       string
	parent     string
	refs       []Ref
	properties Properties
	version    int
	createdAt  time.Time
	updatedAt  time.Time
}

// NewEntity creates an unsaved entity with the kind's default properties.
func NewEntity(kind Kind, name string) (*Entity, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	if err := checkName(kind, name); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Entity{
		kind:       kind,
		name:       name,
		properties: defaultProperties(kind),
		version:    1,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ReconstructEntity rebuilds an entity from persistence.
func ReconstructEntity(
	id uint,
	kind Kind,
	name, parent string,
	refs []Ref,
	properties Properties,
	version int,
	createdAt, updatedAt time.Time,
) (*Entity, error) {
	if id == 0 {
		return nil, fmt.Errorf("entity ID cannot be zero")
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	if properties == nil {
		properties = make(Properties)
	}

	return &Entity{
		id:         id,
		kind:       kind,
		name:       name,
		parent:     parent,
		refs:       append([]Ref(nil), refs...),
		properties: properties,
		version:    version,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}, nil
}

func (e *Entity) ID() uint {
	return e.id
}

// SetID is called by the store after the first insert.
func (e *Entity) SetID(id uint) error {
	if e.id != 0 {
		return fmt.Errorf("entity ID already set")
	}
	if id == 0 {
		return fmt.Errorf("entity ID cannot be zero")
	}
	e.id = id
	return nil
}

func (e *Entity) Kind() Kind {
	return e.kind
}

func (e *Entity) Name() string {
	return e.name
}

func (e *Entity) Parent() string {
	return e.parent
}

func (e *Entity) SetParent(name string) {
	if e.parent == name {
		return
	}
	e.parent = name
	e.touch()
}

// Refs returns a copy of the reference set.
func (e *Entity) Refs() []Ref {
	return append([]Ref(nil), e.refs...)
}

// RefsOf returns the names of referenced entities of the given kind, in order.
func (e *Entity) RefsOf(kind Kind) []string {
	var names []string
	for _, r := range e.refs {
		if r.Kind == kind {
			names = append(names, r.Name)
		}
	}
	return names
}

func (e *Entity) HasRef(ref Ref) bool {
	for _, r := range e.refs {
		if r == ref {
			return true
		}
	}
	return false
}

// AddRef adds ref to the set unless already present and reports whether it was added.
func (e *Entity) AddRef(ref Ref) bool {
	if e.HasRef(ref) {
		return false
	}
	e.refs = append(e.refs, ref)
	e.touch()
	return true
}

func (e *Entity) RemoveRef(ref Ref) bool {
	for i, r := range e.refs {
		if r == ref {
			e.refs = append(e.refs[:i], e.refs[i+1:]...)
			e.touch()
			return true
		}
	}
	return false
}

// ReplaceRef rewrites a reference in place, keeping its position.
func (e *Entity) ReplaceRef(old, updated Ref) bool {
	for i, r := range e.refs {
		if r == old {
			e.refs[i] = updated
			e.touch()
			return true
		}
	}
	return false
}

// Properties exposes the property bag. Mutations through it do not bump UpdatedAt;
// use SetProperty for that.
func (e *Entity) Properties() Properties {
	return e.properties
}

func (e *Entity) Property(key string) string {
	return e.properties.GetString(key)
}

func (e *Entity) SetProperty(key string, v Value) {
	e.properties[key] = v
	e.touch()
}

func (e *Entity) SetStringProperty(key, value string) {
	e.SetProperty(key, StringValue(value))
}

// MergeProperties overlays props onto the bag, leaving other keys untouched.
func (e *Entity) MergeProperties(props Properties) {
	if len(props) == 0 {
		return
	}
	for k, v := range props {
		e.properties[k] = v
	}
	e.touch()
}

func (e *Entity) Status() string {
	return e.properties.GetString(PropStatus)
}

func (e *Entity) SetStatus(status string) {
	e.SetStringProperty(PropStatus, status)
}

// Rename changes the canonical name after validating it.
func (e *Entity) Rename(name string) error {
	if err := checkName(e.kind, name); err != nil {
		return err
	}
	e.name = name
	e.touch()
	return nil
}

func (e *Entity) Version() int {
	return e.version
}

// IncrementVersion is called by the store after a successful update.
func (e *Entity) IncrementVersion() {
	e.version++
}

func (e *Entity) CreatedAt() time.Time {
	return e.createdAt
}

func (e *Entity) UpdatedAt() time.Time {
	return e.updatedAt
}

func (e *Entity) Ref() Ref {
	return Ref{Kind: e.kind, Name: e.name}
}

// Clone returns a deep copy.
func (e *Entity) Clone() *Entity {
	c := *e
	c.refs = append([]Ref(nil), e.refs...)
	c.properties = e.properties.Clone()
	return &c
}

// SameState reports whether e and other carry the same name, parent, references and
// properties. Identity, version and timestamps are ignored.
func (e *Entity) SameState(other *Entity) bool {
	if other == nil {
		return false
	}
	return e.kind == other.kind &&
		e.name == other.name &&
		e.parent == other.parent &&
		slices.Equal(e.refs, other.refs) &&
		maps.Equal(e.properties, other.properties)
}

func (e *Entity) touch() {
	e.updatedAt = time.Now()
}

// defaultProperties is the per-kind template applied to every newly created record.
func defaultProperties(kind Kind) Properties {
	p := make(Properties)
	switch kind {
	case KindSubscriber, KindSubscription, KindProduct:
		p.SetString(PropStatus, StatusActive)
	case KindCFS, KindRFS:
		p.SetString(PropServiceStatus, StatusActive)
	case KindLogicalDevice:
		p.SetString(PropAdministrativeState, StateAvailable)
		p.SetString(PropOperationalState, StateAvailable)
	case KindLogicalInterface:
		p.SetString(PropOperationalState, StateActive)
	case KindLogicalComponent:
		p.SetString(PropPortState, StateAvailable)
	}
	return p
}
