// Package testutil provides an in-memory inventory graph store for testing the
// provisioning application layer.
package testutil

import (
	"context"
	"sort"
	"sync"

	"invprov/internal/domain/inventory"
	"invprov/internal/shared/logger"
)

type key struct {
	kind inventory.Kind
	name string
}

// MockGraphStore is an in-memory inventory.GraphStore. It stores clones so callers
// observe the same copy-on-read behaviour as a database-backed store.
type MockGraphStore struct {
	mu     sync.RWMutex
	byID   map[uint]*inventory.Entity
	byName map[key]uint
	nextID uint

	// Error injection for testing
	findError   error
	createError error
	saveError   error
	deleteError error
	listError   error

	// failSaveOn makes Save fail for one specific entity
	failSaveOn    *key
	failSaveError error

	// beforeCreate runs before a create is applied, outside the lock
	beforeCreate func(e *inventory.Entity)

	creates     int
	saves       int
	deletes     int
	lockedReads int
}

var _ inventory.GraphStore = (*MockGraphStore)(nil)

// NewMockGraphStore creates an empty store.
func NewMockGraphStore() *MockGraphStore {
	return &MockGraphStore{
		byID:   make(map[uint]*inventory.Entity),
		byName: make(map[key]uint),
	}
}

func (m *MockGraphStore) FindByName(ctx context.Context, kind inventory.Kind, name string) (*inventory.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.findError != nil {
		return nil, m.findError
	}

	id, ok := m.byName[key{kind, name}]
	if !ok {
		return nil, nil
	}
	return m.byID[id].Clone(), nil
}

// FindByNameForUpdate reads the shared map, which is always the latest state.
func (m *MockGraphStore) FindByNameForUpdate(ctx context.Context, kind inventory.Kind, name string) (*inventory.Entity, error) {
	m.mu.Lock()
	m.lockedReads++
	m.mu.Unlock()
	return m.FindByName(ctx, kind, name)
}

func (m *MockGraphStore) Create(ctx context.Context, entity *inventory.Entity) error {
	m.mu.RLock()
	hook := m.beforeCreate
	m.mu.RUnlock()
	if hook != nil {
		hook(entity)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createError != nil {
		return m.createError
	}
	k := key{entity.Kind(), entity.Name()}
	if _, exists := m.byName[k]; exists {
		return inventory.ErrNameInUse(entity.Kind(), entity.Name())
	}

	m.nextID++
	if err := entity.SetID(m.nextID); err != nil {
		return err
	}
	m.byID[m.nextID] = entity.Clone()
	m.byName[k] = m.nextID
	m.creates++
	return nil
}

func (m *MockGraphStore) Save(ctx context.Context, entity *inventory.Entity) error {
	if entity.ID() == 0 {
		return m.Create(ctx, entity)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveError != nil {
		return m.saveError
	}
	if m.failSaveOn != nil && *m.failSaveOn == (key{entity.Kind(), entity.Name()}) {
		return m.failSaveError
	}

	stored, ok := m.byID[entity.ID()]
	if !ok {
		return inventory.ErrEntityNotFound(entity.Kind(), entity.Name())
	}
	if stored.Version() != entity.Version() {
		return inventory.ErrConcurrentUpdate
	}
	newKey := key{entity.Kind(), entity.Name()}
	if id, taken := m.byName[newKey]; taken && id != entity.ID() {
		return inventory.ErrNameInUse(entity.Kind(), entity.Name())
	}

	delete(m.byName, key{stored.Kind(), stored.Name()})
	entity.IncrementVersion()
	m.byID[entity.ID()] = entity.Clone()
	m.byName[newKey] = entity.ID()
	m.saves++
	return nil
}

func (m *MockGraphStore) Delete(ctx context.Context, entity *inventory.Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deleteError != nil {
		return m.deleteError
	}

	id, ok := m.byName[key{entity.Kind(), entity.Name()}]
	if !ok {
		return inventory.ErrEntityNotFound(entity.Kind(), entity.Name())
	}
	delete(m.byName, key{entity.Kind(), entity.Name()})
	delete(m.byID, id)
	m.deletes++
	return nil
}

func (m *MockGraphStore) FindAll(ctx context.Context, filter inventory.EntityFilter) ([]*inventory.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.listError != nil {
		return nil, m.listError
	}

	ids := make([]uint, 0, len(m.byID))
	for id, e := range m.byID {
		if filter.Matches(e) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*inventory.Entity, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.byID[id].Clone())
	}
	return out, nil
}

func (m *MockGraphStore) Count(ctx context.Context, filter inventory.EntityFilter) (int64, error) {
	all, err := m.FindAll(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

// Helper methods for testing

// Seed stores entities directly, bypassing error injection and counters.
func (m *MockGraphStore) Seed(entities ...*inventory.Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range entities {
		if e.ID() == 0 {
			m.nextID++
			_ = e.SetID(m.nextID)
		}
		m.byID[e.ID()] = e.Clone()
		m.byName[key{e.Kind(), e.Name()}] = e.ID()
	}
}

// MustSeed builds and stores an entity with the given parent and properties.
func (m *MockGraphStore) MustSeed(kind inventory.Kind, name, parent string, props map[string]string, refs ...inventory.Ref) *inventory.Entity {
	e, err := inventory.NewEntity(kind, name)
	if err != nil {
		panic(err)
	}
	e.SetParent(parent)
	for k, v := range props {
		e.Properties().SetString(k, v)
	}
	for _, r := range refs {
		e.AddRef(r)
	}
	m.Seed(e)
	return e
}

// Get returns a clone of the stored entity, or nil.
func (m *MockGraphStore) Get(kind inventory.Kind, name string) *inventory.Entity {
	e, _ := m.FindByName(context.Background(), kind, name)
	return e
}

// Exists reports whether an entity is stored under the name.
func (m *MockGraphStore) Exists(kind inventory.Kind, name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byName[key{kind, name}]
	return ok
}

// Names returns the stored names of a kind in sorted order.
func (m *MockGraphStore) Names(kind inventory.Kind) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	for k := range m.byName {
		if k.kind == kind {
			names = append(names, k.name)
		}
	}
	sort.Strings(names)
	return names
}

// Writes returns the number of successful creates, saves and deletes.
func (m *MockGraphStore) Writes() (creates, saves, deletes int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.creates, m.saves, m.deletes
}

// LockedReads returns the number of FindByNameForUpdate calls.
func (m *MockGraphStore) LockedReads() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lockedReads
}

// ResetCounters zeroes the write counters.
func (m *MockGraphStore) ResetCounters() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates, m.saves, m.deletes = 0, 0, 0
}

func (m *MockGraphStore) SetFindError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findError = err
}

func (m *MockGraphStore) SetCreateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createError = err
}

func (m *MockGraphStore) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

func (m *MockGraphStore) SetDeleteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteError = err
}

func (m *MockGraphStore) SetListError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listError = err
}

// FailSaveOn makes every Save of the named entity (by its new name) fail with err.
func (m *MockGraphStore) FailSaveOn(kind inventory.Kind, name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSaveOn = &key{kind, name}
	m.failSaveError = err
}

// SetBeforeCreate installs a hook that runs before each Create, e.g. to simulate a
// concurrent writer.
func (m *MockGraphStore) SetBeforeCreate(hook func(e *inventory.Entity)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.beforeCreate = hook
}

// NoopLocker is a Locker that never contends.
type NoopLocker struct {
	mu       sync.Mutex
	Acquired []string
}

func (l *NoopLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	l.Acquired = append(l.Acquired, key)
	l.mu.Unlock()
	return func() {}, nil
}

// NoopTx runs the function directly.
type NoopTx struct{}

func (NoopTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// NewTestLogger returns a logger that discards output.
func NewTestLogger() logger.Interface {
	return logger.NewNopLogger()
}
