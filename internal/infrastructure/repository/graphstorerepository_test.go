package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"invprov/internal/domain/inventory"
	"invprov/internal/infrastructure/persistence/models"
	"invprov/internal/shared/db"
	"invprov/internal/shared/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// every pooled connection to :memory: would see its own database
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.AutoMigrate(&models.InventoryEntityModel{}))
	return gdb
}

func newEntity(t *testing.T, kind inventory.Kind, name, parent string, refs ...inventory.Ref) *inventory.Entity {
	e, err := inventory.NewEntity(kind, name)
	require.NoError(t, err)
	e.SetParent(parent)
	for _, r := range refs {
		e.AddRef(r)
	}
	return e
}

func TestGraphStoreRepository_CreateAndFind(t *testing.T) {
	repo := NewGraphStoreRepository(setupTestDB(t), logger.NewNopLogger())
	ctx := context.Background()

	t.Run("round trips properties and refs", func(t *testing.T) {
		rfs := newEntity(t, inventory.KindRFS, "RFS_SUB1_100", "CFS_SUB1_100",
			inventory.Ref{Kind: inventory.KindLogicalDevice, Name: "ONTALCL0001"},
			inventory.Ref{Kind: inventory.KindLogicalInterface, Name: "MENM01_1000"},
		)
		rfs.Properties().SetInt("bandwidth", 500)
		rfs.Properties().SetBool("managed", true)

		require.NoError(t, repo.Create(ctx, rfs))
		assert.NotZero(t, rfs.ID())

		found, err := repo.FindByName(ctx, inventory.KindRFS, "RFS_SUB1_100")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, rfs.ID(), found.ID())
		assert.Equal(t, "CFS_SUB1_100", found.Parent())
		assert.Equal(t, rfs.Refs(), found.Refs())
		assert.Equal(t, inventory.StatusActive, found.Property(inventory.PropServiceStatus))
		assert.Equal(t, 500, found.Properties().GetInt("bandwidth"))
		v, _ := found.Properties().Get("managed")
		assert.Equal(t, inventory.ValueBool, v.Kind())
		assert.Equal(t, 1, found.Version())
	})

	t.Run("absent name is not an error", func(t *testing.T) {
		found, err := repo.FindByName(ctx, inventory.KindRFS, "RFS_SUB9_100")
		assert.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("duplicate name in the same kind", func(t *testing.T) {
		err := repo.Create(ctx, newEntity(t, inventory.KindRFS, "RFS_SUB1_100", ""))
		assert.ErrorIs(t, err, inventory.ErrDuplicateName)
	})

	t.Run("same name in another kind", func(t *testing.T) {
		err := repo.Create(ctx, newEntity(t, inventory.KindCFS, "RFS_SUB1_100", ""))
		assert.NoError(t, err)
	})
}

func TestGraphStoreRepository_Save(t *testing.T) {
	repo := NewGraphStoreRepository(setupTestDB(t), logger.NewNopLogger())
	ctx := context.Background()

	sub := newEntity(t, inventory.KindSubscription, "SUB1_100", "SUB1")
	require.NoError(t, repo.Save(ctx, sub))
	require.NoError(t, repo.Create(ctx, newEntity(t, inventory.KindSubscription, "SUB1_200", "SUB1")))

	t.Run("update bumps version", func(t *testing.T) {
		sub.SetStatus(inventory.StatusSuspended)
		require.NoError(t, repo.Save(ctx, sub))
		assert.Equal(t, 2, sub.Version())

		found, err := repo.FindByName(ctx, inventory.KindSubscription, "SUB1_100")
		require.NoError(t, err)
		assert.Equal(t, 2, found.Version())
		assert.Equal(t, inventory.StatusSuspended, found.Status())
	})

	t.Run("stale copy is rejected", func(t *testing.T) {
		stale, err := repo.FindByName(ctx, inventory.KindSubscription, "SUB1_100")
		require.NoError(t, err)
		fresh := stale.Clone()

		fresh.SetStatus(inventory.StatusActive)
		require.NoError(t, repo.Save(ctx, fresh))

		stale.SetStatus(inventory.StatusInactive)
		err = repo.Save(ctx, stale)
		assert.ErrorIs(t, err, inventory.ErrConcurrentUpdate)
	})

	t.Run("rename onto a taken name", func(t *testing.T) {
		current, err := repo.FindByName(ctx, inventory.KindSubscription, "SUB1_100")
		require.NoError(t, err)
		require.NoError(t, current.Rename("SUB1_200"))

		err = repo.Save(ctx, current)
		assert.ErrorIs(t, err, inventory.ErrDuplicateName)
	})

	t.Run("rename keeps identity", func(t *testing.T) {
		current, err := repo.FindByName(ctx, inventory.KindSubscription, "SUB1_100")
		require.NoError(t, err)
		require.NoError(t, current.Rename("SUB1_300"))
		require.NoError(t, repo.Save(ctx, current))

		old, err := repo.FindByName(ctx, inventory.KindSubscription, "SUB1_100")
		require.NoError(t, err)
		assert.Nil(t, old)
		renamed, err := repo.FindByName(ctx, inventory.KindSubscription, "SUB1_300")
		require.NoError(t, err)
		assert.Equal(t, sub.ID(), renamed.ID())
	})
}

func TestGraphStoreRepository_FindAllAndCount(t *testing.T) {
	repo := NewGraphStoreRepository(setupTestDB(t), logger.NewNopLogger())
	ctx := context.Background()

	device := inventory.Ref{Kind: inventory.KindLogicalDevice, Name: "STB_S1"}
	for _, e := range []*inventory.Entity{
		newEntity(t, inventory.KindLogicalInterface, "MENM01_1000", "ONTA"),
		newEntity(t, inventory.KindLogicalInterface, "MENM01_1001", "ONTB"),
		newEntity(t, inventory.KindLogicalInterface, "MENM01X1002", "ONTA"),
		newEntity(t, inventory.KindRFS, "RFS_SUB1_100", "CFS_SUB1_100", device),
		newEntity(t, inventory.KindRFS, "RFS_SUB2_100", "CFS_SUB2_100"),
	} {
		require.NoError(t, repo.Create(ctx, e))
	}

	names := func(list []*inventory.Entity) []string {
		out := make([]string, 0, len(list))
		for _, e := range list {
			out = append(out, e.Name())
		}
		return out
	}

	tests := []struct {
		name     string
		filter   inventory.EntityFilter
		expected []string
	}{
		{
			name:     "prefix treats underscore literally",
			filter:   inventory.EntityFilter{Kind: inventory.KindLogicalInterface, NamePrefix: "MENM01_"},
			expected: []string{"MENM01_1000", "MENM01_1001"},
		},
		{
			name:     "parent",
			filter:   inventory.EntityFilter{Kind: inventory.KindLogicalInterface, Parent: inventory.ParentIs("ONTA")},
			expected: []string{"MENM01_1000", "MENM01X1002"},
		},
		{
			name:     "reference",
			filter:   inventory.EntityFilter{Kind: inventory.KindRFS, Ref: &device},
			expected: []string{"RFS_SUB1_100"},
		},
		{
			name:     "property",
			filter:   inventory.EntityFilter{Kind: inventory.KindRFS, Property: inventory.PropServiceStatus, PropertyValue: inventory.StatusActive},
			expected: []string{"RFS_SUB1_100", "RFS_SUB2_100"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := repo.FindAll(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, names(list))

			count, err := repo.Count(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.expected)), count)
		})
	}
}

func TestGraphStoreRepository_Delete(t *testing.T) {
	repo := NewGraphStoreRepository(setupTestDB(t), logger.NewNopLogger())
	ctx := context.Background()

	e := newEntity(t, inventory.KindProduct, "SUB1_HSI_100", "SUB1")
	require.NoError(t, repo.Create(ctx, e))

	require.NoError(t, repo.Delete(ctx, e))
	found, err := repo.FindByName(ctx, inventory.KindProduct, "SUB1_HSI_100")
	require.NoError(t, err)
	assert.Nil(t, found)

	err = repo.Delete(ctx, e)
	assert.ErrorIs(t, err, inventory.ErrNotFound)

	// freed names are reusable
	assert.NoError(t, repo.Create(ctx, newEntity(t, inventory.KindProduct, "SUB1_HSI_100", "SUB1")))
}

func TestGraphStoreRepository_TransactionRollback(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewGraphStoreRepository(gdb, logger.NewNopLogger())
	tm := db.NewTransactionManager(gdb)
	ctx := context.Background()

	boom := errors.New("boom")
	err := tm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := repo.Create(ctx, newEntity(t, inventory.KindSubscriber, "SUB1", "")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	found, err := repo.FindByName(ctx, inventory.KindSubscriber, "SUB1")
	require.NoError(t, err)
	assert.Nil(t, found)
}
