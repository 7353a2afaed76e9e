package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"invprov/internal/shared/constants"
)

func openMemoryDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestNewManager(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		driver   string
		expected string
		wantErr  bool
	}{
		{name: "default", strategy: "", driver: "sqlite", expected: "gorm_auto_migrate"},
		{name: "goose sqlite", strategy: StrategyGoose, driver: "sqlite", expected: StrategyGoose},
		{name: "golang-migrate mysql", strategy: StrategyGolangMigrate, driver: "mysql", expected: StrategyGolangMigrate},
		{name: "golang-migrate sqlite", strategy: StrategyGolangMigrate, driver: "sqlite", wantErr: true},
		{name: "goose unknown driver", strategy: StrategyGoose, driver: "postgres", wantErr: true},
		{name: "unknown", strategy: "flyway", driver: "mysql", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewManager(tt.strategy, tt.driver)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m.GetStrategy().GetName())
		})
	}
}

func TestAutoMigrate(t *testing.T) {
	db := openMemoryDB(t)
	m, err := NewManager(StrategyAuto, "sqlite")
	require.NoError(t, err)

	require.NoError(t, m.Migrate(db))

	assert.True(t, db.Migrator().HasTable(constants.TableInventoryEntities))
	assert.True(t, db.Migrator().HasIndex(constants.TableInventoryEntities, "uk_kind_name"))
}

func TestGooseStrategy_UpAndDown(t *testing.T) {
	db := openMemoryDB(t)
	s, err := NewGooseStrategy("sqlite")
	require.NoError(t, err)

	require.NoError(t, NewManagerWithStrategy(s).Migrate(db))
	assert.True(t, db.Migrator().HasTable(constants.TableInventoryEntities))

	version, err := s.GetVersion(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	require.NoError(t, s.MigrateDown(db, 1))
	assert.False(t, db.Migrator().HasTable(constants.TableInventoryEntities))
}
