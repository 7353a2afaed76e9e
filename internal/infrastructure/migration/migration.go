// Package migration creates and evolves the inventory schema.
package migration

import (
	"embed"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"invprov/internal/infrastructure/persistence/models"
	"invprov/internal/shared/logger"
)

//go:embed scripts/*.sql
var scriptsFS embed.FS

//go:embed goose/mysql/*.sql goose/sqlite/*.sql
var gooseFS embed.FS

const (
	StrategyAuto          = "auto"
	StrategyGoose         = "goose"
	StrategyGolangMigrate = "golang_migrate"
)

// Strategy defines the interface for different migration strategies
type Strategy interface {
	// Migrate brings the schema up to date
	Migrate(db *gorm.DB) error
	GetName() string
}

// Manager handles database migrations with different strategies
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager picks a strategy by name. driver selects the SQL dialect of the
// script-based strategies.
func NewManager(strategyName, driver string) (*Manager, error) {
	var strategy Strategy

	switch strings.ToLower(strategyName) {
	case "", StrategyAuto:
		strategy = NewGormAutoMigrateStrategy()
	case StrategyGoose:
		s, err := NewGooseStrategy(driver)
		if err != nil {
			return nil, err
		}
		strategy = s
	case StrategyGolangMigrate:
		if driver != "mysql" {
			return nil, fmt.Errorf("golang-migrate scripts target mysql, not %q", driver)
		}
		strategy = NewGolangMigrateStrategy()
	default:
		return nil, fmt.Errorf("unknown migration strategy %q", strategyName)
	}

	return NewManagerWithStrategy(strategy), nil
}

// NewManagerWithStrategy creates a new migration manager with a specific strategy
func NewManagerWithStrategy(strategy Strategy) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   logger.WithComponent("migration.manager"),
	}
}

// Migrate executes the configured migration strategy
func (m *Manager) Migrate(db *gorm.DB) error {
	m.logger.Infow("starting database migration", "strategy", m.strategy.GetName())

	if err := m.strategy.Migrate(db); err != nil {
		m.logger.Errorw("migration failed", "strategy", m.strategy.GetName(), "error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed successfully", "strategy", m.strategy.GetName())
	return nil
}

// GetStrategy returns the current migration strategy
func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}

// Models lists every persistence model kept in sync by AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&models.InventoryEntityModel{},
	}
}

// GormAutoMigrateStrategy derives the schema from the gorm models.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy() Strategy {
	return &GormAutoMigrateStrategy{
		logger: logger.WithComponent("migration.auto"),
	}
}

func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB) error {
	list := Models()
	s.logger.Infow("running gorm auto migrate", "models_count", len(list))
	return db.AutoMigrate(list...)
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return "gorm_auto_migrate"
}
