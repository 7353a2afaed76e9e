package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"invprov/internal/shared/constants"
)

// InventoryEntityModel is the single table behind every inventory kind.
// Names are unique per kind; parent lookups are indexed for child scans.
type InventoryEntityModel struct {
	ID         uint           `gorm:"primarykey"`
	Kind       string         `gorm:"not null;size:40;uniqueIndex:uk_kind_name,priority:1;index:idx_kind_parent,priority:1"`
	Name       string         `gorm:"not null;size:100;uniqueIndex:uk_kind_name,priority:2"`
	Parent     string         `gorm:"not null;size:100;default:'';index:idx_kind_parent,priority:2"`
	Refs       datatypes.JSON `gorm:"comment:ordered references as [{kind,name}]"`
	Properties datatypes.JSON
	Version    int `gorm:"not null;default:1"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the table name for GORM
func (InventoryEntityModel) TableName() string {
	return constants.TableInventoryEntities
}

// BeforeCreate hook for GORM
func (m *InventoryEntityModel) BeforeCreate(tx *gorm.DB) error {
	if m.Version == 0 {
		m.Version = 1
	}
	return nil
}
