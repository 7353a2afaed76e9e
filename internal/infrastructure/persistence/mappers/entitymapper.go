package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"invprov/internal/domain/inventory"
	"invprov/internal/infrastructure/persistence/models"
)

// EntityMapper converts between inventory entities and their persistence model.
type EntityMapper interface {
	ToModel(e *inventory.Entity) (*models.InventoryEntityModel, error)
	ToDomain(model *models.InventoryEntityModel) (*inventory.Entity, error)
	ToDomainList(list []*models.InventoryEntityModel) ([]*inventory.Entity, error)
}

type entityMapper struct{}

func NewEntityMapper() EntityMapper {
	return &entityMapper{}
}

func (m *entityMapper) ToModel(e *inventory.Entity) (*models.InventoryEntityModel, error) {
	if e == nil {
		return nil, nil
	}

	refs, err := json.Marshal(e.Refs())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal refs of %s: %w", e.Ref(), err)
	}
	props, err := json.Marshal(e.Properties())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal properties of %s: %w", e.Ref(), err)
	}

	return &models.InventoryEntityModel{
		ID:         e.ID(),
		Kind:       string(e.Kind()),
		Name:       e.Name(),
		Parent:     e.Parent(),
		Refs:       datatypes.JSON(refs),
		Properties: datatypes.JSON(props),
		Version:    e.Version(),
		CreatedAt:  e.CreatedAt(),
		UpdatedAt:  e.UpdatedAt(),
	}, nil
}

func (m *entityMapper) ToDomain(model *models.InventoryEntityModel) (*inventory.Entity, error) {
	if model == nil {
		return nil, nil
	}

	var refs []inventory.Ref
	if len(model.Refs) > 0 {
		if err := json.Unmarshal(model.Refs, &refs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal refs (id=%d): %w", model.ID, err)
		}
	}

	props := make(inventory.Properties)
	if len(model.Properties) > 0 {
		if err := json.Unmarshal(model.Properties, &props); err != nil {
			return nil, fmt.Errorf("failed to unmarshal properties (id=%d): %w", model.ID, err)
		}
	}

	return inventory.ReconstructEntity(
		model.ID,
		inventory.Kind(model.Kind),
		model.Name,
		model.Parent,
		refs,
		props,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

func (m *entityMapper) ToDomainList(list []*models.InventoryEntityModel) ([]*inventory.Entity, error) {
	out := make([]*inventory.Entity, 0, len(list))
	for _, model := range list {
		e, err := m.ToDomain(model)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
