package dto

import (
	"time"

	"invprov/internal/domain/inventory"
)

type RefDTO struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

type EntityDTO struct {
	ID         uint           `json:"id"`
	Kind       string         `json:"kind"`
	Name       string         `json:"name"`
	Parent     string         `json:"parent,omitempty"`
	Refs       []RefDTO       `json:"refs,omitempty"`
	Properties map[string]any `json:"properties"`
	Version    int            `json:"version"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// ServiceDTO is the subgraph of one subscription.
type ServiceDTO struct {
	Subscriber   *EntityDTO   `json:"subscriber,omitempty"`
	Subscription *EntityDTO   `json:"subscription"`
	Products     []*EntityDTO `json:"products"`
	CFS          *EntityDTO   `json:"cfs,omitempty"`
	RFS          *EntityDTO   `json:"rfs,omitempty"`
	Devices      []*EntityDTO `json:"devices"`
	Interfaces   []*EntityDTO `json:"interfaces"`
}

func ToEntityDTO(e *inventory.Entity) *EntityDTO {
	if e == nil {
		return nil
	}

	refs := make([]RefDTO, 0, len(e.Refs()))
	for _, r := range e.Refs() {
		refs = append(refs, RefDTO{Kind: string(r.Kind), Name: r.Name})
	}

	return &EntityDTO{
		ID:         e.ID(),
		Kind:       string(e.Kind()),
		Name:       e.Name(),
		Parent:     e.Parent(),
		Refs:       refs,
		Properties: e.Properties().ToMap(),
		Version:    e.Version(),
		CreatedAt:  e.CreatedAt(),
		UpdatedAt:  e.UpdatedAt(),
	}
}

func ToEntityDTOs(entities []*inventory.Entity) []*EntityDTO {
	out := make([]*EntityDTO, 0, len(entities))
	for _, e := range entities {
		out = append(out, ToEntityDTO(e))
	}
	return out
}
