package domain

import (
	"context"
	"time"
)

type Model struct {
	ID              string    `json:"id" yaml:"id"`
	Name            string    `json:"name" yaml:"name"`
	DisplayName     string    `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	ProviderType    string    `json:"provider_type,omitempty" yaml:"provider_type,omitempty"`
	VirtualModel    bool      `json:"virtual_model" yaml:"virtual_model"`
	CreatedAt       time.Time `json:"created_at" yaml:"created_at"`
	CreatedByUserID string    `json:"created_by_user_id,omitempty" yaml:"created_by_user_id,omitempty"`
}

// Label returns the display name, falling back to the model name
func (m Model) Label() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.Name
}

type ModelManager interface {
	GetModels(ctx context.Context) ([]Model, error)
	GetModel(ctx context.Context, modelID string) (Model, error)
}
