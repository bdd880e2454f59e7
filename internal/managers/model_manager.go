package managers

import (
	"context"
	"fmt"

	"github.com/smartspace/smartspace/pkg/clients/smartspace"
	"github.com/smartspace/smartspace/pkg/domain"
	"github.com/smartspace/smartspace/pkg/domain/mappers"
)

type modelManager struct {
	client smartspace.ClientInterface
}

type ModelManagerDependencies struct {
	Client smartspace.ClientInterface
}

func NewModelManager(deps ModelManagerDependencies) domain.ModelManager {
	return &modelManager{
		client: deps.Client,
	}
}

func (m *modelManager) GetModels(ctx context.Context) ([]domain.Model, error) {
	models, err := m.client.GetModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get models from API: %w", err)
	}

	return mappers.SmartSpaceModelsToDomain(models), nil
}

func (m *modelManager) GetModel(ctx context.Context, modelID string) (domain.Model, error) {
	model, err := m.client.GetModel(ctx, modelID)
	if err != nil {
		return domain.Model{}, fmt.Errorf("failed to get model from API: %w", err)
	}

	return mappers.SmartSpaceModelToDomain(*model), nil
}
