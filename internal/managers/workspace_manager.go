package managers

import (
	"context"
	"fmt"

	"github.com/smartspace/smartspace/pkg/clients/smartspace"
	"github.com/smartspace/smartspace/pkg/domain"
	"github.com/smartspace/smartspace/pkg/domain/mappers"
)

type workspaceManager struct {
	client smartspace.ClientInterface
}

type WorkspaceManagerDependencies struct {
	Client smartspace.ClientInterface
}

func NewWorkspaceManager(deps WorkspaceManagerDependencies) domain.WorkspaceManager {
	return &workspaceManager{
		client: deps.Client,
	}
}

// GetWorkspace retrieves workspace information by ID
func (m *workspaceManager) GetWorkspace(ctx context.Context, workspaceID string) (domain.Workspace, error) {
	workspace, err := m.client.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return domain.Workspace{}, fmt.Errorf("failed to get workspace from API: %w", err)
	}

	return mappers.SmartSpaceWorkspaceToDomain(*workspace), nil
}

// GetWorkspaces retrieves all workspaces visible to the signed-in user
func (m *workspaceManager) GetWorkspaces(ctx context.Context) ([]domain.Workspace, error) {
	workspaces, err := m.client.GetWorkspaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get workspaces from API: %w", err)
	}

	return mappers.SmartSpaceWorkspacesToDomain(workspaces), nil
}
