package smartspace

import (
	"context"
	"fmt"
	"net/url"
)

// GetWorkspaces retrieves all workspaces visible to the signed-in user
func (c *Client) GetWorkspaces(ctx context.Context) ([]Workspace, error) {
	resp, err := c.doRequest(ctx, "GET", "/workspaces", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get workspaces: %w", err)
	}

	var result []Workspace
	if err := c.handleResponse(resp, "[]"+schemaWorkspace, &result); err != nil {
		return nil, fmt.Errorf("failed to process get workspaces response: %w", err)
	}

	return result, nil
}

// GetWorkspace retrieves a workspace by ID
func (c *Client) GetWorkspace(ctx context.Context, workspaceID string) (*Workspace, error) {
	if err := requireID("workspace ID", workspaceID); err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, "GET", "/workspaces/"+url.PathEscape(workspaceID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}

	var result Workspace
	if err := c.handleResponse(resp, schemaWorkspace, &result); err != nil {
		return nil, fmt.Errorf("failed to process get workspace response: %w", err)
	}

	return &result, nil
}
