package smartspace

import (
	"context"
	"fmt"
	"net/url"
)

// GetModels retrieves the model deployments available to the user
func (c *Client) GetModels(ctx context.Context) ([]Model, error) {
	resp, err := c.doRequest(ctx, "GET", "/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get models: %w", err)
	}

	var result []Model
	if err := c.handleResponse(resp, "[]"+schemaModel, &result); err != nil {
		return nil, fmt.Errorf("failed to process get models response: %w", err)
	}

	return result, nil
}

// GetModel retrieves a model deployment by ID
func (c *Client) GetModel(ctx context.Context, modelID string) (*Model, error) {
	if err := requireID("model ID", modelID); err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, "GET", "/models/"+url.PathEscape(modelID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get model: %w", err)
	}

	var result Model
	if err := c.handleResponse(resp, schemaModel, &result); err != nil {
		return nil, fmt.Errorf("failed to process get model response: %w", err)
	}

	return &result, nil
}
