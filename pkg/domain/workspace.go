package domain

import (
	"context"
	"time"
)

type Workspace struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	Tags          []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	FirstPrompt   string    `json:"first_prompt,omitempty" yaml:"first_prompt,omitempty"`
	ModelID       string    `json:"model_id,omitempty" yaml:"model_id,omitempty"`
	SupportsFiles bool      `json:"supports_files" yaml:"supports_files"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
}

type WorkspaceManager interface {
	GetWorkspace(ctx context.Context, workspaceID string) (Workspace, error)
	GetWorkspaces(ctx context.Context) ([]Workspace, error)
}
