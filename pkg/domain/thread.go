package domain

import (
	"context"
	"time"
)

type MessageThread struct {
	ID                  string    `json:"id" yaml:"id"`
	Name                string    `json:"name" yaml:"name"`
	WorkspaceID         string    `json:"workspace_id" yaml:"workspace_id"`
	CreatedAt           time.Time `json:"created_at" yaml:"created_at"`
	CreatedBy           string    `json:"created_by,omitempty" yaml:"created_by,omitempty"`
	CreatedByUserID     string    `json:"created_by_user_id,omitempty" yaml:"created_by_user_id,omitempty"`
	LastUpdatedAt       time.Time `json:"last_updated_at" yaml:"last_updated_at"`
	LastUpdatedByUserID string    `json:"last_updated_by_user_id,omitempty" yaml:"last_updated_by_user_id,omitempty"`
	TotalMessages       int       `json:"total_messages" yaml:"total_messages"`
	Favorited           bool      `json:"favorited" yaml:"favorited"`
	IsFlowRunning       bool      `json:"is_flow_running" yaml:"is_flow_running"`
}

// ThreadPage is one page of a workspace's threads
type ThreadPage struct {
	Threads []MessageThread `json:"threads" yaml:"threads"`
	Total   int             `json:"total" yaml:"total"`
	HasMore bool            `json:"has_more" yaml:"has_more"`
}

type GetThreadsParams struct {
	WorkspaceID string
	Take        int
	Skip        int
}

type ThreadManager interface {
	GetThreads(ctx context.Context, params GetThreadsParams) (ThreadPage, error)
	GetThread(ctx context.Context, threadID string) (MessageThread, error)
	RenameThread(ctx context.Context, threadID, name string) (MessageThread, error)
	SetFavorited(ctx context.Context, threadID string, favorited bool) (MessageThread, error)
	DeleteThread(ctx context.Context, threadID string) error
}
