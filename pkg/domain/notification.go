package domain

import (
	"context"
	"time"
)

type Notification struct {
	ID          string     `json:"id" yaml:"id"`
	Type        string     `json:"type" yaml:"type"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Avatar      string     `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	ReadAt      *time.Time `json:"read_at,omitempty" yaml:"read_at,omitempty"`
	WorkspaceID string     `json:"workspace_id,omitempty" yaml:"workspace_id,omitempty"`
	ThreadID    string     `json:"thread_id,omitempty" yaml:"thread_id,omitempty"`
}

func (n Notification) IsRead() bool {
	return n.ReadAt != nil
}

type NotificationPage struct {
	Notifications []Notification `json:"notifications" yaml:"notifications"`
	Total         int            `json:"total" yaml:"total"`
	UnreadCount   int            `json:"unread_count" yaml:"unread_count"`
	HasMore       bool           `json:"has_more" yaml:"has_more"`
}

type GetNotificationsParams struct {
	Take       int
	Skip       int
	UnreadOnly bool
}

type NotificationManager interface {
	GetNotifications(ctx context.Context, params GetNotificationsParams) (NotificationPage, error)
	MarkRead(ctx context.Context, notificationID string) error
	MarkAllRead(ctx context.Context) error
}
