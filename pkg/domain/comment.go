package domain

import (
	"context"
	"time"
)

type MentionedUser struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"display_name" yaml:"display_name"`
}

type Comment struct {
	ID              string          `json:"id" yaml:"id"`
	Content         string          `json:"content" yaml:"content"`
	ThreadID        string          `json:"thread_id" yaml:"thread_id"`
	CreatedAt       time.Time       `json:"created_at" yaml:"created_at"`
	CreatedBy       string          `json:"created_by,omitempty" yaml:"created_by,omitempty"`
	CreatedByUserID string          `json:"created_by_user_id,omitempty" yaml:"created_by_user_id,omitempty"`
	MentionedUsers  []MentionedUser `json:"mentioned_users,omitempty" yaml:"mentioned_users,omitempty"`
}

type AddCommentParams struct {
	ThreadID       string
	Content        string
	MentionedUsers []MentionedUser
}

type CommentManager interface {
	GetComments(ctx context.Context, threadID string) ([]Comment, error)
	AddComment(ctx context.Context, params AddCommentParams) (Comment, error)
}
