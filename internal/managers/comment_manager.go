package managers

import (
	"context"
	"fmt"

	"github.com/smartspace/smartspace/pkg/clients/smartspace"
	"github.com/smartspace/smartspace/pkg/domain"
	"github.com/smartspace/smartspace/pkg/domain/mappers"
)

type commentManager struct {
	client smartspace.ClientInterface
}

type CommentManagerDependencies struct {
	Client smartspace.ClientInterface
}

func NewCommentManager(deps CommentManagerDependencies) domain.CommentManager {
	return &commentManager{
		client: deps.Client,
	}
}

func (m *commentManager) GetComments(ctx context.Context, threadID string) ([]domain.Comment, error) {
	comments, err := m.client.GetComments(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments from API: %w", err)
	}

	return mappers.SmartSpaceCommentsToDomain(comments), nil
}

func (m *commentManager) AddComment(ctx context.Context, params domain.AddCommentParams) (domain.Comment, error) {
	if params.Content == "" {
		return domain.Comment{}, fmt.Errorf("comment content is required")
	}

	comment, err := m.client.AddComment(ctx, params.ThreadID, &smartspace.AddCommentRequest{
		Content:        params.Content,
		MentionedUsers: mappers.DomainMentionsToSmartSpace(params.MentionedUsers),
	})
	if err != nil {
		return domain.Comment{}, fmt.Errorf("failed to add comment: %w", err)
	}

	return mappers.SmartSpaceCommentToDomain(*comment), nil
}
