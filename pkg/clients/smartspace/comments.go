package smartspace

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// GetComments retrieves the comments on a thread
func (c *Client) GetComments(ctx context.Context, threadID string) ([]Comment, error) {
	if err := requireID("thread ID", threadID); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/messagethreads/%s/comments", url.PathEscape(threadID))
	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}

	var result []Comment
	if err := c.handleResponse(resp, "[]"+schemaComment, &result); err != nil {
		return nil, fmt.Errorf("failed to process get comments response: %w", err)
	}

	return result, nil
}

// AddComment adds a comment to a thread
func (c *Client) AddComment(ctx context.Context, threadID string, req *AddCommentRequest) (*Comment, error) {
	if err := requireID("thread ID", threadID); err != nil {
		return nil, err
	}
	if req == nil || strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("comment content is required")
	}

	path := fmt.Sprintf("/messagethreads/%s/comments", url.PathEscape(threadID))
	resp, err := c.doRequest(ctx, "POST", path, req)
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	var result Comment
	if err := c.handleResponse(resp, schemaComment, &result); err != nil {
		return nil, fmt.Errorf("failed to process add comment response: %w", err)
	}

	return &result, nil
}
