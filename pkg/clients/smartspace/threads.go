package smartspace

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetMessageThreads retrieves a page of threads in a workspace, most recent first
func (c *Client) GetMessageThreads(ctx context.Context, req *GetMessageThreadsRequest) (*MessageThreadsResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	if err := requireID("workspace ID", req.WorkspaceID); err != nil {
		return nil, err
	}

	query := url.Values{}
	if req.Take > 0 {
		query.Set("take", strconv.Itoa(req.Take))
	}
	if req.Skip > 0 {
		query.Set("skip", strconv.Itoa(req.Skip))
	}

	path := fmt.Sprintf("/workspaces/%s/messagethreads", url.PathEscape(req.WorkspaceID))
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get message threads: %w", err)
	}

	var result MessageThreadsResponse
	if err := c.handleResponse(resp, schemaMessageThreads, &result); err != nil {
		return nil, fmt.Errorf("failed to process get message threads response: %w", err)
	}

	return &result, nil
}

// GetMessageThread retrieves a thread by ID
func (c *Client) GetMessageThread(ctx context.Context, threadID string) (*MessageThread, error) {
	if err := requireID("thread ID", threadID); err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, "GET", "/messagethreads/"+url.PathEscape(threadID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get message thread: %w", err)
	}

	var result MessageThread
	if err := c.handleResponse(resp, schemaMessageThread, &result); err != nil {
		return nil, fmt.Errorf("failed to process get message thread response: %w", err)
	}

	return &result, nil
}

// RenameMessageThread changes the display name of a thread
func (c *Client) RenameMessageThread(ctx context.Context, threadID, name string) (*MessageThread, error) {
	if err := requireID("thread ID", threadID); err != nil {
		return nil, err
	}
	if err := requireID("thread name", name); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/messagethreads/%s/name", url.PathEscape(threadID))
	resp, err := c.doRequest(ctx, "PUT", path, map[string]string{"name": name})
	if err != nil {
		return nil, fmt.Errorf("failed to rename message thread: %w", err)
	}

	var result MessageThread
	if err := c.handleResponse(resp, schemaMessageThread, &result); err != nil {
		return nil, fmt.Errorf("failed to process rename message thread response: %w", err)
	}

	return &result, nil
}

// SetMessageThreadFavorited marks or unmarks a thread as a favorite
func (c *Client) SetMessageThreadFavorited(ctx context.Context, threadID string, favorited bool) (*MessageThread, error) {
	if err := requireID("thread ID", threadID); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/messagethreads/%s/favorited", url.PathEscape(threadID))
	resp, err := c.doRequest(ctx, "PUT", path, map[string]bool{"favorited": favorited})
	if err != nil {
		return nil, fmt.Errorf("failed to update message thread favorite: %w", err)
	}

	var result MessageThread
	if err := c.handleResponse(resp, schemaMessageThread, &result); err != nil {
		return nil, fmt.Errorf("failed to process favorite message thread response: %w", err)
	}

	return &result, nil
}

// DeleteMessageThread deletes a thread and its messages
func (c *Client) DeleteMessageThread(ctx context.Context, threadID string) error {
	if err := requireID("thread ID", threadID); err != nil {
		return err
	}

	resp, err := c.doRequest(ctx, "DELETE", "/messagethreads/"+url.PathEscape(threadID), nil)
	if err != nil {
		return fmt.Errorf("failed to delete message thread: %w", err)
	}

	if err := c.handleResponse(resp, "", nil); err != nil {
		return fmt.Errorf("failed to process delete message thread response: %w", err)
	}

	return nil
}
