package smartspace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// GetMessages retrieves the messages of a thread in chronological order
func (c *Client) GetMessages(ctx context.Context, req *GetMessagesRequest) ([]Message, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	if err := requireID("thread ID", req.ThreadID); err != nil {
		return nil, err
	}

	query := url.Values{}
	if req.Take > 0 {
		query.Set("take", strconv.Itoa(req.Take))
	}
	if req.Skip > 0 {
		query.Set("skip", strconv.Itoa(req.Skip))
	}

	path := fmt.Sprintf("/messagethreads/%s/messages", url.PathEscape(req.ThreadID))
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	var result []Message
	if err := c.handleResponse(resp, "[]"+schemaMessage, &result); err != nil {
		return nil, fmt.Errorf("failed to process get messages response: %w", err)
	}

	return result, nil
}

// PostMessage posts a message and streams the resulting flow output. The
// returned stream publishes each message record as soon as it is complete.
func (c *Client) PostMessage(ctx context.Context, req *PostMessageRequest) (*MessageStream, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	if err := requireID("workspace ID", req.WorkSpaceID); err != nil {
		return nil, err
	}
	if len(req.Inputs) == 0 {
		return nil, fmt.Errorf("at least one input is required")
	}

	stream, err := c.openMessageStream(ctx, "/messages", req)
	if err != nil {
		return nil, fmt.Errorf("failed to post message: %w", err)
	}

	return stream, nil
}

// AddInputToMessage supplies a value to a message that is waiting for user
// input and streams the continued flow output
func (c *Client) AddInputToMessage(ctx context.Context, messageID string, req *AddInputToMessageRequest) (*MessageStream, error) {
	if err := requireID("message ID", messageID); err != nil {
		return nil, err
	}
	if req == nil || req.Name == "" {
		return nil, fmt.Errorf("input name is required")
	}

	path := fmt.Sprintf("/messages/%s/values", url.PathEscape(messageID))
	stream, err := c.openMessageStream(ctx, path, req)
	if err != nil {
		return nil, fmt.Errorf("failed to add input to message: %w", err)
	}

	return stream, nil
}

// openMessageStream starts a streaming POST. A transport failure or a
// non-2xx status fails here; later failures are delivered to subscribers.
func (c *Client) openMessageStream(ctx context.Context, path string, body interface{}) (*MessageStream, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	resp, err := c.doRawRequest(ctx, c.streamClient, "POST", path, bodyBytes, map[string]string{
		"Content-Type": "application/json",
		"Accept":       "text/event-stream",
	})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer resp.Body.Close()
		errBody, _ := io.ReadAll(resp.Body)
		return nil, parseErrorResponse(resp, errBody)
	}

	stream := newMessageStream(c.schemas, c.logger.With().Str("path", path).Logger())
	go stream.consume(resp.Body)

	return stream, nil
}
