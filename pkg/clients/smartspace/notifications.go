package smartspace

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetNotifications retrieves a page of the user's notifications
func (c *Client) GetNotifications(ctx context.Context, req *GetNotificationsRequest) (*NotificationsResponse, error) {
	if req == nil {
		req = &GetNotificationsRequest{}
	}

	query := url.Values{}
	if req.Take > 0 {
		query.Set("take", strconv.Itoa(req.Take))
	}
	if req.Skip > 0 {
		query.Set("skip", strconv.Itoa(req.Skip))
	}
	if req.UnreadOnly {
		query.Set("unreadOnly", "true")
	}

	path := "/notifications"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}

	var result NotificationsResponse
	if err := c.handleResponse(resp, schemaNotifications, &result); err != nil {
		return nil, fmt.Errorf("failed to process get notifications response: %w", err)
	}

	return &result, nil
}

// MarkNotificationRead marks one notification as read
func (c *Client) MarkNotificationRead(ctx context.Context, notificationID string) error {
	if err := requireID("notification ID", notificationID); err != nil {
		return err
	}

	path := fmt.Sprintf("/notifications/%s/read", url.PathEscape(notificationID))
	resp, err := c.doRequest(ctx, "PUT", path, nil)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	if err := c.handleResponse(resp, "", nil); err != nil {
		return fmt.Errorf("failed to process mark notification read response: %w", err)
	}

	return nil
}

// MarkAllNotificationsRead marks every notification of the user as read
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	resp, err := c.doRequest(ctx, "PUT", "/notifications/read", nil)
	if err != nil {
		return fmt.Errorf("failed to mark all notifications read: %w", err)
	}

	if err := c.handleResponse(resp, "", nil); err != nil {
		return fmt.Errorf("failed to process mark all notifications read response: %w", err)
	}

	return nil
}
