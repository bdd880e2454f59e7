package smartspace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// ErrTokenUnavailable is wrapped by token sources that fail to produce an
// access token. The client reports such failures as KindUnauthorized.
var ErrTokenUnavailable = errors.New("access token unavailable")

// ClientInterface defines the operations offered by the SmartSpace API
type ClientInterface interface {
	// Workspace operations
	GetWorkspaces(ctx context.Context) ([]Workspace, error)
	GetWorkspace(ctx context.Context, workspaceID string) (*Workspace, error)

	// Thread operations
	GetMessageThreads(ctx context.Context, req *GetMessageThreadsRequest) (*MessageThreadsResponse, error)
	GetMessageThread(ctx context.Context, threadID string) (*MessageThread, error)
	RenameMessageThread(ctx context.Context, threadID, name string) (*MessageThread, error)
	SetMessageThreadFavorited(ctx context.Context, threadID string, favorited bool) (*MessageThread, error)
	DeleteMessageThread(ctx context.Context, threadID string) error

	// Message operations
	GetMessages(ctx context.Context, req *GetMessagesRequest) ([]Message, error)
	PostMessage(ctx context.Context, req *PostMessageRequest) (*MessageStream, error)
	AddInputToMessage(ctx context.Context, messageID string, req *AddInputToMessageRequest) (*MessageStream, error)

	// Comment operations
	GetComments(ctx context.Context, threadID string) ([]Comment, error)
	AddComment(ctx context.Context, threadID string, req *AddCommentRequest) (*Comment, error)

	// Notification operations
	GetNotifications(ctx context.Context, req *GetNotificationsRequest) (*NotificationsResponse, error)
	MarkNotificationRead(ctx context.Context, notificationID string) error
	MarkAllNotificationsRead(ctx context.Context) error

	// File operations
	UploadFiles(ctx context.Context, req *UploadFilesRequest) ([]FileInfo, error)
	GetFileInfo(ctx context.Context, fileID string) (*FileInfo, error)
	DownloadFile(ctx context.Context, fileID string) (*DownloadFileResponse, error)

	// Model operations
	GetModels(ctx context.Context) ([]Model, error)
	GetModel(ctx context.Context, modelID string) (*Model, error)
}

// Client provides a high-level interface for interacting with the SmartSpace API
type Client struct {
	config       *ClientConfig
	httpClient   *http.Client
	streamClient *http.Client
	schemas      *schemaRegistry
	logger       zerolog.Logger
}

var _ ClientInterface = (*Client)(nil)

// NewClient creates a new SmartSpace client with the given options
func NewClient(options ...ClientOption) *Client {
	config := DefaultConfig()

	for _, option := range options {
		option(config)
	}

	base := http.DefaultTransport
	if config.HTTPClient != nil && config.HTTPClient.Transport != nil {
		base = config.HTTPClient.Transport
	}

	transport := base
	if config.TokenSource != nil {
		transport = &oauth2.Transport{
			Source: oauth2.ReuseTokenSource(nil, config.TokenSource),
			Base:   base,
		}
	}

	timeout := config.Timeout
	if config.HTTPClient != nil && config.HTTPClient.Timeout > 0 {
		timeout = config.HTTPClient.Timeout
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		// Streamed replies can run for minutes; only the context bounds them.
		streamClient: &http.Client{
			Transport: transport,
		},
		schemas: defaultSchemas(),
		logger:  config.Logger.With().Str("component", "smartspace_client").Logger(),
	}
}

// NewClientWithDefaults creates a new client for baseURL authenticated by ts
func NewClientWithDefaults(baseURL string, ts oauth2.TokenSource) *Client {
	return NewClient(
		WithBaseURL(baseURL),
		WithTokenSource(ts),
	)
}

// doRequest performs an HTTP request with retry logic and proper error handling
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	return c.doRequestWithHeaders(ctx, method, path, body, nil)
}

// doRequestWithHeaders performs an HTTP request with custom headers
func (c *Client) doRequestWithHeaders(ctx context.Context, method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	var bodyBytes []byte

	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		if headers == nil {
			headers = map[string]string{}
		}
		if _, ok := headers["Content-Type"]; !ok {
			headers["Content-Type"] = "application/json"
		}
	}

	return c.doRawRequest(ctx, c.httpClient, method, path, bodyBytes, headers)
}

func (c *Client) doRawRequest(ctx context.Context, httpClient *http.Client, method, path string, bodyBytes []byte, headers map[string]string) (*http.Response, error) {
	url := c.config.BaseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryDelay):
			}
		}

		var requestBody io.Reader
		if bodyBytes != nil {
			requestBody = bytes.NewReader(bodyBytes)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, requestBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		c.applyHeaders(req, headers)

		resp, err := httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = c.classifyTransportError(err)
			if KindOf(lastErr) == KindUnauthorized {
				return nil, lastErr
			}
			continue
		}

		if resp.StatusCode >= 500 && attempt < c.config.RetryAttempts {
			c.logger.Error().
				Int("status_code", resp.StatusCode).
				Str("path", path).
				Str("request_id", resp.Header.Get("X-Request-ID")).
				Msg("server error")

			resp.Body.Close()
			lastErr = newStatusError(resp.StatusCode, fmt.Sprintf("server error: %d", resp.StatusCode), "", resp.Header.Get("X-Request-ID"))
			continue
		}

		return resp, nil
	}

	if c.config.RetryAttempts == 0 {
		return nil, lastErr
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", c.config.RetryAttempts, lastErr)
}

func (c *Client) applyHeaders(req *http.Request, headers map[string]string) {
	for key, value := range c.config.DefaultHeaders {
		req.Header.Set(key, value)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", xid.New().String())
	}
}

func (c *Client) classifyTransportError(err error) error {
	if errors.Is(err, ErrTokenUnavailable) {
		return &Error{
			Kind:    KindUnauthorized,
			Message: "failed to acquire access token",
			Err:     err,
		}
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return &Error{
			Kind:    KindUnauthorized,
			Message: "failed to acquire access token",
			Err:     err,
		}
	}

	return newNetworkError(err)
}

// handleResponse processes the HTTP response, validates it against schema
// and unmarshals JSON into result if successful
func (c *Client) handleResponse(resp *http.Response, schema string, result interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return newNetworkError(fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode >= 400 {
		return parseErrorResponse(resp, body)
	}

	if result == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if schema != "" {
		if err := c.schemas.Validate(schema, body); err != nil {
			return newValidationError(fmt.Sprintf("response does not match %s schema", schema), err)
		}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return newValidationError("failed to unmarshal response", err)
	}

	return nil
}

func parseErrorResponse(resp *http.Response, body []byte) error {
	requestID := resp.Header.Get("X-Request-ID")

	// ASP.NET problem details and the plain {error|message} shapes
	var errorResponse struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Title   string `json:"title"`
		Detail  string `json:"detail"`
	}

	if json.Unmarshal(body, &errorResponse) == nil {
		for _, msg := range []string{errorResponse.Detail, errorResponse.Message, errorResponse.Error, errorResponse.Title} {
			if strings.TrimSpace(msg) != "" {
				return newStatusError(resp.StatusCode, msg, string(body), requestID)
			}
		}
	}

	return newStatusError(resp.StatusCode, fmt.Sprintf("HTTP %d", resp.StatusCode), string(body), requestID)
}

func requireID(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", name)
	}
	return nil
}
