// Package smartspace provides a Go SDK for the SmartSpace chat API.
// This package has no internal dependencies.
package smartspace

import (
	"encoding/json"
	"io"
)

// Workspace is a chat workspace as returned by the API
type Workspace struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Tags          []string `json:"tags,omitempty"`
	FirstPrompt   *string  `json:"firstPrompt,omitempty"`
	ModelID       *string  `json:"modelId,omitempty"`
	SupportsFiles bool     `json:"supportsFiles"`
	CreatedAt     string   `json:"createdAt,omitempty"`
}

// MessageThread is a conversation inside a workspace
type MessageThread struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	WorkSpaceID         string  `json:"workSpaceId"`
	CreatedAt           string  `json:"createdAt"`
	CreatedBy           string  `json:"createdBy,omitempty"`
	CreatedByUserID     string  `json:"createdByUserId,omitempty"`
	LastUpdatedAt       string  `json:"lastUpdatedAt,omitempty"`
	LastUpdatedByUserID *string `json:"lastUpdatedByUserId,omitempty"`
	TotalMessages       int     `json:"totalMessages"`
	Favorited           bool    `json:"favorited"`
	IsFlowRunning       bool    `json:"isFlowRunning"`
}

// GetMessageThreadsRequest selects a page of threads in a workspace
type GetMessageThreadsRequest struct {
	WorkspaceID string `json:"-"`
	Take        int    `json:"-"`
	Skip        int    `json:"-"`
}

// MessageThreadsResponse is a page of threads
type MessageThreadsResponse struct {
	Data  []MessageThread `json:"data"`
	Total int             `json:"total"`
}

// MessageValue is one named value attached to a message. Value holds any
// JSON document; text responses are JSON strings.
type MessageValue struct {
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Value     json.RawMessage `json:"value"`
	Channels  map[string]int  `json:"channels,omitempty"`
	CreatedAt string          `json:"createdAt,omitempty"`
	CreatedBy string          `json:"createdBy,omitempty"`
}

// Message is a single message in a thread
type Message struct {
	ID              string         `json:"id"`
	MessageThreadID string         `json:"messageThreadId"`
	CreatedAt       string         `json:"createdAt"`
	CreatedBy       string         `json:"createdBy,omitempty"`
	CreatedByUserID string         `json:"createdByUserId,omitempty"`
	HasComments     bool           `json:"hasComments"`
	Values          []MessageValue `json:"values"`
}

// GetMessagesRequest selects messages of a thread
type GetMessagesRequest struct {
	ThreadID string `json:"-"`
	Take     int    `json:"-"`
	Skip     int    `json:"-"`
}

// MessageInput is a named input sent with a new message
type MessageInput struct {
	Name     string         `json:"name"`
	Value    any            `json:"value"`
	Channels map[string]int `json:"channels,omitempty"`
}

// FileReference points at a previously uploaded file
type FileReference struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PostMessageRequest posts a message and starts a flow run. A nil
// MessageThreadID starts a new thread.
type PostMessageRequest struct {
	WorkSpaceID     string          `json:"workSpaceId"`
	MessageThreadID *string         `json:"messageThreadId,omitempty"`
	Inputs          []MessageInput  `json:"inputs"`
	Files           []FileReference `json:"files,omitempty"`
}

// AddInputToMessageRequest supplies a value to a message awaiting user input
type AddInputToMessageRequest struct {
	Name     string         `json:"name"`
	Value    any            `json:"value"`
	Channels map[string]int `json:"channels,omitempty"`
}

// MentionedUser is a user referenced by a comment
type MentionedUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// Comment is a remark left on a thread
type Comment struct {
	ID              string          `json:"id"`
	Content         string          `json:"content"`
	MessageThreadID string          `json:"messageThreadId"`
	CreatedAt       string          `json:"createdAt"`
	CreatedBy       string          `json:"createdBy,omitempty"`
	CreatedByUserID string          `json:"createdByUserId,omitempty"`
	MentionedUsers  []MentionedUser `json:"mentionedUsers,omitempty"`
}

// AddCommentRequest creates a comment
type AddCommentRequest struct {
	Content        string          `json:"content"`
	MentionedUsers []MentionedUser `json:"mentionedUsers,omitempty"`
}

// Notification is an entry in the user's notification feed
type Notification struct {
	ID               string  `json:"id"`
	NotificationType string  `json:"notificationType"`
	Title            string  `json:"title"`
	Description      string  `json:"description,omitempty"`
	Avatar           *string `json:"avatar,omitempty"`
	CreatedAt        string  `json:"createdAt"`
	ReadAt           *string `json:"readAt,omitempty"`
	WorkSpaceID      *string `json:"workSpaceId,omitempty"`
	ThreadID         *string `json:"threadId,omitempty"`
}

// GetNotificationsRequest selects a page of notifications
type GetNotificationsRequest struct {
	Take       int
	Skip       int
	UnreadOnly bool
}

// NotificationsResponse is a page of notifications
type NotificationsResponse struct {
	Data        []Notification `json:"data"`
	Total       int            `json:"total"`
	UnreadCount int            `json:"unreadCount"`
}

// FileInfo describes an uploaded file
type FileInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size,omitempty"`
	UploadedAt  string `json:"uploadedAt,omitempty"`
}

// FileScope binds uploaded files to a workspace or a thread
type FileScope struct {
	WorkspaceID string
	ThreadID    string
}

// UploadFile is one file of a multipart upload
type UploadFile struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

// UploadFilesRequest uploads files into a scope
type UploadFilesRequest struct {
	Scope FileScope
	Files []UploadFile
}

// DownloadFileResponse carries the body of a downloaded file. The caller
// must close Content.
type DownloadFileResponse struct {
	Content       io.ReadCloser
	ContentLength int64
	ContentType   string
	FileName      string
}

// Model is a model deployment available to flows
type Model struct {
	ID                          string `json:"id"`
	Name                        string `json:"name"`
	DisplayName                 string `json:"displayName,omitempty"`
	ModelDeploymentProviderType string `json:"modelDeploymentProviderType,omitempty"`
	VirtualModel                bool   `json:"virtualModel"`
	CreatedAt                   string `json:"createdAt,omitempty"`
	CreatedByUserID             string `json:"createdByUserId,omitempty"`
}
