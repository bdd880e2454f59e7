package domain

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

const (
	ChannelResponse = "response"
	ChannelInput    = "input"

	InputNamePrompt = "prompt"
)

type MessageValue struct {
	Name      string          `json:"name" yaml:"name"`
	Type      string          `json:"type" yaml:"type"`
	Value     json.RawMessage `json:"value" yaml:"-"`
	Channels  map[string]int  `json:"channels,omitempty" yaml:"channels,omitempty"`
	CreatedAt time.Time       `json:"created_at" yaml:"created_at"`
	CreatedBy string          `json:"created_by,omitempty" yaml:"created_by,omitempty"`
}

// Text returns the value as a string when it holds a JSON string
func (v MessageValue) Text() (string, bool) {
	var text string
	if err := json.Unmarshal(v.Value, &text); err != nil {
		return "", false
	}
	return text, true
}

// InChannel reports whether the value was published on channel
func (v MessageValue) InChannel(channel string) bool {
	_, ok := v.Channels[channel]
	return ok
}

type Message struct {
	ID              string         `json:"id" yaml:"id"`
	ThreadID        string         `json:"thread_id" yaml:"thread_id"`
	CreatedAt       time.Time      `json:"created_at" yaml:"created_at"`
	CreatedBy       string         `json:"created_by,omitempty" yaml:"created_by,omitempty"`
	CreatedByUserID string         `json:"created_by_user_id,omitempty" yaml:"created_by_user_id,omitempty"`
	HasComments     bool           `json:"has_comments" yaml:"has_comments"`
	Values          []MessageValue `json:"values" yaml:"values"`
}

// TextContent joins the string values published on the response channel
func (m Message) TextContent() string {
	var parts []string
	for _, value := range m.Values {
		if !value.InChannel(ChannelResponse) {
			continue
		}
		if text, ok := value.Text(); ok {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

// Prompt returns the text of the prompt input, if any
func (m Message) Prompt() string {
	for _, value := range m.Values {
		if value.Name == InputNamePrompt {
			if text, ok := value.Text(); ok {
				return text
			}
		}
	}
	return ""
}

type GetMessagesParams struct {
	ThreadID string
	Take     int
	Skip     int
}

type SendMessageParams struct {
	WorkspaceID string
	// ThreadID is empty to start a new thread
	ThreadID string
	Prompt   string
	FileIDs  []FileReference
}

type AddInputParams struct {
	MessageID string
	Name      string
	Value     any
}

// MessageHandler is called for every message record of a streamed reply, in order
type MessageHandler func(Message)

type MessageManager interface {
	GetMessages(ctx context.Context, params GetMessagesParams) ([]Message, error)
	// SendMessage blocks until the reply stream ends
	SendMessage(ctx context.Context, params SendMessageParams, handler MessageHandler) error
	AddInput(ctx context.Context, params AddInputParams, handler MessageHandler) error
}
