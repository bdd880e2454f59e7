package realtime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

const recordSeparator = 0x1e

const (
	messageTypeInvocation = 1
	messageTypeCompletion = 3
	messageTypePing       = 6
	messageTypeClose      = 7
)

var (
	handshakeRequest = []byte(`{"protocol":"json","version":1}`)
	pingMessage      = []byte(`{"type":6}`)
)

// hubMessage is any message received from the hub
type hubMessage struct {
	Type           int               `json:"type"`
	InvocationID   string            `json:"invocationId,omitempty"`
	Target         string            `json:"target,omitempty"`
	Arguments      []json.RawMessage `json:"arguments,omitempty"`
	Result         json.RawMessage   `json:"result,omitempty"`
	Error          string            `json:"error,omitempty"`
	AllowReconnect bool              `json:"allowReconnect,omitempty"`
}

type invocationMessage struct {
	Type         int           `json:"type"`
	InvocationID string        `json:"invocationId,omitempty"`
	Target       string        `json:"target"`
	Arguments    []interface{} `json:"arguments"`
}

type handshakeResponse struct {
	Error string `json:"error,omitempty"`
}

// closeError is raised when the hub sends a close message
type closeError struct {
	message        string
	allowReconnect bool
}

func (e *closeError) Error() string {
	if e.message == "" {
		return "hub closed the connection"
	}
	return fmt.Sprintf("hub closed the connection: %s", e.message)
}

// splitRecords splits a websocket frame into its separator-terminated records
func splitRecords(data []byte) [][]byte {
	var records [][]byte
	for _, record := range bytes.Split(data, []byte{recordSeparator}) {
		if len(bytes.TrimSpace(record)) == 0 {
			continue
		}
		records = append(records, record)
	}
	return records
}

func frameRecord(payload []byte) []byte {
	framed := make([]byte, 0, len(payload)+1)
	framed = append(framed, payload...)
	return append(framed, recordSeparator)
}

type negotiateResponse struct {
	ConnectionID        string `json:"connectionId"`
	ConnectionToken     string `json:"connectionToken"`
	NegotiateVersion    int    `json:"negotiateVersion"`
	URL                 string `json:"url"`
	AccessToken         string `json:"accessToken"`
	Error               string `json:"error"`
	AvailableTransports []struct {
		Transport       string   `json:"transport"`
		TransferFormats []string `json:"transferFormats"`
	} `json:"availableTransports"`
}

func (r negotiateResponse) connectionID() string {
	if r.NegotiateVersion >= 1 && r.ConnectionToken != "" {
		return r.ConnectionToken
	}
	return r.ConnectionID
}

func (r negotiateResponse) supportsWebSockets() bool {
	if len(r.AvailableTransports) == 0 {
		return true
	}
	for _, transport := range r.AvailableTransports {
		if transport.Transport == "WebSockets" {
			return true
		}
	}
	return false
}

func negotiateURL(hubURL string) (string, error) {
	u, err := url.Parse(hubURL)
	if err != nil {
		return "", fmt.Errorf("invalid hub url: %w", err)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/negotiate"
	query := u.Query()
	query.Set("negotiateVersion", "1")
	u.RawQuery = query.Encode()

	return u.String(), nil
}

func webSocketURL(hubURL, connectionID string) (string, error) {
	u, err := url.Parse(hubURL)
	if err != nil {
		return "", fmt.Errorf("invalid hub url: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported hub url scheme: %s", u.Scheme)
	}

	if connectionID != "" {
		query := u.Query()
		query.Set("id", connectionID)
		u.RawQuery = query.Encode()
	}

	return u.String(), nil
}
