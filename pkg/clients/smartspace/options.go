package smartspace

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// ClientOption represents an option for configuring the SmartSpace client
type ClientOption func(*ClientConfig)

// ClientConfig holds the configuration for the SmartSpace client
type ClientConfig struct {
	BaseURL        string
	Timeout        time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	DefaultHeaders map[string]string
	HTTPClient     *http.Client
	TokenSource    oauth2.TokenSource
	UserAgent      string
	Logger         zerolog.Logger
}

// DefaultConfig returns the default configuration. Retries are off: failed
// requests surface to the caller immediately.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:       "https://api.smartspace.ai",
		Timeout:       30 * time.Second,
		RetryAttempts: 0,
		RetryDelay:    1 * time.Second,
		DefaultHeaders: map[string]string{
			"Accept": "application/json",
		},
		UserAgent: "smartspace-go-sdk/1.0.0",
		Logger:    log.Logger,
	}
}

// WithBaseURL sets the base URL for the SmartSpace API
func WithBaseURL(baseURL string) ClientOption {
	return func(c *ClientConfig) {
		c.BaseURL = baseURL
	}
}

// WithTimeout sets the request timeout. Streaming requests ignore it.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// WithRetry enables retries on server and transport errors
func WithRetry(attempts int, delay time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.RetryAttempts = attempts
		c.RetryDelay = delay
	}
}

// WithHeader adds a default header to all requests
func WithHeader(key, value string) ClientOption {
	return func(c *ClientConfig) {
		if c.DefaultHeaders == nil {
			c.DefaultHeaders = make(map[string]string)
		}
		c.DefaultHeaders[key] = value
	}
}

// WithHeaders sets multiple default headers
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *ClientConfig) {
		if c.DefaultHeaders == nil {
			c.DefaultHeaders = make(map[string]string)
		}
		for key, value := range headers {
			c.DefaultHeaders[key] = value
		}
	}
}

// WithHTTPClient sets a custom HTTP client. A token source configured with
// WithTokenSource wraps the client's transport.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *ClientConfig) {
		c.HTTPClient = httpClient
	}
}

// WithTokenSource sets the source of bearer tokens attached to every request
func WithTokenSource(ts oauth2.TokenSource) ClientOption {
	return func(c *ClientConfig) {
		c.TokenSource = ts
	}
}

// WithUserAgent sets a custom user agent
func WithUserAgent(userAgent string) ClientOption {
	return func(c *ClientConfig) {
		c.UserAgent = userAgent
	}
}

// WithLogger sets the logger used by the client
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *ClientConfig) {
		c.Logger = logger
	}
}
