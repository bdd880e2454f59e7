package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	DefaultPingInterval  = 15 * time.Second
	DefaultServerTimeout = 30 * time.Second

	writeTimeout       = 10 * time.Second
	maxNegotiateRedirs = 100
)

// DefaultReconnectDelays are the waits before each reconnect attempt
var DefaultReconnectDelays = []time.Duration{0, 2 * time.Second, 10 * time.Second, 30 * time.Second}

var (
	ErrNotConnected     = errors.New("hub connection is not connected")
	ErrConnectionClosed = errors.New("hub connection closed")
	ErrAlreadyStarted   = errors.New("hub connection already started")
)

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

// AccessTokenFunc returns the bearer token used to negotiate with the hub
type AccessTokenFunc func(ctx context.Context) (string, error)

type Option func(*Client)

func WithAccessToken(fn AccessTokenFunc) Option {
	return func(c *Client) {
		c.accessToken = fn
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

func WithReconnectDelays(delays ...time.Duration) Option {
	return func(c *Client) {
		c.reconnectDelays = delays
	}
}

func WithKeepAlive(pingInterval, serverTimeout time.Duration) Option {
	return func(c *Client) {
		c.pingInterval = pingInterval
		c.serverTimeout = serverTimeout
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

type invocationResult struct {
	result json.RawMessage
	err    error
}

// Client is a SignalR hub connection speaking the JSON protocol over
// websockets, with automatic reconnect.
//
// Handlers and state callbacks run on the connection's reader goroutine.
// They must not wait on Invoke, since completions are read by that goroutine.
type Client struct {
	hubURL          string
	accessToken     AccessTokenFunc
	httpClient      *http.Client
	dialer          *websocket.Dialer
	logger          zerolog.Logger
	reconnectDelays []time.Duration
	pingInterval    time.Duration
	serverTimeout   time.Duration

	callbacksMu    sync.RWMutex
	handlers       map[string][]func([]json.RawMessage)
	onReconnecting []func(error)
	onReconnected  []func()
	onClosed       []func(error)

	mu       sync.Mutex
	state    State
	conn     *websocket.Conn
	pending  map[string]chan invocationResult
	cancel   context.CancelFunc
	done     chan struct{}
	stopping bool

	writeMu sync.Mutex
}

func NewClient(hubURL string, options ...Option) *Client {
	c := &Client{
		hubURL:          hubURL,
		httpClient:      http.DefaultClient,
		dialer:          websocket.DefaultDialer,
		logger:          zerolog.Nop(),
		reconnectDelays: DefaultReconnectDelays,
		pingInterval:    DefaultPingInterval,
		serverTimeout:   DefaultServerTimeout,
		handlers:        make(map[string][]func([]json.RawMessage)),
		pending:         make(map[string]chan invocationResult),
	}

	for _, option := range options {
		option(c)
	}

	return c
}

// On registers a handler for a server-to-client method. Method names are
// matched case-insensitively.
func (c *Client) On(target string, handler func(args []json.RawMessage)) {
	c.callbacksMu.Lock()
	defer c.callbacksMu.Unlock()

	key := strings.ToLower(target)
	c.handlers[key] = append(c.handlers[key], handler)
}

func (c *Client) OnReconnecting(fn func(err error)) {
	c.callbacksMu.Lock()
	defer c.callbacksMu.Unlock()
	c.onReconnecting = append(c.onReconnecting, fn)
}

func (c *Client) OnReconnected(fn func()) {
	c.callbacksMu.Lock()
	defer c.callbacksMu.Unlock()
	c.onReconnected = append(c.onReconnected, fn)
}

// OnClosed is called once the connection is closed for good. err is nil
// after Stop.
func (c *Client) OnClosed(fn func(err error)) {
	c.callbacksMu.Lock()
	defer c.callbacksMu.Unlock()
	c.onClosed = append(c.onClosed, fn)
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done is closed when the connection has closed for good
func (c *Client) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Start connects to the hub. A failure of the first connection is returned
// and not retried.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.state = StateConnecting
	c.mu.Unlock()

	conn, err := c.connect(ctx)
	if err != nil {
		c.setState(StateDisconnected, nil)
		return fmt.Errorf("failed to connect to hub: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.mu.Lock()
	c.conn = conn
	c.state = StateConnected
	c.cancel = cancel
	c.done = done
	c.stopping = false
	c.mu.Unlock()

	c.logger.Info().Str("hub", c.hubURL).Msg("Connected to hub")

	go c.run(runCtx, conn, done)

	return nil
}

// Stop closes the connection and waits for its goroutines to exit
func (c *Client) Stop() error {
	c.mu.Lock()
	if c.cancel == nil {
		c.mu.Unlock()
		return nil
	}
	c.stopping = true
	conn, cancel, done := c.conn, c.cancel, c.done
	c.mu.Unlock()

	if conn != nil {
		c.writeMu.Lock()
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeTimeout),
		)
		c.writeMu.Unlock()
	}

	cancel()
	<-done

	return nil
}

// Invoke calls a hub method and waits for its completion
func (c *Client) Invoke(ctx context.Context, method string, args ...interface{}) (json.RawMessage, error) {
	c.mu.Lock()
	conn := c.conn
	if c.state != StateConnected || conn == nil {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}

	invocationID := uuid.NewString()
	results := make(chan invocationResult, 1)
	c.pending[invocationID] = results
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, invocationID)
		c.mu.Unlock()
	}()

	if args == nil {
		args = []interface{}{}
	}

	payload, err := json.Marshal(invocationMessage{
		Type:         messageTypeInvocation,
		InvocationID: invocationID,
		Target:       method,
		Arguments:    args,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal invocation: %w", err)
	}

	if err := c.write(conn, payload); err != nil {
		return nil, fmt.Errorf("failed to send invocation: %w", err)
	}

	select {
	case result := <-results:
		return result.result, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) run(ctx context.Context, conn *websocket.Conn, done chan struct{}) {
	defer close(done)

	for {
		err := c.serve(ctx, conn)
		c.failPending(ErrConnectionClosed)

		if ctx.Err() != nil || c.isStopping() {
			c.closed(nil)
			return
		}

		var closeErr *closeError
		if errors.As(err, &closeErr) && !closeErr.allowReconnect {
			c.closed(err)
			return
		}

		c.logger.Warn().Err(err).Msg("Hub connection lost")

		conn = c.reconnect(ctx, err)
		if conn == nil {
			return
		}
	}
}

// serve reads from conn until it fails
func (c *Client) serve(ctx context.Context, conn *websocket.Conn) error {
	connCtx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.keepAlive(connCtx, conn)
	}()
	go func() {
		defer wg.Done()
		<-connCtx.Done()
		conn.Close()
	}()

	defer func() {
		cancel()
		wg.Wait()
	}()

	for {
		conn.SetReadDeadline(time.Now().Add(c.serverTimeout))

		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		for _, record := range splitRecords(data) {
			if err := c.dispatch(record); err != nil {
				return err
			}
		}
	}
}

func (c *Client) keepAlive(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.write(conn, pingMessage); err != nil {
				c.logger.Debug().Err(err).Msg("Failed to send hub ping")
				return
			}
		}
	}
}

func (c *Client) reconnect(ctx context.Context, cause error) *websocket.Conn {
	c.setState(StateReconnecting, nil)
	c.emitReconnecting(cause)

	for attempt, delay := range c.reconnectDelays {
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				c.closed(nil)
				return nil
			}
		}

		conn, err := c.connect(ctx)
		if err == nil {
			c.setState(StateConnected, conn)
			c.logger.Info().Int("attempt", attempt+1).Msg("Reconnected to hub")
			c.emitReconnected()
			return conn
		}

		if ctx.Err() != nil {
			c.closed(nil)
			return nil
		}

		cause = err
		c.logger.Warn().Err(err).Int("attempt", attempt+1).Msg("Hub reconnect attempt failed")
	}

	c.closed(fmt.Errorf("reconnect failed after %d attempts: %w", len(c.reconnectDelays), cause))
	return nil
}

func (c *Client) connect(ctx context.Context) (*websocket.Conn, error) {
	token := ""
	if c.accessToken != nil {
		var err error
		token, err = c.accessToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get hub access token: %w", err)
		}
	}

	wsURL, wsToken, err := c.negotiate(ctx, token)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	if wsToken != "" {
		header.Set("Authorization", "Bearer "+wsToken)
	}

	conn, resp, err := c.dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("failed to open hub websocket: %w", err)
	}

	if err := c.handshake(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}

func (c *Client) negotiate(ctx context.Context, token string) (string, string, error) {
	target := c.hubURL

	for redirects := 0; redirects < maxNegotiateRedirs; redirects++ {
		endpoint, err := negotiateURL(target)
		if err != nil {
			return "", "", err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
		if err != nil {
			return "", "", fmt.Errorf("failed to create negotiate request: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return "", "", fmt.Errorf("failed to negotiate: %w", err)
		}

		var negotiation negotiateResponse
		decodeErr := json.NewDecoder(resp.Body).Decode(&negotiation)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return "", "", fmt.Errorf("negotiate failed: HTTP %d", resp.StatusCode)
		}
		if decodeErr != nil {
			return "", "", fmt.Errorf("failed to decode negotiate response: %w", decodeErr)
		}
		if negotiation.Error != "" {
			return "", "", fmt.Errorf("negotiate failed: %s", negotiation.Error)
		}

		if negotiation.URL != "" {
			c.logger.Debug().Str("url", negotiation.URL).Msg("Hub negotiate redirected")
			target = negotiation.URL
			token = negotiation.AccessToken
			continue
		}

		if !negotiation.supportsWebSockets() {
			return "", "", fmt.Errorf("hub does not offer the websocket transport")
		}

		wsURL, err := webSocketURL(target, negotiation.connectionID())
		if err != nil {
			return "", "", err
		}

		return wsURL, token, nil
	}

	return "", "", fmt.Errorf("negotiate exceeded %d redirects", maxNegotiateRedirs)
}

func (c *Client) handshake(conn *websocket.Conn) error {
	if err := c.write(conn, handshakeRequest); err != nil {
		return fmt.Errorf("failed to send handshake: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(c.serverTimeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read handshake response: %w", err)
	}

	records := splitRecords(data)
	if len(records) == 0 {
		return fmt.Errorf("empty handshake response")
	}

	var response handshakeResponse
	if err := json.Unmarshal(records[0], &response); err != nil {
		return fmt.Errorf("invalid handshake response: %w", err)
	}
	if response.Error != "" {
		return fmt.Errorf("hub rejected handshake: %s", response.Error)
	}

	for _, record := range records[1:] {
		if err := c.dispatch(record); err != nil {
			return err
		}
	}

	return nil
}

func (c *Client) dispatch(record []byte) error {
	var msg hubMessage
	if err := json.Unmarshal(record, &msg); err != nil {
		c.logger.Warn().Err(err).Msg("Skipping malformed hub message")
		return nil
	}

	switch msg.Type {
	case messageTypeInvocation:
		c.callbacksMu.RLock()
		handlers := c.handlers[strings.ToLower(msg.Target)]
		c.callbacksMu.RUnlock()

		if len(handlers) == 0 {
			c.logger.Debug().Str("target", msg.Target).Msg("No handler for hub method")
		}
		for _, handler := range handlers {
			handler(msg.Arguments)
		}
	case messageTypeCompletion:
		c.complete(msg)
	case messageTypePing:
	case messageTypeClose:
		return &closeError{message: msg.Error, allowReconnect: msg.AllowReconnect}
	default:
		c.logger.Debug().Int("type", msg.Type).Msg("Ignoring hub message")
	}

	return nil
}

func (c *Client) complete(msg hubMessage) {
	c.mu.Lock()
	results, ok := c.pending[msg.InvocationID]
	delete(c.pending, msg.InvocationID)
	c.mu.Unlock()

	if !ok {
		return
	}

	if msg.Error != "" {
		results <- invocationResult{err: fmt.Errorf("hub method failed: %s", msg.Error)}
		return
	}
	results <- invocationResult{result: msg.Result}
}

func (c *Client) failPending(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, results := range c.pending {
		results <- invocationResult{err: err}
		delete(c.pending, id)
	}
}

func (c *Client) write(conn *websocket.Conn, payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, frameRecord(payload))
}

func (c *Client) setState(state State, conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
	c.conn = conn
}

func (c *Client) isStopping() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopping
}

func (c *Client) closed(err error) {
	c.setState(StateDisconnected, nil)

	if err != nil {
		c.logger.Error().Err(err).Msg("Hub connection closed")
	} else {
		c.logger.Info().Msg("Hub connection closed")
	}

	c.callbacksMu.RLock()
	callbacks := append([]func(error){}, c.onClosed...)
	c.callbacksMu.RUnlock()

	for _, fn := range callbacks {
		fn(err)
	}
}

func (c *Client) emitReconnecting(err error) {
	c.callbacksMu.RLock()
	callbacks := append([]func(error){}, c.onReconnecting...)
	c.callbacksMu.RUnlock()

	for _, fn := range callbacks {
		fn(err)
	}
}

func (c *Client) emitReconnected() {
	c.callbacksMu.RLock()
	callbacks := append([]func(){}, c.onReconnected...)
	c.callbacksMu.RUnlock()

	for _, fn := range callbacks {
		fn()
	}
}
