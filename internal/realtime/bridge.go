package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/smartspace/smartspace/pkg/clients/smartspace"
	"github.com/smartspace/smartspace/pkg/domain"
	"github.com/smartspace/smartspace/pkg/domain/mappers"
)

const (
	MethodSubscribeToGroup     = "SubscribeToGroup"
	MethodUnsubscribeFromGroup = "UnsubscribeFromGroup"

	EventThreadUpdate  = "ReceiveThreadUpdate"
	EventThreadDeleted = "ReceiveThreadDeleted"
	EventCommentUpdate = "ReceiveCommentUpdate"
	EventNotification  = "ReceiveNotification"

	DefaultGroupRetryAttempts = 3
	DefaultGroupRetryDelay    = time.Second

	groupInvokeTimeout = 15 * time.Second
)

// Hub is the part of a hub connection the bridge needs
type Hub interface {
	On(target string, handler func(args []json.RawMessage))
	OnReconnected(fn func())
	Invoke(ctx context.Context, method string, args ...interface{}) (json.RawMessage, error)
}

// EventHandlers receive decoded hub events. Any handler may be nil.
type EventHandlers struct {
	OnThreadUpdate  func(domain.MessageThread)
	OnThreadDeleted func(threadID string)
	OnCommentUpdate func(domain.Comment)
	OnNotification  func(domain.Notification)
}

// Bridge turns hub events into domain updates and keeps workspace group
// memberships across reconnects
type Bridge struct {
	hub           Hub
	handlers      EventHandlers
	retryAttempts int
	retryDelay    time.Duration
	logger        zerolog.Logger

	mu     sync.Mutex
	groups map[string]struct{}
	closed bool

	ctx     context.Context
	cancel  context.CancelFunc
	rejoins sync.WaitGroup
}

type BridgeDependencies struct {
	Hub           Hub
	Handlers      EventHandlers
	RetryAttempts int
	RetryDelay    time.Duration
	Logger        zerolog.Logger
}

func NewBridge(deps BridgeDependencies) *Bridge {
	ctx, cancel := context.WithCancel(context.Background())

	b := &Bridge{
		hub:           deps.Hub,
		handlers:      deps.Handlers,
		retryAttempts: deps.RetryAttempts,
		retryDelay:    deps.RetryDelay,
		logger:        deps.Logger,
		groups:        make(map[string]struct{}),
		ctx:           ctx,
		cancel:        cancel,
	}

	if b.retryAttempts <= 0 {
		b.retryAttempts = DefaultGroupRetryAttempts
	}
	if b.retryDelay == 0 {
		b.retryDelay = DefaultGroupRetryDelay
	}

	b.hub.On(EventThreadUpdate, b.handleThreadUpdate)
	b.hub.On(EventThreadDeleted, b.handleThreadDeleted)
	b.hub.On(EventCommentUpdate, b.handleCommentUpdate)
	b.hub.On(EventNotification, b.handleNotification)
	b.hub.OnReconnected(b.rejoin)

	return b
}

// SubscribeToGroup joins the update group of a workspace
func (b *Bridge) SubscribeToGroup(ctx context.Context, workspaceID string) error {
	if err := b.invokeWithRetry(ctx, MethodSubscribeToGroup, workspaceID); err != nil {
		return fmt.Errorf("failed to subscribe to group %s: %w", workspaceID, err)
	}

	b.mu.Lock()
	b.groups[workspaceID] = struct{}{}
	b.mu.Unlock()

	return nil
}

// UnsubscribeFromGroup leaves the update group of a workspace
func (b *Bridge) UnsubscribeFromGroup(ctx context.Context, workspaceID string) error {
	// The group stays tracked until the server confirms, since a failed
	// call leaves the connection in it
	if err := b.invokeWithRetry(ctx, MethodUnsubscribeFromGroup, workspaceID); err != nil {
		return fmt.Errorf("failed to unsubscribe from group %s: %w", workspaceID, err)
	}

	b.mu.Lock()
	delete(b.groups, workspaceID)
	b.mu.Unlock()

	return nil
}

// Groups returns the joined groups in sorted order
func (b *Bridge) Groups() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	groups := make([]string, 0, len(b.groups))
	for group := range b.groups {
		groups = append(groups, group)
	}
	sort.Strings(groups)
	return groups
}

// Close stops pending rejoins and waits for them to finish
func (b *Bridge) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	b.rejoins.Wait()
}

// rejoin runs on the hub's reader goroutine, so the invocations happen on
// their own goroutine
func (b *Bridge) rejoin() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	groups := make([]string, 0, len(b.groups))
	for group := range b.groups {
		groups = append(groups, group)
	}
	b.rejoins.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.rejoins.Done()

		for _, group := range groups {
			if err := b.invokeWithRetry(b.ctx, MethodSubscribeToGroup, group); err != nil {
				b.logger.Error().Err(err).Str("group", group).Msg("Failed to rejoin group after reconnect")
				continue
			}
			b.logger.Debug().Str("group", group).Msg("Rejoined group")
		}
	}()
}

func (b *Bridge) invokeWithRetry(ctx context.Context, method, group string) error {
	delay := b.retryDelay
	var lastErr error

	for attempt := 1; attempt <= b.retryAttempts; attempt++ {
		invokeCtx, cancel := context.WithTimeout(ctx, groupInvokeTimeout)
		_, err := b.hub.Invoke(invokeCtx, method, group)
		cancel()

		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == b.retryAttempts {
			break
		}

		b.logger.Warn().Err(err).Str("method", method).Int("attempt", attempt).Msg("Group invocation failed, retrying")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}

	return lastErr
}

func decodeArgument(args []json.RawMessage, target interface{}) error {
	if len(args) == 0 {
		return fmt.Errorf("missing argument")
	}
	return json.Unmarshal(args[0], target)
}

func (b *Bridge) handleThreadUpdate(args []json.RawMessage) {
	var thread smartspace.MessageThread
	if err := decodeArgument(args, &thread); err != nil {
		b.logger.Warn().Err(err).Str("event", EventThreadUpdate).Msg("Skipping malformed hub event")
		return
	}
	if b.handlers.OnThreadUpdate != nil {
		b.handlers.OnThreadUpdate(mappers.SmartSpaceThreadToDomain(thread))
	}
}

func (b *Bridge) handleThreadDeleted(args []json.RawMessage) {
	var threadID string
	if err := decodeArgument(args, &threadID); err != nil {
		b.logger.Warn().Err(err).Str("event", EventThreadDeleted).Msg("Skipping malformed hub event")
		return
	}
	if b.handlers.OnThreadDeleted != nil {
		b.handlers.OnThreadDeleted(threadID)
	}
}

func (b *Bridge) handleCommentUpdate(args []json.RawMessage) {
	var comment smartspace.Comment
	if err := decodeArgument(args, &comment); err != nil {
		b.logger.Warn().Err(err).Str("event", EventCommentUpdate).Msg("Skipping malformed hub event")
		return
	}
	if b.handlers.OnCommentUpdate != nil {
		b.handlers.OnCommentUpdate(mappers.SmartSpaceCommentToDomain(comment))
	}
}

func (b *Bridge) handleNotification(args []json.RawMessage) {
	var notification smartspace.Notification
	if err := decodeArgument(args, &notification); err != nil {
		b.logger.Warn().Err(err).Str("event", EventNotification).Msg("Skipping malformed hub event")
		return
	}
	if b.handlers.OnNotification != nil {
		b.handlers.OnNotification(mappers.SmartSpaceNotificationToDomain(notification))
	}
}
