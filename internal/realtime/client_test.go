package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/smartspace/smartspace/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const waitTimeout = 2 * time.Second

func staticToken(token string) AccessTokenFunc {
	return func(ctx context.Context) (string, error) { return token, nil }
}

func newTestClient(h *hubServer, options ...Option) *Client {
	options = append([]Option{
		WithHTTPClient(h.server.Client()),
		WithAccessToken(staticToken("user-token")),
		WithReconnectDelays(0, 10*time.Millisecond),
	}, options...)
	return NewClient(h.hubURL(), options...)
}

// notify never blocks the hub's reader goroutine
func notify[T any](ch chan T, value T) {
	select {
	case ch <- value:
	default:
	}
}

func expectInvocation(t *testing.T, h *hubServer) hubMessage {
	t.Helper()
	select {
	case msg := <-h.invocations:
		return msg
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for invocation")
		return hubMessage{}
	}
}

func invocationGroup(t *testing.T, msg hubMessage) string {
	t.Helper()
	require.Len(t, msg.Arguments, 1)
	var group string
	require.NoError(t, json.Unmarshal(msg.Arguments[0], &group))
	return group
}

func TestSplitRecords(t *testing.T) {
	data := []byte("{\"type\":6}\x1e{\"type\":1,\"target\":\"x\"}\x1e")
	records := splitRecords(data)

	require.Len(t, records, 2)
	assert.Equal(t, `{"type":6}`, string(records[0]))

	assert.Empty(t, splitRecords([]byte("\x1e")))
}

func TestURLs(t *testing.T) {
	negotiate, err := negotiateURL("https://api.smartspace.ai/hubs/chat/")
	require.NoError(t, err)
	assert.Equal(t, "https://api.smartspace.ai/hubs/chat/negotiate?negotiateVersion=1", negotiate)

	ws, err := webSocketURL("https://api.smartspace.ai/hubs/chat", "abc")
	require.NoError(t, err)
	assert.Equal(t, "wss://api.smartspace.ai/hubs/chat?id=abc", ws)

	_, err = webSocketURL("ftp://example.com/hub", "abc")
	assert.Error(t, err)
}

func TestClient_InvokeWhenDisconnected(t *testing.T) {
	client := NewClient("http://127.0.0.1:1/hub")

	_, err := client.Invoke(context.Background(), "SubscribeToGroup", "w1")
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Equal(t, StateDisconnected, client.State())
}

func TestClient_StartFailsWhenNegotiateFails(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHubServer(t)
	defer h.Close()
	h.failNegotiate.Store(true)

	client := newTestClient(h)
	err := client.Start(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 503")
	assert.Equal(t, StateDisconnected, client.State())
}

func TestBridge_DispatchesEvents(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHubServer(t)
	defer h.Close()

	client := newTestClient(h)

	threads := make(chan domain.MessageThread, 1)
	deleted := make(chan string, 1)
	comments := make(chan domain.Comment, 1)
	notifications := make(chan domain.Notification, 1)

	bridge := NewBridge(BridgeDependencies{
		Hub: client,
		Handlers: EventHandlers{
			OnThreadUpdate:  func(thread domain.MessageThread) { threads <- thread },
			OnThreadDeleted: func(threadID string) { deleted <- threadID },
			OnCommentUpdate: func(comment domain.Comment) { comments <- comment },
			OnNotification:  func(n domain.Notification) { notifications <- n },
		},
		RetryDelay: time.Millisecond,
	})
	defer bridge.Close()

	require.NoError(t, client.Start(context.Background()))
	defer client.Stop()

	assert.Equal(t, StateConnected, client.State())

	require.NoError(t, bridge.SubscribeToGroup(context.Background(), "w1"))
	msg := expectInvocation(t, h)
	assert.Equal(t, MethodSubscribeToGroup, msg.Target)
	assert.Equal(t, "w1", invocationGroup(t, msg))
	assert.Equal(t, []string{"w1"}, bridge.Groups())

	h.broadcast(EventThreadUpdate, map[string]interface{}{
		"id": "t1", "name": "Renamed", "workSpaceId": "w1", "createdAt": "2024-05-01T10:00:00Z",
	})
	h.broadcast(EventThreadDeleted, "t2")
	h.broadcast(EventCommentUpdate, map[string]interface{}{"id": "c1", "content": "hi", "messageThreadId": "t1"})
	h.broadcast("receivenotification", map[string]interface{}{"id": "n1", "title": "Mentioned"})

	select {
	case thread := <-threads:
		assert.Equal(t, "Renamed", thread.Name)
		assert.Equal(t, "w1", thread.WorkspaceID)
	case <-time.After(waitTimeout):
		t.Fatal("no thread update")
	}
	select {
	case id := <-deleted:
		assert.Equal(t, "t2", id)
	case <-time.After(waitTimeout):
		t.Fatal("no thread deletion")
	}
	select {
	case comment := <-comments:
		assert.Equal(t, "t1", comment.ThreadID)
	case <-time.After(waitTimeout):
		t.Fatal("no comment update")
	}
	select {
	case n := <-notifications:
		assert.Equal(t, "Mentioned", n.Title)
	case <-time.After(waitTimeout):
		t.Fatal("no notification")
	}

	h.mu.Lock()
	assert.Equal(t, "Bearer user-token", h.negotiateTok[0])
	assert.Equal(t, "Bearer user-token", h.upgradeTok[0])
	h.mu.Unlock()

	require.NoError(t, bridge.UnsubscribeFromGroup(context.Background(), "w1"))
	msg = expectInvocation(t, h)
	assert.Equal(t, MethodUnsubscribeFromGroup, msg.Target)
	assert.Empty(t, bridge.Groups())
}

func TestBridge_ReconnectRejoinsGroups(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHubServer(t)
	defer h.Close()

	client := newTestClient(h)

	reconnecting := make(chan error, 1)
	reconnected := make(chan struct{}, 1)
	client.OnReconnecting(func(err error) { notify(reconnecting, err) })
	client.OnReconnected(func() { notify(reconnected, struct{}{}) })

	bridge := NewBridge(BridgeDependencies{Hub: client, RetryDelay: time.Millisecond})
	defer bridge.Close()

	require.NoError(t, client.Start(context.Background()))
	defer client.Stop()

	require.NoError(t, bridge.SubscribeToGroup(context.Background(), "w1"))
	require.NoError(t, bridge.SubscribeToGroup(context.Background(), "w2"))
	expectInvocation(t, h)
	expectInvocation(t, h)

	h.dropConnections()

	select {
	case err := <-reconnecting:
		assert.Error(t, err)
	case <-time.After(waitTimeout):
		t.Fatal("no reconnecting callback")
	}
	select {
	case <-reconnected:
	case <-time.After(waitTimeout):
		t.Fatal("no reconnected callback")
	}

	rejoined := []string{
		invocationGroup(t, expectInvocation(t, h)),
		invocationGroup(t, expectInvocation(t, h)),
	}
	assert.ElementsMatch(t, []string{"w1", "w2"}, rejoined)
	assert.EqualValues(t, 2, h.negotiations.Load())
	assert.Equal(t, StateConnected, client.State())
}

func TestClient_ClosesWhenReconnectExhausted(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHubServer(t)
	defer h.Close()

	client := newTestClient(h)

	closed := make(chan error, 1)
	client.OnClosed(func(err error) { notify(closed, err) })

	require.NoError(t, client.Start(context.Background()))
	defer client.Stop()

	h.failNegotiate.Store(true)
	h.dropConnections()

	select {
	case err := <-closed:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reconnect failed after 2 attempts")
	case <-time.After(waitTimeout):
		t.Fatal("connection did not close")
	}

	<-client.Done()
	assert.Equal(t, StateDisconnected, client.State())
	assert.EqualValues(t, 3, h.negotiations.Load())
}

func TestClient_ServerCloseWithoutReconnect(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHubServer(t)
	defer h.Close()

	client := newTestClient(h)

	closed := make(chan error, 1)
	client.OnClosed(func(err error) { notify(closed, err) })

	require.NoError(t, client.Start(context.Background()))
	defer client.Stop()

	h.sendClose("server shutting down", false)

	select {
	case err := <-closed:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server shutting down")
	case <-time.After(waitTimeout):
		t.Fatal("connection did not close")
	}
	assert.EqualValues(t, 1, h.negotiations.Load())
}

func TestClient_StopClosesCleanly(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHubServer(t)
	defer h.Close()

	client := newTestClient(h, WithKeepAlive(5*time.Millisecond, time.Second))

	closed := make(chan error, 1)
	client.OnClosed(func(err error) { notify(closed, err) })

	require.NoError(t, client.Start(context.Background()))
	assert.ErrorIs(t, client.Start(context.Background()), ErrAlreadyStarted)

	assert.Eventually(t, func() bool { return h.pings.Load() > 0 }, waitTimeout, 5*time.Millisecond)

	require.NoError(t, client.Stop())
	assert.NoError(t, <-closed)
	assert.Equal(t, StateDisconnected, client.State())
}

func TestClient_ServerTimeoutTriggersReconnect(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHubServer(t)
	defer h.Close()

	// pings far apart so the server stays silent past the timeout
	client := newTestClient(h, WithKeepAlive(time.Hour, 50*time.Millisecond))

	reconnecting := make(chan error, 10)
	client.OnReconnecting(func(err error) { notify(reconnecting, err) })

	require.NoError(t, client.Start(context.Background()))
	defer client.Stop()

	select {
	case err := <-reconnecting:
		assert.Error(t, err)
	case <-time.After(waitTimeout):
		t.Fatal("silent server did not trigger a reconnect")
	}
}

func TestNegotiateRedirect(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHubServer(t)
	defer h.Close()

	client := NewClient(h.server.URL+"/redirect",
		WithHTTPClient(h.server.Client()),
		WithAccessToken(staticToken("user-token")),
	)

	require.NoError(t, client.Start(context.Background()))
	require.NoError(t, client.Stop())

	h.mu.Lock()
	defer h.mu.Unlock()
	require.Len(t, h.upgradeTok, 1)
	assert.Equal(t, "Bearer redirected-token", h.upgradeTok[0])
	assert.Equal(t, "Bearer redirected-token", h.negotiateTok[0])
}

func TestBridge_SubscribeRetries(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHubServer(t)
	defer h.Close()

	client := newTestClient(h)
	bridge := NewBridge(BridgeDependencies{Hub: client, RetryDelay: time.Millisecond})
	defer bridge.Close()

	require.NoError(t, client.Start(context.Background()))
	defer client.Stop()

	h.failInvocations.Store(2)
	require.NoError(t, bridge.SubscribeToGroup(context.Background(), "w1"))
	assert.Equal(t, []string{"w1"}, bridge.Groups())

	h.failInvocations.Store(5)
	err := bridge.SubscribeToGroup(context.Background(), "w2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "group service unavailable")
	assert.Equal(t, []string{"w1"}, bridge.Groups())
}

func TestBridge_FailedUnsubscribeKeepsGroup(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := newHubServer(t)
	defer h.Close()

	client := newTestClient(h)
	bridge := NewBridge(BridgeDependencies{Hub: client, RetryDelay: time.Millisecond})
	defer bridge.Close()

	require.NoError(t, client.Start(context.Background()))
	defer client.Stop()

	require.NoError(t, bridge.SubscribeToGroup(context.Background(), "w1"))

	h.failInvocations.Store(DefaultGroupRetryAttempts)
	err := bridge.UnsubscribeFromGroup(context.Background(), "w1")
	require.Error(t, err)
	assert.Equal(t, []string{"w1"}, bridge.Groups())

	require.NoError(t, bridge.UnsubscribeFromGroup(context.Background(), "w1"))
	assert.Empty(t, bridge.Groups())
}
