package smartspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, options ...ClientOption) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts := append([]ClientOption{
		WithBaseURL(server.URL),
		WithLogger(zerolog.Nop()),
		WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})),
	}, options...)

	return NewClient(opts...)
}

func TestClient_GetWorkspaces(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/workspaces", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id":"w1","name":"Research","tags":["ai"],"supportsFiles":true,"firstPrompt":null}]`)
	})

	workspaces, err := client.GetWorkspaces(context.Background())
	require.NoError(t, err)
	require.Len(t, workspaces, 1)
	assert.Equal(t, "Research", workspaces[0].Name)
	assert.True(t, workspaces[0].SupportsFiles)
	assert.Nil(t, workspaces[0].FirstPrompt)
}

func TestClient_GetMessageThreads(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/workspaces/w1/messagethreads", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("take"))
		assert.Equal(t, "40", r.URL.Query().Get("skip"))

		fmt.Fprint(w, `{"data":[{"id":"t1","name":"Hello","workSpaceId":"w1","totalMessages":3,"favorited":true}],"total":41}`)
	})

	page, err := client.GetMessageThreads(context.Background(), &GetMessageThreadsRequest{
		WorkspaceID: "w1",
		Take:        20,
		Skip:        40,
	})
	require.NoError(t, err)
	assert.Equal(t, 41, page.Total)
	require.Len(t, page.Data, 1)
	assert.True(t, page.Data[0].Favorited)
	assert.Equal(t, 3, page.Data[0].TotalMessages)
}

func TestClient_ErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		kind     ErrorKind
		message  string
	}{
		{name: "unauthorized", status: 401, body: `{"message":"token expired"}`, kind: KindUnauthorized, message: "token expired"},
		{name: "forbidden", status: 403, body: ``, kind: KindForbidden, message: "HTTP 403"},
		{name: "not found", status: 404, body: `{"error":"no such workspace"}`, kind: KindNotFound, message: "no such workspace"},
		{name: "conflict", status: 409, body: `{"title":"Conflict"}`, kind: KindConflict, message: "Conflict"},
		{name: "rate limited", status: 429, body: ``, kind: KindRateLimited, message: "HTTP 429"},
		{name: "bad request", status: 400, body: `{"title":"One or more validation errors occurred.","detail":"name is required"}`, kind: KindValidationError, message: "name is required"},
		{name: "unprocessable", status: 422, body: ``, kind: KindValidationError, message: "HTTP 422"},
		{name: "server error", status: 500, body: ``, kind: KindUnknownError, message: "HTTP 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Request-ID", "req-1")
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := client.GetWorkspace(context.Background(), "w1")
			require.Error(t, err)

			apiErr, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, "req-1", apiErr.RequestID)
			assert.NotEmpty(t, apiErr.UserMessage())
		})
	}
}

func TestClient_NoRetryByDefault(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.GetModels(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.True(t, IsRetryableError(err))
}

func TestClient_RetryWhenEnabled(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `[{"id":"m1","name":"gpt-4o"}]`)
	}, WithRetry(2, time.Millisecond))

	models, err := client.GetModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_SchemaValidationFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name":"no id here"}`)
	})

	_, err := client.GetWorkspace(context.Background(), "w1")
	require.Error(t, err)
	assert.Equal(t, KindValidationError, KindOf(err))
}

type failingTokenSource struct{}

func (failingTokenSource) Token() (*oauth2.Token, error) {
	return nil, fmt.Errorf("interaction required: %w", ErrTokenUnavailable)
}

func TestClient_TokenFailureIsUnauthorized(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}, WithTokenSource(failingTokenSource{}), WithRetry(3, time.Millisecond))

	_, err := client.GetWorkspaces(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindUnauthorized, KindOf(err))
	assert.True(t, errors.Is(err, ErrTokenUnavailable))
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client := NewClient(WithBaseURL(baseURL), WithLogger(zerolog.Nop()))

	_, err := client.GetWorkspaces(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindNetworkError, KindOf(err))
}

func TestClient_AddComment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/messagethreads/t1/comments", r.URL.Path)

		var req AddCommentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "looks good @Ada", req.Content)
		require.Len(t, req.MentionedUsers, 1)

		fmt.Fprint(w, `{"id":"c1","content":"looks good @Ada","messageThreadId":"t1","mentionedUsers":[{"id":"u1","displayName":"Ada"}]}`)
	})

	comment, err := client.AddComment(context.Background(), "t1", &AddCommentRequest{
		Content:        "looks good @Ada",
		MentionedUsers: []MentionedUser{{ID: "u1", DisplayName: "Ada"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", comment.ID)

	_, err = client.AddComment(context.Background(), "t1", &AddCommentRequest{Content: "  "})
	assert.Error(t, err)
}

func TestClient_GetNotificationsQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("unreadOnly"))
		assert.Equal(t, "5", r.URL.Query().Get("take"))
		fmt.Fprint(w, `{"data":[{"id":"n1","title":"Ada mentioned you","readAt":null}],"total":1,"unreadCount":1}`)
	})

	page, err := client.GetNotifications(context.Background(), &GetNotificationsRequest{Take: 5, UnreadOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 1, page.UnreadCount)
	assert.Nil(t, page.Data[0].ReadAt)
}

func TestClient_PostMessageStreams(t *testing.T) {
	release := make(chan struct{})

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		var req PostMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "w1", req.WorkSpaceID)
		assert.Nil(t, req.MessageThreadID)

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)

		fmt.Fprint(w, `data:{"id":"m1","messageThreadId":"t1","values":[{"name":"prompt","type":"String","value":"hi","channels":{"input":1}}]}`+"\n\n")
		fmt.Fprint(w, `data:{"id":"m2","messageThreadId":"t1","values":[{"name":"response","type":"String","value":"Hel`)
		flusher.Flush()

		<-release

		fmt.Fprint(w, `lo"}]}`+"\n\n")
		flusher.Flush()
	})

	stream, err := client.PostMessage(context.Background(), &PostMessageRequest{
		WorkSpaceID: "w1",
		Inputs:      []MessageInput{{Name: "prompt", Value: "hi"}},
	})
	require.NoError(t, err)

	received := make(chan Message, 4)
	stream.Subscribe(MessageObserver{OnMessage: func(m Message) { received <- m }})

	select {
	case msg := <-received:
		assert.Equal(t, "m1", msg.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("first message was not delivered before the request finished")
	}

	select {
	case msg := <-received:
		t.Fatalf("partial record delivered early: %s", msg.ID)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)

	messages, err := stream.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, `"Hello"`, string(messages[1].Values[0].Value))
}

func TestClient_PostMessageHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"message":"workspace is read only"}`)
	})

	stream, err := client.PostMessage(context.Background(), &PostMessageRequest{
		WorkSpaceID: "w1",
		Inputs:      []MessageInput{{Name: "prompt", Value: "hi"}},
	})
	require.Error(t, err)
	assert.Nil(t, stream)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestClient_UploadAndDownloadFiles(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/files":
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "t1", r.FormValue("threadId"))
			files := r.MultipartForm.File["files"]
			require.Len(t, files, 1)
			assert.Equal(t, "notes.txt", files[0].Filename)
			fmt.Fprint(w, `[{"id":"f1","name":"notes.txt","contentType":"text/plain","size":5}]`)
		case "/files/f1/download":
			w.Header().Set("Content-Disposition", `attachment; filename="notes.txt"`)
			w.Header().Set("Content-Type", "text/plain")
			io.WriteString(w, "hello")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	infos, err := client.UploadFiles(context.Background(), &UploadFilesRequest{
		Scope: FileScope{ThreadID: "t1"},
		Files: []UploadFile{{Name: "notes.txt", ContentType: "text/plain", Reader: strings.NewReader("hello")}},
	})
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, int64(5), infos[0].Size)

	download, err := client.DownloadFile(context.Background(), "f1")
	require.NoError(t, err)
	defer download.Content.Close()

	content, err := io.ReadAll(download.Content)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
	assert.Equal(t, "notes.txt", download.FileName)

	_, err = client.DownloadFile(context.Background(), "missing")
	assert.True(t, IsNotFound(err))
}
