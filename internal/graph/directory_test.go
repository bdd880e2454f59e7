package graph

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/microsoft/kiota-abstractions-go/authentication"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	"github.com/microsoftgraph/msgraph-sdk-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDirectory(t *testing.T, handler http.HandlerFunc) *Directory {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	adapter, err := msgraphsdk.NewGraphRequestAdapter(&authentication.AnonymousAuthenticationProvider{})
	require.NoError(t, err)
	adapter.SetBaseUrl(server.URL + "/v1.0")

	return NewDirectoryWithAdapter(adapter)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func TestDirectory_Me(t *testing.T) {
	directory := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1.0/me", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"id":"u1","displayName":"Ada Lovelace","mail":"ada@example.com","userPrincipalName":"ada@example.com"}`)
	})

	user, err := directory.Me(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "Ada Lovelace", user.DisplayName)
	assert.Equal(t, "ada@example.com", user.Mail)
	assert.Empty(t, user.JobTitle)
}

func TestDirectory_SearchUsers(t *testing.T) {
	directory := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1.0/users", r.URL.Path)
		assert.Equal(t, "eventual", r.Header.Get("ConsistencyLevel"))

		query := r.URL.Query()
		assert.Equal(t, "5", query.Get("$top"))
		assert.Contains(t, query.Get("$filter"), "startswith(displayName,'O''Brien')")

		writeJSON(w, http.StatusOK, `{"value":[{"id":"u2","displayName":"Pat O'Brien"},{"id":"u3","displayName":"O'Brien Team"}]}`)
	})

	found, err := directory.SearchUsers(context.Background(), "O'Brien", 5)
	require.NoError(t, err)

	require.Len(t, found, 2)
	assert.Equal(t, "u2", found[0].ID)
	assert.Equal(t, "u2", found[0].Mention().ID)

	_, err = directory.SearchUsers(context.Background(), "  ", 5)
	assert.Error(t, err)
}

func TestDirectory_ODataError(t *testing.T) {
	directory := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"error":{"code":"Request_ResourceNotFound","message":"User does not exist."}}`)
	})

	_, err := directory.Me(context.Background())
	require.Error(t, err)

	var graphErr *Error
	require.True(t, errors.As(err, &graphErr))
	assert.Equal(t, "Request_ResourceNotFound", graphErr.Code)
	assert.Equal(t, "User does not exist.", graphErr.Message)
}

func TestODataErrorParser_PlainError(t *testing.T) {
	parser := &ODataErrorParser{}
	details := parser.ParseError(errors.New("dial tcp: timeout"))

	assert.Equal(t, "UnknownError", details.Code)
	assert.Equal(t, "dial tcp: timeout", details.Message)
}

func TestToRawJSON(t *testing.T) {
	user := models.NewUser()
	name := "Ada Lovelace"
	user.SetDisplayName(&name)

	raw, err := ToRawJSON(user)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", raw["displayName"])

	plain, err := ToRawJSON(struct {
		Name string `json:"name"`
	}{Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", plain["name"])
}
