package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	abstractions "github.com/microsoft/kiota-abstractions-go"
	auth "github.com/microsoft/kiota-authentication-azure-go"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	"github.com/microsoftgraph/msgraph-sdk-go/models"
	"github.com/microsoftgraph/msgraph-sdk-go/users"
	"github.com/smartspace/smartspace/pkg/domain"
)

const (
	Scope = "https://graph.microsoft.com/.default"

	defaultSearchTop = 10
)

var userFields = []string{"id", "displayName", "mail", "userPrincipalName", "jobTitle"}

// Directory looks up users in Microsoft Graph
type Directory struct {
	client *msgraphsdk.GraphServiceClient
}

// NewDirectory authenticates Graph calls with credential
func NewDirectory(credential azcore.TokenCredential) (*Directory, error) {
	authProvider, err := auth.NewAzureIdentityAuthenticationProviderWithScopes(credential, []string{Scope})
	if err != nil {
		return nil, fmt.Errorf("failed to create auth provider: %w", err)
	}

	adapter, err := msgraphsdk.NewGraphRequestAdapter(authProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create Graph request adapter: %w", err)
	}

	return NewDirectoryWithAdapter(adapter), nil
}

func NewDirectoryWithAdapter(adapter abstractions.RequestAdapter) *Directory {
	return &Directory{
		client: msgraphsdk.NewGraphServiceClient(adapter),
	}
}

// Me returns the signed-in user
func (d *Directory) Me(ctx context.Context) (domain.User, error) {
	user, err := d.client.Me().Get(ctx, nil)
	if err != nil {
		return domain.User{}, wrapError("failed to get signed-in user", err)
	}

	return userToDomain(user), nil
}

// MeRaw returns the signed-in user as Graph serialised it
func (d *Directory) MeRaw(ctx context.Context) (map[string]interface{}, error) {
	user, err := d.client.Me().Get(ctx, nil)
	if err != nil {
		return nil, wrapError("failed to get signed-in user", err)
	}

	return ToRawJSON(user)
}

// SearchUsers finds users whose display name or mail starts with query
func (d *Directory) SearchUsers(ctx context.Context, query string, top int32) ([]domain.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is required")
	}
	if top <= 0 {
		top = defaultSearchTop
	}

	escaped := strings.ReplaceAll(query, "'", "''")
	filter := fmt.Sprintf("startswith(displayName,'%s') or startswith(mail,'%s')", escaped, escaped)

	headers := abstractions.NewRequestHeaders()
	headers.Add("ConsistencyLevel", "eventual")

	result, err := d.client.Users().Get(ctx, &users.UsersRequestBuilderGetRequestConfiguration{
		Headers: headers,
		QueryParameters: &users.UsersRequestBuilderGetQueryParameters{
			Filter: &filter,
			Top:    &top,
			Select: userFields,
		},
	})
	if err != nil {
		return nil, wrapError("failed to search users", err)
	}

	found := result.GetValue()
	matches := make([]domain.User, 0, len(found))
	for _, user := range found {
		matches = append(matches, userToDomain(user))
	}

	return matches, nil
}

func userToDomain(user models.Userable) domain.User {
	return domain.User{
		ID:                deref(user.GetId()),
		DisplayName:       deref(user.GetDisplayName()),
		Mail:              deref(user.GetMail()),
		UserPrincipalName: deref(user.GetUserPrincipalName()),
		JobTitle:          deref(user.GetJobTitle()),
	}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
