package auth

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/smartspace/smartspace/pkg/clients/smartspace"
	"golang.org/x/oauth2"
)

type providerTokenSource struct {
	ctx      context.Context
	provider *TokenProvider
	scopes   []string
}

// TokenSource adapts the provider to oauth2 so the SmartSpace client can
// attach bearer tokens through oauth2.Transport
func (p *TokenProvider) TokenSource(ctx context.Context, scopes []string) oauth2.TokenSource {
	return &providerTokenSource{ctx: ctx, provider: p, scopes: scopes}
}

func (s *providerTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.provider.Token(s.ctx, s.scopes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", smartspace.ErrTokenUnavailable, err)
	}

	// Expire early so oauth2 reuse and the provider refresh agree
	return &oauth2.Token{
		AccessToken: token.Token,
		TokenType:   "Bearer",
		Expiry:      token.ExpiresOn.Add(-s.provider.refreshMargin),
	}, nil
}

type providerCredential struct {
	provider *TokenProvider
}

// Credential adapts the provider to azcore for the Graph SDK
func (p *TokenProvider) Credential() azcore.TokenCredential {
	return &providerCredential{provider: p}
}

func (c *providerCredential) GetToken(ctx context.Context, options policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return c.provider.Token(ctx, options.Scopes)
}
