package auth

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultRefreshMargin = 5 * time.Minute
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = 500 * time.Millisecond

	// Bounds a shared acquisition; interactive sign-in may take minutes
	DefaultAcquireTimeout = 5 * time.Minute
)

// ScopeKey normalises a scope set into a cache key: sorted, de-duplicated
// and joined by spaces
func ScopeKey(scopes []string) string {
	seen := make(map[string]struct{}, len(scopes))
	unique := make([]string, 0, len(scopes))

	for _, scope := range scopes {
		scope = strings.TrimSpace(scope)
		if scope == "" {
			continue
		}
		if _, ok := seen[scope]; ok {
			continue
		}
		seen[scope] = struct{}{}
		unique = append(unique, scope)
	}

	sort.Strings(unique)
	return strings.Join(unique, " ")
}

// TokenProvider acquires access tokens and caches them per scope set.
// Concurrent requests for the same scopes share one acquisition.
type TokenProvider struct {
	credential    azcore.TokenCredential
	store         TokenStore
	group         singleflight.Group
	refreshMargin time.Duration
	retryAttempts int
	retryDelay    time.Duration
	timeout       time.Duration
	now           func() time.Time
}

type TokenProviderDependencies struct {
	Credential azcore.TokenCredential
	// Store defaults to an in-memory store
	Store TokenStore

	RefreshMargin time.Duration
	RetryAttempts int
	RetryDelay    time.Duration

	// AcquireTimeout bounds one shared acquisition
	AcquireTimeout time.Duration
	Now            func() time.Time
}

func NewTokenProvider(deps TokenProviderDependencies) *TokenProvider {
	p := &TokenProvider{
		credential:    deps.Credential,
		store:         deps.Store,
		refreshMargin: deps.RefreshMargin,
		retryAttempts: deps.RetryAttempts,
		retryDelay:    deps.RetryDelay,
		timeout:       deps.AcquireTimeout,
		now:           deps.Now,
	}

	if p.store == nil {
		p.store = NewMemoryTokenStore()
	}
	if p.refreshMargin == 0 {
		p.refreshMargin = DefaultRefreshMargin
	}
	if p.retryAttempts <= 0 {
		p.retryAttempts = DefaultRetryAttempts
	}
	if p.retryDelay == 0 {
		p.retryDelay = DefaultRetryDelay
	}
	if p.timeout == 0 {
		p.timeout = DefaultAcquireTimeout
	}
	if p.now == nil {
		p.now = time.Now
	}

	return p
}

// Token returns a token for scopes, from the cache while it is still fresh
func (p *TokenProvider) Token(ctx context.Context, scopes []string) (azcore.AccessToken, error) {
	key := ScopeKey(scopes)
	if key == "" {
		return azcore.AccessToken{}, fmt.Errorf("at least one scope is required")
	}

	if token, ok := p.cached(ctx, key); ok {
		return token, nil
	}

	// The acquisition is shared, so it must not die with the first caller's
	// context. Each caller still stops waiting when its own context ends.
	results := p.group.DoChan(key, func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
		defer cancel()

		if token, ok := p.cached(shared, key); ok {
			return token, nil
		}

		token, err := p.acquire(shared, strings.Split(key, " "))
		if err != nil {
			return nil, err
		}

		if err := p.store.Set(shared, key, token); err != nil {
			log.Warn().Err(err).Str("scopes", key).Msg("Failed to cache access token")
		}

		return token, nil
	})

	select {
	case result := <-results:
		if result.Err != nil {
			return azcore.AccessToken{}, result.Err
		}
		if result.Shared {
			log.Debug().Str("scopes", key).Msg("Shared in-flight token acquisition")
		}
		return result.Val.(azcore.AccessToken), nil
	case <-ctx.Done():
		return azcore.AccessToken{}, ctx.Err()
	}
}

// Invalidate drops the cached token for scopes, forcing the next call to
// acquire a new one
func (p *TokenProvider) Invalidate(ctx context.Context, scopes []string) error {
	return p.store.Delete(ctx, ScopeKey(scopes))
}

// Close releases the token store
func (p *TokenProvider) Close() error {
	return p.store.Close()
}

func (p *TokenProvider) cached(ctx context.Context, key string) (azcore.AccessToken, bool) {
	token, ok, err := p.store.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("scopes", key).Msg("Failed to read cached access token")
		return azcore.AccessToken{}, false
	}
	if !ok || !p.fresh(token) {
		return azcore.AccessToken{}, false
	}
	return token, true
}

func (p *TokenProvider) fresh(token azcore.AccessToken) bool {
	return token.Token != "" && p.now().Add(p.refreshMargin).Before(token.ExpiresOn)
}

func (p *TokenProvider) acquire(ctx context.Context, scopes []string) (azcore.AccessToken, error) {
	delay := p.retryDelay
	var lastErr error

	for attempt := 1; attempt <= p.retryAttempts; attempt++ {
		token, err := p.credential.GetToken(ctx, policy.TokenRequestOptions{Scopes: scopes})
		if err == nil {
			log.Debug().Strs("scopes", scopes).Time("expires_on", token.ExpiresOn).Msg("Acquired access token")
			return token, nil
		}
		lastErr = err

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || attempt == p.retryAttempts {
			break
		}

		log.Warn().Err(err).Int("attempt", attempt).Msg("Token acquisition failed, retrying")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return azcore.AccessToken{}, ctx.Err()
		}
		delay *= 2
	}

	return azcore.AccessToken{}, fmt.Errorf("failed to acquire access token: %w", lastErr)
}
