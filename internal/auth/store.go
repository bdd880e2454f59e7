package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "smartspace:token:"

// TokenStore caches access tokens by scope key
type TokenStore interface {
	Get(ctx context.Context, key string) (azcore.AccessToken, bool, error)
	Set(ctx context.Context, key string, token azcore.AccessToken) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type memoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]azcore.AccessToken
}

func NewMemoryTokenStore() TokenStore {
	return &memoryTokenStore{
		tokens: make(map[string]azcore.AccessToken),
	}
}

func (s *memoryTokenStore) Get(ctx context.Context, key string) (azcore.AccessToken, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[key]
	return token, ok, nil
}

func (s *memoryTokenStore) Set(ctx context.Context, key string, token azcore.AccessToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[key] = token
	return nil
}

func (s *memoryTokenStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, key)
	return nil
}

func (s *memoryTokenStore) Close() error {
	return nil
}

type redisTokenStore struct {
	client *redis.Client
}

type storedToken struct {
	Token     string    `json:"token"`
	ExpiresOn time.Time `json:"expires_on"`
}

// NewRedisTokenStore shares cached tokens between processes through Redis
func NewRedisTokenStore(ctx context.Context, redisURL string) (TokenStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisTokenStoreWithClient(client), nil
}

func NewRedisTokenStoreWithClient(client *redis.Client) TokenStore {
	return &redisTokenStore{client: client}
}

func redisKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return redisKeyPrefix + hex.EncodeToString(sum[:])
}

func (s *redisTokenStore) Get(ctx context.Context, key string) (azcore.AccessToken, bool, error) {
	data, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return azcore.AccessToken{}, false, nil
	}
	if err != nil {
		return azcore.AccessToken{}, false, fmt.Errorf("failed to read token from redis: %w", err)
	}

	var stored storedToken
	if err := json.Unmarshal(data, &stored); err != nil {
		return azcore.AccessToken{}, false, fmt.Errorf("failed to decode cached token: %w", err)
	}

	return azcore.AccessToken{Token: stored.Token, ExpiresOn: stored.ExpiresOn}, true, nil
}

// Set stores the token until it expires. Expired tokens are not stored.
func (s *redisTokenStore) Set(ctx context.Context, key string, token azcore.AccessToken) error {
	ttl := time.Until(token.ExpiresOn)
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(storedToken{Token: token.Token, ExpiresOn: token.ExpiresOn})
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := s.client.Set(ctx, redisKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write token to redis: %w", err)
	}

	return nil
}

func (s *redisTokenStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete token from redis: %w", err)
	}
	return nil
}

func (s *redisTokenStore) Close() error {
	return s.client.Close()
}
