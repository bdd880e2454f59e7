package smartspace

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindForStatus(t *testing.T) {
	tests := []struct {
		status int
		kind   ErrorKind
	}{
		{401, KindUnauthorized},
		{403, KindForbidden},
		{404, KindNotFound},
		{409, KindConflict},
		{429, KindRateLimited},
		{400, KindValidationError},
		{422, KindValidationError},
		{418, KindUnknownError},
		{502, KindUnknownError},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			assert.Equal(t, tt.kind, KindForStatus(tt.status))
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	wrapped := fmt.Errorf("failed to get thread: %w", newStatusError(404, "gone", "", ""))

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsAuthError(wrapped))
	assert.False(t, IsRetryableError(wrapped))
	assert.Equal(t, userMessages[KindNotFound], UserMessage(wrapped))

	auth := newStatusError(401, "expired", "", "")
	assert.True(t, IsAuthError(auth))

	limited := newStatusError(429, "slow down", "", "")
	assert.True(t, IsRateLimited(limited))
	assert.True(t, IsRetryableError(limited))

	network := newNetworkError(errors.New("dial tcp: connection refused"))
	assert.True(t, IsRetryableError(network))
	assert.Equal(t, "smartspace: dial tcp: connection refused (network_error)", network.Error())

	plain := errors.New("boom")
	assert.Equal(t, KindUnknownError, KindOf(plain))
	assert.Equal(t, userMessages[KindUnknownError], UserMessage(plain))
}
