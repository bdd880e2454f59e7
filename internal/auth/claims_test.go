package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"oid":                "00000000-0000-0000-0000-000000000001",
		"name":               "Ada Lovelace",
		"preferred_username": "ada@example.com",
		"tid":                "tenant-1",
		"exp":                exp.Unix(),
	}).SignedString([]byte("not-the-issuer-key"))
	require.NoError(t, err)

	claims, err := ParseClaims(token)
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", claims.Name)
	assert.Equal(t, "ada@example.com", claims.PreferredUsername)
	assert.Equal(t, "tenant-1", claims.TenantID)
	assert.True(t, exp.Equal(claims.ExpiresAt))
}

func TestParseClaims_Invalid(t *testing.T) {
	_, err := ParseClaims("not-a-jwt")
	assert.Error(t, err)
}
