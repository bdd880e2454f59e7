package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the identity claims of an access token
type Claims struct {
	ObjectID          string    `json:"oid" yaml:"oid"`
	Name              string    `json:"name" yaml:"name"`
	PreferredUsername string    `json:"preferred_username" yaml:"preferred_username"`
	TenantID          string    `json:"tid" yaml:"tid"`
	ExpiresAt         time.Time `json:"exp" yaml:"exp"`
}

// ParseClaims reads the claims of an access token without verifying its
// signature. The token was issued to this process, so it is trusted.
func ParseClaims(token string) (Claims, error) {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return Claims{}, fmt.Errorf("failed to parse access token: %w", err)
	}

	result := Claims{
		ObjectID:          stringClaim(claims, "oid"),
		Name:              stringClaim(claims, "name"),
		PreferredUsername: stringClaim(claims, "preferred_username"),
		TenantID:          stringClaim(claims, "tid"),
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		result.ExpiresAt = exp.Time
	}

	return result, nil
}

func stringClaim(claims jwt.MapClaims, name string) string {
	value, _ := claims[name].(string)
	return value
}
