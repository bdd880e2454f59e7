package cli

import (
	"testing"

	"github.com/smartspace/smartspace/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestNewStatusReport(t *testing.T) {
	config := domain.ClientConfig{
		APIURL:     "https://api.example.com",
		APIScope:   "api://smartspace/.default",
		ClientID:   "client",
		TenantID:   "organizations",
		AuthMode:   domain.AuthModeMSAL,
		AuthMethod: domain.AuthMethodDeviceCode,
		RedisURL:   "redis://localhost:6379",
	}

	report := newStatusReport(config)
	assert.True(t, report.Ready)
	assert.Empty(t, report.Problem)
	assert.Equal(t, "https://api.example.com/notifications", report.HubURL)
	assert.Equal(t, "redis", report.TokenCache)
	assert.Equal(t, domain.AuthMethodDeviceCode, report.AuthMethod)

	config.ClientID = ""
	report = newStatusReport(config)
	assert.False(t, report.Ready)
	assert.Equal(t, "client_id is not configured", report.Problem)
}
