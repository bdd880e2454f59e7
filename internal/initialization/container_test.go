package initialization

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/smartspace/smartspace/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContainer(t *testing.T) *Container {
	t.Helper()

	configManager, err := domain.NewConfigManagerWithDir(t.TempDir())
	require.NoError(t, err)

	return NewContainerWithConfigManager(configManager)
}

func TestContainer_ServicesRequireCompleteConfig(t *testing.T) {
	container := newTestContainer(t)

	_, err := container.Services(context.Background(), ServiceOptions{Logger: zerolog.Nop()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration is incomplete")
}

func TestContainer_ServicesAreBuiltOnce(t *testing.T) {
	t.Setenv("SMARTSPACE_API_SCOPE", "api://smartspace/.default")
	t.Setenv("SMARTSPACE_CLIENT_ID", "00000000-0000-0000-0000-000000000001")
	t.Setenv("SMARTSPACE_CLIENT_SECRET", "secret")
	t.Setenv("SMARTSPACE_AUTH_METHOD", domain.AuthMethodClientSecret)
	t.Setenv("SMARTSPACE_TENANT_ID", "00000000-0000-0000-0000-000000000002")

	container := newTestContainer(t)
	ctx := context.Background()

	services, err := container.Services(ctx, ServiceOptions{
		APIURL: "https://override.example.com",
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)

	assert.Equal(t, "https://override.example.com", services.Config.APIURL)
	assert.NotNil(t, services.Client)
	assert.NotNil(t, services.Workspaces)
	assert.NotNil(t, services.Threads)
	assert.NotNil(t, services.Messages)
	assert.NotNil(t, services.Comments)
	assert.NotNil(t, services.Notifications)
	assert.NotNil(t, services.Models)
	assert.NotNil(t, services.Files)
	assert.NotNil(t, services.Directory)

	again, err := container.Services(ctx, ServiceOptions{Logger: zerolog.Nop()})
	require.NoError(t, err)
	assert.Same(t, services, again)

	hub := services.NewHub(zerolog.Nop())
	assert.Equal(t, "disconnected", hub.State().String())

	require.NoError(t, container.Close())
	rebuilt, err := container.Services(ctx, ServiceOptions{Logger: zerolog.Nop()})
	require.NoError(t, err)
	assert.NotSame(t, services, rebuilt)
	require.NoError(t, container.Close())
}

func TestContainer_CloseWithoutServices(t *testing.T) {
	assert.NoError(t, newTestContainer(t).Close())
}
