package initialization

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/smartspace/smartspace/internal/auth"
	"github.com/smartspace/smartspace/internal/graph"
	"github.com/smartspace/smartspace/internal/managers"
	"github.com/smartspace/smartspace/internal/realtime"
	"github.com/smartspace/smartspace/internal/version"
	"github.com/smartspace/smartspace/pkg/clients/smartspace"
	"github.com/smartspace/smartspace/pkg/domain"
)

// Services are the signed-in components the commands work with
type Services struct {
	Config domain.ClientConfig
	Tokens *auth.TokenProvider
	Client *smartspace.Client

	Workspaces    domain.WorkspaceManager
	Threads       domain.ThreadManager
	Messages      domain.MessageManager
	Comments      domain.CommentManager
	Notifications domain.NotificationManager
	Models        domain.ModelManager
	Files         domain.FileManager
	Directory     *graph.Directory
}

// ServiceOptions adjust how Services are built for one invocation
type ServiceOptions struct {
	APIURL string
	Prompt auth.DeviceCodePrompt
	Logger zerolog.Logger
}

type Container struct {
	configManager domain.ConfigManager

	mu       sync.Mutex
	services *Services
}

func NewContainer() (*Container, error) {
	configManager, err := domain.NewConfigManager()
	if err != nil {
		return nil, err
	}

	return NewContainerWithConfigManager(configManager), nil
}

func NewContainerWithConfigManager(configManager domain.ConfigManager) *Container {
	return &Container{
		configManager: configManager,
	}
}

func (c *Container) GetConfigManager() domain.ConfigManager {
	return c.configManager
}

// Close releases the services if they were built. A later Services call
// builds them again.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.services == nil {
		return nil
	}

	err := c.services.Close()
	c.services = nil
	return err
}

// Services builds the client stack on first use and returns the same
// instance afterwards
func (c *Container) Services(ctx context.Context, opts ServiceOptions) (*Services, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.services != nil {
		return c.services, nil
	}

	config, err := c.configManager.GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.APIURL != "" {
		config.APIURL = opts.APIURL
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration is incomplete: %w", err)
	}

	services, err := buildServices(ctx, config, opts)
	if err != nil {
		return nil, err
	}

	c.services = services
	return services, nil
}

func buildServices(ctx context.Context, config domain.ClientConfig, opts ServiceOptions) (*Services, error) {
	log.Debug().Str("api_url", config.APIURL).Str("auth_mode", config.AuthMode).Msg("Building client services")

	credential, err := auth.NewCredential(config, opts.Prompt)
	if err != nil {
		return nil, err
	}

	store := auth.NewMemoryTokenStore()
	if config.RedisURL != "" {
		store, err = auth.NewRedisTokenStore(ctx, config.RedisURL)
		if err != nil {
			return nil, err
		}
	}

	tokens := auth.NewTokenProvider(auth.TokenProviderDependencies{
		Credential: credential,
		Store:      store,
	})

	// The token source outlives this call, so it must not inherit ctx
	client := smartspace.NewClient(
		smartspace.WithBaseURL(config.APIURL),
		smartspace.WithTokenSource(tokens.TokenSource(context.Background(), config.Scopes())),
		smartspace.WithUserAgent(version.UserAgent()),
		smartspace.WithLogger(opts.Logger),
	)

	directory, err := graph.NewDirectory(tokens.Credential())
	if err != nil {
		return nil, err
	}

	return &Services{
		Config: config,
		Tokens: tokens,
		Client: client,
		Workspaces: managers.NewWorkspaceManager(managers.WorkspaceManagerDependencies{
			Client: client,
		}),
		Threads: managers.NewThreadManager(managers.ThreadManagerDependencies{
			Client: client,
		}),
		Messages: managers.NewMessageManager(managers.MessageManagerDependencies{
			Client: client,
		}),
		Comments: managers.NewCommentManager(managers.CommentManagerDependencies{
			Client: client,
		}),
		Notifications: managers.NewNotificationManager(managers.NotificationManagerDependencies{
			Client: client,
		}),
		Models: managers.NewModelManager(managers.ModelManagerDependencies{
			Client: client,
		}),
		Files: managers.NewFileManager(managers.FileManagerDependencies{
			Client: client,
		}),
		Directory: directory,
	}, nil
}

// Close releases connections held by the services
func (s *Services) Close() error {
	if err := s.Tokens.Close(); err != nil {
		return fmt.Errorf("failed to close token store: %w", err)
	}
	return nil
}

// AccessToken returns a bearer token for the SmartSpace API scopes
func (s *Services) AccessToken(ctx context.Context) (string, error) {
	token, err := s.Tokens.Token(ctx, s.Config.Scopes())
	if err != nil {
		return "", err
	}
	return token.Token, nil
}

// NewHub returns an unstarted hub connection authenticated with the API token
func (s *Services) NewHub(logger zerolog.Logger) *realtime.Client {
	return realtime.NewClient(
		s.Config.HubEndpoint(),
		realtime.WithAccessToken(s.AccessToken),
		realtime.WithLogger(logger),
	)
}

// NewBridge connects handlers to hub events
func (s *Services) NewBridge(hub *realtime.Client, handlers realtime.EventHandlers, logger zerolog.Logger) *realtime.Bridge {
	return realtime.NewBridge(realtime.BridgeDependencies{
		Hub:      hub,
		Handlers: handlers,
		Logger:   logger,
	})
}
