package domain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	AuthModeMSAL  = "msal"
	AuthModeTeams = "teams"

	AuthMethodDeviceCode         = "device_code"
	AuthMethodInteractiveBrowser = "interactive_browser"
	AuthMethodClientSecret       = "client_secret"
	AuthMethodAzureCLI           = "azure_cli"

	configDirName = ".smartspace"
)

type ClientConfig struct {
	APIURL   string `mapstructure:"api_url"`
	APIScope string `mapstructure:"api_scope"`
	HubURL   string `mapstructure:"hub_url"`

	// Identity
	TenantID       string `mapstructure:"tenant_id"`
	ClientID       string `mapstructure:"client_id"`
	ClientSecret   string `mapstructure:"client_secret"`
	AuthMode       string `mapstructure:"auth_mode"`
	AuthMethod     string `mapstructure:"auth_method"`
	TeamsAssertion string `mapstructure:"teams_assertion"`

	// Shared token cache, optional
	RedisURL string `mapstructure:"redis_url"`

	DefaultWorkspace string `mapstructure:"default_workspace"`
}

// Scopes returns the API scopes requested for SmartSpace calls
func (c ClientConfig) Scopes() []string {
	return strings.Fields(strings.ReplaceAll(c.APIScope, ",", " "))
}

// HubEndpoint returns the realtime hub URL, defaulting to the notifications
// hub under the API URL
func (c ClientConfig) HubEndpoint() string {
	if c.HubURL != "" {
		return c.HubURL
	}
	return strings.TrimSuffix(c.APIURL, "/") + "/notifications"
}

// Validate reports the first setting that prevents signing in
func (c ClientConfig) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url is not configured")
	}
	if len(c.Scopes()) == 0 {
		return fmt.Errorf("api_scope is not configured")
	}
	if c.ClientID == "" {
		return fmt.Errorf("client_id is not configured")
	}

	switch c.AuthMode {
	case AuthModeMSAL:
		switch c.AuthMethod {
		case AuthMethodDeviceCode, AuthMethodInteractiveBrowser, AuthMethodAzureCLI:
		case AuthMethodClientSecret:
			if c.ClientSecret == "" {
				return fmt.Errorf("client_secret is required for auth method %s", c.AuthMethod)
			}
		default:
			return fmt.Errorf("unsupported auth method: %s", c.AuthMethod)
		}
	case AuthModeTeams:
		if c.ClientSecret == "" {
			return fmt.Errorf("client_secret is required for teams auth")
		}
	default:
		return fmt.Errorf("unsupported auth mode: %s", c.AuthMode)
	}

	return nil
}

type ConfigManager interface {
	IsSetupComplete(ctx context.Context) bool
	GetConfig(ctx context.Context) (ClientConfig, error)
	Set(ctx context.Context, key, value string) error
	SaveConfig(ctx context.Context, config ClientConfig) error
	ResetConfig(ctx context.Context) error
}

var envMappings = map[string]string{
	"api_url":           "SMARTSPACE_API_URL",
	"api_scope":         "SMARTSPACE_API_SCOPE",
	"hub_url":           "SMARTSPACE_HUB_URL",
	"tenant_id":         "SMARTSPACE_TENANT_ID",
	"client_id":         "SMARTSPACE_CLIENT_ID",
	"client_secret":     "SMARTSPACE_CLIENT_SECRET",
	"auth_mode":         "SMARTSPACE_AUTH_MODE",
	"auth_method":       "SMARTSPACE_AUTH_METHOD",
	"teams_assertion":   "SMARTSPACE_TEAMS_ASSERTION",
	"redis_url":         "SMARTSPACE_REDIS_URL",
	"default_workspace": "SMARTSPACE_DEFAULT_WORKSPACE",
}

// ConfigKeys lists the settings accepted by Set
func ConfigKeys() []string {
	keys := make([]string, 0, len(envMappings))
	for key := range envMappings {
		keys = append(keys, key)
	}
	return keys
}

type configManager struct {
	viper     *viper.Viper
	configDir string
}

// NewConfigManager loads settings from the environment and from
// $HOME/.smartspace/config.json
func NewConfigManager() (ConfigManager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	return NewConfigManagerWithDir(filepath.Join(homeDir, configDirName))
}

// NewConfigManagerWithDir is NewConfigManager with an explicit config directory
func NewConfigManagerWithDir(configDir string) (ConfigManager, error) {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("SMARTSPACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for configKey, envVar := range envMappings {
		if err := v.BindEnv(configKey, envVar); err != nil {
			log.Warn().Err(err).Msgf("Failed to bind environment variable %s for %s", envVar, configKey)
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug().Msg("Config file not found, using environment variables and defaults")
	} else {
		log.Debug().Msgf("Using config file: %s", v.ConfigFileUsed())
	}

	return &configManager{
		viper:     v,
		configDir: configDir,
	}, nil
}

func (m *configManager) IsSetupComplete(ctx context.Context) bool {
	config, err := m.GetConfig(ctx)
	if err != nil {
		return false
	}

	return config.Validate() == nil
}

func (m *configManager) GetConfig(ctx context.Context) (ClientConfig, error) {
	var config ClientConfig
	if err := m.viper.Unmarshal(&config); err != nil {
		return ClientConfig{}, fmt.Errorf("unable to decode config: %w", err)
	}

	return config, nil
}

// Set updates one setting and writes the config file
func (m *configManager) Set(ctx context.Context, key, value string) error {
	if _, ok := envMappings[key]; !ok {
		return fmt.Errorf("unknown config key: %s", key)
	}

	m.viper.Set(key, value)

	return m.write()
}

func (m *configManager) SaveConfig(ctx context.Context, config ClientConfig) error {
	m.viper.Set("api_url", config.APIURL)
	m.viper.Set("api_scope", config.APIScope)
	m.viper.Set("hub_url", config.HubURL)
	m.viper.Set("tenant_id", config.TenantID)
	m.viper.Set("client_id", config.ClientID)
	m.viper.Set("client_secret", config.ClientSecret)
	m.viper.Set("auth_mode", config.AuthMode)
	m.viper.Set("auth_method", config.AuthMethod)
	m.viper.Set("teams_assertion", config.TeamsAssertion)
	m.viper.Set("redis_url", config.RedisURL)
	m.viper.Set("default_workspace", config.DefaultWorkspace)

	return m.write()
}

func (m *configManager) write() error {
	if err := os.MkdirAll(m.configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(m.configDir, "config.json")
	if err := m.viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (m *configManager) ResetConfig(ctx context.Context) error {
	configPath := filepath.Join(m.configDir, "config.json")
	if err := os.Remove(configPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove config file: %w", err)
	}

	for key := range m.viper.AllSettings() {
		m.viper.Set(key, nil)
	}

	setDefaults(m.viper)

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", "https://api.smartspace.ai")
	v.SetDefault("auth_mode", AuthModeMSAL)
	v.SetDefault("auth_method", AuthMethodDeviceCode)
	v.SetDefault("tenant_id", "organizations")
}
