package auth

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/smartspace/smartspace/pkg/domain"
)

// DeviceCodePrompt shows the device code sign-in instructions to the user
type DeviceCodePrompt func(ctx context.Context, message string) error

// NewCredential builds the identity credential for the configured auth mode.
// In msal mode the auth method picks the sign-in flow; in teams mode the SSO
// assertion is exchanged through the on-behalf-of flow.
func NewCredential(config domain.ClientConfig, prompt DeviceCodePrompt) (azcore.TokenCredential, error) {
	if config.ClientID == "" {
		return nil, fmt.Errorf("client_id must be configured")
	}

	var cred azcore.TokenCredential
	var err error

	switch config.AuthMode {
	case domain.AuthModeMSAL:
		cred, err = newMSALCredential(config, prompt)
	case domain.AuthModeTeams:
		if config.TeamsAssertion == "" || config.ClientSecret == "" {
			return nil, fmt.Errorf("teams auth requires teams_assertion and client_secret")
		}
		cred, err = azidentity.NewOnBehalfOfCredentialWithSecret(
			config.TenantID,
			config.ClientID,
			config.TeamsAssertion,
			config.ClientSecret,
			nil,
		)
	default:
		return nil, fmt.Errorf("unsupported auth mode: %s", config.AuthMode)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create credential: %w", err)
	}

	return cred, nil
}

func newMSALCredential(config domain.ClientConfig, prompt DeviceCodePrompt) (azcore.TokenCredential, error) {
	switch config.AuthMethod {
	case domain.AuthMethodDeviceCode:
		opts := &azidentity.DeviceCodeCredentialOptions{
			TenantID: config.TenantID,
			ClientID: config.ClientID,
		}
		if prompt != nil {
			opts.UserPrompt = func(ctx context.Context, msg azidentity.DeviceCodeMessage) error {
				return prompt(ctx, msg.Message)
			}
		}
		return azidentity.NewDeviceCodeCredential(opts)
	case domain.AuthMethodInteractiveBrowser:
		return azidentity.NewInteractiveBrowserCredential(&azidentity.InteractiveBrowserCredentialOptions{
			TenantID: config.TenantID,
			ClientID: config.ClientID,
		})
	case domain.AuthMethodClientSecret:
		if config.TenantID == "" || config.ClientSecret == "" {
			return nil, fmt.Errorf("client_secret auth requires tenant_id and client_secret")
		}
		return azidentity.NewClientSecretCredential(config.TenantID, config.ClientID, config.ClientSecret, nil)
	case domain.AuthMethodAzureCLI:
		return azidentity.NewAzureCLICredential(&azidentity.AzureCLICredentialOptions{
			TenantID: config.TenantID,
		})
	default:
		return nil, fmt.Errorf("unsupported auth method: %s", config.AuthMethod)
	}
}
