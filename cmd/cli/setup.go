package cli

import (
	"fmt"
	"net/url"

	"github.com/charmbracelet/huh"
	"github.com/smartspace/smartspace/pkg/domain"
	"github.com/spf13/cobra"
)

func NewConfigInitCommand(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Interactively set up sign-in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !interactive() {
				return fmt.Errorf("%w: use 'smartspace config set' instead", errNotInteractive)
			}

			configManager := app.container.GetConfigManager()

			config, err := configManager.GetConfig(cmd.Context())
			if err != nil {
				return err
			}

			if err := setupForm(&config).Run(); err != nil {
				return err
			}

			if err := config.Validate(); err != nil {
				return err
			}

			if err := configManager.SaveConfig(cmd.Context(), config); err != nil {
				return err
			}

			return app.printer(cmd).Success(configSettings(config), "Configuration saved. Run 'smartspace whoami' to sign in.")
		},
	}
}

func setupForm(config *domain.ClientConfig) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API URL").
				Value(&config.APIURL).
				Validate(validateURL),
			huh.NewInput().
				Title("API scope").
				Description("For example api://smartspace/.default").
				Value(&config.APIScope).
				Validate(required("api scope")),
			huh.NewInput().
				Title("Tenant ID").
				Value(&config.TenantID),
			huh.NewInput().
				Title("Client ID").
				Value(&config.ClientID).
				Validate(required("client id")),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Sign-in mode").
				Options(
					huh.NewOption("Azure AD (MSAL)", domain.AuthModeMSAL),
					huh.NewOption("Teams SSO assertion", domain.AuthModeTeams),
				).
				Value(&config.AuthMode),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Sign-in method").
				Options(
					huh.NewOption("Device code", domain.AuthMethodDeviceCode),
					huh.NewOption("Browser", domain.AuthMethodInteractiveBrowser),
					huh.NewOption("Client secret", domain.AuthMethodClientSecret),
					huh.NewOption("Azure CLI", domain.AuthMethodAzureCLI),
				).
				Value(&config.AuthMethod),
		).WithHideFunc(func() bool {
			return config.AuthMode != domain.AuthModeMSAL
		}),
		huh.NewGroup(
			huh.NewInput().
				Title("Client secret").
				EchoMode(huh.EchoModePassword).
				Value(&config.ClientSecret),
		).WithHideFunc(func() bool {
			return config.AuthMode == domain.AuthModeMSAL && config.AuthMethod != domain.AuthMethodClientSecret
		}),
		huh.NewGroup(
			huh.NewInput().
				Title("Default workspace").
				Description("Optional").
				Value(&config.DefaultWorkspace),
		),
	)
}

func validateURL(value string) error {
	parsed, err := url.Parse(value)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("enter an absolute URL")
	}
	return nil
}

func required(name string) func(string) error {
	return func(value string) error {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}
