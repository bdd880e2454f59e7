package cli

import (
	"github.com/smartspace/smartspace/pkg/domain"
	"github.com/spf13/cobra"
)

type statusReport struct {
	Ready      bool   `json:"ready" yaml:"ready"`
	Problem    string `json:"problem,omitempty" yaml:"problem,omitempty"`
	APIURL     string `json:"api_url" yaml:"api_url"`
	HubURL     string `json:"hub_url" yaml:"hub_url"`
	AuthMode   string `json:"auth_mode" yaml:"auth_mode"`
	AuthMethod string `json:"auth_method,omitempty" yaml:"auth_method,omitempty"`
	TokenCache string `json:"token_cache" yaml:"token_cache"`
	Workspace  string `json:"default_workspace,omitempty" yaml:"default_workspace,omitempty"`
}

func NewStatusCommand(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current client status",
		Long:  `Display whether the client is configured to sign in, and the endpoints it talks to.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := app.container.GetConfigManager().GetConfig(cmd.Context())
			if err != nil {
				return err
			}
			if app.apiURL != "" {
				config.APIURL = app.apiURL
			}

			report := newStatusReport(config)

			rows := keyValueRows(
				"Ready", formatBool(report.Ready),
				"API URL", report.APIURL,
				"Hub URL", report.HubURL,
				"Auth", report.AuthMode+" "+report.AuthMethod,
				"Token cache", report.TokenCache,
				"Default workspace", report.Workspace,
			)
			if report.Problem != "" {
				rows = append(rows, []string{"Problem", errorStyle.Render(report.Problem)})
			}

			return app.printer(cmd).Print(report, []string{"SETTING", "VALUE"}, rows)
		},
	}
}

func newStatusReport(config domain.ClientConfig) statusReport {
	report := statusReport{
		Ready:      true,
		APIURL:     config.APIURL,
		HubURL:     config.HubEndpoint(),
		AuthMode:   config.AuthMode,
		TokenCache: "memory",
		Workspace:  config.DefaultWorkspace,
	}

	if config.AuthMode == domain.AuthModeMSAL {
		report.AuthMethod = config.AuthMethod
	}
	if config.RedisURL != "" {
		report.TokenCache = "redis"
	}
	if err := config.Validate(); err != nil {
		report.Ready = false
		report.Problem = err.Error()
	}

	return report
}
