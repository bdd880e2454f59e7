package cli

import (
	"github.com/smartspace/smartspace/internal/auth"
	"github.com/smartspace/smartspace/pkg/domain"
	"github.com/spf13/cobra"
)

type identity struct {
	Claims auth.Claims  `json:"claims" yaml:"claims"`
	User   *domain.User `json:"user,omitempty" yaml:"user,omitempty"`
}

func NewWhoamiCommand(app *app) *cobra.Command {
	var withGraph, raw bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		Long: `Sign in if needed and show the claims of the SmartSpace access token. With --graph the
Microsoft Graph profile is added; --raw prints the unmodified Graph profile.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := app.services(cmd)
			if err != nil {
				return err
			}

			if raw {
				profile, err := services.Directory.MeRaw(cmd.Context())
				if err != nil {
					return err
				}
				return newPrinter(cmd.OutOrStdout(), structuredFormat(app.output)).Print(profile, nil, nil)
			}

			token, err := services.AccessToken(cmd.Context())
			if err != nil {
				return err
			}

			claims, err := auth.ParseClaims(token)
			if err != nil {
				return err
			}

			result := identity{Claims: claims}
			if withGraph {
				user, err := services.Directory.Me(cmd.Context())
				if err != nil {
					return err
				}
				result.User = &user
			}

			return app.printer(cmd).Print(result, []string{"FIELD", "VALUE"}, identityRows(result))
		},
	}

	cmd.Flags().BoolVar(&withGraph, "graph", false, "Include the Microsoft Graph profile")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the raw Microsoft Graph profile")

	return cmd
}

func identityRows(id identity) [][]string {
	rows := keyValueRows(
		"Name", id.Claims.Name,
		"Username", id.Claims.PreferredUsername,
		"Object ID", id.Claims.ObjectID,
		"Tenant", id.Claims.TenantID,
		"Token expires", formatTime(id.Claims.ExpiresAt),
	)
	if id.User != nil {
		rows = append(rows, keyValueRows(
			"Mail", id.User.Mail,
			"Principal", id.User.UserPrincipalName,
			"Job title", id.User.JobTitle,
		)...)
	}
	return rows
}

// structuredFormat keeps json or yaml and falls back to json for tables
func structuredFormat(format string) string {
	if format == outputYAML {
		return outputYAML
	}
	return outputJSON
}
