package cli

import (
	"github.com/spf13/cobra"
)

func NewResetCommand(app *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset configuration and start fresh",
		Long:  `Remove the stored configuration. Settings from environment variables still apply afterwards.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			confirmed, err := confirm("Remove the stored SmartSpace configuration?", yes)
			if err != nil {
				return err
			}
			if !confirmed {
				return nil
			}

			if err := app.container.GetConfigManager().ResetConfig(cmd.Context()); err != nil {
				return err
			}

			return app.printer(cmd).Success(map[string]bool{"reset": true}, "Configuration reset successfully")
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
