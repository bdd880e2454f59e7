package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/smartspace/smartspace/internal/initialization"
	"github.com/spf13/cobra"
)

func NewRootCommand() (*cobra.Command, *initialization.Container) {
	app := &app{}

	rootCmd := &cobra.Command{
		Use:   "smartspace",
		Short: "SmartSpace command-line client",
		Long: `SmartSpace is a command-line client for the SmartSpace chat platform. It signs in
through Azure AD and works with workspaces, threads, messages, comments, files and notifications.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			return validateOutputFormat(app.output)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&app.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&app.apiURL, "api-url", "", "Override API URL")
	rootCmd.PersistentFlags().StringVarP(&app.output, "output", "o", outputTable, "Output format: table, json or yaml")

	container, err := initialization.NewContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize container: %v\n", err)
		os.Exit(1)
	}
	app.container = container

	rootCmd.AddCommand(NewWorkspacesCommand(app))
	rootCmd.AddCommand(NewThreadsCommand(app))
	rootCmd.AddCommand(NewMessagesCommand(app))
	rootCmd.AddCommand(NewCommentsCommand(app))
	rootCmd.AddCommand(NewNotificationsCommand(app))
	rootCmd.AddCommand(NewFilesCommand(app))
	rootCmd.AddCommand(NewModelsCommand(app))
	rootCmd.AddCommand(NewWatchCommand(app))
	rootCmd.AddCommand(NewWhoamiCommand(app))
	rootCmd.AddCommand(NewStatusCommand(app))
	rootCmd.AddCommand(NewConfigCommand(app))
	rootCmd.AddCommand(NewVersionCommand(app))

	return rootCmd, container
}

// Execute runs the root command
func Execute() {
	rootCmd, container := NewRootCommand()

	err := rootCmd.Execute()
	if closeErr := container.Close(); closeErr != nil {
		log.Debug().Err(closeErr).Msg("Failed to release services")
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("Error:"), errorMessage(err))
		os.Exit(1)
	}
}
