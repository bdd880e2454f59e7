package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/smartspace/smartspace/internal/initialization"
	"github.com/smartspace/smartspace/pkg/clients/smartspace"
	"github.com/spf13/cobra"
)

// app carries the root flags and the container to every command
type app struct {
	container *initialization.Container

	debug  bool
	apiURL string
	output string
}

func (a *app) services(cmd *cobra.Command) (*initialization.Services, error) {
	return a.container.Services(cmd.Context(), initialization.ServiceOptions{
		APIURL: a.apiURL,
		Prompt: deviceCodePrompt(cmd.ErrOrStderr()),
		Logger: log.Logger,
	})
}

func (a *app) printer(cmd *cobra.Command) *printer {
	return newPrinter(cmd.OutOrStdout(), a.output)
}

// workspaceID returns the --workspace flag or the configured default
func (a *app) workspaceID(cmd *cobra.Command, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}

	config, err := a.container.GetConfigManager().GetConfig(cmd.Context())
	if err != nil {
		return "", err
	}
	if config.DefaultWorkspace == "" {
		return "", fmt.Errorf("no workspace given; pass --workspace or run 'smartspace config set default_workspace <id>'")
	}

	return config.DefaultWorkspace, nil
}

func deviceCodePrompt(w io.Writer) func(ctx context.Context, message string) error {
	return func(ctx context.Context, message string) error {
		_, err := fmt.Fprintln(w, noticeStyle.Render(message))
		return err
	}
}

// errorMessage prefers the user-facing text of API errors
func errorMessage(err error) string {
	if apiErr, ok := smartspace.AsError(err); ok {
		log.Debug().Err(err).Str("kind", string(apiErr.Kind)).Msg("Command failed")
		return apiErr.UserMessage()
	}
	return err.Error()
}
