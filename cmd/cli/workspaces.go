package cli

import (
	"strings"

	"github.com/smartspace/smartspace/pkg/domain"
	"github.com/spf13/cobra"
)

func NewWorkspacesCommand(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workspaces",
		Aliases: []string{"workspace", "ws"},
		Short:   "Browse workspaces",
		Long:    `List the workspaces available to the signed-in user and show workspace details.`,
	}

	cmd.AddCommand(NewWorkspacesListCommand(app))
	cmd.AddCommand(NewWorkspacesGetCommand(app))

	return cmd
}

func NewWorkspacesListCommand(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkspacesList(cmd, app)
		},
	}
}

func runWorkspacesList(cmd *cobra.Command, app *app) error {
	services, err := app.services(cmd)
	if err != nil {
		return err
	}

	workspaces, err := services.Workspaces.GetWorkspaces(cmd.Context())
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(workspaces))
	for _, workspace := range workspaces {
		rows = append(rows, []string{
			workspace.ID,
			workspace.Name,
			strings.Join(workspace.Tags, ", "),
			formatBool(workspace.SupportsFiles),
		})
	}

	return app.printer(cmd).Print(workspaces, []string{"ID", "NAME", "TAGS", "FILES"}, rows)
}

func NewWorkspacesGetCommand(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <workspace-id>",
		Short: "Show a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := app.services(cmd)
			if err != nil {
				return err
			}

			workspace, err := services.Workspaces.GetWorkspace(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return app.printer(cmd).Print(workspace, []string{"FIELD", "VALUE"}, workspaceRows(workspace))
		},
	}
}

func workspaceRows(workspace domain.Workspace) [][]string {
	return keyValueRows(
		"ID", workspace.ID,
		"Name", workspace.Name,
		"Tags", strings.Join(workspace.Tags, ", "),
		"Model", workspace.ModelID,
		"First prompt", workspace.FirstPrompt,
		"Supports files", formatBool(workspace.SupportsFiles),
		"Created", formatTime(workspace.CreatedAt),
	)
}
