package cli

import (
	"github.com/smartspace/smartspace/internal/version"
	"github.com/spf13/cobra"
)

func NewVersionCommand(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()

			return app.printer(cmd).Print(info, []string{"FIELD", "VALUE"}, keyValueRows(
				"Version", version.GetShortVersion(),
				"Build date", info.BuildDate,
				"Go", info.GoVersion,
				"Platform", info.Platform,
			))
		},
	}
}
