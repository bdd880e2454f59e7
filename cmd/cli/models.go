package cli

import (
	"github.com/smartspace/smartspace/pkg/domain"
	"github.com/spf13/cobra"
)

func NewModelsCommand(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "models",
		Aliases: []string{"model"},
		Short:   "Browse the available models",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := app.services(cmd)
			if err != nil {
				return err
			}

			models, err := services.Models.GetModels(cmd.Context())
			if err != nil {
				return err
			}

			return app.printer(cmd).Print(models, modelHeaders, modelRows(models))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <model-id>",
		Short: "Show a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := app.services(cmd)
			if err != nil {
				return err
			}

			model, err := services.Models.GetModel(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return app.printer(cmd).Print(model, modelHeaders, modelRows([]domain.Model{model}))
		},
	})

	return cmd
}

var modelHeaders = []string{"ID", "NAME", "PROVIDER", "VIRTUAL", "CREATED"}

func modelRows(models []domain.Model) [][]string {
	rows := make([][]string, 0, len(models))
	for _, model := range models {
		rows = append(rows, []string{
			model.ID,
			model.Label(),
			model.ProviderType,
			formatBool(model.VirtualModel),
			formatTime(model.CreatedAt),
		})
	}
	return rows
}
