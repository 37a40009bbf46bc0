package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/dropin-rota/pkg/core/services"
	"github.com/jakechorley/dropin-rota/pkg/rotainput"
)

// GenerateRotaCmd creates the generateRota command. It loads a rota
// definition file, runs the allocation engine, and prints the result; it
// never commits anything, since there is no store to commit to.
func GenerateRotaCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generateRota",
		Short: "Generate a rota allocation from a rota definition file",
		RunE: func(cmd *cobra.Command, args []string) error {
			rotaPath, _ := cmd.Flags().GetString("rota")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			doc, err := rotainput.LoadDocument(rotaPath)
			if err != nil {
				return fmt.Errorf("failed to load rota file: %w", err)
			}

			app.Logger.Debug("generateRota command", zap.String("rota_path", rotaPath), zap.Bool("dry_run", dryRun))

			result, err := services.AllocateRota(doc, app.Cfg, app.Logger, false)
			if err != nil {
				return fmt.Errorf("allocation failed: %w", err)
			}

			renderAllocationResult(result, dryRun, false)
			return nil
		},
	}

	cmd.Flags().String("rota", "rota.yaml", "Path to the rota definition file")
	cmd.Flags().Bool("dry-run", false, "Run the allocation without treating the result as final")

	return cmd
}
