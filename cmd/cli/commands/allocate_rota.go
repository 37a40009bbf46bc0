package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/dropin-rota/pkg/core/services"
	"github.com/jakechorley/dropin-rota/pkg/rotainput"
)

// AllocateRotaCmd creates the allocateRota command. It is generateRota's
// stricter sibling: forceCommit changes how the result is reported, not
// how the engine behaves.
func AllocateRotaCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allocateRota",
		Short: "Allocate a rota from a rota definition file",
		Long:  "Run the allocation algorithm to assign volunteers to shifts based on availability responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			rotaPath, _ := cmd.Flags().GetString("rota")
			forceCommit, _ := cmd.Flags().GetBool("force-commit")

			app.Logger.Debug("allocateRota command",
				zap.String("rota_path", rotaPath),
				zap.Bool("force_commit", forceCommit))

			doc, err := rotainput.LoadDocument(rotaPath)
			if err != nil {
				return fmt.Errorf("failed to load rota file: %w", err)
			}

			result, err := services.AllocateRota(doc, app.Cfg, app.Logger, forceCommit)
			if err != nil {
				return fmt.Errorf("allocation failed: %w", err)
			}

			renderAllocationResult(result, false, forceCommit)

			if !result.Success && !forceCommit {
				return fmt.Errorf("allocation failed validation (%d errors)", len(result.ValidationErrors))
			}
			return nil
		},
	}

	cmd.Flags().String("rota", "rota.yaml", "Path to the rota definition file")
	cmd.Flags().Bool("force-commit", false, "Treat the result as final even if validation fails")

	return cmd
}
