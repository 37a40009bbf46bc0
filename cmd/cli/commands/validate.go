package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/dropin-rota/pkg/core/services"
	"github.com/jakechorley/dropin-rota/pkg/rotainput"
)

// ValidateCmd creates the validate command. It runs the same allocation as
// generateRota but reports only ValidationErrors and UnderutilizedGroups,
// for CI-style checks that a rota file can be allocated cleanly.
func ValidateCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate that a rota definition file allocates cleanly",
		RunE: func(cmd *cobra.Command, args []string) error {
			rotaPath, _ := cmd.Flags().GetString("rota")

			doc, err := rotainput.LoadDocument(rotaPath)
			if err != nil {
				return fmt.Errorf("failed to load rota file: %w", err)
			}

			result, err := services.AllocateRota(doc, app.Cfg, app.Logger, false)
			if err != nil {
				return fmt.Errorf("allocation failed: %w", err)
			}

			if result.Success {
				fmt.Printf("valid: %d shifts allocated with no validation errors\n", result.ShiftCount)
			} else {
				fmt.Printf("invalid: %d validation errors\n", len(result.ValidationErrors))
				for _, verr := range result.ValidationErrors {
					fmt.Printf("  - Shift %d (%s) - %s: %s\n",
						verr.ShiftIndex+1, verr.ShiftDate, verr.CriterionName, verr.Description)
				}
			}

			if len(result.UnderutilizedGroups) > 0 {
				fmt.Printf("%d group(s) underutilized:\n", len(result.UnderutilizedGroups))
				for _, group := range result.UnderutilizedGroups {
					fmt.Printf("  - %s: allocated %d/%d shifts\n",
						group.GroupKey, len(group.AllocatedShiftIndices), len(group.AvailableShiftIndices))
				}
			}

			if !result.Success {
				return fmt.Errorf("rota file is not cleanly allocatable")
			}
			return nil
		},
	}

	cmd.Flags().String("rota", "rota.yaml", "Path to the rota definition file")

	return cmd
}
