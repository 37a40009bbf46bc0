package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/dropin-rota/cmd/cli/commands"
	"github.com/jakechorley/dropin-rota/internal/config"
	"github.com/jakechorley/dropin-rota/pkg/utils/logging"
)

var (
	env string
	app *commands.AppContext
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Drop-In Rota CLI - allocate volunteer rotas",
		Long:  "A CLI tool for allocating volunteer shift rotas from a rota definition file.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.Logger != nil {
				app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (e.g. test, prod)")

	rootCmd.AddCommand(commands.GenerateRotaCmd(appRef()))
	rootCmd.AddCommand(commands.AllocateRotaCmd(appRef()))
	rootCmd.AddCommand(commands.ValidateCmd(appRef()))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// appRef returns a stable *AppContext for command registration; its fields
// are populated by initApp before any RunE runs, since cobra resolves
// PersistentPreRunE before the chosen subcommand's RunE.
func appRef() *commands.AppContext {
	if app == nil {
		app = &commands.AppContext{}
	}
	return app
}

// initApp sets up the logger and configuration shared by every command.
func initApp() error {
	var err error
	app = appRef()
	app.Ctx = context.Background()

	app.Logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger.Info("starting application", zap.String("environment", env))

	app.Logger.Debug("loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("configuration loaded successfully")

	return nil
}
