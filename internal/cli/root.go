package cli

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/xet-labs/xet-composer/internal/app"
	"github.com/xet-labs/xet-composer/internal/config"
)

// contextKey is the type for context keys
type contextKey string

// appKey is the context key for the app instance
const appKey contextKey = "app"

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "composer",
		Short: "Smart contract template composition and deployment",
		Long: `Composer renders audited smart contract templates with validated
parameters, compiles them with solc, and deploys the result.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			// Local .env files carry COMPOSER_PRIVATE_KEY during development.
			_ = godotenv.Load()

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				projectRoot = "."
			}

			v := config.SetupViper(projectRoot, cmd)
			appInstance, err := app.InitApp(v)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().Bool("json", false, "Output machine-readable JSON")
	rootCmd.PersistentFlags().StringP("network", "n", "", "Target network (as configured in composer.yaml)")

	rootCmd.AddCommand(NewDeployCmd())
	rootCmd.AddCommand(NewPreviewCmd())
	rootCmd.AddCommand(NewTemplatesCmd())
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// getApp retrieves the app instance from the command context.
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	a, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}
	return a, nil
}
