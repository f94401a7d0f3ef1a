package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/substratehq/substrate/pkg/version"
)

// RootCmd builds the substrate command tree
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "substrate",
		Short:   "Substrate API service",
		Long:    "Substrate serves the multi-tenant project, billing, and assist API.",
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			envFile, err := cmd.Flags().GetString("env-file")
			if err != nil {
				return err
			}
			return loadEnvFile(envFile)
		},
	}
	root.PersistentFlags().String("env-file", "", "Path to a dotenv file loaded before configuration")

	root.AddCommand(
		ServeCmd(),
		MigrateCmd(),
		BootstrapCmd(),
	)
	return root
}

// loadEnvFile loads a dotenv file into the process environment. A missing
// default file is fine; an explicitly named one must exist.
func loadEnvFile(envFile string) error {
	if envFile == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("loading env file %s: %w", envFile, err)
	}
	return nil
}
