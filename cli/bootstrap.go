package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	authpg "github.com/substratehq/substrate/engine/auth/infra/postgres"
	authuc "github.com/substratehq/substrate/engine/auth/uc"
	"github.com/substratehq/substrate/engine/infra/postgres"
	"github.com/substratehq/substrate/pkg/config"
	"github.com/substratehq/substrate/pkg/logger"
)

// BootstrapCmd builds the command that creates the initial admin user. Every
// API route requires a valid key, so this is the only way to mint the first
// credential on a fresh deployment.
func BootstrapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the initial admin user and API key",
		Long: `Create the initial admin user and print its API key.
This is a one-time operation: it fails once any admin user exists.
The key is shown exactly once and never stored in plaintext.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, err := cmd.Flags().GetString("email")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			cfg, err := config.NewLoader().Load(ctx)
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			log := newLogger(cfg)
			ctx = logger.ContextWithLogger(ctx, log)

			store, err := postgres.NewStore(ctx, &postgres.Config{
				ConnString: cfg.Database.ConnString,
				Host:       cfg.Database.Host,
				Port:       cfg.Database.Port,
				User:       cfg.Database.User,
				Password:   cfg.Database.Password.Value(),
				DBName:     cfg.Database.DBName,
				SSLMode:    cfg.Database.SSLMode,
			})
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer func() {
				if closeErr := store.Close(ctx); closeErr != nil {
					log.Warn("Failed to close database pool", "error", closeErr)
				}
			}()

			factory := authuc.NewFactory(authpg.NewRepository(store.Pool()))
			user, apiKey, err := factory.BootstrapSystem(email).Execute(ctx)
			if err != nil {
				if errors.Is(err, authuc.ErrAlreadyBootstrapped) {
					return fmt.Errorf("an admin user already exists; use the API to create further users")
				}
				return fmt.Errorf("bootstrapping admin: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Admin user created\n")
			fmt.Fprintf(out, "  ID:      %s\n", user.ID)
			fmt.Fprintf(out, "  Email:   %s\n", user.Email)
			fmt.Fprintf(out, "  API key: %s\n", apiKey)
			fmt.Fprintf(out, "Store this key now; it will not be shown again.\n")
			return nil
		},
	}
	cmd.Flags().String("email", "", "Admin user email address")
	if err := cmd.MarkFlagRequired("email"); err != nil {
		panic(err)
	}
	return cmd
}
