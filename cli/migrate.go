package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/substratehq/substrate/engine/infra/postgres"
	"github.com/substratehq/substrate/pkg/config"
	"github.com/substratehq/substrate/pkg/logger"
)

// MigrateCmd builds the command that applies pending database migrations
func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.NewLoader().Load(ctx)
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			log := newLogger(cfg)
			ctx = logger.ContextWithLogger(ctx, log)
			dsn := (&postgres.Config{
				ConnString: cfg.Database.ConnString,
				Host:       cfg.Database.Host,
				Port:       cfg.Database.Port,
				User:       cfg.Database.User,
				Password:   cfg.Database.Password.Value(),
				DBName:     cfg.Database.DBName,
				SSLMode:    cfg.Database.SSLMode,
			}).DSN()
			if err := postgres.ApplyMigrations(ctx, dsn); err != nil {
				return fmt.Errorf("applying migrations: %w", err)
			}
			return nil
		},
	}
}
