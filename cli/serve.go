package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/substratehq/substrate/engine/infra/server"
	"github.com/substratehq/substrate/pkg/config"
	"github.com/substratehq/substrate/pkg/logger"
)

// ServeCmd builds the command that runs the HTTP service
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.NewLoader().Load(ctx)
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			log := newLogger(cfg)
			srv, err := server.NewServer(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("initializing server: %w", err)
			}
			return srv.Run(ctx)
		},
	}
}

func newLogger(cfg *config.Config) logger.Logger {
	return logger.NewLogger(&logger.Config{
		Level:      logger.LogLevel(cfg.Runtime.LogLevel),
		JSON:       cfg.Runtime.LogJSON,
		Output:     os.Stdout,
		TimeFormat: "15:04:05",
	})
}
