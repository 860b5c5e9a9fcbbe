package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CaoDuyThanh/drtrace/internal/config"
	"github.com/CaoDuyThanh/drtrace/internal/logstore"
)

// newMigrateCommand applies pending schema migrations. Only the postgres
// backend carries goose migrations; sqlite's schema is bootstrapped
// inline by sqlite.New.
func newMigrateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if cfg.Storage.Backend != config.StorageBackendPostgres {
				cmd.Printf("storage backend %q has no migrations to run (schema is created inline)\n", cfg.Storage.Backend)
				return nil
			}

			if err := logstore.MigratePostgres(cfg.DatabaseURL()); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			cmd.Println("migrations applied successfully")
			return nil
		},
	}
}
