package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/isdelr/wellness-be/internal/database"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending migrations to the configured database and exit.`,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cmd.Println("Running migrations...")
	if err := database.Migrate(cfg.DatabaseDriver, cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	cmd.Println("Migrations completed successfully")
	return nil
}
