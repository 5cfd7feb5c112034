package cli

import (
	"fmt"

	"miniloan-backend/internal/adapter/repository/mysql"
	"miniloan-backend/internal/infrastructure/db"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the users, loans and payments tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN())
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			if sqlDB, err := gdb.DB(); err == nil {
				defer sqlDB.Close()
			}
			if err := mysql.Migrate(gdb); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %s schema\n", cfg.DBDriver)
			return nil
		},
	}
}
