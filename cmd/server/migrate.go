package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yourname/rehabtracker/internal/storage"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the configured SQL backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			version, err := storage.MigrateConfigured(cmd.Context(), cfg, logger)
			if err != nil {
				logger.Errorf("failed to migrate: %v", err)
				return err
			}
			if cfg.DBType == "file" {
				fmt.Fprintln(cmd.OutOrStdout(), "file storage has no schema; nothing to migrate")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema at version %d\n", cfg.DBType, version)
			return nil
		},
	}
}
