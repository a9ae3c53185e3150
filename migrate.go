package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"notes-api/auth"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the schema and seed an empty store",
	Long: `migrate opens the configured store, which creates any missing tables,
and applies the seed fixtures when the store holds no users. The server is
not started.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.Default()

		scheme, err := auth.NewPasswordScheme(cfg.PasswordScheme)
		if err != nil {
			return err
		}
		store, err := openStore(cfg, scheme, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := store.Stats()
		if err != nil {
			return err
		}
		logger.Info("store ready", "driver", cfg.StoreDriver, "users", stats.Users, "notes", stats.Notes)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
