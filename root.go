package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"notes-api/config"
)

var (
	verbose bool
	envFile string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "notes-api",
	Short: "Session-authenticated notes service",
	Long: `notes-api serves a JSON API for personal notes. Users own their notes;
administrators can read and delete any note and manage accounts.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var envFiles []string
		if envFile != "" {
			envFiles = append(envFiles, envFile)
		}
		loaded, err := config.Load(envFiles...)
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

// Execute runs the command line. Without a subcommand the server starts.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Read settings from this file instead of .env")
}
