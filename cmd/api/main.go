package main

import (
	"fmt"
	"os"

	"multinvest-backend/internal/config"
	"multinvest-backend/internal/pkg/logger"

	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "multinvest",
	Short:         "MultiInvest API server and maintenance commands",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("config load: %w", err)
		}
		cfg = loaded
		logger.Setup(cfg.LogLevel, cfg.IsProduction())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, projectCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
