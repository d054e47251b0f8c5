package main

import (
	"multinvest-backend/internal/infrastructure/database"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		if err := database.AutoMigrate(db); err != nil {
			return err
		}
		log.Info().Msg("migration complete")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Migrate, then add the admin account and default firms when missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		if err := database.AutoMigrate(db); err != nil {
			return err
		}
		_, err = database.Seed(cmd.Context(), db, database.SeedInput{
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
		})
		return err
	},
}
