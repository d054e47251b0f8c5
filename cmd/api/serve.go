package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"multinvest-backend/internal/interfaces/router"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, db, rdb, err := router.CreateApp(cfg)
		if err != nil {
			return err
		}

		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.Ping(); err != nil {
			log.Error().Err(err).Msg("database connection failed")
			return err
		}
		log.Info().Msg("database connected")
		if err := rdb.Ping(cmd.Context()).Err(); err != nil {
			log.Error().Err(err).Msg("redis connection failed")
			return err
		}
		log.Info().Msg("redis connected")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			log.Info().Msg("shutting down...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := app.ShutdownWithContext(ctx); err != nil {
				log.Error().Err(err).Msg("shutdown failed")
			}
		}()

		log.Info().
			Str("addr", "http://localhost:"+cfg.Port).
			Str("health", "http://localhost:"+cfg.Port+"/health/json").
			Msg("server running")
		if err := app.Listen(":" + cfg.Port); err != nil {
			return err
		}
		_ = rdb.Close()
		return sqlDB.Close()
	},
}
