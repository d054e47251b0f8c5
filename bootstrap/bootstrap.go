package bootstrap

import (
	"multinvest-backend/internal/config"
	"multinvest-backend/internal/interfaces/router"
	"multinvest-backend/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// New creates the Fiber app for serverless runtimes (the api handler imports this package, not internal).
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg.LogLevel, true)
	app, _, _, err := router.CreateApp(cfg)
	return app, err
}
