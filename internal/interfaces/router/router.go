package router

import (
	"context"
	"net/http"
	"time"

	authsvc "multinvest-backend/internal/application/auth"
	dashsvc "multinvest-backend/internal/application/dashboard"
	emailsvc "multinvest-backend/internal/application/emails"
	firmsvc "multinvest-backend/internal/application/firms"
	healthsvc "multinvest-backend/internal/application/health"
	invsvc "multinvest-backend/internal/application/investments"
	"multinvest-backend/internal/application/projection"
	usersvc "multinvest-backend/internal/application/user"
	wdsvc "multinvest-backend/internal/application/withdrawals"
	"multinvest-backend/internal/config"
	"multinvest-backend/internal/constants"
	"multinvest-backend/internal/infrastructure/database"
	authhandler "multinvest-backend/internal/interfaces/handlers/auth"
	dashhandler "multinvest-backend/internal/interfaces/handlers/dashboard"
	firmhandler "multinvest-backend/internal/interfaces/handlers/firms"
	healthhandler "multinvest-backend/internal/interfaces/handlers/health"
	invhandler "multinvest-backend/internal/interfaces/handlers/investments"
	userhandler "multinvest-backend/internal/interfaces/handlers/user"
	wdhandler "multinvest-backend/internal/interfaces/handlers/withdrawals"
	"multinvest-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct{ db *gorm.DB }

func (p *gormDBPinger) Ping() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// Deps are the already-open resources NewApp wires into handlers.
type Deps struct {
	DB        *gorm.DB
	Rdb       *redis.Client
	Config    *config.Config
	Email     emailsvc.Sender
	Projector *projection.Calculator
}

// CreateApp opens the database and Redis from cfg, migrates, and builds the app.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, nil, nil, err
	}
	rdb, err := middleware.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}

	var email emailsvc.Sender
	if cfg.SendinblueAPIKey != "" {
		email = &emailsvc.BrevoClient{APIKey: cfg.SendinblueAPIKey, MailFrom: cfg.MailFrom}
	}
	app := NewApp(Deps{
		DB:        db,
		Rdb:       rdb,
		Config:    cfg,
		Email:     email,
		Projector: projection.New(cfg.FuturePolicy),
	})
	return app, db, rdb, nil
}

// NewApp registers middleware and routes over deps.
func NewApp(deps Deps) *fiber.App {
	cfg := deps.Config
	if cfg == nil {
		cfg = &config.Config{Env: "development"}
	}
	db, rdb := deps.DB, deps.Rdb

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.IsProduction(),
	}

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.SessionStore(rdb, sessionCfg))

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	if db != nil {
		hh.DB = &gormDBPinger{db: db}
	}
	app.Get("/", hh.Dashboard)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	users := &usersvc.Service{DB: db, Email: deps.Email}
	firms := &firmsvc.Service{DB: db}
	invs := &invsvc.Service{DB: db, Projector: deps.Projector, Email: deps.Email}
	wds := &wdsvc.Service{DB: db}
	dash := &dashsvc.Service{Users: users, Investments: invs, Withdrawals: wds}

	ah := &authhandler.Handlers{
		UserFinder: &authsvc.GormUserFinder{DB: db},
		Users:      users,
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/signup", ah.Signup)
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)
	authGroup.Post("/logout", ah.Logout)

	api := app.Group("/api/v1", middleware.RequireAuth())

	uh := &userhandler.Handlers{Service: users, Rdb: rdb}
	api.Get("/users/me", uh.ViewUser)

	fh := &firmhandler.Handlers{Service: firms}
	api.Get("/firms", fh.List)
	api.Get("/firms/:id", fh.Get)

	ih := &invhandler.Handlers{Service: invs}
	api.Get("/investments", middleware.AuthorizePermission(constants.ViewData), ih.List)
	api.Post("/investments", middleware.AuthorizePermission(constants.Invest), ih.Create)

	wh := &wdhandler.Handlers{Service: wds}
	api.Get("/withdrawals", middleware.AuthorizePermission(constants.ViewData), wh.List)
	api.Post("/withdrawals", middleware.AuthorizePermission(constants.RequestWithdrawal), wh.Request)

	dh := &dashhandler.Handlers{Service: dash}
	api.Get("/dashboard", middleware.AuthorizePermission(constants.ViewData), dh.Get)

	admin := api.Group("/admin")
	admin.Post("/firms", middleware.AuthorizePermission(constants.ManageFirms), fh.Create)
	admin.Get("/investments", middleware.AuthorizePermission(constants.ManageInvestments), ih.ListAll)
	admin.Patch("/investments/:id/status", middleware.AuthorizePermission(constants.ManageInvestments), ih.UpdateStatus)
	admin.Get("/withdrawals", middleware.AuthorizePermission(constants.ManageWithdrawals), wh.ListAll)
	admin.Patch("/withdrawals/:id/status", middleware.AuthorizePermission(constants.ManageWithdrawals), wh.UpdateStatus)
	admin.Patch("/users/:id/balance", middleware.AuthorizePermission(constants.ManageBalances), uh.AdjustBalance)
	admin.Patch("/users/:id/role", middleware.AuthorizePermission(constants.AssignRole), uh.UpdateRole)

	return app
}

// Handler exposes the app as a net/http handler for serverless runtimes.
func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}

var _ healthsvc.DBPinger = (*gormDBPinger)(nil)
