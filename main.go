package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agrimarket/config"
	"agrimarket/controllers"
	"agrimarket/database"
	"agrimarket/forecast"
	"agrimarket/loader"
	"agrimarket/logger"
	"agrimarket/middleware"
	"agrimarket/routes"
	"agrimarket/scheduler"
	"agrimarket/scraper"
	"agrimarket/service"
	"agrimarket/upstream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
)

// source is what both price backends offer the dashboard and the handlers.
type source interface {
	loader.Source
	controllers.Prices
}

func main() {
	log := logger.GetLogger()

	if err := config.LoadEnv(); err != nil {
		log.WithError(err).Fatal("❌ failed to read .env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("❌ invalid configuration")
	}
	if err := log.Configure(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.MaxAge); err != nil {
		log.WithError(err).Fatal("❌ failed to configure logger")
	}

	tables, err := loadForecast(cfg.Forecast)
	if err != nil {
		log.WithError(err).Fatal("❌ forecast tables unusable")
	}
	engine := forecast.NewEngine(tables)

	db, err := database.Connect(cfg.Database.DSN, log)
	if err != nil {
		log.WithError(err).Fatal("❌ database unavailable")
	}
	store := database.NewStore(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Auth.AdminUsername != "" {
		created, err := store.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
		if err != nil {
			log.WithError(err).Fatal("❌ failed to seed admin user")
		}
		if created {
			log.WithField("username", cfg.Auth.AdminUsername).Info("✅ admin user created")
		}
	}

	var src source
	if cfg.RemoteUpstream() {
		src = upstream.New(cfg.Upstream, log)
		log.WithField("upstream", cfg.Upstream.BaseURL).Info("🌍 serving prices from remote backend")
	} else {
		var board service.Board
		if cfg.Refresh.BoardURL != "" {
			board = scraper.New(cfg.Refresh.BoardURL, cfg.Upstream.Timeout, log)
		}
		src = service.New(store, board, log)
	}

	view := loader.NewView(ctx, src, engine, loader.Options{
		Debounce: cfg.Loader.Debounce,
		PageSize: cfg.Upstream.PageSize,
		MaxPages: cfg.Upstream.MaxPages,
	}, log)
	defer view.Close()

	loadCtx, cancel := context.WithTimeout(ctx, cfg.Upstream.Timeout)
	if err := view.LoadAll(loadCtx); err != nil {
		log.WithError(err).Warn("⚠️ dashboard started with a failed pipeline")
	}
	cancel()

	jobs := scheduler.New(log)
	if cfg.Refresh.Enabled && cfg.Refresh.BoardURL != "" && !cfg.RemoteUpstream() {
		err := jobs.Add("refresh-market-prices", cfg.Refresh.Schedule, 5*time.Minute, func(ctx context.Context) error {
			_, err := view.TriggerRefresh(ctx)
			return err
		})
		if err != nil {
			log.WithError(err).Fatal("❌ failed to schedule market refresh")
		}
		jobs.Start()
	}

	app := fiber.New(fiber.Config{
		AppName:      "agrimarket",
		ErrorHandler: middleware.ErrorHandler(log),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
		AllowHeaders: "Content-Type, Authorization",
	}))
	app.Use(fiberlogger.New())

	handler := controllers.New(src, view, store, tables.Crops(), cfg.Auth, log)
	routes.Register(app, handler, middleware.JWTAdmin(cfg.Auth.JWTSecret, log))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "🚀 agrimarket backend is running", "environment": cfg.Server.Environment})
	})

	go func() {
		<-ctx.Done()
		log.Info("🛑 shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		jobs.Stop(shutdownCtx)
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.WithError(err).Error("❌ server shutdown failed")
		}
	}()

	log.WithFields(logger.Fields{"port": cfg.Server.Port, "environment": cfg.Server.Environment}).Info("🚀 Server running")
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.WithError(err).Fatal("❌ server stopped")
	}
}

func loadForecast(cfg config.ForecastConfig) (*forecast.Tables, error) {
	var (
		tables *forecast.Tables
		err    error
	)
	if cfg.Path != "" {
		tables, err = forecast.Load(cfg.Path)
	} else {
		tables, err = forecast.Default()
	}
	if err != nil {
		return nil, err
	}
	return tables, tables.Validate()
}
