package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"garderie_backend/internals/configs"
	database "garderie_backend/internals/databases"
	receiptService "garderie_backend/internals/features/finance/receipts/service"
	scheduler "garderie_backend/internals/features/users/auth/scheduler"
	helper "garderie_backend/internals/helpers"
	"garderie_backend/internals/helpers/dbtime"
	middlewares "garderie_backend/internals/middlewares"
	routes "garderie_backend/internals/route"
)

func main() {
	cfg, err := configs.LoadEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := configs.NewLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	dbtime.SetLocation(cfg.Location())

	// 🔌 DB connect + pool + migrate
	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	database.TunePool(db, cfg, logger)
	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), time.Minute)
	if err := database.Migrate(migrateCtx, db); err != nil {
		cancelMigrate()
		logger.Fatal("db migrate", zap.Error(err))
	}
	cancelMigrate()
	database.WarmUpQueries(db, logger)

	// 🧾 receipts: Chrome warms up in the background so the first PDF does
	// not pay the launch inside a request deadline
	printer := receiptService.NewRodPrinter(cfg.Receipts.ChromeBin, logger)
	go func() {
		if err := printer.Warm(); err != nil {
			logger.Warn("receipt printer warm-up failed, will retry on first receipt", zap.Error(err))
		}
	}()
	renderer, err := receiptService.NewRenderer(printer, receiptService.Company{
		Name:     cfg.Receipts.CompanyName,
		Address:  cfg.Receipts.CompanyAddress,
		Phone:    cfg.Receipts.CompanyPhone,
		Currency: cfg.Receipts.Currency,
	})
	if err != nil {
		logger.Fatal("receipt templates", zap.Error(err))
	}

	// ⏱ scheduler after the DB is ready
	cleanup, err := scheduler.StartBlacklistCleanupScheduler(db, cfg.Auth.BlacklistCleanupCron, cfg.Auth.BlacklistRetentionTTL, logger)
	if err != nil {
		logger.Fatal("cleanup scheduler", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ProxyHeader:           fiber.HeaderXForwardedFor,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           90 * time.Second,
		ErrorHandler:          helper.FromFiberError,
	})

	middlewares.SetupMiddlewares(app, cfg)
	routes.SetupRoutes(app, routes.Deps{DB: db, Log: logger, Config: cfg, Receipts: renderer})

	go func() {
		logger.Info("✅ listening", zap.String("port", cfg.Port))
		if err := app.Listen("0.0.0.0:" + cfg.Port); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)
	<-cleanup.Stop().Done()
	if err := printer.Close(); err != nil {
		logger.Warn("close receipt printer", zap.Error(err))
	}
	if err := database.Close(db); err != nil {
		logger.Warn("close db", zap.Error(err))
	}
}
