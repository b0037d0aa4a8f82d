package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/granary/granary/internal/app"
	"github.com/granary/granary/internal/auth"
	"github.com/granary/granary/internal/config"
	"github.com/granary/granary/internal/ledger"
	"github.com/granary/granary/internal/observability"
	"github.com/granary/granary/internal/platform/cache"
	"github.com/granary/granary/internal/platform/db"
	"github.com/granary/granary/internal/reporting"
	"github.com/granary/granary/internal/upload"
	"github.com/granary/granary/internal/users"
	"github.com/granary/granary/internal/wechat"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	configService := config.NewService(config.NewRepository(pool), logger)

	tokenManager := auth.NewTokenManager(redisClient, cfg.TokenTTL)
	authService := auth.NewService(auth.NewRepository(pool), tokenManager, logger)
	authHandler := auth.NewHandler(logger, authService, configService)

	wechatClient := wechat.NewClient(cfg.WechatAppID, cfg.WechatSecret, nil)
	wechatHandler := wechat.NewHandler(logger, wechatClient)

	usersService := users.NewService(users.NewRepository(pool), logger, cfg.AdminNameList())
	usersHandler := users.NewHandler(logger, usersService)

	configHandler := config.NewHandler(logger, configService)

	ledgerService := ledger.NewService(ledger.NewRepository(pool), logger)
	ledgerHandler := ledger.NewHandler(logger, ledgerService, configService)

	reportingService := reporting.NewService(reporting.NewRepository(pool), logger)
	reportingHandler := reporting.NewHandler(logger, reportingService)

	uploadHandler := upload.NewHandler(logger, cfg.UploadDir)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AuthService:      authService,
		AuthHandler:      authHandler,
		WechatHandler:    wechatHandler,
		UsersHandler:     usersHandler,
		ConfigHandler:    configHandler,
		LedgerHandler:    ledgerHandler,
		ReportingHandler: reportingHandler,
		UploadHandler:    uploadHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
