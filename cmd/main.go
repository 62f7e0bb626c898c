package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/poker-leaderboard/config"
	"github.com/Dosada05/poker-leaderboard/db"
	"github.com/Dosada05/poker-leaderboard/handlers"
	"github.com/Dosada05/poker-leaderboard/hub"
	"github.com/Dosada05/poker-leaderboard/metrics"
	"github.com/Dosada05/poker-leaderboard/middleware"
	"github.com/Dosada05/poker-leaderboard/repositories"
	api "github.com/Dosada05/poker-leaderboard/routes"
	"github.com/Dosada05/poker-leaderboard/services"
	"github.com/Dosada05/poker-leaderboard/storage"
)

const shutdownTimeout = 15 * time.Second

// @title Poker Leaderboard API
// @version 1.0
// @description Таблица лидеров покерной серии: приём результатов, рейтинг и выгрузки.
// @BasePath /
func main() {
	if err := run(); err != nil {
		slog.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	level, _ := cfg.SlogLevel()

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("log_level", level.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := db.Migrate(ctx, dbConn); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	m := metrics.New()

	// Загрузчик выгрузок в Cloudflare R2 (необязателен)
	var uploader storage.FileUploader
	r2Cfg := storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2.AccountID,
		AccessKeyID:     cfg.R2.AccessKeyID,
		SecretAccessKey: cfg.R2.SecretAccessKey,
		BucketName:      cfg.R2.BucketName,
		PublicBaseURL:   cfg.R2.PublicBaseURL,
		KeyPrefix:       cfg.R2.KeyPrefix,
		Endpoint:        cfg.R2.Endpoint,
	}
	if r2Cfg.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, r2Cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2.BucketName))
	} else {
		logger.Info("Cloudflare R2 not configured, publishing disabled")
	}

	// Инициализация WebSocket Hub
	wsHub := hub.New(logger)

	standingRepo := repositories.NewPostgresStandingRepository(dbConn)

	leaderboardService := services.NewLeaderboardService(standingRepo, wsHub, m, logger)
	exportService := services.NewExportService(standingRepo, uploader, m, logger)
	logger.Info("Services initialized")

	if uploader != nil && cfg.SnapshotInterval > 0 {
		scheduler, err := services.StartSnapshotScheduler(ctx, exportService, cfg.SnapshotInterval, logger)
		if err != nil {
			return fmt.Errorf("failed to start snapshot scheduler: %w", err)
		}
		defer func() {
			if err := scheduler.Shutdown(); err != nil {
				logger.Error("failed to stop snapshot scheduler", slog.Any("error", err))
			}
		}()
		logger.Info("snapshot scheduler started", slog.Duration("interval", cfg.SnapshotInterval))
	}

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Options{
		Leaderboard:     handlers.NewLeaderboardHandler(leaderboardService, cfg.SiteTitle, logger),
		Export:          handlers.NewExportHandler(exportService, logger),
		WebSocket:       handlers.NewWebSocketHandler(wsHub, cfg.AllowedOrigins, logger),
		Health:          handlers.NewHealthHandler(dbConn, logger),
		Metrics:         m.Handler(),
		ResultsPassword: cfg.ResultsPassword,
		SubmitLimiter:   middleware.PerMinute(cfg.SubmitRatePerMinute),
		AllowedOrigins:  cfg.AllowedOrigins,
		Logger:          logger,
	})
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		wsHub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Ожидание сигнала завершения
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return err
		}
		logger.Info("server shutdown complete")
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("application exited")
	return nil
}
