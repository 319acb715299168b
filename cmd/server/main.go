package main // Entry point package

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

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/availability"
	"github.com/iliyamo/room-reservation/internal/config"
	"github.com/iliyamo/room-reservation/internal/database"
	"github.com/iliyamo/room-reservation/internal/handler"
	"github.com/iliyamo/room-reservation/internal/logging"
	"github.com/iliyamo/room-reservation/internal/middleware"
	"github.com/iliyamo/room-reservation/internal/queue"
	"github.com/iliyamo/room-reservation/internal/repository"
	"github.com/iliyamo/room-reservation/internal/router"
	"github.com/iliyamo/room-reservation/internal/service"
)

func main() {
	// .env is optional; real environment variables are overridden by it for local runs
	if err := godotenv.Overload(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
	}
	cfg := config.Load()

	logger := logging.New(os.Stdout, logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Env: cfg.Env})
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("store init failed", slog.String("driver", cfg.StoreDriver), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.EventsEnabled {
		pub := queue.NewAMQPPublisher(cfg.RabbitURL, logger)
		defer pub.Close()
		events = pub
		consumer := queue.NewConsumer(cfg.RabbitURL, cfg.LogDir, logger)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("reservation consumer stopped", slog.String("error", err.Error()))
			}
		}()
	}

	checker := availability.NewChecker(availability.ParseStrategy(cfg.ConflictStrategy), logger)
	svc := service.NewReservationService(store, checker, events, logger)

	// Redis is optional; without it the cache and rate limiter pass through
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, caching and rate limiting disabled")
	} else {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()

	e := echo.New()
	e.HideBanner = true

	router.RegisterRoutes(e, handler.NewHealthHandler(store))
	router.RegisterReservations(e, handler.NewReservationHandler(svc, logger), router.ReservationMiddleware{
		RateLimit:  middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger),
		Cache:      middleware.NewRedisCache(cacheCfg, rdb, logger),
		Invalidate: middleware.InvalidateCache(cacheCfg, rdb, logger),
	})

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", slog.String("addr", addr), slog.String("env", cfg.Env),
			slog.String("store", cfg.StoreDriver), slog.String("conflict_strategy", cfg.ConflictStrategy))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", slog.String("error", err.Error()))
	}
	logger.Info("server stopped")
}

// openStore returns the reservation store selected by STORE_DRIVER and a
// function releasing it.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (repository.ReservationTxStore, func(), error) {
	if cfg.StoreDriver == config.StoreMemory {
		logger.Warn("using in-memory store; data is lost on restart")
		return repository.NewMemoryReservationRepo(), func() {}, nil
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, nil, err
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return repository.NewReservationRepo(db), func() { _ = db.Close() }, nil
}
