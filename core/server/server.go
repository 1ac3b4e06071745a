package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quietblock-api/core/cache"
	"quietblock-api/core/config"
	"quietblock-api/core/constants"
	"quietblock-api/core/database"
	"quietblock-api/core/logger"
	"quietblock-api/core/middleware"
	"quietblock-api/core/queue"
	"quietblock-api/modules/notification"
	"quietblock-api/modules/quietblock"
	"quietblock-api/modules/reminder"
	"quietblock-api/modules/user"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// Run boots the whole service: config, storage, HTTP routes and the
// background scheduler. It blocks until SIGINT/SIGTERM and then shuts
// everything down in reverse order.
func Run() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.Get()
	logger.Init(cfg.LogLevel)

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to init database: %w", err)
	}
	defer db.Close()

	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to init redis: %w", err)
	}
	defer redisCache.Close()

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			logger.Info("Request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
			)
			return nil
		},
	}))
	e.Use(echoMiddleware.CORS())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	mw := middleware.NewMiddleware(redisCache)
	api := e.Group("/api/v1")

	notificationSvc := notification.Init(api, db, mw)
	user.Init(api, db, redisCache, mw)
	blockSvc, blockRepo := quietblock.Init(api, db, redisCache, mw)
	reminderSvc := reminder.Init(api, db, mw, blockRepo, notificationSvc)

	q := queue.New(cfg.Redis)
	q.Handle(constants.TaskReminderCheck, func(ctx context.Context) error {
		_, appErr := reminderSvc.CheckDue(ctx)
		if appErr != nil {
			return appErr
		}
		return nil
	})
	q.Handle(constants.TaskBlockSweep, func(ctx context.Context) error {
		if appErr := blockSvc.SweepStatuses(ctx); appErr != nil {
			return appErr
		}
		return nil
	})
	if err := q.RegisterPeriodic(cfg.Scheduler.CheckInterval, constants.TaskReminderCheck); err != nil {
		return fmt.Errorf("failed to register reminder check: %w", err)
	}
	if err := q.RegisterPeriodic(cfg.Scheduler.SweepInterval, constants.TaskBlockSweep); err != nil {
		return fmt.Errorf("failed to register block sweep: %w", err)
	}
	if err := q.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("Server:Start:Error:", err)
		}
	}()
	logger.Info("Server:Started", "addr", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server:ShuttingDown")
	q.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("Server:Stopped")
	return nil
}
