package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meal-planner/internal/api"
	"meal-planner/internal/core/grocery"
	"meal-planner/internal/core/shopping"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/infrastructure/events"
	"meal-planner/internal/infrastructure/metrics"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogDir); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("storage", cfg.Storage.Driver),
		zap.Strings("event_drivers", cfg.Events.Drivers),
		zap.String("jwt_secret", config.MaskSecret(cfg.Auth.JWTSecret)),
		zap.Int("max_range_days", cfg.Grocery.MaxRangeDays),
	)

	if err := run(cfg); err != nil {
		common.LogError("Server stopped with error", zap.Error(err))
		common.Sync()
		os.Exit(1)
	}
	common.LogInfo("Server exited")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 初始化儲存層
	store, err := buildStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.close()

	// 初始化事件發布
	publisher, closePublisher, err := buildPublisher(ctx, cfg, store.checks)
	if err != nil {
		return err
	}
	defer closePublisher()

	// 載入分類設定
	categories, err := grocery.LoadCategories(cfg.Grocery.CategoriesFile)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}

	var m *metrics.Metrics
	var recorder shopping.Recorder
	if cfg.Metrics.Enabled {
		m = metrics.New()
		recorder = m
	}

	// 非同步發送事件
	var queue *events.Queue
	if cfg.Events.QueueSize > 0 {
		queue = events.NewQueue(publisher, events.QueueOptions{
			Size:     cfg.Events.QueueSize,
			Workers:  cfg.Events.Workers,
			Timeout:  cfg.Events.Webhook.Timeout * time.Duration(cfg.Events.Webhook.RetryCount+1),
			Recorder: recorder,
		})
		publisher = queue
	}

	svc := shopping.NewService(store.meals, store.lists, store.catalog, store.members, store.tx, publisher, shopping.Options{
		MaxRangeDays: cfg.Grocery.MaxRangeDays,
		Categories:   categories,
		Recorder:     recorder,
	})

	// 設置路由
	router, err := api.SetupRouter(cfg, api.Dependencies{
		Service: svc,
		Checks:  store.checks,
		Metrics: m,
		Queue:   queue,
	})
	if err != nil {
		return fmt.Errorf("failed to setup router: %w", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	// 等待中斷信號或伺服器失敗後關閉
	g.Go(func() error {
		<-gctx.Done()
		common.LogInfo("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		if queue != nil {
			if err := queue.Close(shutdownCtx); err != nil {
				common.LogWarn("Event queue not drained", zap.Error(err))
			}
		}
		return nil
	})

	return g.Wait()
}
