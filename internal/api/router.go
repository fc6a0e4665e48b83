package api

import (
	"fmt"
	"time"

	"meal-planner/internal/api/handlers/grocery"
	"meal-planner/internal/api/handlers/health"
	"meal-planner/internal/api/middleware"
	"meal-planner/internal/core/shopping"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/infrastructure/events"
	"meal-planner/internal/infrastructure/metrics"
	"meal-planner/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies 路由需要的服務
type Dependencies struct {
	Service *shopping.Service
	Checks  map[string]health.Pinger
	Metrics *metrics.Metrics // 未啟用時為 nil
	Queue   *events.Queue    // 同步發送時為 nil
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if deps.Service == nil {
		return nil, fmt.Errorf("shopping service is required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(requestid.New())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", middleware.IdempotencyKeyHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: !allowsAnyOrigin(cfg.Server.AllowOrigins),
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodySize))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg.App.Version, cfg.Storage.Driver, deps.Checks)
	if deps.Queue != nil {
		healthHandler.WithQueueStatus(func() interface{} { return deps.Queue.Status() })
	}
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	if deps.Metrics != nil {
		router.GET(cfg.Metrics.Path, gin.WrapH(deps.Metrics.Handler()))
	}

	// API 路由組，驗證後再依成員限流
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(middleware.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)))
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// 只有產生清單依 Idempotency-Key 去重，切換購買狀態可連續送出
	grocery.NewHandler(deps.Service, cfg.App.Debug).Register(api, middleware.Deduplication(cfg.DedupWindow))

	common.LogInfo("Router setup completed successfully",
		zap.String("storage", cfg.Storage.Driver),
		zap.Strings("event_drivers", cfg.Events.Drivers),
		zap.Bool("metrics_enabled", deps.Metrics != nil),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodySize),
		zap.Int("categories", len(deps.Service.Categories())),
	)

	return router, nil
}

// allowsAnyOrigin 萬用來源不能搭配 credentials
func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
