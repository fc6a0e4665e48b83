package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger 可檢查連線的依賴
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc 將函式轉為 Pinger
type PingFunc func(ctx context.Context) error

// Ping 實作 Pinger
func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Storage   string                 `json:"storage"`
	Runtime   map[string]interface{} `json:"runtime"`
	Queue     interface{}            `json:"queue,omitempty"`
}

// ReadinessResponse 就緒檢查響應
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Handler 健康檢查處理程序
type Handler struct {
	version      string
	storage      string
	checks       map[string]Pinger
	checkTimeout time.Duration
	queueStatus  func() interface{}
}

// NewHandler 創建健康檢查處理程序，checks 為就緒檢查要 ping 的依賴
func NewHandler(version, storage string, checks map[string]Pinger) *Handler {
	return &Handler{
		version:      version,
		storage:      storage,
		checks:       checks,
		checkTimeout: 2 * time.Second,
	}
}

// WithQueueStatus 健康檢查附上事件隊列狀態
func (h *Handler) WithQueueStatus(fn func() interface{}) *Handler {
	h.queueStatus = fn
	return h
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Storage:   h.storage,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	if h.queueStatus != nil {
		response.Queue = h.queueStatus()
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器，任何依賴失敗即回傳 503
func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.checkTimeout)
	defer cancel()

	status := http.StatusOK
	resp := ReadinessResponse{
		Status: "ready",
		Checks: make(map[string]string, len(h.checks)),
	}
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			common.LogWarn("Readiness check failed",
				zap.String("dependency", name),
				zap.Error(err),
			)
			resp.Checks[name] = "unavailable"
			resp.Status = "not_ready"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	c.JSON(status, resp)
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
