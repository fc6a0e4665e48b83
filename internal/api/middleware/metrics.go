package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestObserver 接收每個請求的統計
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// Metrics 記錄請求數與延遲，route 使用路由樣板避免標籤爆量
func Metrics(observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		observer.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
