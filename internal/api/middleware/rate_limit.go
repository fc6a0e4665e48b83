package middleware

import (
	"fmt"
	"math"
	"sync"
	"time"

	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiter 令牌桶限流器
type RateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64 // 每秒補充的令牌
	lastTime time.Time
	now      func() time.Time
}

// NewRateLimiter 創建新的限流器
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return newRateLimiter(requests, window, time.Now)
}

func newRateLimiter(requests int, window time.Duration, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		tokens:   float64(requests),
		capacity: float64(requests),
		rate:     float64(requests) / window.Seconds(),
		lastTime: now(),
		now:      now,
	}
}

// Allow 檢查是否允許請求
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	elapsed := now.Sub(rl.lastTime).Seconds()
	rl.lastTime = now

	// 添加新令牌
	rl.tokens = math.Min(rl.capacity, rl.tokens+elapsed*rl.rate)

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// full 令牌已補滿，代表此客戶端閒置
func (rl *RateLimiter) full() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	elapsed := rl.now().Sub(rl.lastTime).Seconds()
	return rl.tokens+elapsed*rl.rate >= rl.capacity
}

// clientLimiters 每個客戶端各自一個令牌桶
type clientLimiters struct {
	mu        sync.Mutex
	limiters  map[string]*RateLimiter
	requests  int
	window    time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func (cl *clientLimiters) get(key string) *RateLimiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := cl.now()
	if now.Sub(cl.lastSweep) > 10*cl.window {
		for k, l := range cl.limiters {
			if l.full() {
				delete(cl.limiters, k)
			}
		}
		cl.lastSweep = now
	}

	l, ok := cl.limiters[key]
	if !ok {
		l = newRateLimiter(cl.requests, cl.window, cl.now)
		cl.limiters[key] = l
	}
	return l
}

// RateLimit 限流中間件，已驗證的請求以成員計算，其餘以 IP 計算
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	return rateLimit(requests, window, time.Now)
}

func rateLimit(requests int, window time.Duration, now func() time.Time) gin.HandlerFunc {
	clients := &clientLimiters{
		limiters:  make(map[string]*RateLimiter),
		requests:  requests,
		window:    window,
		now:       now,
		lastSweep: now(),
	}

	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if memberID := MemberID(c); memberID != "" {
			key = "member:" + memberID
		}

		if !clients.get(key).Allow() {
			common.LogInfo("Rate limit exceeded",
				zap.String("client", key),
				zap.String("path", c.Request.URL.Path),
			)

			c.Header("Retry-After", fmt.Sprintf("%d", int(math.Ceil(window.Seconds()))))
			abortWithError(c, common.ErrTooManyRequests)
			return
		}

		c.Next()
	}
}
