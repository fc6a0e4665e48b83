package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// requestCache 最近請求指紋
type requestCache struct {
	sync.Mutex
	requests  map[string]time.Time
	window    time.Duration
	lastSweep time.Time
}

// seen 記錄指紋，若在時間窗內已出現過回傳 true
func (rc *requestCache) seen(fingerprint string, now time.Time) bool {
	rc.Lock()
	defer rc.Unlock()

	// 定期清理過期指紋
	if now.Sub(rc.lastSweep) > 10*rc.window {
		for k, t := range rc.requests {
			if now.Sub(t) > rc.window {
				delete(rc.requests, k)
			}
		}
		rc.lastSweep = now
	}

	if last, ok := rc.requests[fingerprint]; ok && now.Sub(last) <= rc.window {
		return true
	}
	rc.requests[fingerprint] = now
	return false
}

// IdempotencyKeyHeader 用戶端提供的重送識別
const IdempotencyKeyHeader = "Idempotency-Key"

// Deduplication 擋下時間窗內同一成員、路徑與 Idempotency-Key 的重送，未帶標頭的請求直接放行
func Deduplication(window time.Duration) gin.HandlerFunc {
	return deduplication(window, time.Now)
}

func deduplication(window time.Duration, now func() time.Time) gin.HandlerFunc {
	if window <= 0 {
		window = time.Minute
	}
	cache := &requestCache{
		requests:  make(map[string]time.Time),
		window:    window,
		lastSweep: now(),
	}

	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if key == "" {
			c.Next()
			return
		}

		// 生成請求指紋
		hash := sha256.Sum256([]byte(key))
		fingerprint := MemberID(c) + ":" + c.Request.URL.Path + ":" + hex.EncodeToString(hash[:])

		if cache.seen(fingerprint, now()) {
			common.LogInfo("Duplicate request rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("member_id", MemberID(c)),
			)
			abortWithError(c, common.ErrTooManyRequests.WithMessage("duplicate request"))
			return
		}

		c.Next()
	}
}
