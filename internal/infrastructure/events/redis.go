package events

import (
	"context"
	"encoding/json"
	"fmt"

	"meal-planner/internal/core/shopping"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// redisPublishClient RedisPublisher 需要的 Redis 指令
type redisPublishClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// NewRedisClient 創建 Redis 連線並測試連接
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// RedisPublisher 將家庭事件發布到 Redis channel，由即時層轉發給其他成員
type RedisPublisher struct {
	client redisPublishClient
	prefix string
}

// NewRedisPublisher 創建 Redis 發布器，channel 名稱為 prefix + householdID
func NewRedisPublisher(client redisPublishClient, prefix string) *RedisPublisher {
	return &RedisPublisher{client: client, prefix: prefix}
}

// Channel 家庭事件 channel 名稱
func (p *RedisPublisher) Channel(householdID string) string {
	return p.prefix + householdID
}

// Publish 實作 shopping.Publisher
func (p *RedisPublisher) Publish(ctx context.Context, event shopping.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := p.Channel(event.HouseholdID)
	receivers, err := p.client.Publish(ctx, channel, data).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}

	common.LogDebug("Event published to Redis",
		zap.String("channel", channel),
		zap.String("type", event.Type),
		zap.Int64("receivers", receivers),
	)
	return nil
}
