package events

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"meal-planner/internal/core/shopping"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// WebhookPublisher 將家庭事件 POST 到即時閘道
type WebhookPublisher struct {
	client *resty.Client
	url    string
}

// NewWebhookPublisher 創建 webhook 發布器
func NewWebhookPublisher(cfg config.WebhookConfig) *WebhookPublisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "meal-planner")

	return &WebhookPublisher{
		client: client,
		url:    cfg.URL,
	}
}

// Publish 實作 shopping.Publisher
func (p *WebhookPublisher) Publish(ctx context.Context, event shopping.Event) error {
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("X-Event-Type", event.Type).
		SetBody(event).
		Post(p.url)
	if err != nil {
		return fmt.Errorf("failed to send event to webhook: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode(), resp.String())
	}

	common.LogDebug("Event delivered to webhook",
		zap.String("type", event.Type),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("latency", resp.Time()),
	)
	return nil
}
