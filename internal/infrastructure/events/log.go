package events

import (
	"context"

	"meal-planner/internal/core/shopping"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// LogPublisher 只把事件寫進日誌
type LogPublisher struct{}

// Publish 實作 shopping.Publisher
func (LogPublisher) Publish(ctx context.Context, event shopping.Event) error {
	common.LogInfo("Household event",
		zap.String("type", event.Type),
		zap.String("household_id", event.HouseholdID),
		zap.String("list_id", event.ListID),
		zap.String("item_id", event.ItemID),
		zap.String("actor_id", event.ActorID),
	)
	return nil
}
