package events

import (
	"context"
	"errors"

	"meal-planner/internal/core/shopping"
)

// Multi 依序發送給所有發布器，彙整所有錯誤
type Multi []shopping.Publisher

// Publish 實作 shopping.Publisher
func (m Multi) Publish(ctx context.Context, event shopping.Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
