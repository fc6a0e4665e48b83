package postgres

import (
	"context"
	"fmt"
)

// TxManager 以 context 傳遞交易
// 不支援巢狀 RunInTx
type TxManager struct {
	db DB
}

// NewTxManager 創建交易管理器
func NewTxManager(db DB) *TxManager {
	return &TxManager{db: db}
}

// RunInTx 在交易中執行 fn，fn 回傳錯誤或 panic 時 rollback
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback failed: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
