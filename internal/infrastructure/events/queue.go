package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"meal-planner/internal/core/shopping"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull 隊列已滿，事件被丟棄
	ErrQueueFull = errors.New("event queue is full")
	// ErrQueueClosed 隊列已關閉
	ErrQueueClosed = errors.New("event queue is closed")
)

// QueueOptions 隊列設定
type QueueOptions struct {
	Size     int
	Workers  int
	Timeout  time.Duration // 單一事件的發送時限
	Recorder shopping.Recorder
}

// QueueStatus 隊列狀態
type QueueStatus struct {
	QueueLength    int   `json:"queue_length"`
	ProcessedCount int64 `json:"processed_count"`
	FailedCount    int64 `json:"failed_count"`
	MaxQueueSize   int   `json:"max_queue_size"`
	Workers        int   `json:"workers"`
}

// Queue 非同步發送事件，讓請求不必等待 Redis 或 webhook
type Queue struct {
	next      shopping.Publisher
	queue     chan shopping.Event
	opts      QueueOptions
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	processed int64
	failed    int64
}

// NewQueue 創建隊列並啟動 workers
func NewQueue(next shopping.Publisher, opts QueueOptions) *Queue {
	if opts.Size <= 0 {
		opts.Size = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	q := &Queue{
		next:  next,
		queue: make(chan shopping.Event, opts.Size),
		opts:  opts,
	}
	for i := 0; i < opts.Workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}

	common.LogInfo("Event queue started",
		zap.Int("max_queue_size", opts.Size),
		zap.Int("workers", opts.Workers),
	)
	return q
}

// Publish 將事件加入隊列，不會阻塞
func (q *Queue) Publish(ctx context.Context, event shopping.Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()

	for event := range q.queue {
		ctx, cancel := context.WithTimeout(context.Background(), q.opts.Timeout)
		err := q.next.Publish(ctx, event)
		cancel()

		atomic.AddInt64(&q.processed, 1)
		if err != nil {
			atomic.AddInt64(&q.failed, 1)
			if q.opts.Recorder != nil {
				q.opts.Recorder.PublishFailed(event.Type)
			}
			common.LogWarn("Failed to deliver household event",
				zap.Int("worker", id),
				zap.String("type", event.Type),
				zap.String("household_id", event.HouseholdID),
				zap.Error(err),
			)
		}
	}
}

// Status 取得隊列狀態
func (q *Queue) Status() QueueStatus {
	return QueueStatus{
		QueueLength:    len(q.queue),
		ProcessedCount: atomic.LoadInt64(&q.processed),
		FailedCount:    atomic.LoadInt64(&q.failed),
		MaxQueueSize:   q.opts.Size,
		Workers:        q.opts.Workers,
	}
}

// Close 停止接收新事件並等待隊列清空，ctx 到期時放棄剩餘事件
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.queue)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		common.LogWarn("Event queue closed before draining",
			zap.Int("remaining", len(q.queue)),
		)
		return ctx.Err()
	}
}
