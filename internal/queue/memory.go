package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NewMemory constructs an in-process channel-backed queue. Tasks do not
// survive a restart; that is acceptable here because a lost ingest task
// leaves the document in a retryable failed state.
func NewMemory(log *slog.Logger, size int) Queue {
	if size <= 0 {
		size = 64
	}
	return &memoryQueue{log: log, tasks: make(chan Task, size)}
}

type memoryQueue struct {
	log   *slog.Logger
	tasks chan Task

	mu     sync.Mutex
	closed bool
}

func (q *memoryQueue) Enqueue(ctx context.Context, task Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.Type == "" {
		return errors.New("task type required")
	}
	q.mu.Lock()
	closed := q.closed
	q.mu.Unlock()
	if closed {
		return errors.New("queue closed")
	}
	select {
	case q.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.New("queue full")
	}
}

func (q *memoryQueue) Worker(ctx context.Context, taskType TaskType, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			q.mu.Lock()
			q.closed = true
			q.mu.Unlock()
			return ctx.Err()
		case task := <-q.tasks:
			if task.Type != taskType {
				q.log.Warn("dropping task of unexpected type", "id", task.ID, "type", task.Type)
				continue
			}
			if wait := time.Until(task.NotBefore); wait > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(wait):
				}
			}
			if err := handler(ctx, task); err != nil {
				q.retryTask(ctx, task, err)
			}
		}
	}
}

func (q *memoryQueue) retryTask(ctx context.Context, task Task, handlerErr error) {
	task.Attempts++
	if task.MaxAttempts == 0 {
		task.MaxAttempts = 5
	}

	if task.Attempts < task.MaxAttempts {
		task.NotBefore = time.Now().Add(ExponentialBackoff(task.Attempts, time.Second))
		if err := q.Enqueue(ctx, task); err != nil {
			q.log.Error("failed to re-enqueue task after failure", "id", task.ID, "type", task.Type, "original_err", handlerErr, "enqueue_err", err)
		}
	} else {
		q.log.Error("task permanently failed", "id", task.ID, "type", task.Type, "original_err", handlerErr)
	}
}
