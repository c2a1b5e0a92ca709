// Package queue carries ingestion tasks from the upload pipeline to the
// ingestion worker. The in-process implementation is the single-binary
// default; NATS is available for running the worker out of process.
package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TaskType enumerates supported task categories.
type TaskType string

const TaskTypeIngest TaskType = "ingest"

// Task is a unit of work. Ingest task payloads carry the document id and
// stored path.
type Task struct {
	ID          uuid.UUID
	Type        TaskType
	Payload     []byte
	Attempts    int
	MaxAttempts int
	NotBefore   time.Time
}

type Handler func(context.Context, Task) error

// Queue exposes a minimal contract to enqueue and consume tasks.
type Queue interface {
	Enqueue(ctx context.Context, task Task) error
	Worker(ctx context.Context, taskType TaskType, handler Handler) error
}

// ExponentialBackoff returns base * 2^attempt.
func ExponentialBackoff(attempt int, base time.Duration) time.Duration {
	return base * (1 << attempt)
}

// EnqueueWithRetry attempts to enqueue with retries and exponential backoff.
func EnqueueWithRetry(ctx context.Context, q Queue, task Task, attempts int, base time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		if err := q.Enqueue(ctx, task); err == nil {
			return nil
		} else if attempt == attempts-1 {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(ExponentialBackoff(attempt, base)):
		}
	}
	return nil
}
