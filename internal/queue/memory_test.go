package queue

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryQueueRoundTrip(t *testing.T) {
	q := NewMemory(testLogger(), 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handled := make(chan Task, 1)
	go func() {
		_ = q.Worker(ctx, TaskTypeIngest, func(_ context.Context, task Task) error {
			handled <- task
			return nil
		})
	}()

	task := Task{Type: TaskTypeIngest, Payload: []byte(`{"document_id":"x"}`)}
	if err := q.Enqueue(ctx, task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case got := <-handled:
		if string(got.Payload) != string(task.Payload) {
			t.Errorf("payload mismatch: %s", got.Payload)
		}
		if got.ID.String() == "00000000-0000-0000-0000-000000000000" {
			t.Error("expected an id assigned on enqueue")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("task never reached the worker")
	}
}

func TestMemoryQueueRequiresType(t *testing.T) {
	q := NewMemory(testLogger(), 4)
	if err := q.Enqueue(context.Background(), Task{}); err == nil {
		t.Fatal("expected error for a task without a type")
	}
}

func TestMemoryQueueFull(t *testing.T) {
	q := NewMemory(testLogger(), 1)
	ctx := context.Background()
	if err := q.Enqueue(ctx, Task{Type: TaskTypeIngest}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// No worker is draining, so the second enqueue must fail fast
	// instead of blocking the upload path.
	if err := q.Enqueue(ctx, Task{Type: TaskTypeIngest}); err == nil {
		t.Fatal("expected error when the queue is full")
	}
}

func TestMemoryQueueDropsUnexpectedType(t *testing.T) {
	q := NewMemory(testLogger(), 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handled := make(chan Task, 2)
	go func() {
		_ = q.Worker(ctx, TaskTypeIngest, func(_ context.Context, task Task) error {
			handled <- task
			return nil
		})
	}()

	if err := q.Enqueue(ctx, Task{Type: TaskType("other")}); err != nil {
		t.Fatal(err)
	}
	if err := q.Enqueue(ctx, Task{Type: TaskTypeIngest}); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-handled:
		if got.Type != TaskTypeIngest {
			t.Errorf("worker received task of type %s", got.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ingest task never reached the worker")
	}
}

func TestMemoryQueueRetriesFailedTask(t *testing.T) {
	q := NewMemory(testLogger(), 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	attempts := make(chan int, 4)
	go func() {
		_ = q.Worker(ctx, TaskTypeIngest, func(_ context.Context, task Task) error {
			attempts <- task.Attempts
			if task.Attempts == 0 {
				return errors.New("transient")
			}
			return nil
		})
	}()

	if err := q.Enqueue(ctx, Task{Type: TaskTypeIngest, MaxAttempts: 2}); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for want := 0; want < 2; want++ {
		select {
		case got := <-attempts:
			if got != want {
				t.Fatalf("expected attempt %d, got %d", want, got)
			}
		case <-deadline:
			t.Fatalf("timed out waiting for attempt %d", want)
		}
	}
}

func TestMemoryQueueWorkerStopsOnCancel(t *testing.T) {
	q := NewMemory(testLogger(), 4)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- q.Worker(ctx, TaskTypeIngest, func(context.Context, Task) error { return nil })
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}
