package sender

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestDispatcherRunsEachJobOnce(t *testing.T) {
	d := NewDispatcher(Options{Workers: 2, QueueSize: 8})
	var calls atomic.Int32
	for i := range 5 {
		fail := i == 2
		err := d.Enqueue(context.Background(), Job{Action: "test", Run: func(context.Context) error {
			calls.Add(1)
			if fail {
				return errors.New("boom")
			}
			return nil
		}})
		if err != nil {
			t.Fatalf("enqueue #%d: %v", i, err)
		}
	}
	d.Close()

	if got := calls.Load(); got != 5 {
		t.Fatalf("calls = %d, want 5 (no retries)", got)
	}
	if d.Completed() != 4 || d.ErrorCount() != 1 {
		t.Fatalf("completed=%d errors=%d, want 4/1", d.Completed(), d.ErrorCount())
	}
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1})
	d.Close()
	d.Close()
	err := d.Enqueue(context.Background(), Job{Run: func(context.Context) error { return nil }})
	if !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("err = %v, want ErrQueueClosed", err)
	}
}

func TestDispatcherQueueFull(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, QueueSize: 1})
	release := make(chan struct{})
	started := make(chan struct{})
	block := Job{Run: func(context.Context) error {
		close(started)
		<-release
		return nil
	}}
	if err := d.Enqueue(context.Background(), block); err != nil {
		t.Fatalf("enqueue blocker: %v", err)
	}
	<-started
	noop := Job{Run: func(context.Context) error { return nil }}
	if err := d.Enqueue(context.Background(), noop); err != nil {
		t.Fatalf("enqueue into free slot: %v", err)
	}
	if err := d.Enqueue(context.Background(), noop); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("err = %v, want ErrQueueFull", err)
	}
	close(release)
	d.Close()
}

func TestDispatcherJobTimeout(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, JobTimeout: 10 * time.Millisecond})
	var sawDeadline atomic.Bool
	_ = d.Enqueue(context.Background(), Job{Run: func(ctx context.Context) error {
		<-ctx.Done()
		sawDeadline.Store(errors.Is(ctx.Err(), context.DeadlineExceeded))
		return ctx.Err()
	}})
	d.Close()
	if !sawDeadline.Load() {
		t.Fatalf("job context should hit its deadline")
	}
	if d.ErrorCount() != 1 {
		t.Fatalf("errors = %d, want 1", d.ErrorCount())
	}
}

func TestEnqueueRejectsNilRun(t *testing.T) {
	d := NewDispatcher(Options{})
	defer d.Close()
	if err := d.Enqueue(context.Background(), Job{}); err == nil {
		t.Fatalf("expected error for nil run")
	}
}
