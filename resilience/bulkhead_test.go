package resilience

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewBulkhead(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{})

	if b.config.MaxConcurrent != 10 {
		t.Errorf("MaxConcurrent = %d, want 10", b.config.MaxConcurrent)
	}
}

func TestBulkhead_AcquireRelease(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{
		MaxConcurrent: 2,
		MaxWait:       10 * time.Millisecond,
	})

	if err := b.Acquire(context.Background()); err != nil {
		t.Errorf("First Acquire() error = %v", err)
	}
	if err := b.Acquire(context.Background()); err != nil {
		t.Errorf("Second Acquire() error = %v", err)
	}

	if err := b.Acquire(context.Background()); err != ErrBulkheadFull {
		t.Errorf("Third Acquire() error = %v, want ErrBulkheadFull", err)
	}

	b.Release()

	if err := b.Acquire(context.Background()); err != nil {
		t.Errorf("Acquire after release error = %v", err)
	}
}

func TestBulkhead_AcquireWaitsForRelease(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{
		MaxConcurrent: 1,
	})

	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("First Acquire() error = %v", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		b.Release()
	}()

	// No MaxWait: blocks until the slot is released.
	if err := b.Acquire(context.Background()); err != nil {
		t.Errorf("Second Acquire() error = %v", err)
	}
}

func TestBulkhead_ContextCancellation(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{
		MaxConcurrent: 1,
	})

	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("First Acquire() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	if err := b.Acquire(ctx); err != context.Canceled {
		t.Errorf("Acquire() error = %v, want context.Canceled", err)
	}
	if got := b.Metrics().Rejected; got != 0 {
		t.Errorf("Rejected = %d, want 0 for cancellation", got)
	}
}

func TestBulkhead_Execute(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{
		MaxConcurrent: 1,
	})

	executed := false
	err := b.Execute(context.Background(), func(ctx context.Context) error {
		executed = true
		return nil
	})

	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if !executed {
		t.Error("Operation was not executed")
	}
	if got := b.Metrics().Active; got != 0 {
		t.Errorf("Active after Execute = %d, want 0", got)
	}
}

func TestBulkhead_ReleaseWithoutAcquire(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1})

	b.Release()

	if got := b.Metrics().Available; got != 1 {
		t.Errorf("Available = %d, want 1", got)
	}
}

func TestBulkhead_Concurrent(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{
		MaxConcurrent: 5,
	})

	var (
		wg         sync.WaitGroup
		maxActive  int32
		currActive int32
		completed  int32
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := b.Execute(context.Background(), func(ctx context.Context) error {
				curr := atomic.AddInt32(&currActive, 1)
				defer atomic.AddInt32(&currActive, -1)

				for {
					max := atomic.LoadInt32(&maxActive)
					if curr <= max || atomic.CompareAndSwapInt32(&maxActive, max, curr) {
						break
					}
				}

				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&completed, 1)
				return nil
			})

			if err != nil {
				t.Errorf("Execute() error = %v", err)
			}
		}()
	}

	wg.Wait()

	if max := atomic.LoadInt32(&maxActive); max > 5 {
		t.Errorf("Max concurrent = %d, want <= 5", max)
	}
	if got := atomic.LoadInt32(&completed); got != 20 {
		t.Errorf("Completed = %d, want 20 (waiting callers must not be rejected)", got)
	}
	if got := b.Metrics().MaxActive; got > 5 {
		t.Errorf("Metrics.MaxActive = %d, want <= 5", got)
	}
}

func TestBulkhead_Metrics(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{
		MaxConcurrent: 3,
	})

	_ = b.Acquire(context.Background())
	_ = b.Acquire(context.Background())

	b2 := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: time.Millisecond})
	_ = b2.Acquire(context.Background())
	_ = b2.Acquire(context.Background()) // rejected

	metrics := b.Metrics()

	if metrics.Active != 2 {
		t.Errorf("Metrics.Active = %d, want 2", metrics.Active)
	}
	if metrics.MaxActive != 2 {
		t.Errorf("Metrics.MaxActive = %d, want 2", metrics.MaxActive)
	}
	if metrics.Available != 1 {
		t.Errorf("Metrics.Available = %d, want 1", metrics.Available)
	}
	if metrics.MaxConcurrent != 3 {
		t.Errorf("Metrics.MaxConcurrent = %d, want 3", metrics.MaxConcurrent)
	}

	if got := b2.Metrics().Rejected; got != 1 {
		t.Errorf("Metrics.Rejected = %d, want 1", got)
	}
}
