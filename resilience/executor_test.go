package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewExecutor(t *testing.T) {
	e := NewExecutor()

	if e.bulkhead != nil {
		t.Error("Default executor should not have bulkhead")
	}
	if e.timeout != nil {
		t.Error("Default executor should not have timeout")
	}
}

func TestExecutor_WithOptions(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{})
	to := NewTimeout(TimeoutConfig{Timeout: time.Second})

	e := NewExecutor(WithBulkhead(b), WithTimeout(to))

	if e.bulkhead != b {
		t.Error("Bulkhead not set")
	}
	if e.timeout != to {
		t.Error("Timeout not set")
	}
}

func TestExecutor_ExecuteNoPatterns(t *testing.T) {
	e := NewExecutor()

	executed := false
	err := e.Execute(context.Background(), func(ctx context.Context) error {
		executed = true
		return nil
	})

	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if !executed {
		t.Error("Operation was not executed")
	}
}

func TestExecutor_ExecuteWithTimeout(t *testing.T) {
	e := NewExecutor(WithTimeout(NewTimeout(TimeoutConfig{Timeout: 20 * time.Millisecond})))

	err := e.Execute(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() error = %v, want ErrTimeout", err)
	}
}

func TestExecutor_NilGuards(t *testing.T) {
	e := NewExecutor(WithBulkhead(nil), WithTimeout(nil))

	want := errors.New("boom")
	if err := e.Execute(context.Background(), func(context.Context) error { return want }); err != want {
		t.Errorf("Execute() error = %v, want %v", err, want)
	}
}

func TestExecutor_BoundsConcurrency(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 3})
	e := NewExecutor(WithBulkhead(b), WithTimeout(NewTimeout(TimeoutConfig{Timeout: time.Second})))

	var active, peak atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = e.Execute(context.Background(), func(ctx context.Context) error {
				n := active.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				active.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()

	if got := peak.Load(); got > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", got)
	}
	if m := b.Metrics(); m.Active != 0 {
		t.Errorf("Active = %d after completion, want 0", m.Active)
	}
}

func TestExecutor_TimeoutStartsAfterSlot(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1})
	e := NewExecutor(WithBulkhead(b), WithTimeout(NewTimeout(TimeoutConfig{Timeout: 50 * time.Millisecond})))

	if err := b.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	go func() {
		time.Sleep(80 * time.Millisecond)
		b.Release()
	}()

	err := e.Execute(context.Background(), func(ctx context.Context) error {
		return ctx.Err()
	})
	if err != nil {
		t.Errorf("Execute() error = %v, want nil once the slot frees", err)
	}
}
