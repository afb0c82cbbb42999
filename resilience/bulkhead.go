package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// BulkheadConfig configures the bulkhead.
type BulkheadConfig struct {
	// MaxConcurrent is the maximum number of concurrent operations.
	// Default: 10
	MaxConcurrent int

	// MaxWait is the maximum time to wait for a slot.
	// Default: 0 (wait until the context is done)
	MaxWait time.Duration
}

// Bulkhead limits concurrent operations. Probes share one bulkhead per
// process so the number of in-flight upstream requests stays bounded no
// matter how many products and editions are being checked.
type Bulkhead struct {
	config BulkheadConfig
	sem    *semaphore.Weighted

	mu        sync.Mutex
	active    int
	maxActive int
	rejected  int64
}

// NewBulkhead creates a new bulkhead.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}

	return &Bulkhead{
		config: config,
		sem:    semaphore.NewWeighted(int64(config.MaxConcurrent)),
	}
}

// Acquire acquires a slot in the bulkhead, blocking until one frees up.
// Returns ErrBulkheadFull if MaxWait elapses first, or ctx.Err() if the
// context is done.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	if b.sem.TryAcquire(1) {
		b.admit()
		return nil
	}

	waitCtx := ctx
	if b.config.MaxWait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, b.config.MaxWait)
		defer cancel()
	}

	if err := b.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			b.mu.Lock()
			b.rejected++
			b.mu.Unlock()
			return ErrBulkheadFull
		}
		return ctx.Err()
	}

	b.admit()
	return nil
}

func (b *Bulkhead) admit() {
	b.mu.Lock()
	b.active++
	if b.active > b.maxActive {
		b.maxActive = b.active
	}
	b.mu.Unlock()
}

// Release releases a slot in the bulkhead. Releasing without a matching
// Acquire is a no-op.
func (b *Bulkhead) Release() {
	b.mu.Lock()
	if b.active == 0 {
		b.mu.Unlock()
		return
	}
	b.active--
	b.mu.Unlock()

	b.sem.Release(1)
}

// Execute runs the operation within the bulkhead.
func (b *Bulkhead) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.Acquire(ctx); err != nil {
		return err
	}
	defer b.Release()

	return op(ctx)
}

// Metrics returns current bulkhead metrics.
func (b *Bulkhead) Metrics() BulkheadMetrics {
	b.mu.Lock()
	defer b.mu.Unlock()

	return BulkheadMetrics{
		Active:        b.active,
		MaxActive:     b.maxActive,
		Available:     b.config.MaxConcurrent - b.active,
		MaxConcurrent: b.config.MaxConcurrent,
		Rejected:      b.rejected,
	}
}

// BulkheadMetrics contains bulkhead statistics.
type BulkheadMetrics struct {
	Active        int
	MaxActive     int
	Available     int
	MaxConcurrent int
	Rejected      int64
}
