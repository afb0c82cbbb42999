package resilience

import (
	"context"
)

// Executor composes the guards applied around one upstream request.
type Executor struct {
	bulkhead *Bulkhead
	timeout  *Timeout
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates a new resilience executor. With no options it runs
// operations unguarded.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithBulkhead holds a slot of b for the whole operation. A nil b is ignored.
func WithBulkhead(b *Bulkhead) ExecutorOption {
	return func(e *Executor) {
		e.bulkhead = b
	}
}

// WithTimeout applies t inside the bulkhead slot. A nil or disabled t is
// ignored.
func WithTimeout(t *Timeout) ExecutorOption {
	return func(e *Executor) {
		e.timeout = t
	}
}

// Execute runs op through the configured guards.
//
// The execution order is:
// 1. Bulkhead (if configured) - waits for an in-flight slot
// 2. Timeout (if configured) - starts the deadline once a slot is held
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	execute := op

	if e.timeout.Enabled() {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.timeout.Execute(ctx, inner)
		}
	}

	if e.bulkhead != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.bulkhead.Execute(ctx, inner)
		}
	}

	return execute(ctx)
}
