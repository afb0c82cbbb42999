package resilience

import (
	"context"
	"errors"
	"time"
)

// TimeoutConfig configures the timeout wrapper.
type TimeoutConfig struct {
	// Timeout is the maximum duration for the operation.
	// Zero or negative disables the deadline.
	Timeout time.Duration
}

// Timeout bounds operations with a deadline.
//
// The operation runs on the caller's goroutine and must honor ctx: when the
// deadline passes the context is cancelled and the operation is expected to
// return promptly. HTTP requests built with the context do.
type Timeout struct {
	config TimeoutConfig
}

// NewTimeout creates a new timeout wrapper.
func NewTimeout(config TimeoutConfig) *Timeout {
	return &Timeout{config: config}
}

// Enabled reports whether a deadline is applied.
func (t *Timeout) Enabled() bool {
	return t != nil && t.config.Timeout > 0
}

// Execute runs the operation with a timeout. A deadline hit by this wrapper
// is reported as ErrTimeout joined with the operation's own error; a parent
// context that is done is reported as-is.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	if !t.Enabled() {
		return op(ctx)
	}

	opCtx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	err := op(opCtx)
	if err != nil && ctx.Err() == nil && errors.Is(opCtx.Err(), context.DeadlineExceeded) {
		return errors.Join(ErrTimeout, err)
	}
	return err
}

// Config returns the timeout configuration.
func (t *Timeout) Config() TimeoutConfig {
	return t.config
}

// ExecuteWithTimeout is a convenience function to run an operation with timeout.
func ExecuteWithTimeout(ctx context.Context, timeout time.Duration, op func(context.Context) error) error {
	return NewTimeout(TimeoutConfig{Timeout: timeout}).Execute(ctx, op)
}
