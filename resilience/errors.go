package resilience

import "errors"

// Sentinel errors for resilience operations.
var (
	// ErrBulkheadFull is returned when no bulkhead slot frees up within MaxWait.
	ErrBulkheadFull = errors.New("resilience: bulkhead at capacity")

	// ErrTimeout is returned when an operation exceeds its deadline.
	ErrTimeout = errors.New("resilience: operation timed out")
)
