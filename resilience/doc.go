// Package resilience provides the concurrency guards used around upstream probes.
//
// Two patterns are provided, plus an Executor that composes them:
//
//   - Bulkhead: limits the number of concurrent operations sharing it. The
//     probe client holds one slot per in-flight HTTP request so fan-out over
//     products and editions never exceeds a fixed request budget.
//
//   - Timeout: applies a per-operation deadline through the context.
//
// # Usage
//
//	exec := resilience.NewExecutor(
//	    resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{
//	        MaxConcurrent: 32,
//	    })),
//	    resilience.WithTimeout(resilience.NewTimeout(resilience.TimeoutConfig{
//	        Timeout: 10 * time.Second,
//	    })),
//	)
//
//	err := exec.Execute(ctx, fetch)
//
// The deadline starts once a bulkhead slot is held, so time spent queueing
// does not count against it.
package resilience
