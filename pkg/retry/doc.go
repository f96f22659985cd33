// Package retry provides simple exponential backoff retry logic for transient failures.
//
// The lattice protocol itself never retries inside a query; a probe either
// completes within its window or it doesn't. This package exists for callers
// that want to retry a whole query after a transport failure, and for
// connection establishment against the bus.
//
// # Core Functions
//
//   - Do: Execute function with retry and exponential backoff
//   - DoWithResult: Execute function with retry, returns both result and error
//
// # Configuration Presets
//
//   - DefaultConfig(): 3 attempts, 100ms-5s delay (normal operations)
//   - Quick(): 10 attempts, 50ms-1s delay (connection startup)
//   - Persistent(): 30 attempts, 200ms-10s delay (critical resources)
//
// # Usage
//
// Retry a whole probe after a transport failure:
//
//	snapshot, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (*probe.AggregatedSnapshot, error) {
//	    return client.ProbeAll(ctx)
//	})
//
// Wrap errors with retry.NonRetryable to fail immediately regardless of the
// remaining attempt budget. Context cancellation aborts both the current
// backoff sleep and any further attempts.
package retry
