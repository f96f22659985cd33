// Package errors provides standardized error handling patterns for the lattice client.
//
// # Overview
//
// The package implements a three-class error classification system:
// Transient (temporary, retryable), Invalid (bad input, non-retryable), and
// Fatal (unrecoverable, stop processing). Classification lets callers make
// informed decisions about retrying a query without hardcoded error string
// matching.
//
// The query protocol maps onto this taxonomy as follows:
//
//   - Transport failures (publish/subscribe/connection) are Transient: the
//     caller may retry the whole query, the client never retries internally.
//   - Per-reply decode failures are Invalid: the offending reply is dropped
//     and the query continues.
//   - Collector misuse (reusing a closed collector) is Fatal.
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "Client", "Publish", "broadcast probe")
//	errors.WrapInvalid(err, "Decoder", "Decode", "parse reply")
//	errors.WrapFatal(err, "Collector", "Run", "collector reuse")
//
// # Standard Error Variables
//
// Pre-defined error variables cover the protocol's error taxonomy: transport
// conditions (ErrNotConnected, ErrConnectionLost), decode failures
// (ErrMalformedEncoding, ErrSchemaMismatch, ErrCorrelationMissing), and
// query outcomes (ErrQueryCancelled, ErrInsufficientReplies). Use these with
// errors.Is rather than matching message strings.
//
// # Retry Configuration
//
// RetryConfig bridges classification to the pkg/retry backoff helper for
// callers that retry whole queries:
//
//	cfg := errors.DefaultRetryConfig()
//	err := retry.Do(ctx, cfg.ToRetryConfig(), func() error {
//	    _, err := client.ProbeAll(ctx)
//	    return err
//	})
//
// All classification and wrapping operations are safe for concurrent use.
package errors
