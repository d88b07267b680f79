// Package httputil retries transient HTTP failures.
//
// Registry clients wrap errors that are worth another attempt (network
// failures, 5xx responses, 429 rate limiting) in a [RetryableError] and run
// the request through [Retry] or [RetryWithBackoff]. Everything else is
// returned on the first failure.
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return fetchModInfo(ctx, name)
//	})
//
// Defaults: 3 attempts, 1 second initial delay doubling after each failure.
//
// Archive downloads are deliberately not routed through here; a failed
// download aborts immediately.
package httputil
