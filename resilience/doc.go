// Package resilience retries transient failures with exponential backoff.
//
// Only errors flagged retryable by the errors package are retried by default:
// storage reads of a pick-list may be retried, protocol and hardware errors
// never are.
//
//	data, err := resilience.Retry(ctx, cfg, func() ([]byte, error) {
//	    return storage.ReadAll(ctx, store, path)
//	})
package resilience
