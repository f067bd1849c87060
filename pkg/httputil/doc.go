// Package httputil provides HTTP helpers shared by the remote graph store.
//
// # Retry
//
// [Retry] re-runs an operation with exponential backoff. Only errors wrapped
// in [RetryableError] are retried; everything else is returned immediately,
// so callers decide which failures are transient:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    if resp.StatusCode >= 500 {
//	        return &httputil.RetryableError{Err: fmt.Errorf("status %d", resp.StatusCode)}
//	    }
//	    return decode(resp.Body)
//	})
//
// [RetryWithBackoff] uses 3 attempts starting at a 1 second delay.
//
// # Status mapping
//
// [StatusError] maps an HTTP status code to the structured error codes of
// pkg/errors. 5xx and 429 responses come back wrapped as retryable.
package httputil
