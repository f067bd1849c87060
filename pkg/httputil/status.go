package httputil

import (
	"net/http"

	"github.com/lifetree/lifetree/pkg/errors"
)

// StatusError converts a response status into a structured error.
// Returns nil for 2xx. Server errors and 429 are wrapped in [RetryableError].
func StatusError(status int, url string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return errors.New(errors.ErrCodeUnauthorized, "%s: status %d", url, status)
	case status == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s: not found", url)
	case status == http.StatusTooManyRequests, status >= 500:
		return &RetryableError{Err: errors.New(errors.ErrCodeNetwork, "%s: status %d", url, status)}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "%s: unexpected status %d", url, status)
	}
}
