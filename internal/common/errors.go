// Package common defines the sentinel errors shared across the exporter.
// Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Handshake errors: rejected consumer credentials, bad or empty
	// verification code.
	ErrAuth = errors.New("authorization failed")

	// Transport-level failures (DNS, TLS, connection reset).
	ErrNet = errors.New("network error")

	// The retry budget for throttled data calls was exhausted.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// A response body that should have been JSON was not.
	ErrDecode = errors.New("malformed response body")

	// A binary attachment fetch failed. Recorded per attachment in the
	// board record, never fatal for the export.
	ErrAttachmentDownload = errors.New("attachment download failed")
)

// APIError is returned when the service rejects a well-formed request with
// a non-throttling status (not found, permission denied, ...). Such
// requests are not retried.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Body)
}
