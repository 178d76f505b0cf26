// Package retry classifies HTTP failures and paces retry attempts for
// platform calls.
package retry

import (
	"net/http"
	"time"
)

// MaxRetries bounds both the per-request retry loop and the whole-transfer
// retry coordinator.
const MaxRetries = 20

// BaseDelay is the unit of the linear backoff schedule.
const BaseDelay = 500 * time.Millisecond

// Delay returns the pause before the given 1-based attempt. The schedule
// is linear: attempt n waits n times the base delay.
func Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return BaseDelay * time.Duration(attempt)
}

// Idempotent reports whether a method can be replayed without changing the
// outcome. POST and DELETE are treated as non-idempotent.
func Idempotent(method string) bool {
	return method != http.MethodPost && method != http.MethodDelete
}

// Retryable reports whether a response status warrants another attempt of
// the same request. Rate limiting and temporary unavailability always do;
// bad gateway and gateway timeout only when the method is idempotent.
func Retryable(status int, method string) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return true
	case http.StatusBadGateway, http.StatusGatewayTimeout:
		return Idempotent(method)
	default:
		return false
	}
}

// Fatal reports whether a response status must fail immediately without
// consuming any retry budget.
func Fatal(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}
