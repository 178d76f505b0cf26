package retry

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		method string
		want   bool
	}{
		{"429 GET", http.StatusTooManyRequests, http.MethodGet, true},
		{"429 POST", http.StatusTooManyRequests, http.MethodPost, true},
		{"429 DELETE", http.StatusTooManyRequests, http.MethodDelete, true},
		{"503 GET", http.StatusServiceUnavailable, http.MethodGet, true},
		{"503 POST", http.StatusServiceUnavailable, http.MethodPost, true},
		{"502 GET", http.StatusBadGateway, http.MethodGet, true},
		{"502 PUT", http.StatusBadGateway, http.MethodPut, true},
		{"502 POST", http.StatusBadGateway, http.MethodPost, false},
		{"502 DELETE", http.StatusBadGateway, http.MethodDelete, false},
		{"504 GET", http.StatusGatewayTimeout, http.MethodGet, true},
		{"504 POST", http.StatusGatewayTimeout, http.MethodPost, false},
		{"500 GET", http.StatusInternalServerError, http.MethodGet, false},
		{"404 GET", http.StatusNotFound, http.MethodGet, false},
		{"401 GET", http.StatusUnauthorized, http.MethodGet, false},
		{"403 POST", http.StatusForbidden, http.MethodPost, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Retryable(tt.status, tt.method))
		})
	}
}

func TestFatal(t *testing.T) {
	assert.True(t, Fatal(http.StatusUnauthorized))
	assert.True(t, Fatal(http.StatusForbidden))
	assert.False(t, Fatal(http.StatusTooManyRequests))
	assert.False(t, Fatal(http.StatusInternalServerError))
}

func TestDelayIsLinear(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, Delay(1))
	assert.Equal(t, time.Second, Delay(2))
	assert.Equal(t, 5*time.Second, Delay(10))

	// Out-of-range attempts still wait at least one unit.
	assert.Equal(t, 500*time.Millisecond, Delay(0))
	assert.Equal(t, 500*time.Millisecond, Delay(-3))

	prev := time.Duration(0)
	for attempt := 1; attempt <= MaxRetries; attempt++ {
		d := Delay(attempt)
		assert.Greater(t, d, prev)
		prev = d
	}
}
