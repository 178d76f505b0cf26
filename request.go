package loam

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/loamstack/loam-go/errors"
	"github.com/loamstack/loam-go/internal/retry"
)

// maxErrorBody caps how much of a failed response is read into the error
// message.
const maxErrorBody = 2048

// headerSessionID carries the session token alongside the bearer header;
// the platform's upload service reads one, the API gateway the other.
const headerSessionID = "X-SESSION-ID"

// requestJSON performs a JSON API call with the per-request retry policy:
// transport failures, rate limiting, and temporary unavailability are
// retried with linear backoff, bad gateways only for idempotent methods,
// and authorization failures abort immediately. The request body is
// marshaled once and replayed on each attempt.
func (c *Client) requestJSON(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return errors.NewError(op, err)
		}
	}

	endpoint := c.endpoint(path, query)
	for attempt := 1; ; attempt++ {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		resp, err := c.do(ctx, method, endpoint, body, "application/json")
		if err != nil {
			// A connection that never produced a response is retried
			// like a 503; only cancellation and the budget stop it.
			if ctx.Err() != nil || attempt >= c.maxRetries {
				return errors.NewError(op, err)
			}
			c.log.Warn("retrying request",
				"op", op, "error", err, "attempt", attempt, "delay", c.delay(attempt))
			if serr := c.sleep(ctx, c.delay(attempt)); serr != nil {
				return errors.NewError(op, serr)
			}
			continue
		}

		status := resp.StatusCode
		if status >= 200 && status < 300 {
			err := decodeJSON(resp, out)
			if err != nil {
				return errors.NewError(op, err)
			}
			return nil
		}
		drainAndClose(resp)

		if retry.Fatal(status) {
			return statusError(op, status)
		}
		if !retry.Retryable(status, method) {
			return statusError(op, status)
		}
		if attempt >= c.maxRetries {
			return errors.NewHTTPError(op, status, errors.ErrRetriesExhausted)
		}

		c.log.Warn("retrying request",
			"op", op, "status", status, "attempt", attempt, "delay", c.delay(attempt))
		if err := c.sleep(ctx, c.delay(attempt)); err != nil {
			return errors.NewError(op, err)
		}
	}
}

// requestOnce performs a single attempt with no retry. Chunk uploads use it
// so large bodies are never replayed at the request layer; the transfer
// coordinator handles their retries instead.
func (c *Client) requestOnce(ctx context.Context, op, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	resp, err := c.do(ctx, method, c.endpoint(path, query), body, contentType)
	if err != nil {
		return errors.NewError(op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		drainAndClose(resp)
		return statusError(op, resp.StatusCode)
	}
	if err := decodeJSON(resp, out); err != nil {
		return errors.NewError(op, err)
	}
	return nil
}

// do performs one HTTP round trip, attaching the session headers when a
// session is active.
func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if s := c.session.Load(); s != nil {
		req.Header.Set(headerSessionID, s.token.String())
		req.Header.Set("Authorization", "Bearer "+s.token.String())
	}
	return c.httpClient.Do(req)
}

func (c *Client) endpoint(path string, query url.Values) string {
	endpoint := strings.TrimSuffix(c.baseURL, "/") + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return endpoint
}

// decodeJSON reads the full response body and unmarshals it into out.
// An empty body is treated as JSON null, so optional responses decode into
// nil pointers instead of failing.
func decodeJSON(resp *http.Response, out any) error {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("null")
	}
	return json.Unmarshal(data, out)
}

// statusError maps an HTTP status onto the error taxonomy.
func statusError(op string, status int) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.NewHTTPError(op, status, errors.ErrUnauthorized)
	case http.StatusTooManyRequests:
		return errors.NewHTTPError(op, status, errors.ErrTooManyRequests)
	case http.StatusServiceUnavailable:
		return errors.NewHTTPError(op, status, errors.ErrServiceUnavailable)
	default:
		return errors.NewHTTPError(op, status, fmt.Errorf("unexpected status %d", status))
	}
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
}
