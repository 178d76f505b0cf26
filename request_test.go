package loam

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	loamerrors "github.com/loamstack/loam-go/errors"
	"github.com/loamstack/loam-go/model"
)

// flakyServer fails the first n requests with the given status, then
// answers 200 with the supplied JSON body.
func flakyServer(t *testing.T, failures int32, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= failures {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

// flakyTransport drops the first n round trips before the request reaches
// the wire, then delegates to the default transport.
type flakyTransport struct {
	mu       sync.Mutex
	failures int
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	fail := f.failures > 0
	if fail {
		f.failures--
	}
	f.mu.Unlock()
	if fail {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, errors.New("connection reset by peer")
	}
	return http.DefaultTransport.RoundTrip(req)
}

func TestRequestJSONRetriesIdempotentBadGateway(t *testing.T) {
	srv, calls := flakyServer(t, 2, http.StatusBadGateway, `{"hash":"abc"}`)
	c, delays := newTestClient(t, srv.URL, nil)

	var out model.FileHash
	err := c.requestJSON(context.Background(), "hash", http.MethodGet, "/upload/hash/id/x", nil, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "abc", out.Hash)
	assert.Equal(t, int32(3), *calls)
	assert.Len(t, *delays, 2)
}

func TestRequestJSONDoesNotRetryBadGatewayOnPost(t *testing.T) {
	srv, calls := flakyServer(t, 10, http.StatusBadGateway, `{}`)
	c, delays := newTestClient(t, srv.URL, nil)

	err := c.requestJSON(context.Background(), "preview", http.MethodPost, "/upload/preview", nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), *calls, "POST must not be replayed on 502")
	assert.Empty(t, *delays)
}

func TestRequestJSONRetriesRateLimitedPost(t *testing.T) {
	srv, calls := flakyServer(t, 1, http.StatusTooManyRequests, `{"success":true}`)
	c, _ := newTestClient(t, srv.URL, nil)

	var out model.UploadResponse
	err := c.requestJSON(context.Background(), "preview", http.MethodPost, "/p", nil, nil, &out)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, int32(2), *calls)
}

func TestRequestJSONFailsFastOnUnauthorized(t *testing.T) {
	srv, calls := flakyServer(t, 10, http.StatusUnauthorized, `{}`)
	c, delays := newTestClient(t, srv.URL, nil)

	err := c.requestJSON(context.Background(), "user", http.MethodGet, "/user", nil, nil, nil)
	require.Error(t, err)
	assert.True(t, loamerrors.IsUnauthorized(err))
	assert.Equal(t, int32(1), *calls)
	assert.Empty(t, *delays)
}

func TestRequestJSONExhaustsRetries(t *testing.T) {
	srv, calls := flakyServer(t, 100, http.StatusServiceUnavailable, `{}`)
	c, _ := newTestClient(t, srv.URL, nil, WithMaxRetries(4))

	err := c.requestJSON(context.Background(), "status", http.MethodGet, "/s", nil, nil, nil)
	require.Error(t, err)
	assert.True(t, loamerrors.IsRetriesExhausted(err))
	assert.Equal(t, int32(4), *calls)
}

func TestRequestJSONRetriesTransportErrors(t *testing.T) {
	srv, calls := flakyServer(t, 0, http.StatusOK, `{"hash":"abc"}`)
	c, delays := newTestClient(t, srv.URL, nil)
	c.httpClient = &http.Client{Transport: &flakyTransport{failures: 2}}

	var out model.FileHash
	err := c.requestJSON(context.Background(), "hash", http.MethodGet, "/upload/hash/id/x", nil, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "abc", out.Hash)
	assert.Equal(t, int32(1), *calls, "the server sees only the attempt that got through")
	assert.Len(t, *delays, 2)
}

func TestRequestJSONTransportErrorsRespectBudget(t *testing.T) {
	srv, calls := flakyServer(t, 0, http.StatusOK, `{}`)
	c, delays := newTestClient(t, srv.URL, nil, WithMaxRetries(3))
	c.httpClient = &http.Client{Transport: &flakyTransport{failures: 100}}

	err := c.requestJSON(context.Background(), "user", http.MethodGet, "/user", nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, int32(0), *calls, "nothing ever reached the server")
	assert.Len(t, *delays, 2, "the final attempt returns instead of sleeping")
}

func TestRequestJSONTreatsEmptyBodyAsNull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	c, _ := newTestClient(t, srv.URL, nil)

	status := &model.FilesMissingParts{Files: []model.FileMissingParts{{FileName: "stale"}}}
	err := c.requestJSON(context.Background(), "status", http.MethodGet, "/s", nil, nil, &status)
	require.NoError(t, err)
	assert.Nil(t, status, "an empty body decodes as JSON null")
}

func TestRequestAttachesSessionHeaders(t *testing.T) {
	var auth, session string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		session = r.Header.Get("X-SESSION-ID")
		_, _ = w.Write([]byte("null"))
	}))
	t.Cleanup(srv.Close)
	c, _ := newTestClient(t, srv.URL, nil)

	require.NoError(t, c.requestJSON(context.Background(), "user", http.MethodGet, "/user", nil, nil, nil))
	assert.Equal(t, "Bearer test-token", auth)
	assert.Equal(t, "test-token", session)
}
