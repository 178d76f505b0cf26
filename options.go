package loam

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/loamstack/loam-go/config"
	"github.com/loamstack/loam-go/model"
)

// clientConfig collects the settings the functional options adjust.
type clientConfig struct {
	environment  config.Environment
	baseURL      string
	sessionToken model.SessionToken
	organization model.OrganizationNodeID
	httpClient   *http.Client
	filesystem   fs.Filesystem
	logger       *slog.Logger
	timeout      time.Duration
	maxRetries   int
	concurrency  int
	chunkSize    int64
}

// Option configures the client during construction.
type Option func(*clientConfig)

// WithEnvironment selects the platform deployment to talk to.
// Default is production.
func WithEnvironment(env config.Environment) Option {
	return func(c *clientConfig) {
		c.environment = env
	}
}

// WithBaseURL overrides the environment's API URL.
// This is useful for local testing against a fake server.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithSessionToken seeds the client with an existing session token,
// skipping the login flow. Upload routes are organization-scoped, so a
// seeded session needs WithOrganization before it can move files.
func WithSessionToken(token model.SessionToken) Option {
	return func(c *clientConfig) {
		c.sessionToken = token
	}
}

// WithOrganization sets the organization scope for a session seeded with
// WithSessionToken. Login derives the scope from the token instead.
func WithOrganization(org model.OrganizationNodeID) Option {
	return func(c *clientConfig) {
		c.organization = org
	}
}

// WithHTTPClient allows providing a custom HTTP client.
// This gives full control over HTTP behavior including timeouts and proxies.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the timeout for individual API requests.
// Default is no timeout (0). Ignored when a custom HTTP client is provided.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithMaxRetries caps retry attempts for both individual requests and
// whole-file transfers. Default is 20.
func WithMaxRetries(maxRetries int) Option {
	return func(c *clientConfig) {
		if maxRetries > 0 {
			c.maxRetries = maxRetries
		}
	}
}

// WithConcurrency sets how many chunks of a file are sent in parallel.
// Default is 4 concurrent sends.
func WithConcurrency(concurrency int) Option {
	return func(c *clientConfig) {
		if concurrency > 0 {
			c.concurrency = concurrency
		}
	}
}

// WithChunkSize sets the part size for uploads whose preview does not
// dictate one. Default is 5 MiB.
func WithChunkSize(chunkSize int64) Option {
	return func(c *clientConfig) {
		if chunkSize > 0 {
			c.chunkSize = chunkSize
		}
	}
}

// WithFilesystem sets a custom filesystem implementation for file access.
// This allows using in-memory filesystems for testing.
// If not specified, defaults to the OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) Option {
	return func(c *clientConfig) {
		c.filesystem = filesystem
	}
}

// WithLogger sets the structured logger used by the client.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}
