package loam

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"

	"github.com/loamstack/loam-go/config"
	"github.com/loamstack/loam-go/errors"
	"github.com/loamstack/loam-go/internal/authapi"
	"github.com/loamstack/loam-go/internal/chunker"
	"github.com/loamstack/loam-go/internal/retry"
	"github.com/loamstack/loam-go/model"
)

// Client talks to the Loam platform. It is safe for concurrent use: the
// active session is an immutable snapshot swapped atomically, so API calls
// in flight never observe a half-updated login.
type Client struct {
	baseURL    string
	httpClient *http.Client
	fs         fs.Filesystem
	log        *slog.Logger

	maxRetries  int
	concurrency int
	chunkSize   int64

	// session holds the current *session snapshot; nil before login.
	session atomic.Pointer[session]

	// delay and sleep pace retry attempts. Tests swap them to observe
	// the schedule without waiting it out.
	delay func(attempt int) time.Duration
	sleep func(ctx context.Context, d time.Duration) error

	// newAuthClient builds the Cognito client for a region. Tests swap
	// it for a mock.
	newAuthClient func(ctx context.Context, region string) (authapi.CognitoAPI, error)
}

// New creates a platform client with the provided options.
//
// Example:
//
//	client, err := loam.New(
//	    loam.WithEnvironment(config.NonProduction),
//	    loam.WithConcurrency(8),
//	)
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		environment: config.Production,
		maxRetries:  retry.MaxRetries,
		concurrency: 4,
		chunkSize:   chunker.DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.chunkSize < 1 {
		return nil, errors.NewError("client initialization", errors.ErrInvalidInput).
			WithMessage("chunk size must be positive")
	}

	baseURL := cfg.environment.URL()
	if cfg.baseURL != "" {
		baseURL = cfg.baseURL
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.timeout}
	}

	filesystem := cfg.filesystem
	if filesystem == nil {
		filesystem = billy.NewOSFS("/")
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		baseURL:       baseURL,
		httpClient:    httpClient,
		fs:            filesystem,
		log:           logger,
		maxRetries:    cfg.maxRetries,
		concurrency:   cfg.concurrency,
		chunkSize:     cfg.chunkSize,
		delay:         retry.Delay,
		sleep:         sleepContext,
		newAuthClient: defaultAuthClient,
	}
	if cfg.sessionToken != "" {
		c.session.Store(&session{
			token:              cfg.sessionToken,
			organizationNodeID: cfg.organization,
		})
	}
	return c, nil
}

// sleepContext waits d or returns early with the context's error.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// defaultAuthClient builds an anonymous Cognito client for the region the
// platform's authentication config names. Login flows are unsigned.
func defaultAuthClient(ctx context.Context, region string) (authapi.CognitoAPI, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(aws.AnonymousCredentials{}),
	)
	if err != nil {
		return nil, errors.NewError("login", err)
	}
	return cognitoidentityprovider.NewFromConfig(awsCfg), nil
}

// SetFilesystem sets the filesystem implementation for the client.
// This is useful for testing or when file access needs to be virtualized.
func (c *Client) SetFilesystem(filesystem fs.Filesystem) {
	c.fs = filesystem
}

// Session returns a copy of the active session, or nil before login.
func (c *Client) Session() *Session {
	s := c.session.Load()
	if s == nil {
		return nil
	}
	return &Session{
		Token:              s.token,
		OrganizationNodeID: s.organizationNodeID,
		Expires:            s.expires,
	}
}

// ChunkSize returns the part size used for uploads that the preview does
// not override.
func (c *Client) ChunkSize() int64 { return c.chunkSize }

// Session is the caller-visible view of an authenticated login.
type Session struct {
	Token              model.SessionToken
	OrganizationNodeID model.OrganizationNodeID
	Expires            time.Time
}

// session is the internal immutable snapshot.
type session struct {
	token              model.SessionToken
	organizationNodeID model.OrganizationNodeID
	expires            time.Time
}
