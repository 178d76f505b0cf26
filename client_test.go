package loam

import (
	"testing"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loamstack/loam-go/config"
	"github.com/loamstack/loam-go/internal/chunker"
	"github.com/loamstack/loam-go/model"
)

func TestNewDefaults(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	assert.Equal(t, config.Production.URL(), c.baseURL)
	assert.Equal(t, 20, c.maxRetries)
	assert.Equal(t, 4, c.concurrency)
	assert.Equal(t, chunker.DefaultChunkSize, c.ChunkSize())
	assert.Nil(t, c.Session())
}

func TestNewAppliesOptions(t *testing.T) {
	fsys := billy.NewInMemoryFS()
	c, err := New(
		WithEnvironment(config.NonProduction),
		WithMaxRetries(7),
		WithConcurrency(16),
		WithChunkSize(1024),
		WithFilesystem(fsys),
		WithSessionToken("seeded"),
		WithOrganization("N:organization:acme"),
		WithTimeout(30*time.Second),
	)
	require.NoError(t, err)

	assert.Equal(t, config.NonProduction.URL(), c.baseURL)
	assert.Equal(t, 7, c.maxRetries)
	assert.Equal(t, 16, c.concurrency)
	assert.Equal(t, int64(1024), c.ChunkSize())
	assert.Equal(t, 30*time.Second, c.httpClient.Timeout)

	session := c.Session()
	require.NotNil(t, session)
	assert.Equal(t, model.SessionToken("seeded"), session.Token)
	assert.Equal(t, model.OrganizationNodeID("N:organization:acme"), session.OrganizationNodeID)
}

func TestBaseURLOverridesEnvironment(t *testing.T) {
	c, err := New(
		WithEnvironment(config.Production),
		WithBaseURL("http://localhost:9999"),
	)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999", c.baseURL)
}

func TestOptionsIgnoreInvalidValues(t *testing.T) {
	c, err := New(
		WithMaxRetries(-1),
		WithConcurrency(0),
		WithChunkSize(-5),
	)
	require.NoError(t, err)
	assert.Equal(t, 20, c.maxRetries)
	assert.Equal(t, 4, c.concurrency)
	assert.Equal(t, chunker.DefaultChunkSize, c.chunkSize)
}
