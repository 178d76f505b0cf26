package model

import (
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	loamerrors "github.com/loamstack/loam-go/errors"
)

func newTestFS(t *testing.T) *billy.FS {
	t.Helper()
	fsys := billy.NewInMemoryFS()
	require.NoError(t, fsys.MkdirAll("/study/session1", 0o755))
	require.NoError(t, fsys.WriteFile("/study/readme.txt", []byte("hello"), 0o644))
	require.NoError(t, fsys.WriteFile("/study/session1/scan.dat", []byte("data"), 0o644))
	require.NoError(t, fsys.WriteFile("/elsewhere.txt", []byte("x"), 0o644))
	return fsys
}

func TestNewFlatUpload(t *testing.T) {
	fsys := newTestFS(t)

	t.Run("no base dir lands at the root", func(t *testing.T) {
		up, err := NewFlatUpload(fsys, "", "/study/session1/scan.dat")
		require.NoError(t, err)
		assert.Equal(t, "scan.dat", up.Name())
		assert.Nil(t, up.DestinationPath())
	})

	t.Run("explicit base dir keeps intermediate directories", func(t *testing.T) {
		up, err := NewFlatUpload(fsys, "/study", "/study/session1/scan.dat")
		require.NoError(t, err)
		assert.Equal(t, []string{"session1"}, up.DestinationPath())
	})

	t.Run("missing file is rejected", func(t *testing.T) {
		_, err := NewFlatUpload(fsys, "", "/study/absent.dat")
		assert.ErrorIs(t, err, loamerrors.ErrFileNotFound)
	})

	t.Run("directory is rejected", func(t *testing.T) {
		_, err := NewFlatUpload(fsys, "", "/study/session1")
		assert.ErrorIs(t, err, loamerrors.ErrNotAFile)
	})

	t.Run("file outside the base dir is rejected", func(t *testing.T) {
		_, err := NewFlatUpload(fsys, "/study", "/elsewhere.txt")
		assert.ErrorIs(t, err, loamerrors.ErrOutsideBaseDir)
	})

	t.Run("traversal out of the base dir is rejected", func(t *testing.T) {
		_, err := NewFlatUpload(fsys, "/study", "/study/../elsewhere.txt")
		assert.ErrorIs(t, err, loamerrors.ErrOutsideBaseDir)
	})
}

func TestNewRecursiveUpload(t *testing.T) {
	fsys := newTestFS(t)

	// The base directory itself becomes the top of the destination path,
	// so the platform creates a collection named after it.
	up, err := NewRecursiveUpload(fsys, "/study", "/study/session1/scan.dat")
	require.NoError(t, err)
	assert.Equal(t, []string{"study", "session1"}, up.DestinationPath())

	up, err = NewRecursiveUpload(fsys, "/study", "/study/readme.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"study"}, up.DestinationPath())
}

func TestRemoteFileFromUpload(t *testing.T) {
	fsys := newTestFS(t)

	up, err := NewRecursiveUpload(fsys, "/study", "/study/session1/scan.dat")
	require.NoError(t, err)

	rf, err := up.RemoteFile(fsys)
	require.NoError(t, err)
	assert.Equal(t, "scan.dat", rf.FileName)
	assert.Equal(t, int64(4), rf.Size)
	assert.Equal(t, []string{"study", "session1"}, rf.FilePath)
	assert.Nil(t, rf.UploadID)
}
