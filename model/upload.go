package model

import (
	"path/filepath"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	loamerrors "github.com/loamstack/loam-go/errors"
)

// ChunkedUploadProperties describes how a file is split for upload. The
// platform returns it with the upload preview so the client and server
// agree on part boundaries.
type ChunkedUploadProperties struct {
	ChunkSize   int64 `json:"chunkSize"`
	TotalChunks int64 `json:"totalChunks"`
}

// RemoteFile is the platform's description of one file in an upload batch.
type RemoteFile struct {
	UploadID          *UploadID                `json:"uploadId,omitempty"`
	FileName          string                   `json:"fileName"`
	Size              int64                    `json:"size"`
	ChunkedUpload     *ChunkedUploadProperties `json:"chunkedUpload,omitempty"`
	MultipartUploadID *MultipartUploadID       `json:"multipartUploadId,omitempty"`
	FilePath          []string                 `json:"filePath,omitempty"`
}

// FileUpload pairs a local file with the base directory its destination
// path is computed against. Flat uploads place the file directly at the
// target; recursive uploads preserve the directory structure below the
// base, including the base directory itself.
type FileUpload struct {
	filePath string
	basePath string
}

// NewFlatUpload creates a FileUpload whose destination path is relative to
// baseDir. An empty baseDir uses the file's own directory, so the file
// lands at the destination root.
func NewFlatUpload(fsys fs.Filesystem, baseDir, path string) (*FileUpload, error) {
	abs, err := normalizePath(path)
	if err != nil {
		return nil, err
	}
	base := filepath.Dir(abs)
	if baseDir != "" {
		if base, err = normalizePath(baseDir); err != nil {
			return nil, err
		}
	}
	return newFileUpload(fsys, base, abs)
}

// NewRecursiveUpload creates a FileUpload rooted at the parent of baseDir,
// so the base directory itself becomes the top of the destination path and
// the platform turns it into a collection.
func NewRecursiveUpload(fsys fs.Filesystem, baseDir, path string) (*FileUpload, error) {
	abs, err := normalizePath(path)
	if err != nil {
		return nil, err
	}
	base, err := normalizePath(baseDir)
	if err != nil {
		return nil, err
	}
	return newFileUpload(fsys, filepath.Dir(base), abs)
}

func newFileUpload(fsys fs.Filesystem, base, path string) (*FileUpload, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return nil, loamerrors.NewError("upload", loamerrors.ErrFileNotFound).WithPath(path)
	}
	if info.IsDir() || !info.Mode().IsRegular() {
		return nil, loamerrors.NewError("upload", loamerrors.ErrNotAFile).WithPath(path)
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, loamerrors.NewError("upload", loamerrors.ErrOutsideBaseDir).WithPath(path)
	}
	return &FileUpload{filePath: path, basePath: base}, nil
}

func normalizePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", loamerrors.NewError("upload", loamerrors.ErrInvalidUpload).WithPath(path)
	}
	return filepath.Clean(abs), nil
}

// Path returns the absolute local file path.
func (u *FileUpload) Path() string { return u.filePath }

// Name returns the file's base name.
func (u *FileUpload) Name() string { return filepath.Base(u.filePath) }

// DestinationPath returns the directory components between the base
// directory and the file, or nil when the file sits at the base itself.
func (u *FileUpload) DestinationPath() []string {
	rel, err := filepath.Rel(u.basePath, filepath.Dir(u.filePath))
	if err != nil || rel == "." {
		return nil
	}
	return strings.Split(filepath.ToSlash(rel), "/")
}

// RemoteFile stats the local file and builds its wire description for the
// upload preview request.
func (u *FileUpload) RemoteFile(fsys fs.Filesystem) (RemoteFile, error) {
	info, err := fsys.Stat(u.filePath)
	if err != nil {
		return RemoteFile{}, loamerrors.NewError("preview", loamerrors.ErrFileNotFound).WithPath(u.filePath)
	}
	return RemoteFile{
		FileName: u.Name(),
		Size:     info.Size(),
		FilePath: u.DestinationPath(),
	}, nil
}
