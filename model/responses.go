package model

import "encoding/json"

// UploadPreview is the platform's plan for an upload batch: local files
// grouped into the packages they will create.
type UploadPreview struct {
	Packages []PackagePreview `json:"packages"`
}

// Files flattens the preview into the list of files to send.
func (p *UploadPreview) Files() []RemoteFile {
	var files []RemoteFile
	for _, pkg := range p.Packages {
		files = append(files, pkg.Files...)
	}
	return files
}

// PackagePreview groups the files that will form one package, along with
// the import identifier the chunk and complete calls must carry.
type PackagePreview struct {
	PackageName string       `json:"packageName"`
	PackageType string       `json:"packageType,omitempty"`
	ImportID    *ImportID    `json:"importId,omitempty"`
	Files       []RemoteFile `json:"files"`
	PreviewPath []string     `json:"previewPath,omitempty"`
}

// FileMissingParts reports which chunk numbers of one file the platform
// has not received. MissingParts is not guaranteed to arrive sorted.
type FileMissingParts struct {
	FileName           string  `json:"fileName"`
	MissingParts       []int64 `json:"missingParts"`
	ExpectedTotalParts int64   `json:"expectedTotalParts"`
}

// FilesMissingParts is the upload status response body. A missing body
// means the platform is not waiting on any parts.
type FilesMissingParts struct {
	Files []FileMissingParts `json:"files"`
}

// ForFile returns the missing-parts entry for the named file, or nil when
// the platform holds every part of it.
func (f *FilesMissingParts) ForFile(name string) *FileMissingParts {
	if f == nil {
		return nil
	}
	for i := range f.Files {
		if f.Files[i].FileName == name {
			return &f.Files[i]
		}
	}
	return nil
}

// FileHash is the platform-computed hash of a fully received file.
type FileHash struct {
	Hash string `json:"hash"`
}

// Manifest describes one package produced by a completed upload.
type Manifest struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

// Manifests is the upload completion response body.
type Manifests struct {
	Manifests []Manifest `json:"manifests"`
}

// UploadResponse acknowledges a single chunk. Success false with no HTTP
// error means the platform could not persist the part and the transfer
// should re-check status and resend.
type UploadResponse struct {
	Success bool    `json:"success"`
	Error   *string `json:"error,omitempty"`
}
