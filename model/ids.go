package model

import "strconv"

// ImportID identifies one upload batch created by a preview call. Every
// chunk, status, and complete call for the batch carries this identifier.
type ImportID string

// String returns the raw identifier.
func (id ImportID) String() string { return string(id) }

// UploadID identifies one file within an upload batch.
type UploadID int32

// String returns the identifier in decimal form for query parameters.
func (id UploadID) String() string { return strconv.FormatInt(int64(id), 10) }

// MultipartUploadID is the storage-layer multipart session for one file.
// It is issued by the platform in the upload preview and echoed back on
// every chunk request.
type MultipartUploadID string

// String returns the raw identifier.
func (id MultipartUploadID) String() string { return string(id) }

// SessionToken authenticates API calls. It is sent as both the
// X-SESSION-ID header and the Authorization bearer token.
type SessionToken string

// String returns the raw token.
func (t SessionToken) String() string { return string(t) }

// OrganizationID is the numeric organization identifier.
type OrganizationID string

// String returns the raw identifier.
func (id OrganizationID) String() string { return string(id) }

// OrganizationNodeID is the node-style organization identifier used in
// upload routes (e.g. "N:organization:...").
type OrganizationNodeID string

// String returns the raw identifier.
func (id OrganizationNodeID) String() string { return string(id) }

// DatasetID is the numeric dataset identifier used as the datasetId query
// parameter on upload completion.
type DatasetID string

// String returns the raw identifier.
func (id DatasetID) String() string { return string(id) }

// DatasetNodeID is the node-style dataset identifier (e.g. "N:dataset:...").
type DatasetNodeID string

// String returns the raw identifier.
func (id DatasetNodeID) String() string { return string(id) }

// PackageID is the node-style package identifier (e.g. "N:package:...").
// Completed uploads may be appended to an existing package.
type PackageID string

// String returns the raw identifier.
func (id PackageID) String() string { return string(id) }
