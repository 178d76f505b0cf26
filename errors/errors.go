// Package errors defines the error taxonomy for Loam platform calls.
package errors

import (
	"errors"
	"fmt"
)

// Error carries the context of a failed platform call: the operation, the
// import and file it concerned, and the HTTP status when the platform
// answered at all.
type Error struct {
	// Op names the call that failed, e.g. "preview" or "chunk".
	Op string

	// ImportID of the upload, when the call was scoped to one.
	ImportID string

	// Path of the local file involved, when there was one.
	Path string

	// StatusCode is the HTTP status, 0 for non-HTTP failures.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

func (e *Error) Error() string {
	if e.ImportID != "" && e.Path != "" {
		return fmt.Sprintf("loam.%s import %s file %s: %v", e.Op, e.ImportID, e.Path, e.Err)
	}
	if e.ImportID != "" {
		return fmt.Sprintf("loam.%s import %s: %v", e.Op, e.ImportID, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("loam.%s file %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("loam.%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithImportID scopes the error to an upload import.
func (e *Error) WithImportID(importID string) *Error {
	e.ImportID = importID
	return e
}

// WithPath attaches the local file path involved.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithStatusCode records the HTTP status behind the failure.
func (e *Error) WithStatusCode(code int) *Error {
	e.StatusCode = code
	return e
}

// WithMessage prefixes the cause with extra detail, keeping the chain
// intact for errors.Is.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError wraps err as the failure of op.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewImportError wraps err as the failure of op against one import.
func NewImportError(op, importID string, err error) *Error {
	return &Error{
		Op:       op,
		ImportID: importID,
		Err:      err,
	}
}

// NewFileError wraps err with both the import and the local file involved.
func NewFileError(op, importID, path string, err error) *Error {
	return &Error{
		Op:       op,
		ImportID: importID,
		Path:     path,
		Err:      err,
	}
}

// NewHTTPError wraps err together with the HTTP status that produced it.
func NewHTTPError(op string, code int, err error) *Error {
	return &Error{
		Op:         op,
		StatusCode: code,
		Err:        err,
	}
}

// Sentinels for the failure classes callers branch on with errors.Is.
var (
	// ErrUnauthorized: the platform rejected the session token (401 or 403).
	ErrUnauthorized = errors.New("loam: unauthorized")

	// ErrSessionExpired: the current session is past its expiry.
	ErrSessionExpired = errors.New("loam: session expired")

	// ErrNoSession: an authenticated call was made before login.
	ErrNoSession = errors.New("loam: no active session")

	// ErrNoOrganization: the session lacks the organization scope that
	// upload routes embed.
	ErrNoOrganization = errors.New("loam: session has no organization")

	// ErrInvalidUpload: the local file cannot be uploaded as described.
	ErrInvalidUpload = errors.New("loam: invalid upload")

	// ErrFileNotFound: the local file to upload does not exist.
	ErrFileNotFound = errors.New("loam: file not found")

	// ErrNotAFile: the upload path is a directory or other non-regular file.
	ErrNotAFile = errors.New("loam: not a regular file")

	// ErrOutsideBaseDir: the upload path escapes its base directory.
	ErrOutsideBaseDir = errors.New("loam: path outside base directory")

	// ErrTooManyRequests: the platform is rate limiting the client.
	ErrTooManyRequests = errors.New("loam: too many requests")

	// ErrServiceUnavailable: the platform is temporarily unavailable.
	ErrServiceUnavailable = errors.New("loam: service unavailable")

	// ErrRetriesExhausted: the retry budget was spent without success.
	ErrRetriesExhausted = errors.New("loam: retries exhausted")

	// ErrChunkRejected: the platform refused to persist an uploaded chunk.
	ErrChunkRejected = errors.New("loam: chunk rejected")

	// ErrChecksumMismatch: a chunk checksum does not match its bytes.
	ErrChecksumMismatch = errors.New("loam: checksum mismatch")

	// ErrInvalidInput: a caller-supplied value is out of range or malformed.
	ErrInvalidInput = errors.New("loam: invalid input")

	// ErrEmptyResponse: the platform returned no body where one was required.
	ErrEmptyResponse = errors.New("loam: empty response")
)

// IsUnauthorized reports whether err means the session token was rejected,
// however deeply wrapped.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsRetriesExhausted reports whether err means the retry budget ran out.
func IsRetriesExhausted(err error) bool {
	return errors.Is(err, ErrRetriesExhausted)
}

// IsInvalidUpload reports whether err means a local file cannot be uploaded.
func IsInvalidUpload(err error) bool {
	return errors.Is(err, ErrInvalidUpload)
}

// IsInvalidInput reports whether err flags bad caller input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
