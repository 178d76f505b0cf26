package loam

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/loamstack/loam-go/errors"
	"github.com/loamstack/loam-go/internal/chunker"
	"github.com/loamstack/loam-go/internal/retry"
	"github.com/loamstack/loam-go/model"
	"github.com/loamstack/loam-go/progress"
)

// uploadPreviewRequest is the preview request body.
type uploadPreviewRequest struct {
	Files []model.RemoteFile `json:"files"`
}

// PreviewUpload registers a batch of local files with the platform and
// returns the upload plan: files grouped into packages, each with the
// import identifier and multipart session the chunk calls must carry.
func (c *Client) PreviewUpload(ctx context.Context, datasetID *model.DatasetID, appendTo bool, files []*model.FileUpload) (*model.UploadPreview, error) {
	s, err := c.requireOrganizationSession("preview")
	if err != nil {
		return nil, err
	}

	req := uploadPreviewRequest{Files: make([]model.RemoteFile, 0, len(files))}
	for _, f := range files {
		rf, err := f.RemoteFile(c.fs)
		if err != nil {
			return nil, err
		}
		req.Files = append(req.Files, rf)
	}

	query := url.Values{"append": {strconv.FormatBool(appendTo)}}
	if datasetID != nil {
		query.Set("dataset_id", datasetID.String())
	}
	path := "/upload/preview/organizations/" + url.PathEscape(s.organizationNodeID.String())

	var preview model.UploadPreview
	if err := c.requestJSON(ctx, "preview", http.MethodPost, path, query, req, &preview); err != nil {
		return nil, err
	}
	return &preview, nil
}

// GetUploadStatus asks which parts of an import the platform is still
// waiting on. A nil result means the platform holds every part.
func (c *Client) GetUploadStatus(ctx context.Context, importID model.ImportID) (*model.FilesMissingParts, error) {
	s, err := c.requireOrganizationSession("status")
	if err != nil {
		return nil, err
	}
	path := "/upload/status/organizations/" + url.PathEscape(s.organizationNodeID.String()) +
		"/id/" + url.PathEscape(importID.String())

	var status *model.FilesMissingParts
	if err := c.requestJSON(ctx, "status", http.MethodGet, path, nil, nil, &status); err != nil {
		return nil, err
	}
	return status, nil
}

// CompleteUpload finalizes an import, turning its received files into
// packages in the target dataset.
func (c *Client) CompleteUpload(ctx context.Context, importID model.ImportID, datasetID model.DatasetID, destination *model.PackageID, appendTo bool) (*model.Manifests, error) {
	s, err := c.requireOrganizationSession("complete")
	if err != nil {
		return nil, err
	}
	query := url.Values{
		"datasetId": {datasetID.String()},
		"append":    {strconv.FormatBool(appendTo)},
	}
	if destination != nil {
		query.Set("destinationId", destination.String())
	}
	path := "/upload/complete/organizations/" + url.PathEscape(s.organizationNodeID.String()) +
		"/id/" + url.PathEscape(importID.String())

	var manifests model.Manifests
	if err := c.requestJSON(ctx, "complete", http.MethodPost, path, query, nil, &manifests); err != nil {
		return nil, err
	}
	return &manifests, nil
}

// GetUploadHash returns the platform-computed hash of a fully received
// file, for end-to-end verification against a local digest.
func (c *Client) GetUploadHash(ctx context.Context, importID model.ImportID, fileName string) (*model.FileHash, error) {
	if _, err := c.requireSession("hash"); err != nil {
		return nil, err
	}
	query := url.Values{"fileName": {fileName}}
	path := "/upload/hash/id/" + url.PathEscape(importID.String())

	var hash model.FileHash
	if err := c.requestJSON(ctx, "hash", http.MethodGet, path, query, nil, &hash); err != nil {
		return nil, err
	}
	return &hash, nil
}

// UploadFileChunks performs one send pass over a file: every planned chunk
// is dispatched exactly once through a bounded worker pool. When missing is
// non-nil only the reported parts are sent, in ascending order. The first
// chunk failure cancels the pass and is returned; progress updates fire per
// acknowledged chunk.
func (c *Client) UploadFileChunks(ctx context.Context, importID model.ImportID, upload *model.FileUpload, remote model.RemoteFile, missing *model.FileMissingParts, cb progress.Callback) error {
	s, err := c.requireOrganizationSession("chunk")
	if err != nil {
		return err
	}
	if cb == nil {
		cb = progress.NoProgress{}
	}

	chunkSize := c.chunkSize
	if remote.ChunkedUpload != nil && remote.ChunkedUpload.ChunkSize > 0 {
		chunkSize = remote.ChunkedUpload.ChunkSize
	}

	payload, err := chunker.NewWithChunkSize(c.fs, upload.Path(), importID, chunkSize, missing)
	if err != nil {
		return err
	}
	defer payload.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, c.concurrency)
	errCh := make(chan error, 1)
	var wg sync.WaitGroup
	var mu sync.Mutex

	recordErr := func(err error) {
		select {
		case errCh <- err:
		default:
		}
		cancel()
	}

produce:
	for {
		chunk, err := payload.Next()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			recordErr(err)
			break
		}

		select {
		case <-ctx.Done():
			break produce
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(chunk *chunker.Chunk) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := c.sendChunk(ctx, s.organizationNodeID, importID, remote, chunk); err != nil {
				recordErr(err)
				return
			}

			mu.Lock()
			bytesSent, done := payload.Advance(chunk)
			mu.Unlock()

			cb.OnUpdate(progress.Update{
				ImportID:   importID,
				FileName:   remote.FileName,
				PartNumber: chunk.Number,
				BytesSent:  bytesSent,
				SizeTotal:  payload.Size(),
				Done:       done,
			})
			payload.Recycle(chunk)
		}(chunk)
	}
	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

// sendChunk posts one chunk's raw bytes. It makes a single attempt: chunk
// bodies are never replayed at the request layer, the transfer coordinator
// owns their retries.
func (c *Client) sendChunk(ctx context.Context, org model.OrganizationNodeID, importID model.ImportID, remote model.RemoteFile, chunk *chunker.Chunk) error {
	query := url.Values{
		"filename":      {remote.FileName},
		"chunkNumber":   {strconv.FormatInt(chunk.Number, 10)},
		"chunkChecksum": {chunk.Checksum},
	}
	if remote.MultipartUploadID != nil {
		query.Set("multipartId", remote.MultipartUploadID.String())
	}
	path := "/upload/chunk/organizations/" + url.PathEscape(org.String()) +
		"/id/" + url.PathEscape(importID.String())

	var resp model.UploadResponse
	err := c.requestOnce(ctx, "chunk", http.MethodPost, path, query,
		bytes.NewReader(chunk.Bytes), "application/octet-stream", &resp)
	if err != nil {
		return err
	}
	if !resp.Success {
		e := errors.NewImportError("chunk", importID.String(), errors.ErrChunkRejected)
		if resp.Error != nil {
			e = e.WithMessage(*resp.Error)
		}
		return e
	}
	return nil
}

// UploadFileChunksWithRetries drives a file's transfer to completion. Each
// failed pass waits out the linear backoff, re-fetches the upload status,
// and resends only the parts the platform reports missing. Authorization
// failures and other non-retryable errors abort immediately; the retry
// budget caps the number of passes.
func (c *Client) UploadFileChunksWithRetries(ctx context.Context, importID model.ImportID, upload *model.FileUpload, remote model.RemoteFile, cb progress.Callback) error {
	var missing *model.FileMissingParts

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		err := c.UploadFileChunks(ctx, importID, upload, remote, missing, cb)
		if err == nil {
			return nil
		}
		if !transferRetryable(err) {
			return err
		}

		c.log.Warn("retrying transfer",
			"file", remote.FileName, "import", importID, "attempt", attempt, "error", err)
		if serr := c.sleep(ctx, c.delay(attempt)); serr != nil {
			return errors.NewImportError("upload", importID.String(), serr)
		}

		status, serr := c.GetUploadStatus(ctx, importID)
		if serr != nil {
			return serr
		}
		mp := status.ForFile(remote.FileName)
		if mp == nil {
			// The platform holds every part despite the failed pass.
			return nil
		}
		missing = mp
	}
	return errors.NewImportError("upload", importID.String(), errors.ErrRetriesExhausted).
		WithPath(upload.Path())
}

// transferRetryable reports whether a pass failure is worth another pass.
// Only authorization failures, a dead session, and cancellation are
// terminal. Everything else, server errors, dropped connections, and local
// read failures included, gets another pass against a fresh missing-parts
// report.
func transferRetryable(err error) bool {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if stderrors.Is(err, errors.ErrUnauthorized) ||
		stderrors.Is(err, errors.ErrNoSession) ||
		stderrors.Is(err, errors.ErrSessionExpired) ||
		stderrors.Is(err, errors.ErrNoOrganization) {
		return false
	}
	var e *errors.Error
	if stderrors.As(err, &e) && e.StatusCode != 0 {
		return !retry.Fatal(e.StatusCode)
	}
	return true
}

// UploadFiles is the end-to-end convenience flow: preview the batch, send
// every file's chunks with retries, and complete each resulting import.
// File names must be unique within one call; the platform keys progress
// and missing-part reports by name.
func (c *Client) UploadFiles(ctx context.Context, datasetID model.DatasetID, destination *model.PackageID, appendTo bool, files []*model.FileUpload, cb progress.Callback) ([]model.Manifests, error) {
	preview, err := c.PreviewUpload(ctx, &datasetID, appendTo, files)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*model.FileUpload, len(files))
	for _, f := range files {
		byName[f.Name()] = f
	}

	var out []model.Manifests
	for _, pkg := range preview.Packages {
		if pkg.ImportID == nil {
			return nil, errors.NewError("preview", errors.ErrEmptyResponse).
				WithMessage("package preview missing import id")
		}
		importID := *pkg.ImportID

		for _, rf := range pkg.Files {
			up, ok := byName[rf.FileName]
			if !ok {
				return nil, errors.NewImportError("upload", importID.String(), errors.ErrInvalidUpload).
					WithMessage("preview names a file that was not offered: " + rf.FileName)
			}
			if err := c.UploadFileChunksWithRetries(ctx, importID, up, rf, cb); err != nil {
				return nil, err
			}
		}

		manifests, err := c.CompleteUpload(ctx, importID, datasetID, destination, appendTo)
		if err != nil {
			return nil, err
		}
		out = append(out, *manifests)
	}
	return out, nil
}
