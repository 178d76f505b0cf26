package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"path/filepath"
	"sort"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	loamerrors "github.com/loamstack/loam-go/errors"
	"github.com/loamstack/loam-go/internal/pool"
	"github.com/loamstack/loam-go/model"
)

// DefaultChunkSize is the part size used when the upload preview does not
// dictate one. It matches the platform's multipart storage minimum.
const DefaultChunkSize int64 = 5_242_880

// EmptySHA256 is the hex SHA-256 digest of zero bytes, sent as the checksum
// of the single empty chunk a zero-byte file produces.
const EmptySHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// Chunk is one part of a file, ready to send.
type Chunk struct {
	Number   int64
	Bytes    []byte
	Checksum string
}

// Payload iterates a file's chunks in upload order. A fresh payload walks
// every chunk; a payload built with a missing-parts report walks only the
// parts the platform still needs, in ascending order, and accounts for the
// bytes already held server-side.
type Payload struct {
	file      fs.File
	fileName  string
	importID  model.ImportID
	chunkSize int64
	size      int64
	expected  int64

	// missing is nil when every chunk must be sent. An empty non-nil
	// slice means the platform already holds the whole file.
	missing []int64

	cursor    int64
	partsSent int64
	bytesSent int64

	buffers *pool.BufferPool
}

// New opens path on fsys and prepares its chunk iteration with the default
// chunk size.
func New(fsys fs.Filesystem, path string, importID model.ImportID, missing *model.FileMissingParts) (*Payload, error) {
	return NewWithChunkSize(fsys, path, importID, DefaultChunkSize, missing)
}

// NewWithChunkSize opens path on fsys and prepares its chunk iteration.
// When missing is non-nil, iteration covers only the reported part numbers
// and the payload starts with the already-received bytes accounted for.
func NewWithChunkSize(fsys fs.Filesystem, path string, importID model.ImportID, chunkSize int64, missing *model.FileMissingParts) (*Payload, error) {
	if chunkSize <= 0 {
		return nil, loamerrors.NewError("chunk", loamerrors.ErrInvalidInput).
			WithMessage("chunk size must be positive").WithPath(path)
	}

	info, err := fsys.Stat(path)
	if err != nil {
		return nil, loamerrors.NewError("chunk", loamerrors.ErrFileNotFound).WithPath(path)
	}
	file, err := fsys.Open(path)
	if err != nil {
		return nil, loamerrors.NewError("chunk", err).WithPath(path)
	}

	p := &Payload{
		file:      file,
		fileName:  filepath.Base(path),
		importID:  importID,
		chunkSize: chunkSize,
		size:      info.Size(),
		expected:  expectedChunks(info.Size(), chunkSize),
		buffers:   pool.NewBufferPool(chunkSize),
	}
	if missing != nil {
		// make keeps the slice non-nil even when the report lists no
		// parts, so an all-received file produces zero chunks.
		p.missing = make([]int64, 0, len(missing.MissingParts))
		p.missing = append(p.missing, missing.MissingParts...)
		sort.Slice(p.missing, func(i, j int) bool { return p.missing[i] < p.missing[j] })
		p.partsSent, p.bytesSent = resumeOffsets(p.size, chunkSize, p.expected, p.missing)
	}
	return p, nil
}

// expectedChunks is the ceiling of size over chunkSize, with a floor of one
// so empty files still produce a part.
func expectedChunks(size, chunkSize int64) int64 {
	n := (size + chunkSize - 1) / chunkSize
	if n < 1 {
		n = 1
	}
	return n
}

// resumeOffsets derives how many parts and bytes the platform already holds
// from its missing-parts report. When the final, possibly short chunk is
// among the received parts, the byte count uses its true length instead of
// a full chunk.
func resumeOffsets(size, chunkSize, expected int64, missing []int64) (partsSent, bytesSent int64) {
	partsSent = expected - int64(len(missing))
	if partsSent <= 0 {
		return 0, 0
	}

	finalMissing := false
	for _, n := range missing {
		if n == expected-1 {
			finalMissing = true
			break
		}
	}
	if finalMissing {
		return partsSent, partsSent * chunkSize
	}

	rem := size % chunkSize
	if rem == 0 && size > 0 {
		rem = chunkSize
	}
	return partsSent, (partsSent-1)*chunkSize + rem
}

// Next returns the next chunk to send, or io.EOF when the plan is
// exhausted.
func (p *Payload) Next() (*Chunk, error) {
	number, ok := p.nextNumber()
	if !ok {
		return nil, io.EOF
	}
	p.cursor++

	if p.size == 0 {
		return &Chunk{Number: 0, Bytes: []byte{}, Checksum: EmptySHA256}, nil
	}

	offset := number * p.chunkSize
	length := p.chunkSize
	if offset+length > p.size {
		length = p.size - offset
	}
	buf := p.buffers.Get(length)
	n, err := p.file.ReadAt(buf, offset)
	if err != nil && !(errors.Is(err, io.EOF) && int64(n) == length) {
		return nil, loamerrors.NewError("chunk", err).
			WithImportID(p.importID.String()).WithPath(p.fileName)
	}

	sum := sha256.Sum256(buf)
	return &Chunk{
		Number:   number,
		Bytes:    buf,
		Checksum: hex.EncodeToString(sum[:]),
	}, nil
}

func (p *Payload) nextNumber() (int64, bool) {
	if p.missing != nil {
		if p.cursor >= int64(len(p.missing)) {
			return 0, false
		}
		return p.missing[p.cursor], true
	}
	if p.cursor >= p.expected {
		return 0, false
	}
	return p.cursor, true
}

// Advance records a platform acknowledgment for one chunk and returns the
// cumulative byte count and whether the file is fully transferred.
func (p *Payload) Advance(c *Chunk) (bytesSent int64, done bool) {
	p.partsSent++
	p.bytesSent += int64(len(c.Bytes))
	return p.bytesSent, p.partsSent >= p.expected
}

// Recycle returns a sent chunk's buffer to the payload's pool. The chunk's
// bytes must not be touched afterwards.
func (p *Payload) Recycle(c *Chunk) {
	p.buffers.Put(c.Bytes)
	c.Bytes = nil
}

// ExpectedChunks returns how many parts the whole file splits into.
func (p *Payload) ExpectedChunks() int64 { return p.expected }

// Remaining returns how many parts this payload will still produce.
func (p *Payload) Remaining() int64 {
	if p.missing != nil {
		return int64(len(p.missing)) - p.cursor
	}
	return p.expected - p.cursor
}

// Size returns the file size in bytes.
func (p *Payload) Size() int64 { return p.size }

// BytesSent returns the cumulative bytes the platform holds, including the
// resume offset.
func (p *Payload) BytesSent() int64 { return p.bytesSent }

// FileName returns the base name of the underlying file.
func (p *Payload) FileName() string { return p.fileName }

// ImportID returns the import this payload belongs to.
func (p *Payload) ImportID() model.ImportID { return p.importID }

// Close releases the underlying file handle.
func (p *Payload) Close() error {
	return p.file.Close()
}
