package chunker

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loamstack/loam-go/model"
)

const testImport = model.ImportID("import-1")

func writeTestFile(t *testing.T, fsys *billy.FS, path string, data []byte) {
	t.Helper()
	require.NoError(t, fsys.WriteFile(path, data, 0o644))
}

func patternBytes(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

func collect(t *testing.T, p *Payload) []*Chunk {
	t.Helper()
	var chunks []*Chunk
	for {
		c, err := p.Next()
		if err == io.EOF {
			return chunks
		}
		require.NoError(t, err)
		chunks = append(chunks, c)
	}
}

func TestExpectedChunks(t *testing.T) {
	tests := []struct {
		name      string
		size      int64
		chunkSize int64
		want      int64
	}{
		{"empty file still has one chunk", 0, 100, 1},
		{"smaller than chunk", 10, 100, 1},
		{"exact single chunk", 100, 100, 1},
		{"one byte over", 101, 100, 2},
		{"exact multiple", 500, 100, 5},
		{"uneven tail", 550, 100, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expectedChunks(tt.size, tt.chunkSize))
		})
	}
}

func TestPayloadWalksWholeFile(t *testing.T) {
	fsys := billy.NewInMemoryFS()
	data := patternBytes(550)
	writeTestFile(t, fsys, "/data/sample.bin", data)

	p, err := NewWithChunkSize(fsys, "/data/sample.bin", testImport, 100, nil)
	require.NoError(t, err)
	defer p.Close()

	require.Equal(t, int64(6), p.ExpectedChunks())
	chunks := collect(t, p)
	require.Len(t, chunks, 6)

	var rebuilt []byte
	for i, c := range chunks {
		assert.Equal(t, int64(i), c.Number)
		sum := sha256.Sum256(c.Bytes)
		assert.Equal(t, hex.EncodeToString(sum[:]), c.Checksum)
		rebuilt = append(rebuilt, c.Bytes...)
	}
	assert.True(t, bytes.Equal(data, rebuilt), "concatenated chunks must equal the file")
	assert.Equal(t, int64(50), int64(len(chunks[5].Bytes)), "final chunk carries only the tail")
}

func TestPayloadEmptyFile(t *testing.T) {
	fsys := billy.NewInMemoryFS()
	writeTestFile(t, fsys, "/data/empty.bin", nil)

	p, err := NewWithChunkSize(fsys, "/data/empty.bin", testImport, 100, nil)
	require.NoError(t, err)
	defer p.Close()

	require.Equal(t, int64(1), p.ExpectedChunks())
	chunks := collect(t, p)
	require.Len(t, chunks, 1)
	assert.Equal(t, int64(0), chunks[0].Number)
	assert.Empty(t, chunks[0].Bytes)
	assert.Equal(t, EmptySHA256, chunks[0].Checksum)

	bytesSent, done := p.Advance(chunks[0])
	assert.Equal(t, int64(0), bytesSent)
	assert.True(t, done)
}

func TestPayloadResumesMissingParts(t *testing.T) {
	const chunkSize = 100

	tests := []struct {
		name          string
		size          int64
		missing       []int64
		wantBytesSent int64
		wantNumbers   []int64
	}{
		{
			name:          "final chunk missing counts full chunks only",
			size:          10 * chunkSize,
			missing:       []int64{6, 7, 9},
			wantBytesSent: 7 * chunkSize,
			wantNumbers:   []int64{6, 7, 9},
		},
		{
			name:          "final chunk held counts its true tail",
			size:          5*chunkSize + 37,
			missing:       []int64{0, 1},
			wantBytesSent: 3*chunkSize + 37,
			wantNumbers:   []int64{0, 1},
		},
		{
			name:          "even division treats tail as a full chunk",
			size:          5 * chunkSize,
			missing:       []int64{0, 1},
			wantBytesSent: 2*chunkSize + chunkSize,
			wantNumbers:   []int64{0, 1},
		},
		{
			name:          "unsorted report is walked ascending",
			size:          10 * chunkSize,
			missing:       []int64{7, 3, 5, 4},
			wantBytesSent: 6 * chunkSize,
			wantNumbers:   []int64{3, 4, 5, 7},
		},
		{
			name:          "nothing missing sends nothing",
			size:          10 * chunkSize,
			missing:       []int64{},
			wantBytesSent: 10 * chunkSize,
			wantNumbers:   nil,
		},
		{
			name:          "everything missing starts from zero",
			size:          3 * chunkSize,
			missing:       []int64{0, 1, 2},
			wantBytesSent: 0,
			wantNumbers:   []int64{0, 1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := billy.NewInMemoryFS()
			data := patternBytes(int(tt.size))
			writeTestFile(t, fsys, "/data/resume.bin", data)

			mp := &model.FileMissingParts{
				FileName:           "resume.bin",
				MissingParts:       tt.missing,
				ExpectedTotalParts: expectedChunks(tt.size, chunkSize),
			}
			p, err := NewWithChunkSize(fsys, "/data/resume.bin", testImport, chunkSize, mp)
			require.NoError(t, err)
			defer p.Close()

			assert.Equal(t, tt.wantBytesSent, p.BytesSent())

			chunks := collect(t, p)
			var numbers []int64
			for _, c := range chunks {
				numbers = append(numbers, c.Number)
				assert.Equal(t, data[c.Number*chunkSize:min64((c.Number+1)*chunkSize, tt.size)], c.Bytes)
			}
			assert.Equal(t, tt.wantNumbers, numbers)
		})
	}
}

func TestPayloadAdvanceReachesFullSize(t *testing.T) {
	const chunkSize = 100
	fsys := billy.NewInMemoryFS()
	data := patternBytes(5*chunkSize + 37)
	writeTestFile(t, fsys, "/data/done.bin", data)

	mp := &model.FileMissingParts{
		FileName:           "done.bin",
		MissingParts:       []int64{0, 5},
		ExpectedTotalParts: 6,
	}
	p, err := NewWithChunkSize(fsys, "/data/done.bin", testImport, chunkSize, mp)
	require.NoError(t, err)
	defer p.Close()

	require.Equal(t, int64(4*chunkSize), p.BytesSent())

	var bytesSent int64
	var done bool
	for {
		c, err := p.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		bytesSent, done = p.Advance(c)
	}
	assert.Equal(t, p.Size(), bytesSent)
	assert.True(t, done)
}

func TestNewRejectsBadInput(t *testing.T) {
	fsys := billy.NewInMemoryFS()
	writeTestFile(t, fsys, "/data/ok.bin", patternBytes(10))

	_, err := NewWithChunkSize(fsys, "/data/ok.bin", testImport, 0, nil)
	assert.Error(t, err)

	_, err = NewWithChunkSize(fsys, "/data/absent.bin", testImport, 100, nil)
	assert.Error(t, err)
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
