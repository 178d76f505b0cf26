// Package pool provides reusable chunk buffers to reduce allocations on
// large transfers.
package pool

import "sync"

// BufferPool hands out byte slices sized for one upload chunk. Full-size
// buffers cycle through a sync.Pool; odd-size requests (a file's tail
// chunk) are allocated fresh and never pooled.
type BufferPool struct {
	size int64
	pool sync.Pool
}

// NewBufferPool creates a pool of size-byte buffers.
func NewBufferPool(size int64) *BufferPool {
	p := &BufferPool{size: size}
	p.pool.New = func() any {
		buf := make([]byte, size)
		return &buf
	}
	return p
}

// Get returns a buffer of length n.
func (p *BufferPool) Get(n int64) []byte {
	if n != p.size {
		return make([]byte, n)
	}
	return *p.pool.Get().(*[]byte)
}

// Put returns a buffer to the pool once its chunk has been sent. Buffers
// that are not exactly pool-sized are dropped for the GC.
func (p *BufferPool) Put(buf []byte) {
	if int64(len(buf)) != p.size {
		return
	}
	p.pool.Put(&buf)
}
