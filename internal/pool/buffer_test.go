package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferPoolReusesFullSizeBuffers(t *testing.T) {
	p := NewBufferPool(64)

	buf := p.Get(64)
	assert.Len(t, buf, 64)
	p.Put(buf)

	again := p.Get(64)
	assert.Len(t, again, 64)
}

func TestBufferPoolAllocatesTailBuffersFresh(t *testing.T) {
	p := NewBufferPool(64)

	tail := p.Get(17)
	assert.Len(t, tail, 17)

	// Returning an odd-size buffer is a no-op.
	p.Put(tail)
	assert.Len(t, p.Get(64), 64)
}

func TestBufferPoolConcurrentUse(t *testing.T) {
	p := NewBufferPool(32)
	done := make(chan struct{})

	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				buf := p.Get(32)
				buf[0] = byte(j)
				p.Put(buf)
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
