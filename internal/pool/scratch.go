// Package pool provides a reusable scratch buffer for the writer, avoiding
// a fresh allocation for every frame marshal call.
package pool

import "sync"

// ScratchDefaultSize is the default capacity of a new scratch buffer: large
// enough to hold a typical session header plus its first few frames without
// growing.
const ScratchDefaultSize = 4096

// ScratchMaxThreshold is the capacity above which a returned buffer is
// discarded rather than pooled, to avoid one oversized session permanently
// bloating the pool.
const ScratchMaxThreshold = 1024 * 1024

// ByteBuffer is a growable byte slice wrapper, reused across writer calls
// via a Pool instead of allocated per call.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the given starting capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, defaultSize)}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer while retaining its allocated memory.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// MustWrite appends data to the buffer, growing it if necessary.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// Grow ensures the buffer can hold requiredBytes more bytes without a
// further reallocation.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := ScratchDefaultSize
	if cap(bb.B) > 4*ScratchDefaultSize {
		growBy = cap(bb.B) / 4
	}
	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Pool is a sync.Pool of ByteBuffers, bounded by a maximum retained size.
type Pool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewPool creates a Pool whose buffers start at defaultSize and are
// discarded on Put if they grew past maxThreshold.
func NewPool(defaultSize, maxThreshold int) *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() any { return NewByteBuffer(defaultSize) },
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (p *Pool) Get() *ByteBuffer {
	bb, _ := p.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse, discarding it if it has
// grown past the pool's max threshold.
func (p *Pool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}
	if p.maxThreshold > 0 && cap(bb.B) > p.maxThreshold {
		return
	}

	bb.Reset()
	p.pool.Put(bb)
}

var scratchPool = NewPool(ScratchDefaultSize, ScratchMaxThreshold)

// GetScratch retrieves a ByteBuffer from the default scratch pool.
func GetScratch() *ByteBuffer {
	return scratchPool.Get()
}

// PutScratch returns a ByteBuffer to the default scratch pool.
func PutScratch(bb *ByteBuffer) {
	scratchPool.Put(bb)
}
