package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(1024)

	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, 1024, cap(bb.B))
}

func TestByteBuffer_MustWrite(t *testing.T) {
	bb := NewByteBuffer(ScratchDefaultSize)

	bb.MustWrite([]byte("hello"))
	assert.Equal(t, []byte("hello"), bb.Bytes())

	bb.MustWrite([]byte(" world"))
	assert.Equal(t, []byte("hello world"), bb.Bytes())
}

func TestByteBuffer_Reset(t *testing.T) {
	bb := NewByteBuffer(ScratchDefaultSize)
	bb.MustWrite([]byte("some data"))
	originalCap := cap(bb.B)

	bb.Reset()

	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, originalCap, cap(bb.B))
}

func TestByteBuffer_Grow(t *testing.T) {
	bb := NewByteBuffer(ScratchDefaultSize)
	bb.B = append(bb.B, make([]byte, ScratchDefaultSize)...)

	bb.Grow(1024)

	assert.GreaterOrEqual(t, cap(bb.B), ScratchDefaultSize+1024)
	assert.Equal(t, ScratchDefaultSize, bb.Len())
}

func TestByteBuffer_Grow_PreservesData(t *testing.T) {
	bb := NewByteBuffer(ScratchDefaultSize)
	data := []byte("important data")
	bb.MustWrite(data)

	bb.Grow(ScratchDefaultSize * 2)

	assert.Equal(t, data, bb.Bytes())
}

func TestPool_GetPutReuse(t *testing.T) {
	pool := NewPool(1024, 4096)

	bb := pool.Get()
	require.NotNil(t, bb)
	bb.MustWrite([]byte("data"))
	pool.Put(bb)

	bb2 := pool.Get()
	assert.Equal(t, 0, bb2.Len(), "buffer from pool should be reset")
}

func TestPool_PutNil(t *testing.T) {
	pool := NewPool(1024, 4096)

	assert.NotPanics(t, func() {
		pool.Put(nil)
	})
}

func TestPool_DiscardsOversizedBuffer(t *testing.T) {
	pool := NewPool(1024, 4096)

	bb := pool.Get()
	bb.Grow(10000)
	assert.Greater(t, cap(bb.B), 4096)

	pool.Put(bb)

	bb2 := pool.Get()
	assert.LessOrEqual(t, cap(bb2.B), 4096*2)
}

func TestGetPutScratch(t *testing.T) {
	bb := GetScratch()
	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())
	assert.GreaterOrEqual(t, cap(bb.B), ScratchDefaultSize)

	bb.MustWrite([]byte("frame bytes"))
	PutScratch(bb)

	bb2 := GetScratch()
	assert.Equal(t, 0, bb2.Len())
}

func TestPool_ConcurrentAccess(t *testing.T) {
	const goroutines = 50
	const iterations = 200

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				bb := GetScratch()
				bb.MustWrite([]byte("data"))
				PutScratch(bb)
			}
		}()
	}

	wg.Wait()
}
