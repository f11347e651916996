package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignedSize(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want int
	}{
		{"zero", 0, 0},
		{"already aligned", 8, 8},
		{"one over", 9, 16},
		{"one under", 7, 8},
		{"large", 1000, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AlignedSize(tt.n))
		})
	}
}

func TestPadding(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want int
	}{
		{"aligned", 16, 0},
		{"one byte short", 15, 1},
		{"zero", 0, 0},
		{"seven", 7, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Padding(tt.n))
			assert.True(t, IsAligned(int64(tt.n+Padding(tt.n))))
		})
	}
}

func TestCompareMagic(t *testing.T) {
	want := [8]byte{'W', 'R', 'T', 'F', '0', '0', '0', '1'}

	assert.True(t, CompareMagic([]byte("WRTF0001trailing"), want))
	assert.False(t, CompareMagic([]byte("WRSE0001"), want))
	assert.False(t, CompareMagic([]byte("short"), want))
}

func TestExpectMagic(t *testing.T) {
	want := [8]byte{'W', 'R', 'T', 'F', '0', '0', '0', '1'}

	require.NoError(t, ExpectMagic([]byte("WRTF0001"), want))

	err := ExpectMagic([]byte("WRSE0001"), want)
	require.Error(t, err)

	err = ExpectMagic([]byte("short"), want)
	require.Error(t, err)
}

func TestPutMagic(t *testing.T) {
	magic := [8]byte{'W', 'R', 'D', 'E', '0', '0', '0', '1'}
	dst := make([]byte, 16)

	PutMagic(dst, magic)

	assert.Equal(t, magic[:], dst[:8])
	assert.Equal(t, make([]byte, 8), dst[8:])
}

type fixedRecord struct {
	A uint64
	B uint32
	C uint32
}

func TestCopyOutCopyIn_RoundTrip(t *testing.T) {
	v := fixedRecord{A: 0x0102030405060708, B: 42, C: 99}
	dst := make([]byte, 16)

	require.NoError(t, CopyOut(&v, dst))

	got, err := CopyIn[fixedRecord](dst)
	require.NoError(t, err)
	assert.Equal(t, v, got)
}

func TestCopyOut_TruncatedBuffer(t *testing.T) {
	v := fixedRecord{A: 1}
	dst := make([]byte, 4)

	err := CopyOut(&v, dst)
	require.Error(t, err)
}

func TestCopyIn_TruncatedBuffer(t *testing.T) {
	_, err := CopyIn[fixedRecord]([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestCopyOutCopyIn_UnalignedSource(t *testing.T) {
	v := fixedRecord{A: 7, B: 8, C: 9}

	// Deliberately offset the backing array by one byte so the slice
	// itself starts on an address that is not guaranteed to satisfy the
	// record's alignment, exercising the byte-copy fallback path.
	backing := make([]byte, 17)
	dst := backing[1:]

	require.NoError(t, CopyOut(&v, dst))

	got, err := CopyIn[fixedRecord](dst)
	require.NoError(t, err)
	assert.Equal(t, v, got)
}

func TestCopyOutCopyIn_ZeroSizedType(t *testing.T) {
	type empty struct{}
	var v empty
	dst := make([]byte, 0)

	require.NoError(t, CopyOut(&v, dst))

	got, err := CopyIn[empty](dst)
	require.NoError(t, err)
	assert.Equal(t, v, got)
}
