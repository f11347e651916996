package writer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/werace-au/wrtf/errs"
	"github.com/werace-au/wrtf/format"
	"github.com/werace-au/wrtf/internal/testutil"
	"github.com/werace-au/wrtf/record"
)

type header struct {
	CarID    uint32
	DriverID uint32
}

type footer struct {
	BestLapTimeMs uint32
	_             uint32
}

type sample struct {
	SpeedKph float32
}

func newTestWriter(t *testing.T, stream *testutil.MemStream, opts ...Option) *Writer[header, footer, sample] {
	t.Helper()

	w, err := New[header, footer, sample](
		stream, 100,
		record.StructCodec[header](),
		record.StructCodec[footer](),
		record.StructCodec[sample](),
		opts...,
	)
	require.NoError(t, err)

	return w
}

func TestNew_RejectsZeroSampleRate(t *testing.T) {
	stream := testutil.NewMemStream()

	_, err := New[header, footer, sample](
		stream, 0,
		record.StructCodec[header](),
		record.StructCodec[footer](),
		record.StructCodec[sample](),
	)
	require.ErrorIs(t, err, errs.ErrInvalidSampleRate)
}

func TestWriter_StateMachine(t *testing.T) {
	t.Run("WriteFrame before BeginSession fails", func(t *testing.T) {
		w := newTestWriter(t, testutil.NewMemStream())
		err := w.WriteFrame(0, sample{})
		require.ErrorIs(t, err, errs.ErrNoSessionOpen)
	})

	t.Run("EndSession before BeginSession fails", func(t *testing.T) {
		w := newTestWriter(t, testutil.NewMemStream())
		err := w.EndSession(footer{})
		require.ErrorIs(t, err, errs.ErrNoSessionOpen)
	})

	t.Run("BeginSession twice fails", func(t *testing.T) {
		w := newTestWriter(t, testutil.NewMemStream())
		require.NoError(t, w.BeginSession(header{}))

		err := w.BeginSession(header{})
		require.ErrorIs(t, err, errs.ErrSessionAlreadyOpen)
	})

	t.Run("operations after Close fail", func(t *testing.T) {
		w := newTestWriter(t, testutil.NewMemStream())
		require.NoError(t, w.Close())

		assert.ErrorIs(t, w.BeginSession(header{}), errs.ErrWriterClosed)
		assert.ErrorIs(t, w.WriteFrame(0, sample{}), errs.ErrWriterClosed)
		assert.ErrorIs(t, w.EndSession(footer{}), errs.ErrWriterClosed)
	})

	t.Run("a new session can begin after EndSession", func(t *testing.T) {
		w := newTestWriter(t, testutil.NewMemStream())
		require.NoError(t, w.BeginSession(header{}))
		require.NoError(t, w.EndSession(footer{}))
		require.NoError(t, w.BeginSession(header{}))
	})
}

func TestWriter_TickOrderViolation(t *testing.T) {
	w := newTestWriter(t, testutil.NewMemStream())
	require.NoError(t, w.BeginSession(header{}))
	require.NoError(t, w.WriteFrame(10, sample{}))

	err := w.WriteFrame(5, sample{})
	require.ErrorIs(t, err, errs.ErrTickOrderViolation)
}

func TestWriter_TickOrderAllowsRepeatsAndGaps(t *testing.T) {
	w := newTestWriter(t, testutil.NewMemStream())
	require.NoError(t, w.BeginSession(header{}))
	require.NoError(t, w.WriteFrame(0, sample{}))
	require.NoError(t, w.WriteFrame(0, sample{}))
	require.NoError(t, w.WriteFrame(100, sample{}))
	require.NoError(t, w.EndSession(footer{}))
}

func TestWriter_FileHeaderEmittedOnceOnFirstSession(t *testing.T) {
	stream := testutil.NewMemStream()
	w := newTestWriter(t, stream, WithMetadata(map[string]string{"track": "monza"}))

	require.NoError(t, w.BeginSession(header{CarID: 1}))
	require.NoError(t, w.EndSession(footer{}))

	firstLen := len(stream.Bytes())
	assert.True(t, firstLen >= format.FileHeaderSize)

	require.NoError(t, w.BeginSession(header{CarID: 2}))
	require.NoError(t, w.EndSession(footer{}))

	b := stream.Bytes()
	assert.Equal(t, []byte("WRTF0001"), b[0:8])

	// The magic should appear exactly once, at the very start: a second
	// session must not re-emit the file header or metadata block.
	assert.NotContains(t, string(b[8:]), "WRTF0001")
}

func TestWriter_EmptyFileWithMetadataOnly(t *testing.T) {
	stream := testutil.NewMemStream()
	w := newTestWriter(t, stream, WithMetadata(map[string]string{"track": "monza"}))

	require.NoError(t, w.Close())

	b := stream.Bytes()
	require.True(t, len(b) >= format.FileHeaderSize)
	assert.Equal(t, []byte("WRTF0001"), b[0:8])
	assert.Equal(t, 0, len(b)%8)

	// No sessions: document footer directly follows metadata.
	assert.Equal(t, []byte("WRDE0001"), b[len(b)-8:])
}

func TestWriter_SingleSessionZeroFrames(t *testing.T) {
	stream := testutil.NewMemStream()
	w := newTestWriter(t, stream)

	require.NoError(t, w.BeginSession(header{CarID: 7}))
	require.NoError(t, w.EndSession(footer{BestLapTimeMs: 0}))
	require.NoError(t, w.Close())

	b := stream.Bytes()
	assert.Equal(t, 0, len(b)%8)
	assert.Contains(t, string(b), "WRSE0001")
	assert.Contains(t, string(b), "WRSF0001")
}

func TestWriter_ThreeFramesWithGaps(t *testing.T) {
	stream := testutil.NewMemStream()
	w := newTestWriter(t, stream)

	require.NoError(t, w.BeginSession(header{}))
	require.NoError(t, w.WriteFrame(0, sample{SpeedKph: 10}))
	require.NoError(t, w.WriteFrame(3, sample{SpeedKph: 20}))
	require.NoError(t, w.WriteFrame(9, sample{SpeedKph: 30}))
	require.NoError(t, w.EndSession(footer{}))
	require.NoError(t, w.Close())

	assert.Equal(t, uint64(3), w.sessionIdx[0].FrameCount)
}

func TestWriter_TwoSessionsLargeFrameCount(t *testing.T) {
	stream := testutil.NewMemStream()
	w := newTestWriter(t, stream)

	const frames = 1000

	for s := 0; s < 2; s++ {
		require.NoError(t, w.BeginSession(header{CarID: uint32(s)}))
		for i := 0; i < frames; i++ {
			require.NoError(t, w.WriteFrame(uint64(i), sample{SpeedKph: float32(i)}))
		}
		require.NoError(t, w.EndSession(footer{}))
	}
	require.NoError(t, w.Close())

	require.Len(t, w.sessionIdx, 2)
	for _, e := range w.sessionIdx {
		assert.Equal(t, uint64(frames), e.FrameCount)
	}
}

func TestWriter_Close_SynthesizesFooterForOpenSession(t *testing.T) {
	stream := testutil.NewMemStream()
	w := newTestWriter(t, stream)

	require.NoError(t, w.BeginSession(header{}))
	require.NoError(t, w.WriteFrame(0, sample{}))
	require.NoError(t, w.Close())

	require.Len(t, w.sessionIdx, 1)
	assert.Equal(t, uint64(1), w.sessionIdx[0].FrameCount)

	b := stream.Bytes()
	assert.Equal(t, []byte("WRDE0001"), b[len(b)-8:])
}

func TestWriter_Close_IsIdempotentSafe(t *testing.T) {
	w := newTestWriter(t, testutil.NewMemStream())
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}

func TestWriter_StreamStaysEightByteAligned(t *testing.T) {
	stream := testutil.NewMemStream()
	w := newTestWriter(t, stream)

	require.NoError(t, w.BeginSession(header{}))
	require.NoError(t, w.WriteFrame(0, sample{}))
	require.NoError(t, w.EndSession(footer{}))
	require.NoError(t, w.Close())

	assert.Equal(t, 0, len(stream.Bytes())%8)
}
