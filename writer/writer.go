// Package writer implements the streaming WRTF container producer: it
// materializes the file header and metadata block lazily on the first
// session (or on Close, if no session was begun), emits frames as they arrive, and accumulates the in-memory
// session index that becomes the document footer on Close.
//
// Writer is generic over the caller's three record types (session header,
// session footer, frame payload), following blob.NumericEncoder's shape:
// a config object built from functional options, a reusable scratch
// buffer, and a state machine enforced by explicit sentinel errors rather
// than panics.
package writer

import (
	"fmt"
	"io"
	"time"

	"github.com/werace-au/wrtf/endian"
	"github.com/werace-au/wrtf/errs"
	"github.com/werace-au/wrtf/format"
	"github.com/werace-au/wrtf/internal/options"
	"github.com/werace-au/wrtf/internal/pool"
	"github.com/werace-au/wrtf/layout"
	"github.com/werace-au/wrtf/metadata"
	"github.com/werace-au/wrtf/record"
	"github.com/werace-au/wrtf/session"
)

// Config holds the writer's optional settings, populated by Option values
// via internal/options before construction. It does not depend on the
// caller's record types, so Option stays a plain (non-generic) type
// regardless of what Writer[H, F, P] is instantiated with.
type Config struct {
	Metadata          map[string]string
	ScratchBufferSize int
	Clock             func() time.Time
}

// Option configures a Writer at construction time.
type Option = options.Option[*Config]

// WithMetadata sets the file-level metadata entries, in map iteration
// order is not guaranteed — callers needing a specific key order should
// rely on metadata.Dictionary directly via future API growth; today's
// contract only guarantees the keys/values round-trip.
func WithMetadata(md map[string]string) Option {
	return options.NoError[*Config](func(c *Config) { c.Metadata = md })
}

// WithScratchBufferSize overrides the minimum free capacity the writer's
// reusable scratch buffer is grown to at construction (default: the larger
// of 1024 and the aligned frame size). A pooled buffer that already has
// more capacity is not shrunk.
func WithScratchBufferSize(n int) Option {
	return options.NoError[*Config](func(c *Config) { c.ScratchBufferSize = n })
}

// WithClock injects the function used to stamp the file header's start
// timestamp, for deterministic tests. Defaults to time.Now.
func WithClock(fn func() time.Time) Option {
	return options.NoError[*Config](func(c *Config) { c.Clock = fn })
}

func defaultConfig() *Config {
	return &Config{Clock: time.Now}
}

type state int

const (
	stateFresh state = iota
	stateSessionOpen
	stateIdle
	stateClosed
)

// Writer is a stateful, single-threaded producer of one WRTF stream. It is
// not safe for concurrent use; see the package doc.
type Writer[H, F, P any] struct {
	stream       io.WriteSeeker
	sampleRateHz uint64
	engine       endian.EndianEngine
	clock        func() time.Time

	headerCodec  record.Codec[H]
	footerCodec  record.Codec[F]
	payloadCodec record.Codec[P]

	frameSize int // aligned size of one frame: 8 (tick) + payload, padded to 8

	metadata *metadata.Dictionary
	scratch  *pool.ByteBuffer

	state      state
	offset     int64
	sessionIdx []session.IndexEntry

	sessionStart int64
	dataOffset   int64
	curTick      uint64
	frameCount   uint64
	haveFrame    bool
}

// New constructs a Writer over stream, a writable and seekable byte sink
// that must currently be positioned at the start of an empty region (the
// writer tracks its own position internally and never seeks backward).
// sampleRateHz must be nonzero. No bytes are written until the first
// BeginSession or Close call.
func New[H, F, P any](
	stream io.WriteSeeker,
	sampleRateHz uint64,
	headerCodec record.Codec[H],
	footerCodec record.Codec[F],
	payloadCodec record.Codec[P],
	opts ...Option,
) (*Writer[H, F, P], error) {
	if sampleRateHz == 0 {
		return nil, errs.ErrInvalidSampleRate
	}
	if err := headerCodec.Validate(); err != nil {
		return nil, fmt.Errorf("session header codec: %w", err)
	}
	if err := footerCodec.Validate(); err != nil {
		return nil, fmt.Errorf("session footer codec: %w", err)
	}
	if err := payloadCodec.Validate(); err != nil {
		return nil, fmt.Errorf("frame payload codec: %w", err)
	}

	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	md := metadata.New()
	for k, v := range cfg.Metadata {
		if err := md.Set(k, v); err != nil {
			return nil, err
		}
	}

	scratchSize := cfg.ScratchBufferSize
	frameSize := layout.AlignedSize(8 + payloadCodec.Size)
	if scratchSize <= 0 {
		scratchSize = 1024
		if frameSize > scratchSize {
			scratchSize = frameSize
		}
	}

	scratch := pool.GetScratch()
	scratch.Grow(scratchSize)

	w := &Writer[H, F, P]{
		stream:       stream,
		sampleRateHz: sampleRateHz,
		engine:       endian.GetLittleEndianEngine(),
		clock:        cfg.Clock,
		headerCodec:  headerCodec,
		footerCodec:  footerCodec,
		payloadCodec: payloadCodec,
		frameSize:    frameSize,
		metadata:     md,
		scratch:      scratch,
		state:        stateFresh,
	}

	return w, nil
}

func (w *Writer[H, F, P]) write(b []byte) error {
	n, err := w.stream.Write(b)
	w.offset += int64(n)
	if err != nil {
		return fmt.Errorf("wrtf: write at offset %d: %w", w.offset-int64(n), err)
	}

	return nil
}

func (w *Writer[H, F, P]) writeAligned(raw []byte, totalAligned int) error {
	if err := w.write(raw); err != nil {
		return err
	}
	pad := totalAligned - len(raw)
	if pad <= 0 {
		return nil
	}

	return w.write(make([]byte, pad))
}

func (w *Writer[H, F, P]) writeFileHeader() error {
	hdr := format.FileHeader{
		Version:          format.FileVersion,
		SampleRateHz:     w.sampleRateHz,
		StartTimestampUs: uint64(w.clock().UnixMicro()), //nolint:gosec
		MetadataCount:    uint32(w.metadata.Len()),      //nolint:gosec
	}

	buf := make([]byte, format.FileHeaderSize)
	layout.PutMagic(buf, format.MagicFile)
	w.engine.PutUint64(buf[8:16], hdr.Version)
	w.engine.PutUint64(buf[16:24], hdr.SampleRateHz)
	w.engine.PutUint64(buf[24:32], hdr.StartTimestampUs)
	w.engine.PutUint32(buf[32:36], hdr.MetadataCount)
	w.engine.PutUint32(buf[36:40], 0)

	if err := w.write(buf); err != nil {
		return err
	}

	body, err := w.metadata.Encode(w.engine)
	if err != nil {
		return err
	}

	return w.write(body)
}

// BeginSession opens a new session, writing the file header and metadata
// block first if this is the first session in the stream.
func (w *Writer[H, F, P]) BeginSession(header H) error {
	switch w.state {
	case stateClosed:
		return errs.ErrWriterClosed
	case stateSessionOpen:
		return errs.ErrSessionAlreadyOpen
	}

	if w.state == stateFresh {
		if err := w.writeFileHeader(); err != nil {
			return err
		}
	}

	w.sessionStart = w.offset

	if err := w.write(format.MagicSessionHeader[:]); err != nil {
		return err
	}

	raw := make([]byte, w.headerCodec.Size)
	if err := w.headerCodec.Marshal(header, raw); err != nil {
		return fmt.Errorf("marshal session header: %w", err)
	}
	if err := w.writeAligned(raw, w.headerCodec.AlignedSize()); err != nil {
		return err
	}

	w.dataOffset = w.offset
	w.curTick = 0
	w.frameCount = 0
	w.haveFrame = false
	w.state = stateSessionOpen

	return nil
}

// WriteFrame appends one frame to the currently open session. tick must
// be >= the previous frame's tick (the first frame in a session accepts
// any tick).
func (w *Writer[H, F, P]) WriteFrame(tick uint64, payload P) error {
	switch w.state {
	case stateClosed:
		return errs.ErrWriterClosed
	case stateFresh, stateIdle:
		return errs.ErrNoSessionOpen
	}

	if w.haveFrame && tick < w.curTick {
		return fmt.Errorf("%w: tick %d < current tick %d", errs.ErrTickOrderViolation, tick, w.curTick)
	}

	w.scratch.Reset()
	w.scratch.Grow(w.frameSize)
	buf := w.scratch.B[:w.frameSize]
	clear(buf)

	w.engine.PutUint64(buf[0:8], tick)
	if err := w.payloadCodec.Marshal(payload, buf[8:8+w.payloadCodec.Size]); err != nil {
		return fmt.Errorf("marshal frame payload: %w", err)
	}

	if err := w.write(buf); err != nil {
		return err
	}

	w.curTick = tick
	w.haveFrame = true
	w.frameCount++

	return nil
}

func (w *Writer[H, F, P]) endSession(footer F) error {
	footerOffset := w.offset

	magicAndCounters := make([]byte, 24)
	layout.PutMagic(magicAndCounters, format.MagicSessionFooter)
	w.engine.PutUint64(magicAndCounters[8:16], w.curTick)
	w.engine.PutUint64(magicAndCounters[16:24], w.frameCount)
	if err := w.write(magicAndCounters); err != nil {
		return err
	}

	raw := make([]byte, w.footerCodec.Size)
	if err := w.footerCodec.Marshal(footer, raw); err != nil {
		return fmt.Errorf("marshal session footer: %w", err)
	}
	if err := w.writeAligned(raw, w.footerCodec.AlignedSize()); err != nil {
		return err
	}

	w.sessionIdx = append(w.sessionIdx, session.IndexEntry{
		HeaderOffset: uint64(w.sessionStart), //nolint:gosec
		FooterOffset: uint64(footerOffset),   //nolint:gosec
		FrameCount:   w.frameCount,
	})

	w.state = stateIdle

	return nil
}

// EndSession closes the currently open session, writing its footer and
// recording it in the document index.
func (w *Writer[H, F, P]) EndSession(footer F) error {
	switch w.state {
	case stateClosed:
		return errs.ErrWriterClosed
	case stateFresh, stateIdle:
		return errs.ErrNoSessionOpen
	}

	return w.endSession(footer)
}

func (w *Writer[H, F, P]) writeDocumentFooter() error {
	if err := w.write(format.MagicDocFooterStart[:]); err != nil {
		return err
	}

	for _, e := range w.sessionIdx {
		if err := w.write(e.Bytes(w.engine)); err != nil {
			return err
		}
	}

	buf := make([]byte, 8)
	w.engine.PutUint64(buf, uint64(len(w.sessionIdx)))
	if err := w.write(buf); err != nil {
		return err
	}

	return w.write(format.MagicDocFooterEnd[:])
}

// Close finalizes the stream: if no session was ever begun the file header
// and metadata block are written first; if a session is still open it is
// closed with a zero-valued footer (best effort, matching the writer's
// disposal contract); then the document footer is written and the
// underlying stream is left positioned at end-of-file. Close is
// idempotent-safe to call once; calling any other method afterward fails
// with errs.ErrWriterClosed.
func (w *Writer[H, F, P]) Close() error {
	if w.state == stateClosed {
		return nil
	}

	if w.state == stateSessionOpen {
		var zero F
		// Best effort: synthesize the closing footer so the document
		// footer below still describes a structurally valid file even if
		// this fails.
		_ = w.endSession(zero)
	}

	var err error
	if w.state == stateFresh {
		// No session was ever begun, so the file header and metadata block
		// are not on the stream yet.
		err = w.writeFileHeader()
	}
	if err == nil {
		err = w.writeDocumentFooter()
	}
	w.state = stateClosed

	pool.PutScratch(w.scratch)
	w.scratch = nil

	return err
}
