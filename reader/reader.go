// Package reader implements the random-access WRTF container consumer: it
// validates the file header, decodes metadata, locates the document
// footer via a reverse seek from end-of-stream, validates every session's
// header and footer eagerly, and exposes a lazy per-session frame
// sequence.
//
// Reader mirrors blob.NumericDecoder's parse-then-validate pipeline,
// generalized to the caller's three record types via record.Codec.
package reader

import (
	"fmt"
	"io"
	"iter"

	"github.com/werace-au/wrtf/endian"
	"github.com/werace-au/wrtf/errs"
	"github.com/werace-au/wrtf/format"
	"github.com/werace-au/wrtf/internal/checksum"
	"github.com/werace-au/wrtf/internal/options"
	"github.com/werace-au/wrtf/layout"
	"github.com/werace-au/wrtf/metadata"
	"github.com/werace-au/wrtf/record"
	"github.com/werace-au/wrtf/session"
)

// Config holds the reader's optional settings.
type Config struct {
	StrictLengthCheck bool
}

// Option configures a Reader at construction time.
type Option = options.Option[*Config]

// WithStrictLengthCheck toggles the up-front "stream length is a multiple
// of 8" check performed by Open. It is on by default; turning it off only
// narrows what Open rejects up front; every other structural check still
// runs.
func WithStrictLengthCheck(enabled bool) Option {
	return options.NoError[*Config](func(c *Config) { c.StrictLengthCheck = enabled })
}

func defaultConfig() *Config {
	return &Config{StrictLengthCheck: true}
}

// Frame is one decoded frame: its tick and caller-defined payload.
type Frame[P any] struct {
	Tick    uint64
	Payload P
}

// Reader is a stateful, single-threaded consumer of one WRTF stream. It is
// not safe for concurrent use: iterating Frames mutates the stream's read
// position.
type Reader[H, F, P any] struct {
	stream io.ReadSeeker
	engine endian.EndianEngine

	headerCodec  record.Codec[H]
	footerCodec  record.Codec[F]
	payloadCodec record.Codec[P]
	frameSize    int

	fileHeader format.FileHeader
	dict       *metadata.Dictionary
	sessions   []session.Descriptor[H, F]
}

func (r *Reader[H, F, P]) readAt(offset int64, n int) ([]byte, error) {
	if _, err := r.stream.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("wrtf: seek to %d: %w", offset, err)
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r.stream, buf); err != nil {
		return nil, fmt.Errorf("%w: read %d bytes at offset %d: %v", errs.ErrTruncatedBuffer, n, offset, err)
	}

	return buf, nil
}

func (r *Reader[H, F, P]) expectMagicAt(offset int64, want [8]byte) error {
	buf, err := r.readAt(offset, format.MagicSize)
	if err != nil {
		return err
	}

	return layout.ExpectMagic(buf, want)
}

// Open validates and eagerly loads the file header, metadata dictionary,
// and every session's header/footer from stream. Frame contents are not
// read until Frames is called for a given session.
func Open[H, F, P any](
	stream io.ReadSeeker,
	headerCodec record.Codec[H],
	footerCodec record.Codec[F],
	payloadCodec record.Codec[P],
	opts ...Option,
) (*Reader[H, F, P], error) {
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

	streamLen, err := stream.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("wrtf: seek to end: %w", err)
	}
	if cfg.StrictLengthCheck && streamLen%int64(layout.Alignment) != 0 {
		return nil, fmt.Errorf("%w: stream length %d is not a multiple of %d", errs.ErrMisalignedStream, streamLen, layout.Alignment)
	}

	r := &Reader[H, F, P]{
		stream:       stream,
		engine:       endian.GetLittleEndianEngine(),
		headerCodec:  headerCodec,
		footerCodec:  footerCodec,
		payloadCodec: payloadCodec,
		frameSize:    layout.AlignedSize(8 + payloadCodec.Size),
	}

	if err := r.readFileHeader(); err != nil {
		return nil, err
	}
	if err := r.readMetadata(); err != nil {
		return nil, err
	}
	if err := r.readDocumentFooter(streamLen); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Reader[H, F, P]) readFileHeader() error {
	buf, err := r.readAt(0, format.FileHeaderSize)
	if err != nil {
		return err
	}

	if err := layout.ExpectMagic(buf, format.MagicFile); err != nil {
		return err
	}

	r.fileHeader = format.FileHeader{
		Version:          r.engine.Uint64(buf[8:16]),
		SampleRateHz:     r.engine.Uint64(buf[16:24]),
		StartTimestampUs: r.engine.Uint64(buf[24:32]),
		MetadataCount:    r.engine.Uint32(buf[32:36]),
		Reserved:         r.engine.Uint32(buf[36:40]),
	}

	if r.fileHeader.Version != format.FileVersion {
		return fmt.Errorf("%w: got %d, want %d", errs.ErrUnsupportedVersion, r.fileHeader.Version, format.FileVersion)
	}

	return nil
}

func (r *Reader[H, F, P]) readMetadata() error {
	if _, err := r.stream.Seek(format.FileHeaderSize, io.SeekStart); err != nil {
		return fmt.Errorf("wrtf: seek to metadata block: %w", err)
	}

	dict, _, err := metadata.ReadFrom(r.stream, r.fileHeader.MetadataCount, r.engine)
	if err != nil {
		return err
	}

	r.dict = dict

	return nil
}

func (r *Reader[H, F, P]) readDocumentFooter(streamLen int64) error {
	if err := r.expectMagicAt(streamLen-8, format.MagicDocFooterEnd); err != nil {
		return err
	}

	countBuf, err := r.readAt(streamLen-16, 8)
	if err != nil {
		return err
	}
	n := r.engine.Uint64(countBuf)

	footerStart := streamLen - 16 - int64(n)*int64(session.IndexEntrySize) - 8
	if err := r.expectMagicAt(footerStart, format.MagicDocFooterStart); err != nil {
		return err
	}

	entriesStart := footerStart + format.MagicSize
	entriesBuf, err := r.readAt(entriesStart, int(n)*session.IndexEntrySize)
	if err != nil {
		return err
	}

	descriptors := make([]session.Descriptor[H, F], 0, n)
	for i := uint64(0); i < n; i++ {
		entry, err := session.ParseIndexEntry(entriesBuf[i*session.IndexEntrySize:], r.engine)
		if err != nil {
			return fmt.Errorf("session index entry %d: %w", i, err)
		}

		desc, err := r.readSession(entry)
		if err != nil {
			return fmt.Errorf("session %d: %w", i, err)
		}

		descriptors = append(descriptors, desc)
	}

	r.sessions = descriptors

	return nil
}

func (r *Reader[H, F, P]) readSession(entry session.IndexEntry) (session.Descriptor[H, F], error) {
	var desc session.Descriptor[H, F]

	headerOffset := int64(entry.HeaderOffset)
	if err := r.expectMagicAt(headerOffset, format.MagicSessionHeader); err != nil {
		return desc, err
	}

	headerRaw, err := r.readAt(headerOffset+format.MagicSize, r.headerCodec.Size)
	if err != nil {
		return desc, fmt.Errorf("session header record: %w", err)
	}
	header, err := r.headerCodec.Unmarshal(headerRaw)
	if err != nil {
		return desc, fmt.Errorf("unmarshal session header: %w", err)
	}

	dataOffset := headerOffset + format.MagicSize + int64(r.headerCodec.AlignedSize())

	footerOffset := int64(entry.FooterOffset)
	if err := r.expectMagicAt(footerOffset, format.MagicSessionFooter); err != nil {
		return desc, err
	}

	counters, err := r.readAt(footerOffset+format.MagicSize, 16)
	if err != nil {
		return desc, fmt.Errorf("session footer counters: %w", err)
	}
	lastTick := r.engine.Uint64(counters[0:8])
	frameCount := r.engine.Uint64(counters[8:16])

	if frameCount != entry.FrameCount {
		return desc, fmt.Errorf("%w: footer claims %d frames, index entry claims %d",
			errs.ErrInconsistentFrameCount, frameCount, entry.FrameCount)
	}

	footerRaw, err := r.readAt(footerOffset+format.MagicSize+16, r.footerCodec.Size)
	if err != nil {
		return desc, fmt.Errorf("session footer record: %w", err)
	}
	footer, err := r.footerCodec.Unmarshal(footerRaw)
	if err != nil {
		return desc, fmt.Errorf("unmarshal session footer: %w", err)
	}

	desc = session.Descriptor[H, F]{
		Header:       header,
		Footer:       footer,
		FrameCount:   frameCount,
		LastTick:     lastTick,
		HeaderOffset: headerOffset,
		DataOffset:   dataOffset,
		FooterOffset: footerOffset,
	}

	if err := desc.ValidateLayout(r.frameSize); err != nil {
		return desc, err
	}

	return desc, nil
}

// FileHeader returns the decoded file header.
func (r *Reader[H, F, P]) FileHeader() format.FileHeader {
	return r.fileHeader
}

// Metadata returns the decoded metadata dictionary.
func (r *Reader[H, F, P]) Metadata() *metadata.Dictionary {
	return r.dict
}

// Sessions returns the ordered list of session descriptors, in the order
// they appear in the document footer (equal to write order).
func (r *Reader[H, F, P]) Sessions() []session.Descriptor[H, F] {
	return r.sessions
}

// Frames returns a lazy sequence of (index, frame) pairs for desc.
// Iterating mutates the reader's stream position; it is not safe to
// interleave iteration over two Frames sequences from the same Reader.
func (r *Reader[H, F, P]) Frames(desc session.Descriptor[H, F]) iter.Seq2[int, Frame[P]] {
	return func(yield func(int, Frame[P]) bool) {
		if _, err := r.stream.Seek(desc.DataOffset, io.SeekStart); err != nil {
			return
		}

		buf := make([]byte, r.frameSize)
		for i := uint64(0); i < desc.FrameCount; i++ {
			pos := desc.DataOffset + int64(i)*int64(r.frameSize)
			if pos+int64(r.frameSize) > desc.FooterOffset {
				return
			}

			if _, err := io.ReadFull(r.stream, buf); err != nil {
				return
			}

			tick := r.engine.Uint64(buf[0:8])
			payload, err := r.payloadCodec.Unmarshal(buf[8 : 8+r.payloadCodec.Size])
			if err != nil {
				return
			}

			if !yield(int(i), Frame[P]{Tick: tick, Payload: payload}) {
				return
			}
		}
	}
}

// VerifySessionChecksum hashes desc's frame region [DataOffset,
// FooterOffset) with xxhash64 and reports whether it equals want. This is
// a supplemental, non-wire convenience — see internal/checksum.
func (r *Reader[H, F, P]) VerifySessionChecksum(desc session.Descriptor[H, F], want uint64) (bool, error) {
	got, err := checksum.Sum(r.stream, desc.DataOffset, desc.FooterOffset)
	if err != nil {
		return false, err
	}

	return got == want, nil
}
