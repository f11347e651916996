// Package session defines the structural unit the WRTF container repeats
// N times between the metadata block and the document footer (spec section
// 4.3): a session header record, a run of fixed-size frames, and a session
// footer record, each bounded by magic tags.
//
// A session is generic over the caller-supplied header type H and footer
// type F (spec section 3.1's record.Codec[T] contract); the frame payload
// type is handled by the writer/reader packages directly since a session
// only needs to reason about frame count and byte span, never frame
// contents.
package session

import (
	"fmt"

	"github.com/werace-au/wrtf/endian"
	"github.com/werace-au/wrtf/errs"
)

// IndexEntrySize is the fixed byte length of one document-footer session
// index entry.
const IndexEntrySize = 24

// IndexEntry is one entry in the document footer's session index: the
// absolute byte offsets of a session's header and footer records, plus its
// frame count. Unlike the teacher's per-metric index entries, these are
// stored as absolute uint64 offsets rather than deltas — a session's
// offsets routinely exceed the uint16 range a delta encoding would target,
// and a document rarely holds enough sessions for delta compression to
// matter.
type IndexEntry struct {
	// HeaderOffset is the absolute byte offset of the session's header
	// magic tag ("WRSE0001") from the start of the stream.
	HeaderOffset uint64
	// FooterOffset is the absolute byte offset of the session's footer
	// magic tag ("WRSF0001") from the start of the stream.
	FooterOffset uint64
	// FrameCount is the number of frames the session contains.
	FrameCount uint64
}

// Bytes returns e encoded as IndexEntrySize bytes using engine's byte order.
func (e IndexEntry) Bytes(engine endian.EndianEngine) []byte {
	b := make([]byte, IndexEntrySize)
	engine.PutUint64(b[0:8], e.HeaderOffset)
	engine.PutUint64(b[8:16], e.FooterOffset)
	engine.PutUint64(b[16:24], e.FrameCount)

	return b
}

// ParseIndexEntry decodes one IndexEntry from the leading IndexEntrySize
// bytes of data.
func ParseIndexEntry(data []byte, engine endian.EndianEngine) (IndexEntry, error) {
	if len(data) < IndexEntrySize {
		return IndexEntry{}, fmt.Errorf("%w: need %d bytes for session index entry, have %d",
			errs.ErrTruncatedBuffer, IndexEntrySize, len(data))
	}

	return IndexEntry{
		HeaderOffset: engine.Uint64(data[0:8]),
		FooterOffset: engine.Uint64(data[8:16]),
		FrameCount:   engine.Uint64(data[16:24]),
	}, nil
}

// Descriptor is the fully decoded view of one session, as returned by
// reader iteration: the caller's decoded header and footer records, plus
// the structural facts needed to locate and validate the session's frames.
type Descriptor[H, F any] struct {
	// Header is the caller's decoded session header record.
	Header H
	// Footer is the caller's decoded session footer record.
	Footer F
	// FrameCount is the number of frames the session footer claims.
	FrameCount uint64
	// LastTick is the tick value of the session's final frame, as recorded
	// in the footer.
	LastTick uint64
	// HeaderOffset is the absolute byte offset of the session header magic.
	HeaderOffset int64
	// DataOffset is the absolute byte offset of the first frame.
	DataOffset int64
	// FooterOffset is the absolute byte offset of the session footer magic.
	FooterOffset int64
}

// ValidateLayout checks that (FooterOffset - DataOffset) is an exact,
// non-negative multiple of frameSize, and that the implied frame count
// matches FrameCount. It does not re-read any bytes; it only checks the
// arithmetic already extracted from the stream.
func (d Descriptor[H, F]) ValidateLayout(frameSize int) error {
	span := d.FooterOffset - d.DataOffset
	if span < 0 {
		return fmt.Errorf("%w: footer offset %d precedes data offset %d",
			errs.ErrCorruptSessionLayout, d.FooterOffset, d.DataOffset)
	}
	if frameSize <= 0 {
		return fmt.Errorf("%w: non-positive frame size %d", errs.ErrCorruptSessionLayout, frameSize)
	}
	if span%int64(frameSize) != 0 {
		return fmt.Errorf("%w: frame span %d is not a multiple of frame size %d",
			errs.ErrCorruptSessionLayout, span, frameSize)
	}

	implied := uint64(span / int64(frameSize))
	if implied != d.FrameCount {
		return fmt.Errorf("%w: layout implies %d frames, footer claims %d",
			errs.ErrInconsistentFrameCount, implied, d.FrameCount)
	}

	return nil
}
