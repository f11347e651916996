// Package wrtf implements the WRTF v1 binary container format for
// fixed-rate racing telemetry: a streaming writer/reader pair over a
// seekable byte stream, built around a caller-supplied record contract
// (session header, session footer, frame payload) rather than a fixed
// schema.
//
// The format is a fixed 40-byte file header, a metadata dictionary, N
// sessions (header, dense frame array, footer), and a document footer
// indexing every session for O(1) random access. This package provides
// convenient top-level wrappers around the writer and reader packages;
// see record for the record.Codec[T] contract every caller record type
// must satisfy.
//
// # Basic Usage
//
// Writing a file with one session:
//
//	import (
//	    "os"
//
//	    "github.com/werace-au/wrtf"
//	    "github.com/werace-au/wrtf/record"
//	    "github.com/werace-au/wrtf/writer"
//	)
//
//	type SessionHeader struct{ CarID uint32 }
//	type SessionFooter struct{ Flags uint32 }
//	type FramePayload struct{ SpeedKph float32; RpmX10 uint32 }
//
//	f, _ := os.Create("session.wrtf")
//	w, _ := wrtf.NewWriter(f, 60,
//	    record.StructCodec[SessionHeader](),
//	    record.StructCodec[SessionFooter](),
//	    record.StructCodec[FramePayload](),
//	    writer.WithMetadata(map[string]string{"track": "monza"}),
//	)
//	w.BeginSession(SessionHeader{CarID: 1})
//	w.WriteFrame(0, FramePayload{SpeedKph: 180.5, RpmX10: 65000})
//	w.EndSession(SessionFooter{})
//	w.Close()
//
// Reading it back:
//
//	f, _ := os.Open("session.wrtf")
//	r, _ := wrtf.NewReader(f,
//	    record.StructCodec[SessionHeader](),
//	    record.StructCodec[SessionFooter](),
//	    record.StructCodec[FramePayload](),
//	)
//	for _, desc := range r.Sessions() {
//	    for i, frame := range r.Frames(desc) {
//	        _ = i
//	        _ = frame.Payload.SpeedKph
//	    }
//	}
package wrtf

import (
	"io"

	"github.com/werace-au/wrtf/reader"
	"github.com/werace-au/wrtf/record"
	"github.com/werace-au/wrtf/writer"
)

// NewWriter creates a Writer over stream for the given record types.
//
// This is a thin forwarding wrapper around writer.New, provided so callers
// that don't otherwise need the writer package's Option type can depend on
// just the top-level wrtf package. sampleRateHz must be nonzero; no bytes
// are written until the first BeginSession or Close call.
//
// Example:
//
//	w, err := wrtf.NewWriter(f, 60,
//	    record.StructCodec[SessionHeader](),
//	    record.StructCodec[SessionFooter](),
//	    record.StructCodec[FramePayload](),
//	)
func NewWriter[H, F, P any](
	stream io.WriteSeeker,
	sampleRateHz uint64,
	headerCodec record.Codec[H],
	footerCodec record.Codec[F],
	payloadCodec record.Codec[P],
	opts ...writer.Option,
) (*writer.Writer[H, F, P], error) {
	return writer.New[H, F, P](stream, sampleRateHz, headerCodec, footerCodec, payloadCodec, opts...)
}

// NewReader opens stream for reading, validating the file header, metadata
// dictionary, and every session's header/footer eagerly.
//
// This is a thin forwarding wrapper around reader.Open, provided for the
// same reason as NewWriter.
//
// Example:
//
//	r, err := wrtf.NewReader(f,
//	    record.StructCodec[SessionHeader](),
//	    record.StructCodec[SessionFooter](),
//	    record.StructCodec[FramePayload](),
//	)
func NewReader[H, F, P any](
	stream io.ReadSeeker,
	headerCodec record.Codec[H],
	footerCodec record.Codec[F],
	payloadCodec record.Codec[P],
	opts ...reader.Option,
) (*reader.Reader[H, F, P], error) {
	return reader.Open[H, F, P](stream, headerCodec, footerCodec, payloadCodec, opts...)
}
