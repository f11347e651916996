// Package errs defines the sentinel errors returned by the wrtf codec.
//
// Callers should use errors.Is against these sentinels rather than
// comparing error strings; most parse and validation failures wrap a
// sentinel with fmt.Errorf("%w: ...") to add positional context.
package errs

import "errors"

var (
	// ErrBadMagic means a required 8-byte tag at a known offset did not match.
	ErrBadMagic = errors.New("wrtf: bad magic")

	// ErrUnsupportedVersion means the file-header version is not 1.
	ErrUnsupportedVersion = errors.New("wrtf: unsupported version")

	// ErrTruncatedBuffer means there were insufficient bytes to complete a structural read.
	ErrTruncatedBuffer = errors.New("wrtf: truncated buffer")

	// ErrUnexpectedEOF means the stream ended before a structural read completed.
	ErrUnexpectedEOF = errors.New("wrtf: unexpected eof")

	// ErrMisalignedStream means the stream length is not a multiple of 8, or a
	// computed offset is not 8-byte aligned.
	ErrMisalignedStream = errors.New("wrtf: misaligned stream")

	// ErrInvalidMetadata means a metadata entry had a negative/overflowing length
	// field, non-UTF-8 bytes, or an empty key.
	ErrInvalidMetadata = errors.New("wrtf: invalid metadata entry")

	// ErrDuplicateMetadataKey means the same metadata key appeared twice in the stream.
	ErrDuplicateMetadataKey = errors.New("wrtf: duplicate metadata key")

	// ErrInconsistentFrameCount means a document-footer index entry disagreed
	// with the frame count recorded in the corresponding session footer.
	ErrInconsistentFrameCount = errors.New("wrtf: inconsistent frame count")

	// ErrCorruptSessionLayout means (footer offset - data offset) was not an
	// integer multiple of the aligned total frame size.
	ErrCorruptSessionLayout = errors.New("wrtf: corrupt session layout")

	// ErrTickOrderViolation means the writer observed a non-monotonic tick.
	ErrTickOrderViolation = errors.New("wrtf: tick order violation")

	// ErrSessionAlreadyOpen means BeginSession was called while a session was open.
	ErrSessionAlreadyOpen = errors.New("wrtf: session already open")

	// ErrNoSessionOpen means WriteFrame or EndSession was called with no open session.
	ErrNoSessionOpen = errors.New("wrtf: no session open")

	// ErrWriterClosed means an operation was attempted on a closed writer.
	ErrWriterClosed = errors.New("wrtf: writer closed")

	// ErrInvalidSampleRate means the writer was constructed with a zero sample rate.
	ErrInvalidSampleRate = errors.New("wrtf: invalid sample rate")

	// ErrInvalidRecordSize means a record.Codec failed validation: its Size
	// was not positive or a Marshal/Unmarshal callback was missing.
	ErrInvalidRecordSize = errors.New("wrtf: invalid record size")
)
