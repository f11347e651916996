// Package format defines the wire schema constants for the WRTF v1 binary
// container: the five 8-byte magic tags, the fixed file-header layout, and
// the document-footer session-entry size.
//
// This package defines three categories of constants:
//
//  1. Magics: 8-byte ASCII tags marking each structural boundary
//  2. File header layout: the fixed 40-byte header preceding the metadata block
//  3. Document footer layout: the fixed size of each session index entry
//
// # File Layout
//
//	┌─────────────────────────────────────────────────────────┐
//	│ File Header (40 bytes, fixed)                            │
//	│  - Magic "WRTF0001" (8 bytes)                            │
//	│  - Version (8 bytes, = 1)                                │
//	│  - SampleRate (8 bytes, Hz)                              │
//	│  - StartTimestampUs (8 bytes)                            │
//	│  - MetadataCount (4 bytes)                               │
//	│  - Reserved (4 bytes, = 0)                                │
//	├─────────────────────────────────────────────────────────┤
//	│ Metadata entries (variable, 8-byte aligned per entry)    │
//	├─────────────────────────────────────────────────────────┤
//	│ Session 1: "WRSE0001" | header | frames* | "WRSF0001" |  │
//	│            last_tick | frame_count | footer              │
//	│ ...                                                       │
//	│ Session N                                                 │
//	├─────────────────────────────────────────────────────────┤
//	│ Document Footer                                          │
//	│  - "WRDF0001"                                             │
//	│  - N session index entries (24 bytes each)                │
//	│  - session count (8 bytes)                                │
//	│  - "WRDE0001"                                              │
//	└─────────────────────────────────────────────────────────┘
//
// All multi-byte integers are little-endian. Every structural boundary is
// 8-byte aligned; padding bytes are zero.
package format

// MagicSize is the fixed byte length of every magic tag.
const MagicSize = 8

// FileHeaderSize is the fixed byte length of the file header, magic through
// reserved, before the metadata block begins.
const FileHeaderSize = 40

// SessionIndexEntrySize is the fixed byte length of one document-footer
// session index entry: header offset, footer offset, frame count (3 uint64s).
const SessionIndexEntrySize = 24

// FileVersion is the only version value this codec understands.
const FileVersion uint64 = 1

// Magic tags. Each is exactly MagicSize bytes of ASCII.
var (
	MagicFile           = [MagicSize]byte{'W', 'R', 'T', 'F', '0', '0', '0', '1'}
	MagicSessionHeader  = [MagicSize]byte{'W', 'R', 'S', 'E', '0', '0', '0', '1'}
	MagicSessionFooter  = [MagicSize]byte{'W', 'R', 'S', 'F', '0', '0', '0', '1'}
	MagicDocFooterStart = [MagicSize]byte{'W', 'R', 'D', 'F', '0', '0', '0', '1'}
	MagicDocFooterEnd   = [MagicSize]byte{'W', 'R', 'D', 'E', '0', '0', '0', '1'}
)

// FileHeader is the decoded form of the fixed 40-byte file header.
type FileHeader struct {
	// Version must equal FileVersion.
	Version uint64
	// SampleRateHz is the fixed sample rate in Hz, must be > 0.
	SampleRateHz uint64
	// StartTimestampUs is the start time in microseconds since Unix epoch, must be > 0.
	StartTimestampUs uint64
	// MetadataCount is the number of metadata entries following the header.
	MetadataCount uint32
	// Reserved must be 0.
	Reserved uint32
}
