// Package metadata implements the file-level key/value dictionary that
// follows the file header (spec section 4.2): an ordered set of unique,
// non-empty string keys, each paired with a string value, encoded as a
// sequence of 8-byte-aligned entries.
//
// The wire format of one entry is:
//
//	[KeyLen uint32][Key bytes][ValueLen uint32][Value bytes][padding]
//
// padding is the zero bytes needed to bring the entry's total length up to
// the next 8-byte boundary. Decoding is a two-pass process grounded on the
// teacher's length-prefixed metric-names payload: the first pass walks the
// buffer validating every length field and locating entry boundaries
// without allocating, and the second pass slices out the actual key/value
// strings now that every offset is known to be in range.
package metadata

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/werace-au/wrtf/endian"
	"github.com/werace-au/wrtf/errs"
	"github.com/werace-au/wrtf/layout"
)

// Entry is one decoded key/value pair, in the order it appeared on the wire.
type Entry struct {
	Key   string
	Value string
}

// Dictionary is an ordered, duplicate-free collection of metadata entries.
// The zero value is not usable; construct one with New.
type Dictionary struct {
	entries []Entry
	index   map[string]int
}

// New returns an empty Dictionary ready for Set calls.
func New() *Dictionary {
	return &Dictionary{index: make(map[string]int)}
}

// Set appends a new key/value pair. Key must be non-empty and must not
// already exist in the dictionary; key and value must be valid UTF-8.
func (d *Dictionary) Set(key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", errs.ErrInvalidMetadata)
	}
	if !utf8.ValidString(key) || !utf8.ValidString(value) {
		return fmt.Errorf("%w: entry %q is not valid UTF-8", errs.ErrInvalidMetadata, key)
	}
	if _, ok := d.index[key]; ok {
		return fmt.Errorf("%w: %q", errs.ErrDuplicateMetadataKey, key)
	}

	d.index[key] = len(d.entries)
	d.entries = append(d.entries, Entry{Key: key, Value: value})

	return nil
}

// Get returns the value for key and whether it was present.
func (d *Dictionary) Get(key string) (string, bool) {
	i, ok := d.index[key]
	if !ok {
		return "", false
	}

	return d.entries[i].Value, true
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	return len(d.entries)
}

// Entries returns the entries in wire order. The returned slice must not be
// mutated by the caller.
func (d *Dictionary) Entries() []Entry {
	return d.entries
}

func entrySize(key, value string) int {
	raw := 4 + len(key) + 4 + len(value)
	return layout.AlignedSize(raw)
}

// EncodedSize returns the total number of bytes Encode will produce.
func (d *Dictionary) EncodedSize() int {
	total := 0
	for _, e := range d.entries {
		total += entrySize(e.Key, e.Value)
	}

	return total
}

// Encode serializes the dictionary's entries, in order, using engine for
// the length-prefix fields.
func (d *Dictionary) Encode(engine endian.EndianEngine) ([]byte, error) {
	buf := make([]byte, d.EncodedSize())
	offset := 0

	for _, e := range d.entries {
		keyBytes := []byte(e.Key)
		valBytes := []byte(e.Value)
		if len(keyBytes) > 0xFFFFFFFF || len(valBytes) > 0xFFFFFFFF {
			return nil, fmt.Errorf("%w: entry %q exceeds maximum length", errs.ErrInvalidMetadata, e.Key)
		}

		raw := 4 + len(keyBytes) + 4 + len(valBytes)
		aligned := layout.AlignedSize(raw)

		engine.PutUint32(buf[offset:], uint32(len(keyBytes)))
		offset += 4
		copy(buf[offset:], keyBytes)
		offset += len(keyBytes)

		engine.PutUint32(buf[offset:], uint32(len(valBytes)))
		offset += 4
		copy(buf[offset:], valBytes)
		offset += len(valBytes)

		offset += aligned - raw // padding already zero from make
	}

	return buf, nil
}

// boundary is the result of the validating first pass over one entry.
type boundary struct {
	keyStart, keyEnd int
	valStart, valEnd int
	entryLen         int // aligned length, including padding
}

// scanEntries walks data validating count entries' length fields without
// allocating any strings, returning each entry's byte boundaries.
func scanEntries(data []byte, count uint32, engine endian.EndianEngine) ([]boundary, int, error) {
	bounds := make([]boundary, 0, count)
	offset := 0

	for i := uint32(0); i < count; i++ {
		if len(data)-offset < 4 {
			return nil, 0, fmt.Errorf("%w: entry %d: cannot read key length (have %d bytes at offset %d)",
				errs.ErrTruncatedBuffer, i, len(data)-offset, offset)
		}
		keyLen := int(engine.Uint32(data[offset:]))
		offset += 4
		keyStart := offset

		if len(data)-offset < keyLen {
			return nil, 0, fmt.Errorf("%w: entry %d: key needs %d bytes, have %d",
				errs.ErrTruncatedBuffer, i, keyLen, len(data)-offset)
		}
		offset += keyLen
		keyEnd := offset

		if len(data)-offset < 4 {
			return nil, 0, fmt.Errorf("%w: entry %d: cannot read value length (have %d bytes at offset %d)",
				errs.ErrTruncatedBuffer, i, len(data)-offset, offset)
		}
		valLen := int(engine.Uint32(data[offset:]))
		offset += 4
		valStart := offset

		if len(data)-offset < valLen {
			return nil, 0, fmt.Errorf("%w: entry %d: value needs %d bytes, have %d",
				errs.ErrTruncatedBuffer, i, valLen, len(data)-offset)
		}
		offset += valLen
		valEnd := offset

		raw := (keyEnd - keyStart) + (valEnd - valStart) + 8
		aligned := layout.AlignedSize(raw)
		pad := aligned - raw
		if len(data)-offset < pad {
			return nil, 0, fmt.Errorf("%w: entry %d: missing %d padding bytes", errs.ErrTruncatedBuffer, i, pad)
		}
		offset += pad

		bounds = append(bounds, boundary{keyStart: keyStart, keyEnd: keyEnd, valStart: valStart, valEnd: valEnd, entryLen: aligned})
	}

	return bounds, offset, nil
}

// Decode parses count entries out of the leading bytes of data, returning
// the populated Dictionary and the number of bytes consumed.
func Decode(data []byte, count uint32, engine endian.EndianEngine) (*Dictionary, int, error) {
	bounds, consumed, err := scanEntries(data, count, engine)
	if err != nil {
		return nil, 0, err
	}

	d := New()
	for i, b := range bounds {
		key := string(data[b.keyStart:b.keyEnd])
		value := string(data[b.valStart:b.valEnd])

		if key == "" {
			return nil, 0, fmt.Errorf("%w: entry %d has empty key", errs.ErrInvalidMetadata, i)
		}
		if err := d.Set(key, value); err != nil {
			return nil, 0, err
		}
	}

	return d, consumed, nil
}

// ReadFrom decodes count entries directly off r, without requiring the
// caller to have buffered the metadata block first. It is the streaming
// counterpart to Decode, for readers that do not want to load an unknown
// number of bytes into memory up front; it is otherwise bound by the same
// wire contract (length-prefixed, 8-byte-aligned entries).
func ReadFrom(r io.Reader, count uint32, engine endian.EndianEngine) (*Dictionary, int64, error) {
	d := New()
	var consumed int64

	lenBuf := make([]byte, 4)

	readUint32 := func() (uint32, error) {
		if _, err := io.ReadFull(r, lenBuf); err != nil {
			return 0, fmt.Errorf("%w: %v", errs.ErrTruncatedBuffer, err)
		}
		consumed += 4

		return engine.Uint32(lenBuf), nil
	}

	readString := func(n uint32) (string, error) {
		buf := make([]byte, n)
		if n > 0 {
			if _, err := io.ReadFull(r, buf); err != nil {
				return "", fmt.Errorf("%w: %v", errs.ErrTruncatedBuffer, err)
			}
		}
		consumed += int64(n)

		return string(buf), nil
	}

	skipPadding := func(raw int) error {
		pad := layout.Padding(raw)
		if pad == 0 {
			return nil
		}
		if _, err := io.CopyN(io.Discard, r, int64(pad)); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrTruncatedBuffer, err)
		}
		consumed += int64(pad)

		return nil
	}

	for i := uint32(0); i < count; i++ {
		keyLen, err := readUint32()
		if err != nil {
			return nil, 0, fmt.Errorf("entry %d: %w", i, err)
		}
		key, err := readString(keyLen)
		if err != nil {
			return nil, 0, fmt.Errorf("entry %d: %w", i, err)
		}

		valLen, err := readUint32()
		if err != nil {
			return nil, 0, fmt.Errorf("entry %d: %w", i, err)
		}
		value, err := readString(valLen)
		if err != nil {
			return nil, 0, fmt.Errorf("entry %d: %w", i, err)
		}

		raw := 8 + int(keyLen) + int(valLen)
		if err := skipPadding(raw); err != nil {
			return nil, 0, fmt.Errorf("entry %d: %w", i, err)
		}

		if key == "" {
			return nil, 0, fmt.Errorf("%w: entry %d has empty key", errs.ErrInvalidMetadata, i)
		}
		if err := d.Set(key, value); err != nil {
			return nil, 0, err
		}
	}

	return d, consumed, nil
}
