// Package record defines the caller-supplied record contract the codec is
// polymorphic over: the session header record, session footer record, and
// frame payload record. Go has no "fixed-size, trivially copyable" generic
// constraint, so instead of a type parameter bound, each record type is
// described by a Codec[T] of plain callbacks — the codec layer only ever
// sees a size and a pair of byte<->T conversion functions, never T's
// internal structure.
package record

import (
	"fmt"
	"unsafe"

	"github.com/werace-au/wrtf/errs"
	"github.com/werace-au/wrtf/layout"
)

// Codec describes how to marshal/unmarshal a fixed-size record type T.
// Size must equal exactly the number of bytes Marshal writes to dst and
// Unmarshal reads from src; the codec and record packages never pad or
// truncate on T's behalf beyond the alignment padding specified in the
// wire format (spec section 3).
type Codec[T any] struct {
	// Size is the exact unaligned byte length of one encoded T.
	Size int
	// Marshal writes the binary image of v into dst, which is guaranteed
	// to be at least Size bytes long.
	Marshal func(v T, dst []byte) error
	// Unmarshal reads a T out of the leading Size bytes of src.
	Unmarshal func(src []byte) (T, error)
}

// Validate reports whether c is usable: Size must be positive and both
// callbacks must be set.
func (c Codec[T]) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("%w: record size must be positive, got %d", errs.ErrInvalidRecordSize, c.Size)
	}
	if c.Marshal == nil || c.Unmarshal == nil {
		return fmt.Errorf("%w: codec missing marshal/unmarshal callback", errs.ErrInvalidRecordSize)
	}

	return nil
}

// AlignedSize returns c.Size rounded up to the 8-byte boundary every
// structural unit in the wire format occupies (spec section 3 invariants).
func (c Codec[T]) AlignedSize() int {
	return layout.AlignedSize(c.Size)
}

// StructCodec builds a Codec[T] for a plain fixed-layout struct T using an
// alignment-safe blittable copy (layout.CopyOut/CopyIn) instead of
// hand-written per-field marshaling. This is the generic equivalent of the
// Parse/Bytes method pairs hand-rolled by the teacher's own fixed-size
// record types: the caller gets the same "copy the struct's bytes" behavior
// without writing it per record type.
//
// T must be blittable: no pointers, slices, strings, maps, or interfaces,
// and its Go field layout must already match the desired wire layout
// (matching field order and explicit padding fields where needed).
func StructCodec[T any]() Codec[T] {
	var zero T

	return Codec[T]{
		Size: int(unsafe.Sizeof(zero)),
		Marshal: func(v T, dst []byte) error {
			return layout.CopyOut(&v, dst)
		},
		Unmarshal: func(src []byte) (T, error) {
			return layout.CopyIn[T](src)
		},
	}
}
