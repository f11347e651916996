// Package layout provides the low-level binary layout primitives shared by
// every WRTF structural component: size/alignment/padding arithmetic for
// arbitrary fixed-size record types, magic-tag comparison, and an
// alignment-safe blittable struct read/write pair.
//
// Records passed through this package must be "blittable": their in-memory
// representation equals their on-wire representation (sequential fields,
// natural alignment, caller-controlled padding). The package never inspects
// a record's internal structure — it only ever deals in byte counts.
package layout

import (
	"fmt"
	"unsafe"

	"github.com/werace-au/wrtf/errs"
)

// Alignment is the fixed byte boundary every structural unit lands on.
const Alignment = 8

// AlignedSize rounds n up to the next multiple of Alignment.
func AlignedSize(n int) int {
	return (n + Alignment - 1) &^ (Alignment - 1)
}

// Padding returns the number of zero bytes needed after n bytes to reach
// the next Alignment boundary. Padding(n) is always in [0, Alignment).
func Padding(n int) int {
	return (Alignment - n%Alignment) % Alignment
}

// IsAligned reports whether n is already a multiple of Alignment.
func IsAligned(n int64) bool {
	return n%Alignment == 0
}

// CompareMagic reports whether the first MagicSize bytes of data equal want.
// It does not check length beyond what's needed for comparison; callers
// needing a truncation error should use ExpectMagic.
func CompareMagic(data []byte, want [8]byte) bool {
	if len(data) < len(want) {
		return false
	}
	for i := range want {
		if data[i] != want[i] {
			return false
		}
	}

	return true
}

// ExpectMagic reads the first 8 bytes of data and compares them against want,
// returning errs.ErrTruncatedBuffer if data is too short or errs.ErrBadMagic
// if the tag doesn't match.
func ExpectMagic(data []byte, want [8]byte) error {
	if len(data) < len(want) {
		return fmt.Errorf("%w: need %d bytes for magic, have %d", errs.ErrTruncatedBuffer, len(want), len(data))
	}
	if !CompareMagic(data, want) {
		return fmt.Errorf("%w: expected %q, got %q", errs.ErrBadMagic, want, data[:len(want)])
	}

	return nil
}

// PutMagic writes magic into the first 8 bytes of dst.
func PutMagic(dst []byte, magic [8]byte) {
	copy(dst, magic[:])
}

// CopyOut writes the blittable byte image of *v into dst. dst must be at
// least unsafe.Sizeof(*v) bytes; returns errs.ErrTruncatedBuffer otherwise.
//
// When dst's backing array happens to be naturally aligned for T, the copy
// is done via a direct pointer cast. Otherwise it falls back to a byte-wise
// copy through T's own (correctly aligned) memory, which is always safe
// regardless of dst's address.
func CopyOut[T any](v *T, dst []byte) error {
	size := int(unsafe.Sizeof(*v))
	if len(dst) < size {
		return fmt.Errorf("%w: need %d bytes, have %d", errs.ErrTruncatedBuffer, size, len(dst))
	}

	if size == 0 {
		return nil
	}

	if uintptr(unsafe.Pointer(&dst[0]))%unsafe.Alignof(*v) == 0 {
		*(*T)(unsafe.Pointer(&dst[0])) = *v
		return nil
	}

	src := unsafe.Slice((*byte)(unsafe.Pointer(v)), size)
	copy(dst[:size], src)

	return nil
}

// CopyIn reads a blittable T out of the leading unsafe.Sizeof(T) bytes of
// src, mirroring CopyOut's alignment-safe fast/slow path split.
func CopyIn[T any](src []byte) (T, error) {
	var out T
	size := int(unsafe.Sizeof(out))
	if len(src) < size {
		return out, fmt.Errorf("%w: need %d bytes, have %d", errs.ErrTruncatedBuffer, size, len(src))
	}

	if size == 0 {
		return out, nil
	}

	if uintptr(unsafe.Pointer(&src[0]))%unsafe.Alignof(out) == 0 {
		out = *(*T)(unsafe.Pointer(&src[0]))
		return out, nil
	}

	dst := unsafe.Slice((*byte)(unsafe.Pointer(&out)), size)
	copy(dst, src[:size])

	return out, nil
}
