// Package testutil provides small shared test doubles used by multiple
// package test suites (writer, reader) that need a seekable in-memory byte
// stream without pulling in a temp-file dependency.
package testutil

import (
	"errors"
	"io"
)

// MemStream is an in-memory io.ReadWriteSeeker backed by a growable byte
// slice, standing in for a real file in tests.
type MemStream struct {
	buf []byte
	pos int64
}

// NewMemStream returns an empty MemStream.
func NewMemStream() *MemStream {
	return &MemStream{}
}

// Bytes returns the stream's current contents.
func (m *MemStream) Bytes() []byte {
	return m.buf
}

func (m *MemStream) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}

	n := copy(m.buf[m.pos:end], p)
	m.pos = end

	return n, nil
}

func (m *MemStream) Read(p []byte) (int, error) {
	if m.pos >= int64(len(m.buf)) {
		return 0, io.EOF
	}

	n := copy(p, m.buf[m.pos:])
	m.pos += int64(n)

	return n, nil
}

func (m *MemStream) Seek(offset int64, whence int) (int64, error) {
	var newPos int64

	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = m.pos + offset
	case io.SeekEnd:
		newPos = int64(len(m.buf)) + offset
	default:
		return 0, errors.New("testutil: invalid whence")
	}

	if newPos < 0 {
		return 0, errors.New("testutil: negative seek position")
	}

	m.pos = newPos

	return m.pos, nil
}
