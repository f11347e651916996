package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMagicsAreEightBytes(t *testing.T) {
	magics := map[string][MagicSize]byte{
		"file":       MagicFile,
		"session_hd": MagicSessionHeader,
		"session_ft": MagicSessionFooter,
		"doc_start":  MagicDocFooterStart,
		"doc_end":    MagicDocFooterEnd,
	}

	for name, m := range magics {
		assert.Len(t, m, MagicSize, name)
	}
}

func TestMagicsAreDistinct(t *testing.T) {
	magics := [][MagicSize]byte{MagicFile, MagicSessionHeader, MagicSessionFooter, MagicDocFooterStart, MagicDocFooterEnd}

	for i := range magics {
		for j := range magics {
			if i == j {
				continue
			}
			assert.NotEqual(t, magics[i], magics[j])
		}
	}
}

func TestFileHeaderSize(t *testing.T) {
	assert.Equal(t, 40, FileHeaderSize)
	assert.Equal(t, 0, FileHeaderSize%8, "file header must end on an 8-byte boundary")
}

func TestSessionIndexEntrySize(t *testing.T) {
	assert.Equal(t, 24, SessionIndexEntrySize)
	assert.Equal(t, 0, SessionIndexEntrySize%8)
}
