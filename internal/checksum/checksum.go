// Package checksum provides a supplemental, off-wire integrity digest over
// an arbitrary byte span of a stream. It is not part of the normative WRTF
// wire format (no footer field stores a checksum) — it exists purely so a
// caller who keeps its own out-of-band digest (for example, in one of its
// own metadata entries) can cross-check a session's frame region after a
// suspicious read.
//
// This repurposes xxhash64, which the teacher uses for metric-name-to-ID
// hashing, into a pure data-integrity role.
package checksum

import (
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

// Sum seeks r to start and hashes exactly end-start bytes, returning the
// xxhash64 digest. end must be >= start.
func Sum(r io.ReadSeeker, start, end int64) (uint64, error) {
	if end < start {
		return 0, fmt.Errorf("checksum: end %d precedes start %d", end, start)
	}

	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return 0, fmt.Errorf("checksum: seek to %d: %w", start, err)
	}

	h := xxhash.New()
	if _, err := io.CopyN(h, r, end-start); err != nil {
		return 0, fmt.Errorf("checksum: read %d bytes from %d: %w", end-start, start, err)
	}

	return h.Sum64(), nil
}
