// Package roundwriter flushes one round's bucket.Table out to its
// slice of the round-major temporary file, at the exact offset
// geometry.Plan.RoundOffset computes. Buckets are written in index
// order with a single buffered sequential write, following the
// bucketteer package's use of a large bufio.Writer for its own
// sequential bucket dump.
package roundwriter

import (
	"bufio"
	"fmt"
	"os"

	"github.com/nonceforge/vaultx/bucket"
	"github.com/nonceforge/vaultx/geometry"
	"golang.org/x/sys/unix"
)

const writeBufSize = 4 * 1024 * 1024

// Write appends round's full bucket table (including unfilled,
// all-zero trailing slots, so every round's slice has a fixed,
// predictable size) to tmp at its canonical offset.
func Write(tmp *os.File, plan geometry.Plan, round uint64, table *bucket.Table) error {
	offset := plan.RoundOffset(round)
	if _, err := tmp.Seek(offset, 0); err != nil {
		return fmt.Errorf("roundwriter: seek round %d: %w", round, err)
	}
	w := bufio.NewWriterSize(tmp, writeBufSize)
	for b := uint64(0); b < plan.NumBuckets; b++ {
		if _, err := w.Write(table.BucketBytes(b)); err != nil {
			return fmt.Errorf("roundwriter: write bucket %d of round %d: %w", b, round, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("roundwriter: flush round %d: %w", round, err)
	}
	// Hint that this slice of the file won't be read again soon; the
	// shuffle phase reads it back sequentially, not randomly.
	if err := unix.Fadvise(int(tmp.Fd()), offset, int64(plan.NumBuckets*plan.RoundCap*uint64(plan.NonceSize)), unix.FADV_DONTNEED); err != nil {
		// Advisory only; not fatal.
		_ = err
	}
	return nil
}
