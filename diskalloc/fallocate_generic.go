//go:build !linux

package diskalloc

import (
	"fmt"
	"os"
)

// Fallocate preallocates [offset, offset+size) of f by writing zero
// blocks, for platforms without a native fallocate syscall.
func Fallocate(f *os.File, offset, size int64) error {
	if _, err := f.Seek(offset, 0); err != nil {
		return fmt.Errorf("diskalloc: seek: %w", err)
	}
	const blockSize = 4096
	var zero [blockSize]byte
	for size > 0 {
		step := int64(blockSize)
		if step > size {
			step = size
		}
		if _, err := f.Write(zero[:step]); err != nil {
			return fmt.Errorf("diskalloc: generic fallocate: %w", err)
		}
		size -= step
	}
	return nil
}
