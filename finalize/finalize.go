// Package finalize runs the last, crash-safety-critical step of a
// build: make sure the finished vault file is durably on disk and the
// round-major scratch file is gone, using the same sync-then-close
// continuation chain the original index builder used to seal a file.
package finalize

import (
	"fmt"
	"os"

	"github.com/nonceforge/vaultx/continuity"
	"golang.org/x/sys/unix"
)

// Finalize fsyncs final, syncs its containing filesystem, and removes
// tmpPath (the round-major scratch file), if it still exists. The
// steps run in order and stop at the first failure, so a failed sync
// is reported before any cleanup that depends on it runs.
func Finalize(final *os.File, finalPath, tmpPath string) error {
	return continuity.New().
		Thenf("sync final file", func() error {
			if err := final.Sync(); err != nil {
				return fmt.Errorf("failed to sync final file: %w", err)
			}
			return nil
		}).
		Thenf("syncfs", func() error {
			if err := unix.Syncfs(int(final.Fd())); err != nil {
				return fmt.Errorf("failed to syncfs: %w", err)
			}
			return nil
		}).
		Thenf("remove temp file", func() error {
			if tmpPath == "" {
				return nil
			}
			if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove temp file %s: %w", tmpPath, err)
			}
			return nil
		}).
		Thenf("sync containing directory", func() error {
			return syncDir(finalPath)
		}).
		Err()
}

func syncDir(path string) error {
	dir, err := os.Open(dirname(path))
	if err != nil {
		return fmt.Errorf("failed to open directory for sync: %w", err)
	}
	defer dir.Close()
	if err := dir.Sync(); err != nil {
		return fmt.Errorf("failed to sync directory: %w", err)
	}
	return nil
}

func dirname(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			if i == 0 {
				return "/"
			}
			return path[:i]
		}
	}
	return "."
}
