// Package shuffle performs the out-of-core transpose from the
// round-major temporary file the generator/roundwriter pair produces
// into the bucket-major layout the final vault file needs for O(1)
// bucket lookups. Within one round, every bucket's slot array is
// already laid out in bucket-index order, so a contiguous range of
// buckets ("a group", the spiritual equivalent of a preindex shard)
// can be read back with one sequential read per round and reassembled
// in RAM before being written out once, contiguously, per bucket.
// Groups are sized to a memory budget and processed by a worker pool,
// mirroring the original preindex package's shard-file worker pool.
package shuffle

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"

	"github.com/cespare/xxhash/v2"
	"github.com/nonceforge/vaultx/concurrency"
	"github.com/nonceforge/vaultx/geometry"
	"k8s.io/klog/v2"
)

// Shuffler transposes a round-major temp file into a bucket-major
// final file.
type Shuffler struct {
	Plan        geometry.Plan
	GroupBudget uint64 // approx bytes of RAM one group may use
	Workers     int
}

// New builds a Shuffler. groupBudget<=0 defaults to 64MiB; workers<=0 defaults to 1.
func New(plan geometry.Plan, groupBudget uint64, workers int) *Shuffler {
	if groupBudget == 0 {
		groupBudget = 64 << 20
	}
	if workers <= 0 {
		workers = 1
	}
	return &Shuffler{Plan: plan, GroupBudget: groupBudget, Workers: workers}
}

type group struct {
	firstBucket uint64
	numBuckets  uint64
}

// planGroups partitions [0, NumBuckets) into contiguous ranges each
// occupying no more than GroupBudget bytes across all rounds.
func (s *Shuffler) planGroups() []group {
	bytesPerBucket := s.Plan.BucketSize * uint64(s.Plan.NonceSize)
	if bytesPerBucket == 0 {
		bytesPerBucket = 1
	}
	bucketsPerGroup := s.GroupBudget / bytesPerBucket
	if bucketsPerGroup == 0 {
		bucketsPerGroup = 1
	}
	var groups []group
	for start := uint64(0); start < s.Plan.NumBuckets; start += bucketsPerGroup {
		n := bucketsPerGroup
		if remain := s.Plan.NumBuckets - start; remain < n {
			n = remain
		}
		groups = append(groups, group{firstBucket: start, numBuckets: n})
	}
	return groups
}

// Run reads tmpPath (the round-major temp file) and writes finalPath
// (the bucket-major content file, truncated/created fresh). If the
// plan has exactly one round the two layouts coincide, so Run takes a
// fast path and simply relocates the file instead of re-copying it.
func (s *Shuffler) Run(tmpPath, finalPath string) error {
	if s.Plan.Rounds == 1 {
		return moveFile(tmpPath, finalPath)
	}

	tmp, err := os.Open(tmpPath)
	if err != nil {
		return fmt.Errorf("shuffle: open temp file: %w", err)
	}
	defer tmp.Close()

	final, err := os.Create(finalPath)
	if err != nil {
		return fmt.Errorf("shuffle: create final file: %w", err)
	}
	defer final.Close()
	if err := final.Truncate(s.Plan.FinalContentSize()); err != nil {
		return fmt.Errorf("shuffle: truncate final file: %w", err)
	}

	groups := s.planGroups()
	jobs := make(chan group, len(groups))
	for _, g := range groups {
		jobs <- g
	}
	close(jobs)

	collector := concurrency.NewCollector(s.Workers)
	var wg sync.WaitGroup
	for w := 0; w < s.Workers; w++ {
		wg.Add(1)
		w := w
		go func() {
			defer wg.Done()
			for g := range jobs {
				if err := s.shuffleGroup(tmp, final, g); err != nil {
					collector.Set(w, err)
					return
				}
			}
		}()
	}
	wg.Wait()
	if err := collector.Err(); err != nil {
		return err
	}
	if err := final.Sync(); err != nil {
		return fmt.Errorf("shuffle: sync final file: %w", err)
	}
	return nil
}

// shuffleGroup reassembles every bucket in g from the round-major temp
// file and writes each one's full, contiguous BucketSize run into the
// final file.
func (s *Shuffler) shuffleGroup(tmp, final *os.File, g group) error {
	nonceSize := uint64(s.Plan.NonceSize)
	groupStride := g.numBuckets * s.Plan.RoundCap * nonceSize // bytes per round for this group

	// acc[bucket-local-index] accumulates that bucket's records across rounds.
	acc := make([][]byte, g.numBuckets)
	for i := range acc {
		acc[i] = make([]byte, 0, s.Plan.BucketSize*nonceSize)
	}

	roundBuf := make([]byte, groupStride)
	for round := uint64(0); round < s.Plan.Rounds; round++ {
		offset := s.Plan.RoundOffset(round) + s.Plan.BucketOffsetInRound(g.firstBucket)
		n, err := tmp.ReadAt(roundBuf, offset)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("shuffle: read round %d for group starting at bucket %d: %w", round, g.firstBucket, err)
		}
		if int64(n) < int64(len(roundBuf)) {
			return fmt.Errorf("shuffle: short read for round %d, group starting at bucket %d: got %d of %d bytes", round, g.firstBucket, n, len(roundBuf))
		}
		bucketStride := s.Plan.RoundCap * nonceSize
		for i := uint64(0); i < g.numBuckets; i++ {
			start := i * bucketStride
			acc[i] = append(acc[i], roundBuf[start:start+bucketStride]...)
		}
	}

	for i := uint64(0); i < g.numBuckets; i++ {
		bucket := g.firstBucket + i
		if _, err := final.WriteAt(acc[i], s.Plan.FinalBucketOffset(bucket)); err != nil {
			return fmt.Errorf("shuffle: write bucket %d: %w", bucket, err)
		}
	}

	if klog.V(3).Enabled() {
		digest := xxhash.New()
		for _, b := range acc {
			digest.Write(b)
		}
		klog.V(3).Infof("shuffle: group buckets [%d,%d) checksum=%x", g.firstBucket, g.firstBucket+g.numBuckets, digest.Sum64())
	}
	return nil
}

const moveCopyBufSize = 8 << 20 // 8MiB, matching the original builder's cross-device copy fallback.

// moveFile renames src to dst, falling back to a buffered deep copy
// plus source removal when the rename crosses filesystems (EXDEV),
// exactly as the original builder's move_file_overwrite did.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	} else if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("shuffle: rename temp file to final: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("shuffle: open source for cross-device copy: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("shuffle: create destination for cross-device copy: %w", err)
	}
	defer out.Close()

	buf := make([]byte, moveCopyBufSize)
	if _, err := io.CopyBuffer(out, in, buf); err != nil {
		return fmt.Errorf("shuffle: cross-device copy: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("shuffle: sync destination after cross-device copy: %w", err)
	}
	if err := in.Close(); err != nil {
		return fmt.Errorf("shuffle: close source after cross-device copy: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("shuffle: remove source after cross-device copy: %w", err)
	}
	return nil
}
