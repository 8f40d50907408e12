// Package vaultindex opens a sealed, bucket-major vault file for
// random-access reads. It plays the read-path role compactindexsized's
// query.go played for an FKS perfect-hash index: open the file,
// fadvise it for random access, and hand back a bucket's raw bytes on
// request. Unlike an FKS index there is no per-file header to parse —
// bucket offsets fall straight out of geometry.Plan — so the reader is
// a thin, direct-addressed pread wrapper rather than a format parser.
package vaultindex

import (
	"fmt"
	"io"
	"os"

	"github.com/nonceforge/vaultx/geometry"
	"github.com/valyala/bytebufferpool"
	"golang.org/x/sys/unix"
)

// DB is a read-only handle on a sealed vault's bucket-major content file.
type DB struct {
	file io.ReaderAt
	plan geometry.Plan
}

// Open opens path and fadvises it for random access; callers supply
// the geometry (loaded from the plain-text sidecar) since the file
// itself carries no header.
func Open(path string, plan geometry.Plan) (*DB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vaultindex: open %s: %w", path, err)
	}
	if err := unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_RANDOM); err != nil {
		// Advisory only.
		_ = err
	}
	return &DB{file: f, plan: plan}, nil
}

// OpenReaderAt wraps an already-open io.ReaderAt (e.g. for tests that
// don't want to touch the filesystem).
func OpenReaderAt(r io.ReaderAt, plan geometry.Plan) *DB {
	return &DB{file: r, plan: plan}
}

// Close closes the underlying file, if it is one.
func (db *DB) Close() error {
	if c, ok := db.file.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// NumBuckets returns the bucket count of the open vault.
func (db *DB) NumBuckets() uint64 { return db.plan.NumBuckets }

// ReadBucket returns the raw BucketSize*NonceSize bytes of bucketIdx,
// including any trailing all-zero (empty) slots. The returned buffer
// is pooled; callers must call Release when done with it.
func (db *DB) ReadBucket(bucketIdx uint64) (*BucketBuf, error) {
	if bucketIdx >= db.plan.NumBuckets {
		return nil, fmt.Errorf("vaultindex: out of bounds bucket index: %d >= %d", bucketIdx, db.plan.NumBuckets)
	}
	size := int64(db.plan.BucketSize) * int64(db.plan.NonceSize)
	buf := bytebufferpool.Get()
	buf.B = append(buf.B[:0], make([]byte, size)...)
	n, err := db.file.ReadAt(buf.B, db.plan.FinalBucketOffset(bucketIdx))
	if err != nil && err != io.EOF {
		bytebufferpool.Put(buf)
		return nil, fmt.Errorf("vaultindex: read bucket %d: %w", bucketIdx, err)
	}
	if int64(n) < size {
		bytebufferpool.Put(buf)
		return nil, fmt.Errorf("vaultindex: short read for bucket %d: got %d of %d bytes", bucketIdx, n, size)
	}
	return &BucketBuf{buf: buf, plan: db.plan}, nil
}

// BucketBuf is a pooled, raw view of one bucket's fixed-width records.
type BucketBuf struct {
	buf  *bytebufferpool.ByteBuffer
	plan geometry.Plan
}

// Release returns the backing buffer to the pool. The BucketBuf must
// not be used afterwards.
func (b *BucketBuf) Release() {
	bytebufferpool.Put(b.buf)
}

// NumSlots returns the number of fixed-width record slots in the buffer.
func (b *BucketBuf) NumSlots() uint64 {
	return b.plan.BucketSize
}

// Slot returns the raw bytes of record i (which may be the all-zero
// empty-slot sentinel).
func (b *BucketBuf) Slot(i uint64) []byte {
	start := i * uint64(b.plan.NonceSize)
	return b.buf.B[start : start+uint64(b.plan.NonceSize)]
}
