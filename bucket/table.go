// Package bucket holds one round's worth of generated nonces in RAM,
// indexed by hash prefix. It plays the role the original builder gave
// a plain C array of Bucket{records,count}: a fixed-capacity slot per
// bucket filled by a lock-free fetch-and-increment, with any record
// that arrives after its bucket is full silently dropped. The
// generator produces exactly Plan.N nonces in total, so dropped
// records are lost, not made up for.
package bucket

import (
	"sync/atomic"

	"github.com/nonceforge/vaultx/record"
)

// Table is one round's in-RAM bucket array. It is safe for concurrent
// Insert calls from multiple generator workers; Clear, BucketBytes and
// BucketRecords must not race with Insert.
type Table struct {
	numBuckets uint64
	cap        uint64
	nonceSize  int
	slots      []byte         // numBuckets*cap*nonceSize bytes
	fill       []atomic.Int64 // per-bucket fetch-and-increment counter
}

// NewTable allocates a table for numBuckets buckets, each holding up
// to capacity records of nonceSize bytes.
func NewTable(numBuckets, capacity uint64, nonceSize int) *Table {
	return &Table{
		numBuckets: numBuckets,
		cap:        capacity,
		nonceSize:  nonceSize,
		slots:      make([]byte, numBuckets*capacity*uint64(nonceSize)),
		fill:       make([]atomic.Int64, numBuckets),
	}
}

// NumBuckets returns the bucket count.
func (t *Table) NumBuckets() uint64 { return t.numBuckets }

// Capacity returns the per-bucket, per-round record capacity.
func (t *Table) Capacity() uint64 { return t.cap }

// Clear resets every bucket's fill counter and zeroes its slots, for
// reuse across rounds without reallocating.
func (t *Table) Clear() {
	for i := range t.fill {
		t.fill[i].Store(0)
	}
	for i := range t.slots {
		t.slots[i] = 0
	}
}

// Insert places nonce into bucket, claiming the next free slot via an
// atomic fetch-and-increment. Returns false if the bucket was already
// full, in which case the record is dropped.
func (t *Table) Insert(bucketIdx uint64, nonce []byte) bool {
	slot := t.fill[bucketIdx].Add(1) - 1
	if uint64(slot) >= t.cap {
		return false
	}
	off := (bucketIdx*t.cap + uint64(slot)) * uint64(t.nonceSize)
	copy(t.slots[off:off+uint64(t.nonceSize)], nonce)
	return true
}

// Filled returns the number of records actually stored in bucket,
// capped at capacity (fetch-and-increment can overshoot capacity
// under contention; that overshoot never corresponds to a written slot).
func (t *Table) Filled(bucketIdx uint64) uint64 {
	n := t.fill[bucketIdx].Load()
	if n < 0 {
		return 0
	}
	if uint64(n) > t.cap {
		return t.cap
	}
	return uint64(n)
}

// BucketBytes returns the raw backing bytes for bucketIdx's full
// capacity*nonceSize slot array, including any trailing unfilled
// (all-zero) slots.
func (t *Table) BucketBytes(bucketIdx uint64) []byte {
	start := bucketIdx * t.cap * uint64(t.nonceSize)
	end := start + t.cap*uint64(t.nonceSize)
	return t.slots[start:end]
}

// BucketRecords decodes bucketIdx's filled slots into Records.
func (t *Table) BucketRecords(bucketIdx uint64) []record.Record {
	n := t.Filled(bucketIdx)
	out := make([]record.Record, 0, n)
	raw := t.BucketBytes(bucketIdx)
	for i := uint64(0); i < n; i++ {
		off := i * uint64(t.nonceSize)
		nonce := make([]byte, t.nonceSize)
		copy(nonce, raw[off:off+uint64(t.nonceSize)])
		out = append(out, record.Record{Nonce: nonce})
	}
	return out
}
