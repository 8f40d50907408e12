// Package lookup answers "which nonce hashes to this prefix?"
// queries against a sealed vault: read the one bucket the prefix
// routes to, then re-hash every stored nonce in parallel and compare
// it against the query, cancelling outstanding workers as soon as one
// reports a match. This mirrors the original builder's lookup_hash,
// which read a whole bucket into memory and ran an OpenMP parallel-for
// with a shared "found" flag so that the scan could stop early.
package lookup

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/nonceforge/vaultx/concurrency"
	"github.com/nonceforge/vaultx/geometry"
	"github.com/nonceforge/vaultx/hasher"
	"github.com/nonceforge/vaultx/record"
	"github.com/nonceforge/vaultx/vaultindex"
)

// ErrNotFound is returned when no stored nonce hashes to the query prefix.
var ErrNotFound = errors.New("lookup: no nonce found for prefix")

// ErrPrefixTooShort is returned when the query prefix has fewer bytes
// than the vault's bucket-routing prefix size, making bucket selection
// ambiguous.
var ErrPrefixTooShort = errors.New("lookup: query prefix shorter than vault prefix size")

// Engine answers lookups against one open vault.
type Engine struct {
	DB      *vaultindex.DB
	Hasher  hasher.Hasher
	Plan    geometry.Plan
	Workers int
}

// New builds an Engine. workers<=0 defaults to 4.
func New(db *vaultindex.DB, h hasher.Hasher, plan geometry.Plan, workers int) *Engine {
	if workers <= 0 {
		workers = 4
	}
	return &Engine{DB: db, Hasher: h, Plan: plan, Workers: workers}
}

// Lookup finds a nonce whose hash begins with prefix. The returned
// nonce, when re-hashed to len(prefix) bytes, equals prefix exactly.
func (e *Engine) Lookup(ctx context.Context, prefix []byte) ([]byte, error) {
	if uint(len(prefix)) < e.Plan.PrefixSize {
		return nil, ErrPrefixTooShort
	}
	bucketIdx := geometry.BucketIndex(prefix[:e.Plan.PrefixSize])

	buf, err := e.DB.ReadBucket(bucketIdx)
	if err != nil {
		return nil, fmt.Errorf("lookup: read bucket %d: %w", bucketIdx, err)
	}
	defer buf.Release()

	racer, _ := concurrency.NewRacer[[]byte](ctx, e.Workers)
	n := buf.NumSlots()
	chunks := splitRange(n, e.Workers)
	for _, c := range chunks {
		start, end := c[0], c[1]
		racer.Go(func() ([]byte, bool, error) {
			for i := start; i < end; i++ {
				if racer.Found() {
					return nil, false, nil
				}
				slot := buf.Slot(i)
				if isEmpty(slot) {
					continue
				}
				got := e.Hasher.Hash(slot, len(prefix))
				if bytesEqual(got, prefix) {
					nonce := make([]byte, len(slot))
					copy(nonce, slot)
					return nonce, true, nil
				}
			}
			return nil, false, nil
		})
	}
	match, ok, err := racer.Wait()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return match, nil
}

// LookupHex is a convenience wrapper taking a hex-encoded prefix, as
// accepted by the CLI.
func (e *Engine) LookupHex(ctx context.Context, prefixHex string) ([]byte, error) {
	prefix, err := hex.DecodeString(prefixHex)
	if err != nil {
		return nil, fmt.Errorf("lookup: invalid hex prefix: %w", err)
	}
	return e.Lookup(ctx, prefix)
}

func isEmpty(b []byte) bool {
	r := record.Record{Nonce: b}
	return r.IsEmpty()
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// splitRange partitions [0,n) into up to workers contiguous [start,end) pairs.
func splitRange(n uint64, workers int) [][2]uint64 {
	if workers <= 0 {
		workers = 1
	}
	if uint64(workers) > n {
		workers = int(n)
	}
	if workers == 0 {
		return nil
	}
	base := n / uint64(workers)
	rem := n % uint64(workers)
	out := make([][2]uint64, 0, workers)
	var cursor uint64
	for i := 0; i < workers; i++ {
		count := base
		if uint64(i) < rem {
			count++
		}
		if count == 0 {
			continue
		}
		out = append(out, [2]uint64{cursor, cursor + count})
		cursor += count
	}
	return out
}
