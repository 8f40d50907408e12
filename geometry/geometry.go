// Package geometry computes the exact bucket/round layout of a vault
// build from its requested size and memory budget. The arithmetic
// mirrors the sizing loop in the original builder's main(): pick a
// number of buckets from the prefix size, then find the fewest rounds
// whose per-round bucket capacity (i) fits the memory budget and (ii)
// divides the total record count per bucket exactly, so that
// C * Rounds == N/B with no remainder and no padding record.
package geometry

import "fmt"

// Plan is the resolved layout for one vault build.
type Plan struct {
	K          uint   // log2 of total nonce count
	N          uint64 // total nonces to generate, 2^K
	PrefixSize uint   // P, bytes of hash used to route to a bucket
	NumBuckets uint64 // B, 2^(8*P)
	NonceSize  uint   // bytes per nonce record
	Rounds     uint64 // number of generate/insert/write passes
	RoundCap   uint64 // C, records held per bucket per round (in RAM)
	BucketSize uint64 // total capacity per bucket across all rounds, RoundCap*Rounds
}

// Compute computes the build geometry for K (log2 of total nonces),
// memoryBudget (bytes available to hold one round's bucket table in
// RAM), prefixSize (bytes of hash prefix used as the bucket index) and
// nonceSize (bytes per record). Compute only validates that the
// arithmetic is well-formed (K fits a uint64 shift, the budget holds at
// least one record); the production-build bounds (K in [24,40],
// memoryBudget >= 64MiB) belong to the CLI's build command, which
// enforces them before Compute ever runs, so that smaller geometries
// stay usable for tests and embedding.
func Compute(k uint, memoryBudget uint64, prefixSize uint, nonceSize uint) (Plan, error) {
	if k == 0 || k > 63 {
		return Plan{}, fmt.Errorf("geometry: K must be in [1,63], got %d", k)
	}
	if prefixSize == 0 || prefixSize > 8 {
		return Plan{}, fmt.Errorf("geometry: prefix size must be in [1,8] bytes, got %d", prefixSize)
	}
	if nonceSize == 0 {
		return Plan{}, fmt.Errorf("geometry: nonce size must be > 0")
	}
	if memoryBudget == 0 {
		return Plan{}, fmt.Errorf("geometry: memory budget must be > 0")
	}

	n := uint64(1) << k
	numBuckets := uint64(1) << (8 * prefixSize)
	if numBuckets > n {
		return Plan{}, fmt.Errorf("geometry: 2^(8*%d) buckets exceeds N=2^%d nonces; choose a smaller prefix size or larger K", prefixSize, k)
	}
	recordsPerBucketTotal := n / numBuckets
	if recordsPerBucketTotal*numBuckets != n {
		return Plan{}, fmt.Errorf("geometry: N=2^%d does not divide evenly across %d buckets", k, numBuckets)
	}

	maxRecordsPerRound := memoryBudget / uint64(nonceSize)
	if maxRecordsPerRound == 0 {
		return Plan{}, fmt.Errorf("geometry: memory budget %d is smaller than one nonce record (%d bytes)", memoryBudget, nonceSize)
	}
	maxCapPerRound := maxRecordsPerRound / numBuckets
	if maxCapPerRound == 0 {
		return Plan{}, fmt.Errorf("geometry: memory budget %d cannot hold even one record per bucket across %d buckets", memoryBudget, numBuckets)
	}

	minRounds := ceilDiv(recordsPerBucketTotal, maxCapPerRound)
	rounds := minRounds
	for ; rounds <= recordsPerBucketTotal; rounds++ {
		if recordsPerBucketTotal%rounds == 0 {
			break
		}
	}
	if rounds > recordsPerBucketTotal {
		// recordsPerBucketTotal always divides itself, so this is unreachable,
		// but guard against the degenerate recordsPerBucketTotal==0 case.
		rounds = recordsPerBucketTotal
		if rounds == 0 {
			rounds = 1
		}
	}
	roundCap := recordsPerBucketTotal / rounds

	return Plan{
		K:          k,
		N:          n,
		PrefixSize: prefixSize,
		NumBuckets: numBuckets,
		NonceSize:  nonceSize,
		Rounds:     rounds,
		RoundCap:   roundCap,
		BucketSize: roundCap * rounds,
	}, nil
}

func ceilDiv(a, b uint64) uint64 {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// RoundOffset returns the byte offset of the start of round's slice in
// the round-major temporary file.
func (p Plan) RoundOffset(round uint64) int64 {
	return int64(round) * int64(p.NumBuckets) * int64(p.RoundCap) * int64(p.NonceSize)
}

// BucketOffsetInRound returns the byte offset, within a round's slice,
// of bucket's fixed-capacity slot array.
func (p Plan) BucketOffsetInRound(bucket uint64) int64 {
	return int64(bucket) * int64(p.RoundCap) * int64(p.NonceSize)
}

// FinalBucketOffset returns the byte offset of bucket's full
// BucketSize-record run in the bucket-major final file (after any
// header/prefix the caller prepends).
func (p Plan) FinalBucketOffset(bucket uint64) int64 {
	return int64(bucket) * int64(p.BucketSize) * int64(p.NonceSize)
}

// TempFileSize is the exact size in bytes of the round-major temp file.
func (p Plan) TempFileSize() int64 {
	return int64(p.Rounds) * int64(p.NumBuckets) * int64(p.RoundCap) * int64(p.NonceSize)
}

// FinalContentSize is the exact size in bytes of the bucket-major
// record area of the final file, excluding any header.
func (p Plan) FinalContentSize() int64 {
	return int64(p.NumBuckets) * int64(p.BucketSize) * int64(p.NonceSize)
}

// BucketIndex maps a hash's leading PrefixSize bytes to a bucket
// index, treating the prefix as a big-endian unsigned integer. The
// same function routes both generation-time inserts and lookup-time
// reads, so a hash and a query sharing a prefix always land on the
// same bucket.
func BucketIndex(prefix []byte) uint64 {
	var v uint64
	for _, b := range prefix {
		v = v<<8 | uint64(b)
	}
	return v
}
