// Package generator performs the parallel hash-and-insert pass that
// fills one round's bucket.Table: each worker pulls a Chunk of the
// round's nonce-index space from a Schedule, derives a nonce for every
// index in the chunk, hashes it, and inserts it into the bucket its
// hash prefix selects. This is the Go counterpart of the original
// builder's OpenMP "#pragma omp parallel for" generation loop, with
// goroutines standing in for OMP threads and a worker-pool channel
// standing in for the OMP scheduler.
package generator

import (
	"context"
	"sync"

	"github.com/nonceforge/vaultx/bucket"
	"github.com/nonceforge/vaultx/concurrency"
	"github.com/nonceforge/vaultx/geometry"
	"github.com/nonceforge/vaultx/hasher"
	"github.com/nonceforge/vaultx/record"
)

// Generator fills bucket tables for a fixed geometry using a Hasher.
type Generator struct {
	Hasher   hasher.Hasher
	Plan     geometry.Plan
	Schedule Schedule
	Workers  int
}

// New builds a Generator. workers<=0 defaults to 1.
func New(h hasher.Hasher, plan geometry.Plan, schedule Schedule, workers int) *Generator {
	if workers <= 0 {
		workers = 1
	}
	return &Generator{Hasher: h, Plan: plan, Schedule: schedule, Workers: workers}
}

// RunRound fills table with exactly `count` nonces, whose global index
// runs from `startIndex` to `startIndex+count`. The caller (the vault
// builder) is responsible for clearing table between rounds and for
// choosing startIndex/count so that every nonce in [0, Plan.N) is
// generated exactly once across all rounds.
func (g *Generator) RunRound(ctx context.Context, table *bucket.Table, startIndex, count uint64) error {
	chunks := g.Schedule.Chunks(count, g.Workers)
	if len(chunks) == 0 {
		return nil
	}

	jobs := make(chan Chunk, len(chunks))
	for _, c := range chunks {
		jobs <- c
	}
	close(jobs)

	collector := concurrency.NewCollector(g.Workers)
	var wg sync.WaitGroup
	nonceSize := g.Plan.NonceSize
	prefixSize := g.Plan.PrefixSize

	for w := 0; w < g.Workers; w++ {
		wg.Add(1)
		w := w
		go func() {
			defer wg.Done()
			nonce := make([]byte, nonceSize)
			for chunk := range jobs {
				if ctx.Err() != nil {
					collector.Set(w, ctx.Err())
					return
				}
				for i := uint64(0); i < chunk.Count; i++ {
					idx := startIndex + chunk.Start + i
					for j := range nonce {
						nonce[j] = 0
					}
					record.PutUint64(nonce, idx)
					prefix := g.Hasher.Hash(nonce, int(prefixSize))
					bucketIdx := geometry.BucketIndex(prefix)
					table.Insert(bucketIdx, nonce)
				}
			}
		}()
	}
	wg.Wait()
	return collector.Err()
}
