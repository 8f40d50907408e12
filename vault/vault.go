// Package vault orchestrates a full build: plan the geometry, run each
// generation round into a round-major temp file, shuffle it into the
// final bucket-major file, and seal everything with a sync/cleanup
// pass and a sidecar config. This is the top-level equivalent of the
// original builder's main(): the same phases, wired together as
// composable Go packages instead of one long procedural function.
package vault

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nonceforge/vaultx/bucket"
	"github.com/nonceforge/vaultx/diskalloc"
	"github.com/nonceforge/vaultx/finalize"
	"github.com/nonceforge/vaultx/generator"
	"github.com/nonceforge/vaultx/geometry"
	"github.com/nonceforge/vaultx/hasher"
	"github.com/nonceforge/vaultx/indexmeta"
	"github.com/nonceforge/vaultx/roundwriter"
	"github.com/nonceforge/vaultx/shuffle"
	"github.com/nonceforge/vaultx/sidecar"
	"github.com/dustin/go-humanize"
	"k8s.io/klog/v2"
)

// BuildConfig describes one build request.
type BuildConfig struct {
	K            uint
	MemoryBudget uint64
	PrefixSize   uint
	NonceSize    uint
	Approach     string // "static" or "pooled", selects generator.Schedule
	Workers      int
	OutputPath   string // final vault data file
	Hasher       hasher.Hasher
	WriteStamp   bool // also emit a provenance stamp at the sidecar path plus ".meta" ("vault.dat" -> "vault.config.meta")
}

// Build runs a complete generate -> shuffle -> finalize -> sidecar pass.
func Build(ctx context.Context, cfg BuildConfig) (geometry.Plan, error) {
	plan, err := geometry.Compute(cfg.K, cfg.MemoryBudget, cfg.PrefixSize, cfg.NonceSize)
	if err != nil {
		return geometry.Plan{}, fmt.Errorf("vault: plan geometry: %w", err)
	}
	klog.Infof("vault: geometry N=%d buckets=%d rounds=%d roundCap=%d bucketSize=%d memoryBudget=%s tempFile=%s finalFile=%s",
		plan.N, plan.NumBuckets, plan.Rounds, plan.RoundCap, plan.BucketSize,
		humanize.IBytes(cfg.MemoryBudget), humanize.IBytes(uint64(plan.TempFileSize())), humanize.IBytes(uint64(plan.FinalContentSize())))

	schedule := scheduleFor(cfg.Approach)
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	tmpPath := cfg.OutputPath + ".round-major.tmp"
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return plan, fmt.Errorf("vault: create temp file: %w", err)
	}
	if err := diskalloc.Fallocate(tmp, 0, plan.TempFileSize()); err != nil {
		tmp.Close()
		return plan, fmt.Errorf("vault: preallocate temp file: %w", err)
	}

	gen := generator.New(cfg.Hasher, plan, schedule, workers)
	table := bucket.NewTable(plan.NumBuckets, plan.RoundCap, int(plan.NonceSize))
	recordsPerRound := plan.RoundCap * plan.NumBuckets

	for round := uint64(0); round < plan.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			tmp.Close()
			return plan, err
		}
		table.Clear()
		startIdx := round * recordsPerRound
		if err := gen.RunRound(ctx, table, startIdx, recordsPerRound); err != nil {
			tmp.Close()
			return plan, fmt.Errorf("vault: generate round %d: %w", round, err)
		}
		if err := roundwriter.Write(tmp, plan, round, table); err != nil {
			tmp.Close()
			return plan, fmt.Errorf("vault: write round %d: %w", round, err)
		}
		klog.V(2).Infof("vault: round %d/%d complete", round+1, plan.Rounds)
	}
	if err := tmp.Close(); err != nil {
		return plan, fmt.Errorf("vault: close temp file: %w", err)
	}

	shuf := shuffle.New(plan, cfg.MemoryBudget, workers)
	if err := shuf.Run(tmpPath, cfg.OutputPath); err != nil {
		return plan, fmt.Errorf("vault: shuffle: %w", err)
	}

	final, err := os.OpenFile(cfg.OutputPath, os.O_RDWR, 0o644)
	if err != nil {
		return plan, fmt.Errorf("vault: reopen final file: %w", err)
	}
	defer final.Close()
	if err := finalize.Finalize(final, cfg.OutputPath, tmpPath); err != nil {
		return plan, fmt.Errorf("vault: finalize: %w", err)
	}

	cfgPath := configPathFor(cfg.OutputPath)
	if err := sidecar.Write(cfgPath, sidecar.FromPlan(cfg.Approach, plan)); err != nil {
		return plan, fmt.Errorf("vault: write sidecar: %w", err)
	}

	if cfg.WriteStamp {
		var meta indexmeta.Meta
		if err := meta.AddString([]byte("approach"), cfg.Approach); err != nil {
			return plan, fmt.Errorf("vault: build stamp metadata: %w", err)
		}
		if err := meta.AddString([]byte("hasher_key"), cfg.Hasher.KeyHex()); err != nil {
			return plan, fmt.Errorf("vault: build stamp metadata: %w", err)
		}
		if err := sidecar.WriteStamp(cfgPath+".meta", meta); err != nil {
			return plan, fmt.Errorf("vault: write stamp: %w", err)
		}
	}

	return plan, nil
}

func scheduleFor(approach string) generator.Schedule {
	switch approach {
	case "pooled":
		return generator.PooledSchedule{}
	default:
		return generator.StaticSchedule{}
	}
}

// configPathFor derives the plain-text sidecar path from a data file
// path: "vault.dat" -> "vault.config".
func configPathFor(dataPath string) string {
	ext := filepath.Ext(dataPath)
	base := dataPath[:len(dataPath)-len(ext)]
	return base + ".config"
}
