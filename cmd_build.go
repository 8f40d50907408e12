package main

import (
	"fmt"
	"time"

	"github.com/nonceforge/vaultx/hasher"
	"github.com/nonceforge/vaultx/vault"
	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"
)

// Build-time bounds on K and the per-round memory budget. Values
// outside these ranges are rejected before any file is created or any
// I/O is performed.
const (
	minBuildK    = 24
	maxBuildK    = 40
	minMemoryMiB = 64
)

func newBuildCmd() *cli.Command {
	var (
		k             uint
		memoryMiB     uint64
		prefixSize    uint
		nonceSize     uint
		approach      string
		workers       int
		keyHex        string
		writeStamp    bool
		circularArray bool
	)
	return &cli.Command{
		Name:        "build",
		Description: "Generate a bucketed nonce/hash vault.",
		ArgsUsage:   "<output-path>",
		Flags: []cli.Flag{
			&cli.UintFlag{Name: "k", Usage: "log2 of the number of nonces to generate", Destination: &k, Required: true},
			&cli.Uint64Flag{Name: "memory-mib", Usage: "RAM budget per round, in MiB", Value: 256, Destination: &memoryMiB},
			&cli.UintFlag{Name: "prefix-size", Usage: "bytes of hash used to route to a bucket", Value: 2, Destination: &prefixSize},
			&cli.UintFlag{Name: "nonce-size", Usage: "bytes per nonce record", Value: 8, Destination: &nonceSize},
			&cli.StringFlag{Name: "approach", Usage: "generation schedule: static or pooled", Value: "static", Destination: &approach},
			&cli.IntFlag{Name: "workers", Usage: "parallel generator/shuffle workers", Value: 0, Destination: &workers},
			&cli.StringFlag{Name: "key", Usage: "hex-encoded BLAKE3 key", Destination: &keyHex},
			&cli.BoolFlag{Name: "stamp", Usage: "also write a binary provenance stamp sidecar", Destination: &writeStamp},
			&cli.BoolFlag{Name: "circular_array", Aliases: []string{"c"}, Usage: "accepted for compatibility with the original builder; has no effect", Destination: &circularArray},
		},
		Action: func(c *cli.Context) error {
			outputPath := c.Args().First()
			if outputPath == "" {
				return cli.Exit("missing required <output-path> argument", 1)
			}
			if k < minBuildK || k > maxBuildK {
				return cli.Exit(fmt.Sprintf("k must be in [%d,%d], got %d", minBuildK, maxBuildK, k), 1)
			}
			if memoryMiB < minMemoryMiB {
				return cli.Exit(fmt.Sprintf("memory-mib must be >= %d, got %d", minMemoryMiB, memoryMiB), 1)
			}

			h, err := hasher.NewFromHex(keyHex)
			if err != nil {
				return cli.Exit(err, 1)
			}

			started := time.Now()
			klog.Infof("build: starting, K=%d prefixSize=%d nonceSize=%d approach=%s", k, prefixSize, nonceSize, approach)
			defer func() {
				klog.Infof("build: finished in %s", time.Since(started))
			}()

			plan, err := vault.Build(c.Context, vault.BuildConfig{
				K:            k,
				MemoryBudget: memoryMiB * 1024 * 1024,
				PrefixSize:   prefixSize,
				NonceSize:    nonceSize,
				Approach:     approach,
				Workers:      resolveWorkers(workers),
				OutputPath:   outputPath,
				Hasher:       h,
				WriteStamp:   writeStamp,
			})
			if err != nil {
				return cli.Exit(fmt.Errorf("build failed: %w", err), 1)
			}
			klog.Infof("build: sealed %d buckets, %d records per bucket", plan.NumBuckets, plan.BucketSize)
			return nil
		},
	}
}
