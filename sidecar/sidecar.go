// Package sidecar reads and writes the plain-text ".config" file that
// travels alongside every vault data file. Its key=value format and
// field set (APPROACH, K, NUM_BUCKETS, BUCKET_SIZE, PREFIX_SIZE,
// NONCE_SIZE) are carried over unchanged from the original builder's
// config file so that a vault produced by either tool can be
// inspected the same way.
package sidecar

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nonceforge/vaultx/geometry"
)

// Config is the decoded form of a vault's .config sidecar.
type Config struct {
	Approach   string
	K          uint
	NumBuckets uint64
	BucketSize uint64
	PrefixSize uint
	NonceSize  uint
}

// FromPlan derives a Config from a resolved geometry.Plan.
func FromPlan(approach string, plan geometry.Plan) Config {
	return Config{
		Approach:   approach,
		K:          plan.K,
		NumBuckets: plan.NumBuckets,
		BucketSize: plan.BucketSize,
		PrefixSize: plan.PrefixSize,
		NonceSize:  plan.NonceSize,
	}
}

// Plan reconstructs the geometry.Plan implied by a loaded Config. The
// round count and per-round capacity are not themselves persisted
// (they only matter mid-build); RoundCap/Rounds on the returned plan
// are left at the degenerate 1-round values, since only a sealed
// BucketSize matters for lookups and verification.
func (c Config) Plan() geometry.Plan {
	return geometry.Plan{
		K:          c.K,
		N:          uint64(1) << c.K,
		PrefixSize: c.PrefixSize,
		NumBuckets: c.NumBuckets,
		NonceSize:  c.NonceSize,
		Rounds:     1,
		RoundCap:   c.BucketSize,
		BucketSize: c.BucketSize,
	}
}

// Write serializes cfg as key=value lines to path.
func Write(path string, cfg Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("sidecar: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "APPROACH=%s\n", cfg.Approach)
	fmt.Fprintf(w, "K=%d\n", cfg.K)
	fmt.Fprintf(w, "NUM_BUCKETS=%d\n", cfg.NumBuckets)
	fmt.Fprintf(w, "BUCKET_SIZE=%d\n", cfg.BucketSize)
	fmt.Fprintf(w, "PREFIX_SIZE=%d\n", cfg.PrefixSize)
	fmt.Fprintf(w, "NONCE_SIZE=%d\n", cfg.NonceSize)
	if err := w.Flush(); err != nil {
		return fmt.Errorf("sidecar: flush %s: %w", path, err)
	}
	return f.Sync()
}

// Read parses a .config sidecar file.
func Read(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("sidecar: open %s: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	seen := map[string]bool{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return Config{}, fmt.Errorf("sidecar: malformed line %q in %s", line, path)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "APPROACH":
			cfg.Approach = value
		case "K":
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return Config{}, fmt.Errorf("sidecar: invalid K %q: %w", value, err)
			}
			cfg.K = uint(n)
		case "NUM_BUCKETS":
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return Config{}, fmt.Errorf("sidecar: invalid NUM_BUCKETS %q: %w", value, err)
			}
			cfg.NumBuckets = n
		case "BUCKET_SIZE":
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return Config{}, fmt.Errorf("sidecar: invalid BUCKET_SIZE %q: %w", value, err)
			}
			cfg.BucketSize = n
		case "PREFIX_SIZE":
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return Config{}, fmt.Errorf("sidecar: invalid PREFIX_SIZE %q: %w", value, err)
			}
			cfg.PrefixSize = uint(n)
		case "NONCE_SIZE":
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return Config{}, fmt.Errorf("sidecar: invalid NONCE_SIZE %q: %w", value, err)
			}
			cfg.NonceSize = uint(n)
		default:
			// Unknown keys are tolerated for forward compatibility.
		}
		seen[key] = true
	}
	if err := scanner.Err(); err != nil {
		return Config{}, fmt.Errorf("sidecar: scan %s: %w", path, err)
	}
	for _, required := range []string{"K", "NUM_BUCKETS", "BUCKET_SIZE", "PREFIX_SIZE", "NONCE_SIZE"} {
		if !seen[required] {
			return Config{}, fmt.Errorf("sidecar: %s missing required key %s", path, required)
		}
	}
	return cfg, nil
}
