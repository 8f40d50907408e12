package main

import (
	"runtime"

	"github.com/nonceforge/vaultx/hasher"
	"github.com/nonceforge/vaultx/sidecar"
	"github.com/nonceforge/vaultx/vaultindex"
)

// resolveWorkers maps a user-supplied worker count to a concrete
// value: 0 (the flag default) means "use all CPUs", matching the
// original builder's default OMP_NUM_THREADS behavior.
func resolveWorkers(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// openVault loads a vault's sidecar config and opens its data file for
// reading, returning a ready-to-use DB and Hasher for lookup/verify.
func openVault(dataPath, keyHex string) (*vaultindex.DB, sidecar.Config, hasher.Hasher, error) {
	cfgPath := configPathForRead(dataPath)
	cfg, err := sidecar.Read(cfgPath)
	if err != nil {
		return nil, sidecar.Config{}, nil, err
	}
	db, err := vaultindex.Open(dataPath, cfg.Plan())
	if err != nil {
		return nil, sidecar.Config{}, nil, err
	}
	h, err := hasher.NewFromHex(keyHex)
	if err != nil {
		db.Close()
		return nil, sidecar.Config{}, nil, err
	}
	return db, cfg, h, nil
}

// configPathForRead mirrors vault.configPathFor without importing the
// vault package back into the CLI layer for a one-line helper.
func configPathForRead(dataPath string) string {
	for i := len(dataPath) - 1; i >= 0; i-- {
		if dataPath[i] == '.' {
			return dataPath[:i] + ".config"
		}
		if dataPath[i] == '/' {
			break
		}
	}
	return dataPath + ".config"
}
