package vault

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nonceforge/vaultx/geometry"
	"github.com/nonceforge/vaultx/hasher"
	"github.com/nonceforge/vaultx/lookup"
	"github.com/nonceforge/vaultx/sidecar"
	"github.com/nonceforge/vaultx/vaultindex"
	"github.com/nonceforge/vaultx/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "vault.dat")

	h := hasher.NewMock()
	cfg := BuildConfig{
		K:            8, // N=256
		MemoryBudget: 1 << 20,
		PrefixSize:   1, // B=256
		NonceSize:    8,
		Approach:     "static",
		Workers:      3,
		OutputPath:   outPath,
		Hasher:       h,
		WriteStamp:   true,
	}

	plan, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	assert.EqualValues(t, 256, plan.N)

	scfg, err := sidecar.Read(filepath.Join(dir, "vault.config"))
	require.NoError(t, err)
	assert.Equal(t, "static", scfg.Approach)
	assert.EqualValues(t, plan.NumBuckets, scfg.NumBuckets)

	meta, err := sidecar.ReadStamp(filepath.Join(dir, "vault.config.meta"))
	require.NoError(t, err)
	approach, ok := meta.GetString([]byte("approach"))
	require.True(t, ok)
	assert.Equal(t, "static", approach)

	db, err := vaultindex.Open(outPath, scfg.Plan())
	require.NoError(t, err)
	defer db.Close()

	rep, err := verify.Run(db, h, scfg.Plan())
	require.NoError(t, err)
	assert.True(t, rep.OK())
	// Nonce index 0 is all-zero bytes, indistinguishable from an empty
	// slot, so only N-1 slots read back as non-empty.
	assert.EqualValues(t, plan.N-1, rep.TotalRecords-rep.ZeroNonces)

	// A nonce we know was generated (index 5) must be findable.
	nonce := make([]byte, 8)
	nonce[0] = 5
	prefix := h.Hash(nonce, 1)
	eng := lookup.New(db, h, scfg.Plan(), 2)
	got, err := eng.Lookup(context.Background(), prefix)
	require.NoError(t, err)
	assert.Equal(t, nonce, got)
}
