package sidecar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nonceforge/vaultx/geometry"
	"github.com/nonceforge/vaultx/indexmeta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadConfig_RoundTrip(t *testing.T) {
	plan, err := geometry.Compute(10, 1<<20, 1, 8)
	require.NoError(t, err)
	cfg := FromPlan("static", plan)

	path := filepath.Join(t.TempDir(), "vault.config")
	require.NoError(t, Write(path, cfg))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestRead_MissingRequiredKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.config")
	require.NoError(t, writeRaw(path, "APPROACH=static\nK=10\n"))
	_, err := Read(path)
	assert.Error(t, err)
}

func TestStamp_RoundTrip(t *testing.T) {
	var meta indexmeta.Meta
	require.NoError(t, meta.AddString([]byte("builder"), "vaultx"))
	require.NoError(t, meta.AddUint64([]byte("k"), 20))

	path := filepath.Join(t.TempDir(), "vault.config.meta")
	require.NoError(t, WriteStamp(path, meta))

	got, err := ReadStamp(path)
	require.NoError(t, err)
	v, ok := got.GetString([]byte("builder"))
	require.True(t, ok)
	assert.Equal(t, "vaultx", v)
}

func writeRaw(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
