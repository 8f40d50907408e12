package shuffle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nonceforge/vaultx/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShuffler_TransposesRoundMajorToBucketMajor(t *testing.T) {
	// 4 buckets, 2 rounds, round cap 1, nonce size 1: bucket b's final
	// content should be {round0[b], round1[b]}.
	plan := geometry.Plan{
		NumBuckets: 4,
		Rounds:     2,
		RoundCap:   1,
		BucketSize: 2,
		NonceSize:  1,
	}

	dir := t.TempDir()
	tmpPath := filepath.Join(dir, "round-major.tmp")
	finalPath := filepath.Join(dir, "final.dat")

	// Round-major layout: [round0: b0,b1,b2,b3][round1: b0,b1,b2,b3]
	content := []byte{10, 11, 12, 13 /* round 0 */, 20, 21, 22, 23 /* round 1 */}
	require.NoError(t, os.WriteFile(tmpPath, content, 0o644))

	s := New(plan, 2 /* force multiple tiny groups */, 2)
	require.NoError(t, s.Run(tmpPath, finalPath))

	got, err := os.ReadFile(finalPath)
	require.NoError(t, err)
	assert.Equal(t, []byte{10, 20, 11, 21, 12, 22, 13, 23}, got)
}

func TestShuffler_SingleRoundIsFastPathMove(t *testing.T) {
	plan := geometry.Plan{
		NumBuckets: 2,
		Rounds:     1,
		RoundCap:   3,
		BucketSize: 3,
		NonceSize:  1,
	}
	dir := t.TempDir()
	tmpPath := filepath.Join(dir, "round-major.tmp")
	finalPath := filepath.Join(dir, "final.dat")
	content := []byte{1, 2, 3, 4, 5, 6}
	require.NoError(t, os.WriteFile(tmpPath, content, 0o644))

	s := New(plan, 0, 1)
	require.NoError(t, s.Run(tmpPath, finalPath))

	got, err := os.ReadFile(finalPath)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	_, err = os.Stat(tmpPath)
	assert.True(t, os.IsNotExist(err))
}
