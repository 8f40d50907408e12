package roundwriter

import (
	"os"
	"testing"

	"github.com/nonceforge/vaultx/bucket"
	"github.com/nonceforge/vaultx/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_PlacesRoundAtCorrectOffset(t *testing.T) {
	// K=10 -> N=1024, P=1 -> B=256 -> 4 records/bucket; a budget of one
	// record per bucket per round forces 4 rounds.
	plan, err := geometry.Compute(10, 256*4, 1, 4)
	require.NoError(t, err)
	require.Greater(t, plan.Rounds, uint64(1))

	tmp, err := os.CreateTemp(t.TempDir(), "round-*.tmp")
	require.NoError(t, err)
	defer tmp.Close()
	require.NoError(t, tmp.Truncate(plan.TempFileSize()))

	table := bucket.NewTable(plan.NumBuckets, plan.RoundCap, int(plan.NonceSize))
	table.Insert(0, []byte{1, 2, 3, 4})

	require.NoError(t, Write(tmp, plan, 1, table))

	buf := make([]byte, plan.NonceSize)
	_, err = tmp.ReadAt(buf, plan.RoundOffset(1)+plan.BucketOffsetInRound(0))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, buf)

	// Round 0's slice must remain untouched (all zero).
	zero := make([]byte, plan.NonceSize)
	_, err = tmp.ReadAt(zero, plan.RoundOffset(0)+plan.BucketOffsetInRound(0))
	require.NoError(t, err)
	assert.Equal(t, make([]byte, plan.NonceSize), zero)
}
