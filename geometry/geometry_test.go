package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_ExactSingleRound(t *testing.T) {
	// K=8 -> N=256, P=1 -> B=256, one record per bucket fits in any
	// reasonable budget, so this must resolve to exactly one round.
	plan, err := Compute(8, 1<<20, 1, 8)
	require.NoError(t, err)
	assert.EqualValues(t, 256, plan.N)
	assert.EqualValues(t, 256, plan.NumBuckets)
	assert.EqualValues(t, 1, plan.Rounds)
	assert.EqualValues(t, 1, plan.RoundCap)
	assert.EqualValues(t, 1, plan.BucketSize)
}

func TestCompute_MultipleRoundsDivideExactly(t *testing.T) {
	// K=12 -> N=4096, P=1 -> B=256 -> 16 records/bucket total.
	// A tiny memory budget forces more than one round; rounds must
	// divide 16 exactly.
	plan, err := Compute(12, 256*8 /* only 1 record/bucket/round */, 1, 8)
	require.NoError(t, err)
	assert.EqualValues(t, 16, plan.Rounds)
	assert.EqualValues(t, 1, plan.RoundCap)
	assert.EqualValues(t, plan.RoundCap*plan.Rounds, plan.BucketSize)
	assert.EqualValues(t, plan.N, plan.NumBuckets*plan.BucketSize)
}

func TestCompute_RejectsTooFewNoncesForPrefix(t *testing.T) {
	_, err := Compute(4, 1<<20, 2, 8)
	assert.Error(t, err)
}

func TestCompute_RejectsBudgetSmallerThanOneRecord(t *testing.T) {
	_, err := Compute(8, 2, 1, 8)
	assert.Error(t, err)
}

func TestCompute_OffsetsAreNonOverlapping(t *testing.T) {
	plan, err := Compute(10, 1<<20, 1, 8)
	require.NoError(t, err)
	roundStride := int64(plan.NumBuckets) * int64(plan.RoundCap) * int64(plan.NonceSize)
	for r := uint64(0); r < plan.Rounds; r++ {
		assert.Equal(t, int64(r)*roundStride, plan.RoundOffset(r))
	}
	assert.Equal(t, plan.TempFileSize(), plan.RoundOffset(plan.Rounds))
}
