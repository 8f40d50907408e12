package verify

import (
	"bytes"
	"testing"

	"github.com/nonceforge/vaultx/geometry"
	"github.com/nonceforge/vaultx/hasher"
	"github.com/nonceforge/vaultx/vaultindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_CleanVaultPasses(t *testing.T) {
	plan := geometry.Plan{NumBuckets: 8, PrefixSize: 1, BucketSize: 2, NonceSize: 8}
	h := hasher.NewMock()

	content := make([]byte, plan.NumBuckets*plan.BucketSize*uint64(plan.NonceSize))
	for idx := uint64(1); idx < 6; idx++ {
		nonce := make([]byte, 8)
		nonce[0] = byte(idx)
		bucketIdx := geometry.BucketIndex(h.Hash(nonce, int(plan.PrefixSize)))
		off := bucketIdx * plan.BucketSize * uint64(plan.NonceSize)
		copy(content[off:off+8], nonce)
	}
	db := vaultindex.OpenReaderAt(bytes.NewReader(content), plan)

	rep, err := Run(db, h, plan)
	require.NoError(t, err)
	assert.True(t, rep.OK())
	assert.EqualValues(t, 5, rep.TotalRecords-rep.ZeroNonces)
}

func TestRun_DetectsMisplacedRecord(t *testing.T) {
	plan := geometry.Plan{NumBuckets: 8, PrefixSize: 1, BucketSize: 2, NonceSize: 8}
	h := hasher.NewMock()

	content := make([]byte, plan.NumBuckets*plan.BucketSize*uint64(plan.NonceSize))
	nonce := make([]byte, 8)
	nonce[0] = 3 // hashes (mock) to bucket 3, but we store it in bucket 0.
	copy(content[0:8], nonce)
	db := vaultindex.OpenReaderAt(bytes.NewReader(content), plan)

	rep, err := Run(db, h, plan)
	require.NoError(t, err)
	assert.False(t, rep.OK())
	assert.EqualValues(t, 1, rep.Misplaced)
}
