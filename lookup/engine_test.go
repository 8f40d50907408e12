package lookup

import (
	"bytes"
	"context"
	"testing"

	"github.com/nonceforge/vaultx/geometry"
	"github.com/nonceforge/vaultx/hasher"
	"github.com/nonceforge/vaultx/vaultindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestDB(t *testing.T, plan geometry.Plan, nonces map[uint64][]byte) *vaultindex.DB {
	t.Helper()
	size := plan.NumBuckets * plan.BucketSize * uint64(plan.NonceSize)
	content := make([]byte, size)
	for bucketIdx, nonce := range nonces {
		off := bucketIdx * plan.BucketSize * uint64(plan.NonceSize)
		copy(content[off:off+uint64(plan.NonceSize)], nonce)
	}
	return vaultindex.OpenReaderAt(bytes.NewReader(content), plan)
}

func TestEngine_LookupHit(t *testing.T) {
	plan := geometry.Plan{NumBuckets: 256, PrefixSize: 1, BucketSize: 4, NonceSize: 8}
	h := hasher.NewMock()

	nonce := make([]byte, 8)
	nonce[0] = 42
	prefix := h.Hash(nonce, 1)
	bucketIdx := geometry.BucketIndex(prefix)

	db := buildTestDB(t, plan, map[uint64][]byte{bucketIdx: nonce})
	eng := New(db, h, plan, 2)

	got, err := eng.Lookup(context.Background(), prefix)
	require.NoError(t, err)
	assert.Equal(t, nonce, got)
}

func TestEngine_LookupMiss(t *testing.T) {
	plan := geometry.Plan{NumBuckets: 16, PrefixSize: 1, BucketSize: 4, NonceSize: 8}
	h := hasher.NewMock()
	db := buildTestDB(t, plan, nil)
	eng := New(db, h, plan, 2)

	_, err := eng.Lookup(context.Background(), []byte{0x05})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEngine_PrefixTooShort(t *testing.T) {
	plan := geometry.Plan{NumBuckets: 16, PrefixSize: 2, BucketSize: 4, NonceSize: 8}
	db := buildTestDB(t, plan, nil)
	eng := New(db, hasher.NewMock(), plan, 2)

	_, err := eng.Lookup(context.Background(), []byte{0x01})
	assert.ErrorIs(t, err, ErrPrefixTooShort)
}
