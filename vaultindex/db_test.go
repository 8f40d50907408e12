package vaultindex

import (
	"bytes"
	"testing"

	"github.com/nonceforge/vaultx/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB_ReadBucket(t *testing.T) {
	plan := geometry.Plan{NumBuckets: 4, BucketSize: 2, NonceSize: 4}
	content := []byte{
		1, 1, 1, 1, 2, 2, 2, 2, // bucket 0
		3, 3, 3, 3, 4, 4, 4, 4, // bucket 1
		0, 0, 0, 0, 0, 0, 0, 0, // bucket 2 (empty)
		5, 5, 5, 5, 0, 0, 0, 0, // bucket 3
	}
	db := OpenReaderAt(bytes.NewReader(content), plan)

	b1, err := db.ReadBucket(1)
	require.NoError(t, err)
	defer b1.Release()
	assert.Equal(t, []byte{3, 3, 3, 3}, b1.Slot(0))
	assert.Equal(t, []byte{4, 4, 4, 4}, b1.Slot(1))

	_, err = db.ReadBucket(4)
	assert.Error(t, err)
}
