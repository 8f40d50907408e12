package bucket

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_InsertAndOverflow(t *testing.T) {
	tbl := NewTable(4, 2, 8)
	require.True(t, tbl.Insert(0, []byte{1, 0, 0, 0, 0, 0, 0, 0}))
	require.True(t, tbl.Insert(0, []byte{2, 0, 0, 0, 0, 0, 0, 0}))
	// Bucket 0 is now full; a third insert is silently dropped.
	assert.False(t, tbl.Insert(0, []byte{3, 0, 0, 0, 0, 0, 0, 0}))
	assert.EqualValues(t, 2, tbl.Filled(0))

	recs := tbl.BucketRecords(0)
	require.Len(t, recs, 2)
	assert.Equal(t, byte(1), recs[0].Nonce[0])
	assert.Equal(t, byte(2), recs[1].Nonce[0])
}

func TestTable_ConcurrentInsertNoRace(t *testing.T) {
	tbl := NewTable(1, 1000, 8)
	var wg sync.WaitGroup
	for i := 0; i < 4000; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			nonce := make([]byte, 8)
			nonce[0] = byte(i)
			tbl.Insert(0, nonce)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1000, tbl.Filled(0))
}

func TestTable_ClearResetsState(t *testing.T) {
	tbl := NewTable(2, 2, 4)
	tbl.Insert(1, []byte{9, 9, 9, 9})
	require.EqualValues(t, 1, tbl.Filled(1))
	tbl.Clear()
	assert.EqualValues(t, 0, tbl.Filled(1))
	assert.True(t, allZero(tbl.BucketBytes(1)))
}

func allZero(b []byte) bool {
	for _, x := range b {
		if x != 0 {
			return false
		}
	}
	return true
}
