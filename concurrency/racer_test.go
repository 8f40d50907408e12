package concurrency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRacer_FirstMatchWins(t *testing.T) {
	r, _ := NewRacer[int](context.Background(), 0)
	for i := 0; i < 8; i++ {
		i := i
		r.Go(func() (int, bool, error) {
			if i == 3 {
				return 42, true, nil
			}
			time.Sleep(5 * time.Millisecond)
			return 0, false, nil
		})
	}
	match, ok, err := r.Wait()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, match)
}

func TestRacer_NoMatch(t *testing.T) {
	r, _ := NewRacer[int](context.Background(), 0)
	for i := 0; i < 4; i++ {
		r.Go(func() (int, bool, error) {
			return 0, false, nil
		})
	}
	_, ok, err := r.Wait()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRacer_PropagatesRealError(t *testing.T) {
	boom := errors.New("boom")
	r, _ := NewRacer[int](context.Background(), 0)
	r.Go(func() (int, bool, error) {
		return 0, false, boom
	})
	_, ok, err := r.Wait()
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)
}

func TestRacer_FoundShortCircuitsFurtherSpawns(t *testing.T) {
	r, _ := NewRacer[int](context.Background(), 0)
	r.Go(func() (int, bool, error) {
		return 7, true, nil
	})
	_, _, _ = r.Wait()
	assert.True(t, r.Found())

	ran := false
	r.Go(func() (int, bool, error) {
		ran = true
		return 0, false, nil
	})
	assert.False(t, ran)
}
