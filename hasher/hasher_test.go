package hasher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlake3Hasher_PrefixTruncation(t *testing.T) {
	h := New([]byte("0123456789abcdef0123456789abcdef"))
	nonce := []byte("some-nonce-value")
	full := h.Hash(nonce, 32)
	short := h.Hash(nonce, 4)
	assert.Equal(t, full[:4], short)
}

func TestBlake3Hasher_KeyChangesDigest(t *testing.T) {
	nonce := []byte("same-nonce")
	a := New([]byte("key-a")).Hash(nonce, 16)
	b := New([]byte("key-b")).Hash(nonce, 16)
	assert.NotEqual(t, a, b)
}

func TestNewFromHex(t *testing.T) {
	h, err := NewFromHex("deadbeef")
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", h.KeyHex())

	_, err = NewFromHex("not-hex")
	assert.Error(t, err)
}

func TestMock_Deterministic(t *testing.T) {
	m := NewMock()
	nonce := make([]byte, 8)
	nonce[0] = 7
	a := m.Hash(nonce, 4)
	b := m.Hash(nonce, 4)
	assert.Equal(t, a, b)

	nonce[0] = 8
	c := m.Hash(nonce, 4)
	assert.NotEqual(t, a, c)
}
