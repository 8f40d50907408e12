package hasher

import "encoding/binary"

// Mock is a deterministic, non-cryptographic Hasher used by tests: the
// hash of a nonce is simply its first 8 bytes read as a big-endian
// uint64, repeated to fill the requested length. This makes bucket
// placement and lookup results fully predictable in unit tests without
// depending on BLAKE3's actual output.
type Mock struct{}

// NewMock returns a Mock hasher. It ignores any key.
func NewMock() *Mock { return &Mock{} }

func (m *Mock) Hash(nonce []byte, length int) []byte {
	var v uint64
	for i := 0; i < 8 && i < len(nonce); i++ {
		v |= uint64(nonce[i]) << (8 * uint(7-i))
	}
	full := make([]byte, 8)
	binary.BigEndian.PutUint64(full, v)
	out := make([]byte, length)
	for i := range out {
		out[i] = full[i%8]
	}
	return out
}

func (m *Mock) KeyHex() string { return "" }
