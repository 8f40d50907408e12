// Package hasher wraps the keyed hash function used to turn a nonce
// into the value stored (and later searched for) in the vault. The
// production implementation is keyed BLAKE3, matching the original
// builder's generateBlake3: BLAKE3's prefix-truncation property means
// the first L bytes of a full 32-byte digest equal an L-byte digest,
// so a lookup only ever needs to compute as many bytes as its query
// prefix requires.
package hasher

import (
	"encoding/hex"
	"fmt"

	"lukechampine.com/blake3"
)

// Hasher derives a hash of the requested length from a nonce. Length
// is independent of the key size; callers ask for exactly the number
// of bytes they need (a full bucket-table row, or just a query prefix).
type Hasher interface {
	Hash(nonce []byte, length int) []byte
	KeyHex() string
}

// Blake3Hasher is the production Hasher, keyed by an operator-supplied
// secret so that rainbow tables built with different keys are not
// interchangeable.
type Blake3Hasher struct {
	key []byte
}

// New builds a keyed BLAKE3 hasher. An empty key runs BLAKE3 in its
// standard unkeyed mode.
func New(key []byte) *Blake3Hasher {
	return &Blake3Hasher{key: key}
}

// NewFromHex parses a hex-encoded key, as accepted by the CLI's --key flag.
func NewFromHex(keyHex string) (*Blake3Hasher, error) {
	if keyHex == "" {
		return New(nil), nil
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("hasher: invalid hex key: %w", err)
	}
	return New(key), nil
}

// Hash returns the first `length` bytes of the keyed BLAKE3 digest of nonce.
func (h *Blake3Hasher) Hash(nonce []byte, length int) []byte {
	hh := blake3.New(length, h.key)
	hh.Write(nonce)
	return hh.Sum(nil)
}

// KeyHex returns the hex-encoded key, for inclusion in the sidecar.
func (h *Blake3Hasher) KeyHex() string {
	return hex.EncodeToString(h.key)
}
