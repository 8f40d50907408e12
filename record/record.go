// Package record defines the fixed-width nonce record stored in every
// bucket slot, mirroring the MemoRecord layout of the original builder:
// a bare nonce, with an all-zero nonce reserved as the empty-slot
// sentinel.
package record

import "bytes"

// Size is the on-disk/in-RAM width of a single record for a given
// nonce size. Records carry no length prefix: NonceSize is fixed for
// the lifetime of a vault and is recorded in the sidecar.
func Size(nonceSize int) int {
	return nonceSize
}

// Record is a single nonce slot. The zero value (all-zero bytes) is
// the empty-slot sentinel; the nonce with value 0 has the same bytes,
// so a stored nonce 0 reads back as an empty slot.
type Record struct {
	Nonce []byte
}

// New allocates a zeroed record of the given nonce size.
func New(nonceSize int) Record {
	return Record{Nonce: make([]byte, nonceSize)}
}

// IsEmpty reports whether the record is the all-zero sentinel.
func (r Record) IsEmpty() bool {
	for _, b := range r.Nonce {
		if b != 0 {
			return false
		}
	}
	return true
}

// Equal reports whether two records hold the same nonce bytes.
func (r Record) Equal(other Record) bool {
	return bytes.Equal(r.Nonce, other.Nonce)
}

// PutUint64 encodes a little-endian uint64 into the low 8 bytes of a
// nonce buffer, used by the generator to turn a nonce index into the
// nonce bytes it hashes and stores.
func PutUint64(nonce []byte, v uint64) {
	for i := 0; i < 8 && i < len(nonce); i++ {
		nonce[i] = byte(v >> (8 * uint(i)))
	}
}
