package sidecar

import (
	"bytes"
	"fmt"
	"os"

	bin "github.com/gagliardetto/binary"
	"github.com/nonceforge/vaultx/indexmeta"
)

// StampMagic identifies a binary provenance stamp file.
var StampMagic = [8]byte{'v', 'a', 'u', 'l', 't', 'x', '0', '1'}

// StampVersion is the binary stamp format version.
const StampVersion = uint64(1)

// WriteStamp writes an optional binary ".config.meta" sidecar carrying
// free-form provenance (hasher key hint, builder version, host) next
// to the plain-text .config file, using the same
// magic+version+Borsh-encoded-KV layout bucketteer used for its own
// sealed header.
func WriteStamp(path string, meta indexmeta.Meta) error {
	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)
	if _, err := enc.Write(StampMagic[:]); err != nil {
		return fmt.Errorf("sidecar: write stamp magic: %w", err)
	}
	if err := enc.WriteUint64(StampVersion, bin.LE); err != nil {
		return fmt.Errorf("sidecar: write stamp version: %w", err)
	}
	metaBytes, err := meta.MarshalBinary()
	if err != nil {
		return fmt.Errorf("sidecar: marshal stamp metadata: %w", err)
	}
	if _, err := enc.Write(metaBytes); err != nil {
		return fmt.Errorf("sidecar: write stamp metadata: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// ReadStamp reads back a binary provenance stamp written by WriteStamp.
func ReadStamp(path string) (indexmeta.Meta, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return indexmeta.Meta{}, fmt.Errorf("sidecar: read stamp %s: %w", path, err)
	}
	if len(raw) < len(StampMagic)+8 {
		return indexmeta.Meta{}, fmt.Errorf("sidecar: stamp %s too short", path)
	}
	if !bytes.Equal(raw[:len(StampMagic)], StampMagic[:]) {
		return indexmeta.Meta{}, fmt.Errorf("sidecar: stamp %s has invalid magic", path)
	}
	dec := bin.NewBorshDecoder(raw[len(StampMagic):])
	version, err := dec.ReadUint64(bin.LE)
	if err != nil {
		return indexmeta.Meta{}, fmt.Errorf("sidecar: read stamp version: %w", err)
	}
	if version != StampVersion {
		return indexmeta.Meta{}, fmt.Errorf("sidecar: stamp %s has unsupported version %d", path, version)
	}
	var meta indexmeta.Meta
	if err := meta.UnmarshalWithDecoder(dec); err != nil {
		return indexmeta.Meta{}, fmt.Errorf("sidecar: unmarshal stamp metadata: %w", err)
	}
	return meta, nil
}
