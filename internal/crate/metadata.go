package crate

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// MetadataFilename is the reserved archive member name for crate metadata.
// Keep it clear of the 16-byte length that breaks some archive tooling.
const MetadataFilename = "ember.metadata.bin"

// Current schema version - increment when Metadata format changes.
const metadataSchemaVersion uint16 = 1

// Metadata is the serialized per-crate payload stored inside an rlib. It is
// what downstream compilations read to learn the crate's identity, its
// native library needs and its exported symbol surface.
type Metadata struct {
	// Schema version for safe invalidation when the format changes.
	Schema uint16

	CrateName string
	CrateHash string

	// Native libraries the crate declared, with kinds.
	NativeLibKinds []uint8
	NativeLibNames []string

	// Extra linker arguments declared by the crate.
	LinkArgs []string

	// Exported mangled symbol names.
	ExportedSymbols []string
}

// NativeLibs reassembles the declared libraries from the parallel slices.
func (m *Metadata) NativeLibs() []NativeLib {
	libs := make([]NativeLib, 0, len(m.NativeLibNames))
	for i, name := range m.NativeLibNames {
		kind := NativeUnknown
		if i < len(m.NativeLibKinds) {
			kind = NativeLibraryKind(m.NativeLibKinds[i])
		}
		libs = append(libs, NativeLib{Kind: kind, Name: name})
	}
	return libs
}

// EncodeMetadata serializes a metadata payload, stamping the schema version.
func EncodeMetadata(m *Metadata) ([]byte, error) {
	m.Schema = metadataSchemaVersion
	data, err := msgpack.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode crate metadata: %w", err)
	}
	return data, nil
}

// DecodeMetadata parses a metadata blob, rejecting unknown schema versions.
func DecodeMetadata(data []byte) (*Metadata, error) {
	var m Metadata
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode crate metadata: %w", err)
	}
	if m.Schema != metadataSchemaVersion {
		return nil, fmt.Errorf("crate metadata schema %d is not supported (want %d)",
			m.Schema, metadataSchemaVersion)
	}
	return &m, nil
}

// MetadataFor builds the payload for the crate being compiled.
func MetadataFor(meta LinkMeta, libs []NativeLib, linkArgs, exported []string) *Metadata {
	m := &Metadata{
		CrateName:       meta.CrateName,
		CrateHash:       meta.CrateHash,
		LinkArgs:        linkArgs,
		ExportedSymbols: exported,
	}
	for _, l := range libs {
		m.NativeLibKinds = append(m.NativeLibKinds, uint8(l.Kind))
		m.NativeLibNames = append(m.NativeLibNames, l.Name)
	}
	return m
}
