package mangle

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Hasher computes symbol hashes for one compilation. It is seeded with the
// crate identity and the metadata blobs of every linked crate, so two builds
// of the same crate stay link-compatible while different crates never
// collide on the name alone.
//
// The per-type memo is the only shared mutable state in the link stage; the
// mutex serializes access when codegen units run concurrently upstream. The
// hashing itself is pure.
type Hasher struct {
	crateName string
	crateHash string
	linked    [][]byte

	mu   sync.Mutex
	memo map[string]string
}

// NewHasher builds a Hasher for the crate identified by name and hash,
// linked against crates with the given metadata blobs.
func NewHasher(crateName, crateHash string, linkedMetadata [][]byte) *Hasher {
	return &Hasher{
		crateName: crateName,
		crateHash: crateHash,
		linked:    linkedMetadata,
		memo:      make(map[string]string),
	}
}

// SymbolHash returns the hash suffix for a type's canonical encoded form,
// memoized per distinct encoding.
func (h *Hasher) SymbolHash(typeEnc string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if v, ok := h.memo[typeEnc]; ok {
		return v
	}
	v := h.compute(typeEnc)
	h.memo[typeEnc] = v
	return v
}

func (h *Hasher) compute(typeEnc string) string {
	// Do not abbreviate the type encoding: symbol names must be independent
	// of one another within the crate.
	d := sha256.New()
	d.Write([]byte(h.crateName))
	d.Write([]byte("-"))
	d.Write([]byte(h.crateHash))
	for _, meta := range h.linked {
		d.Write(meta)
	}
	d.Write([]byte("-"))
	d.Write([]byte(typeEnc))

	// 64 bits should be enough to avoid collisions. Prefix with 'h' so the
	// hash never blends into adjacent digits.
	sum := d.Sum(nil)
	return "h" + hex.EncodeToString(sum[:8])
}

// MangleExportedName produces the final linker name for an exported item:
// mangled path plus symbol hash plus a three-character disambiguator drawn
// from the item's numeric id.
func (h *Hasher) MangleExportedName(path []string, typeEnc string, id uint64) string {
	hash := h.SymbolHash(typeEnc) + disambiguator(id)
	return ExportedName(path, hash)
}
