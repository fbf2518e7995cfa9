package crate

// Data is everything the link stage knows about one upstream crate.
type Data struct {
	Name string
	Hash string
	// Source holds the on-disk artifacts found for the crate.
	Source Source
	// NativeLibs are the native libraries the crate declared.
	NativeLibs []NativeLib
	// LinkArgs are extra linker arguments the crate declared.
	LinkArgs []string
	// Metadata is the crate's serialized metadata blob.
	Metadata []byte
}

// Store is the registry of upstream crates for one compilation. Crates are
/// held in link order: a linker resolving left to right must see definitions
// after uses, so dependencies come after their dependents.
type Store struct {
	crates []Data
}

func NewStore() *Store {
	return &Store{}
}

// Add appends a crate. The caller provides crates already ordered for
// left-to-right symbol resolution.
func (s *Store) Add(d Data) {
	s.crates = append(s.crates, d)
}

func (s *Store) Len() int {
	return len(s.crates)
}

// Used returns all upstream crates in link order. The returned slice aliases
// the store.
func (s *Store) Used() []Data {
	return s.crates
}

// LinkedMetadata collects the metadata blobs of every upstream crate, in
// store order, for seeding the symbol hasher.
func (s *Store) LinkedMetadata() [][]byte {
	blobs := make([][]byte, 0, len(s.crates))
	for i := range s.crates {
		blobs = append(blobs, s.crates[i].Metadata)
	}
	return blobs
}
