// Package crate defines the compiled-crate data model consumed by the link
// stage: crate identity, output artifact kinds, native library kinds, the
// upstream crate registry and the per-artifact dependency format table.
package crate

import "fmt"

// LinkMeta is the root of all symbol hashing for one compilation. The crate
// hash is computed upstream from source content and build metadata.
type LinkMeta struct {
	CrateName string
	CrateHash string
}

// ArtifactKind enumerates the output artifacts the link stage can produce.
type ArtifactKind uint8

const (
	ArtifactRlib ArtifactKind = iota
	ArtifactStaticlib
	ArtifactDylib
	ArtifactExecutable
)

func (k ArtifactKind) String() string {
	switch k {
	case ArtifactRlib:
		return "rlib"
	case ArtifactStaticlib:
		return "staticlib"
	case ArtifactDylib:
		return "dylib"
	case ArtifactExecutable:
		return "bin"
	}
	return "unknown"
}

// ParseArtifactKind converts a --crate-type value to its kind.
func ParseArtifactKind(s string) (ArtifactKind, error) {
	switch s {
	case "rlib":
		return ArtifactRlib, nil
	case "staticlib":
		return ArtifactStaticlib, nil
	case "dylib":
		return ArtifactDylib, nil
	case "bin", "exe":
		return ArtifactExecutable, nil
	}
	return 0, fmt.Errorf("unknown crate type %q (expected rlib, staticlib, dylib or bin)", s)
}

// NativeLibraryKind classifies a native library reference.
type NativeLibraryKind uint8

const (
	// NativeStatic is a static archive linked into the crate's rlib.
	NativeStatic NativeLibraryKind = iota
	// NativeUnknown is a dynamic library, or one whose kind was not declared.
	NativeUnknown
	// NativeFramework is an OSX framework.
	NativeFramework
)

func (k NativeLibraryKind) String() string {
	switch k {
	case NativeStatic:
		return "static library"
	case NativeUnknown:
		return "library"
	case NativeFramework:
		return "framework"
	}
	return "unknown"
}

// ParseNativeLibraryKind converts a manifest kind value.
func ParseNativeLibraryKind(s string) (NativeLibraryKind, error) {
	switch s {
	case "static":
		return NativeStatic, nil
	case "dylib", "":
		return NativeUnknown, nil
	case "framework":
		return NativeFramework, nil
	}
	return 0, fmt.Errorf("unknown native library kind %q (expected static, dylib or framework)", s)
}

// NativeLib is one native library reference with its declared kind.
type NativeLib struct {
	Kind NativeLibraryKind
	Name string
}

// Source records what is on disk for one upstream crate.
type Source struct {
	RlibPath  string
	DylibPath string
}

// Linkage is the per-output-kind requirement for one upstream crate, as
// decided by the dependency-format resolver.
type Linkage uint8

const (
	// LinkageNotNeeded means the crate is already satisfied transitively
	// through a dynamic dependency and must not appear on the link line.
	LinkageNotNeeded Linkage = iota
	LinkageStatic
	LinkageDynamic
)

// FormatTable maps each output kind to the linkage requirement of every
// upstream crate, indexed by the crate's position in the store.
type FormatTable map[ArtifactKind][]Linkage
