// Package target holds the per-target configuration consumed by the link
// stage. A Target is built once, either from a builtin platform constructor
// or from a JSON document, validated with Verify, and is immutable for the
// rest of the compilation.
package target

import "fmt"

// unsetField marks required fields that a spec source must overwrite.
// Verify rejects any spec where one of them is still in place.
const unsetField = "this field needs to be specified"

// Target is everything the link stage knows about compiling for a platform.
type Target struct {
	// DataLayout is the LLVM data layout string.
	DataLayout string
	// LlvmTarget is the triple passed to the code generator.
	LlvmTarget string
	// Linker is the program driving the system linker.
	Linker string
	// PreLinkArgs are passed unconditionally before any user libraries.
	PreLinkArgs []string
	// PostLinkArgs are passed unconditionally after any user libraries.
	PostLinkArgs []string
	// CPU is the default CPU passed to the code generator.
	CPU string
	// Features are always-on target features.
	Features string
	// DynamicLinking reports whether the target can produce dylibs.
	DynamicLinking bool
	// Executables reports whether the target can produce executables.
	Executables bool
	// DisableStackChecking turns off the segmented-stack prelude.
	DisableStackChecking bool
	// RelocationModel is one of pic, static, default, dynamic-no-pic.
	RelocationModel string
	// CodeModel is one of default, small, kernel, medium, large.
	CodeModel string
	// DisableRedzone avoids emitting code that uses the ABI red zone.
	DisableRedzone bool
	// TargetEndian is "little" or "big".
	TargetEndian string
	// TargetWordSize is the pointer width in bits, as a string.
	TargetWordSize string
	// EliminateFramePointer drops frame pointers where possible.
	EliminateFramePointer bool
	// FunctionSections emits each function in its own section.
	FunctionSections bool
	// DllPrefix is prepended to every dynamic library name.
	DllPrefix string
	// DllSuffix is appended to every dynamic library name.
	DllSuffix string
	// ExeSuffix is appended to every executable name.
	ExeSuffix string
	// StaticlibPrefix is prepended to every static library name.
	StaticlibPrefix string
	// StaticlibSuffix is appended to every static library name.
	StaticlibSuffix string
	// IsLikeOSX selects OSX toolchain behavior: dsymutil, -dead_strip,
	// archive symbol-table timing.
	IsLikeOSX bool
	// IsLikeWindows selects Windows library naming conventions.
	IsLikeWindows bool
	// LinkerIsGnu reports whether the linker takes GNU-style arguments.
	LinkerIsGnu bool
	// HasRpath reports whether the linker supports rpaths.
	HasRpath bool
	// Arch is the architecture for ABI considerations: x86, x86_64, arm, mips.
	Arch string
}

// Default returns the documented defaults for every optional field. The five
// required fields stay at the unset sentinel; a Target built from Default
// alone does not pass Verify.
func Default() Target {
	return Target{
		DataLayout:            unsetField,
		LlvmTarget:            unsetField,
		Linker:                "cc",
		PreLinkArgs:           nil,
		PostLinkArgs:          []string{"-lcompiler-rt"},
		CPU:                   "generic",
		Features:              "",
		DynamicLinking:        false,
		Executables:           false,
		DisableStackChecking:  true,
		RelocationModel:       "pic",
		CodeModel:             "default",
		DisableRedzone:        true,
		TargetEndian:          unsetField,
		TargetWordSize:        unsetField,
		EliminateFramePointer: true,
		FunctionSections:      true,
		DllPrefix:             "lib",
		DllSuffix:             ".so",
		ExeSuffix:             "",
		StaticlibPrefix:       "lib",
		StaticlibSuffix:       ".a",
		IsLikeOSX:             false,
		IsLikeWindows:         false,
		LinkerIsGnu:           false,
		HasRpath:              false,
		Arch:                  unsetField,
	}
}

// Verify checks that every required field has been overwritten from its unset
// sentinel. On success it returns the spec unchanged; otherwise it returns
// nil and an error naming the first missing field.
func (t Target) Verify() (*Target, error) {
	required := []struct {
		name  string
		value string
	}{
		{"data-layout", t.DataLayout},
		{"llvm-target", t.LlvmTarget},
		{"target-endian", t.TargetEndian},
		{"target-word-size", t.TargetWordSize},
		{"arch", t.Arch},
	}
	for _, f := range required {
		if f.value == unsetField {
			return nil, fmt.Errorf("target spec is missing required field %q", f.name)
		}
	}
	return &t, nil
}
