package session

import (
	"testing"

	"ember/internal/crate"
	"ember/internal/diag"
	"ember/internal/target"
)

func linuxTarget(t *testing.T) *target.Target {
	t.Helper()
	spec, err := target.Lookup("x86_64-unknown-linux-gnu")
	if err != nil {
		t.Fatal(err)
	}
	return spec
}

func TestValidateConfigAccumulates(t *testing.T) {
	sink := diag.NewSink(nil, 16, false)
	sess := New(linuxTarget(t), Options{
		RelocationModel: "sideways",
		CodeModel:       "enormous",
	}, sink)

	err := sess.ValidateConfig([]crate.ArtifactKind{crate.ArtifactExecutable})
	if err == nil {
		t.Fatal("ValidateConfig must abort on bad models")
	}
	// Both problems surface in one run.
	if got := sink.Bag().ErrorCount(); got != 2 {
		t.Fatalf("ErrorCount = %d, want 2", got)
	}
}

func TestValidateConfigDefaults(t *testing.T) {
	sink := diag.NewSink(nil, 16, false)
	sess := New(linuxTarget(t), Options{}, sink)
	if err := sess.ValidateConfig([]crate.ArtifactKind{crate.ArtifactRlib, crate.ArtifactExecutable}); err != nil {
		t.Fatalf("ValidateConfig with target defaults: %v", err)
	}
}

func TestArtifactGating(t *testing.T) {
	spec := linuxTarget(t)
	if InvalidArtifactForTarget(spec, crate.ArtifactDylib) {
		t.Fatal("linux target supports dylibs")
	}

	static := *spec
	static.DynamicLinking = false
	static.Executables = false
	if !InvalidArtifactForTarget(&static, crate.ArtifactDylib) {
		t.Fatal("dylib must be rejected without dynamic linking")
	}
	if !InvalidArtifactForTarget(&static, crate.ArtifactExecutable) {
		t.Fatal("executable must be rejected when unavailable")
	}
	if got := DefaultArtifactForTarget(&static); got != crate.ArtifactStaticlib {
		t.Fatalf("DefaultArtifactForTarget = %v, want staticlib", got)
	}
	if got := DefaultArtifactForTarget(spec); got != crate.ArtifactExecutable {
		t.Fatalf("DefaultArtifactForTarget = %v, want executable", got)
	}
}

func TestToolOverrides(t *testing.T) {
	sink := diag.NewSink(nil, 4, false)
	sess := New(linuxTarget(t), Options{}, sink)
	if sess.LinkerProg() != "cc" {
		t.Fatalf("LinkerProg = %q, want target default", sess.LinkerProg())
	}
	sess.Opts.Linker = "clang"
	sess.Opts.Ar = "llvm-ar"
	if sess.LinkerProg() != "clang" || sess.ArProg() != "llvm-ar" {
		t.Fatal("option overrides must win over target defaults")
	}
}
