package session

import (
	"ember/internal/crate"
	"ember/internal/diag"
	"ember/internal/target"
)

var relocationModels = map[string]bool{
	"pic":            true,
	"static":         true,
	"default":        true,
	"dynamic-no-pic": true,
}

var codeModels = map[string]bool{
	"default": true,
	"small":   true,
	"kernel":  true,
	"medium":  true,
	"large":   true,
}

// ValidateConfig reports every configuration problem it finds through the
// sink, then aborts once. Reporting before aborting lets one run surface
// multiple problems.
func (s *Session) ValidateConfig(kinds []crate.ArtifactKind) error {
	if m := s.RelocationModel(); !relocationModels[m] {
		s.Diags.Err(diag.CfgBadRelocationModel, "%s is not a valid relocation mode", m)
	}
	if m := s.CodeModel(); !codeModels[m] {
		s.Diags.Err(diag.CfgBadCodeModel, "%s is not a valid code model", m)
	}
	for _, kind := range kinds {
		if InvalidArtifactForTarget(s.Target, kind) {
			s.Diags.Err(diag.CfgArtifactUnsupported,
				"cannot build a %s for target %s", kind, s.Opts.TargetTriple)
		}
	}
	return s.Diags.AbortIfErrors()
}

// DefaultArtifactForTarget picks what to build when nothing was requested.
// Targets without executables (iOS-style) fall back to a static library.
func DefaultArtifactForTarget(t *target.Target) crate.ArtifactKind {
	if !t.Executables {
		return crate.ArtifactStaticlib
	}
	return crate.ArtifactExecutable
}

// InvalidArtifactForTarget reports whether the target cannot produce the
// requested artifact kind.
func InvalidArtifactForTarget(t *target.Target, kind crate.ArtifactKind) bool {
	switch {
	case !t.DynamicLinking && kind == crate.ArtifactDylib:
		return true
	case !t.Executables && kind == crate.ArtifactExecutable:
		return true
	}
	return false
}
