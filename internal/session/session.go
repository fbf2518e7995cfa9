// Package session carries the per-compilation state shared by the link
// stage: the immutable target spec, link options, the diagnostic sink, the
// upstream crate store and the dependency format table.
package session

import (
	"path/filepath"

	"ember/internal/crate"
	"ember/internal/diag"
	"ember/internal/target"
)

// OptLevel mirrors the optimization level requested upstream. The link stage
// only cares whether it reaches the default level (linker -O hint).
type OptLevel uint8

const (
	OptNone OptLevel = iota
	OptLess
	OptDefault
	OptAggressive
)

// Options are the link-relevant knobs for one compilation.
type Options struct {
	CrateName string
	// ExtraFilename is appended to artifact file stems.
	ExtraFilename string
	// TargetTriple names the target spec in use.
	TargetTriple string
	// Sysroot is the compiler installation root holding runtime libraries.
	Sysroot string
	// OutputDir is where final artifacts are written.
	OutputDir string

	// Linker and Ar override the target's tool choices when non-empty.
	Linker string
	Ar     string

	// RelocationModel and CodeModel override the target defaults.
	RelocationModel string
	CodeModel       string

	LTO       bool
	OptLevel  OptLevel
	DebugInfo bool
	Rpath     bool

	SaveTemps     bool
	PrintLinkArgs bool
	PrintCommands bool

	// LibSearchPaths are user-supplied -L directories.
	LibSearchPaths []string
	// UserLinkArgs are passed through to the linker after crate args.
	UserLinkArgs []string
}

// Session is shared read-only by every link-stage component.
type Session struct {
	Target *target.Target
	Opts   Options
	Diags  *diag.Sink
	Cstore *crate.Store
	// Formats is the precomputed dependency format table.
	Formats crate.FormatTable
}

// New assembles a session around a verified target spec.
func New(t *target.Target, opts Options, sink *diag.Sink) *Session {
	return &Session{
		Target: t,
		Opts:   opts,
		Diags:  sink,
		Cstore: crate.NewStore(),
		Formats: crate.FormatTable{},
	}
}

// LinkerProg returns the program used to drive the system linker.
func (s *Session) LinkerProg() string {
	if s.Opts.Linker != "" {
		return s.Opts.Linker
	}
	return s.Target.Linker
}

// ArProg returns the archiver program.
func (s *Session) ArProg() string {
	if s.Opts.Ar != "" {
		return s.Opts.Ar
	}
	return "ar"
}

// RelocationModel returns the effective relocation model.
func (s *Session) RelocationModel() string {
	if s.Opts.RelocationModel != "" {
		return s.Opts.RelocationModel
	}
	return s.Target.RelocationModel
}

// CodeModel returns the effective code model.
func (s *Session) CodeModel() string {
	if s.Opts.CodeModel != "" {
		return s.Opts.CodeModel
	}
	return s.Target.CodeModel
}

// LTO reports whether whole-program optimization folded upstream crates into
// the final object.
func (s *Session) LTO() bool { return s.Opts.LTO }

// RuntimeLibPath is the sysroot directory holding the compiler's runtime
// libraries for the current target. Empty when no sysroot was configured.
func (s *Session) RuntimeLibPath() string {
	if s.Opts.Sysroot == "" {
		return ""
	}
	if s.Opts.TargetTriple != "" {
		return filepath.Join(s.Opts.Sysroot, "lib", "emberc", s.Opts.TargetTriple)
	}
	return filepath.Join(s.Opts.Sysroot, "lib")
}

// AllLibSearchPaths is the user -L directories followed by the runtime
// library path, the order library lookups probe them.
func (s *Session) AllLibSearchPaths() []string {
	paths := make([]string, 0, len(s.Opts.LibSearchPaths)+1)
	paths = append(paths, s.Opts.LibSearchPaths...)
	if p := s.RuntimeLibPath(); p != "" {
		paths = append(paths, p)
	}
	return paths
}
