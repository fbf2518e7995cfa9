// Package archive builds and edits static archives by driving the system
// archiver. It deliberately never parses the archive format itself: every
// add, remove, list and symbol-table update is an `ar` invocation.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ember/internal/crate"
	"ember/internal/tool"
)

// Config parameterizes one archive build.
type Config struct {
	// Dst is the archive being produced or edited.
	Dst string
	// LibSearchPaths are the directories searched for native static
	// libraries referenced by name.
	LibSearchPaths []string
	// SlibPrefix and SlibSuffix are the target's static library affixes.
	SlibPrefix string
	SlibSuffix string
	// ArProg overrides the archiver program (default "ar").
	ArProg string
	// Run executes archiver subprocesses; nil means tool.Run.
	Run tool.Runner
	// PrintCommands echoes every archiver command line.
	PrintCommands bool
}

// Builder drives the archiver against one destination archive. Member
// operations happen immediately, so symbol-table update timing is exactly
// the call order the assembler chooses.
type Builder struct {
	cfg     Config
	members []string
	closed  bool
}

func (c Config) ar() string {
	if c.ArProg == "" {
		return "ar"
	}
	return c.ArProg
}

func (c Config) runner() tool.Runner {
	if c.Run == nil {
		return tool.Run
	}
	return c.Run
}

// Create starts a fresh archive at cfg.Dst, removing any stale file first.
func Create(cfg Config) (*Builder, error) {
	if err := os.Remove(cfg.Dst); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove stale archive %s: %w", cfg.Dst, err)
	}
	return &Builder{cfg: cfg}, nil
}

// Open edits an existing archive in place.
func Open(cfg Config) (*Builder, error) {
	if _, err := os.Stat(cfg.Dst); err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", cfg.Dst, err)
	}
	b := &Builder{cfg: cfg}
	files, err := b.Files()
	if err != nil {
		return nil, err
	}
	b.members = files
	return b, nil
}

func (b *Builder) run(dir string, args ...string) error {
	prog := b.cfg.ar()
	tool.Print(b.cfg.PrintCommands, prog, args)
	_, err := b.cfg.runner()(dir, prog, args...)
	return err
}

// AddFile appends one file as an archive member.
func (b *Builder) AddFile(path string) error {
	if b.closed {
		return fmt.Errorf("archive %s is finalized; call Extend before adding members", b.cfg.Dst)
	}
	if err := b.run("", "r", b.cfg.Dst, path); err != nil {
		return err
	}
	b.members = append(b.members, filepath.Base(path))
	return nil
}

// Members returns the member names this builder has added, in order.
func (b *Builder) Members() []string {
	return b.members
}

// Files lists the member names currently in the archive on disk.
func (b *Builder) Files() ([]string, error) {
	out, err := b.cfg.runner()("", b.cfg.ar(), "t", b.cfg.Dst)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// RemoveFile deletes one member from the archive.
func (b *Builder) RemoveFile(member string) error {
	if err := b.run("", "d", b.cfg.Dst, member); err != nil {
		return err
	}
	kept := b.members[:0]
	for _, m := range b.members {
		if m != member {
			kept = append(kept, m)
		}
	}
	b.members = kept
	return nil
}

// UpdateSymbols rebuilds the archive's symbol table. On OSX-like targets the
// assembler calls this before any non-object member is added; elsewhere it is
// deferred to the end.
func (b *Builder) UpdateSymbols() error {
	return b.run("", "s", b.cfg.Dst)
}

// Build finalizes the archive. The returned builder is closed; call Extend
// to reopen it for further appends.
func (b *Builder) Build() *Builder {
	b.closed = true
	return b
}

// Extend reopens a finalized archive in append mode.
func (b *Builder) Extend() *Builder {
	b.closed = false
	return b
}

// findLibrary locates a native static library by name across the configured
// search paths.
func (b *Builder) findLibrary(name string) (string, error) {
	file := b.cfg.SlibPrefix + name + b.cfg.SlibSuffix
	for _, dir := range b.cfg.LibSearchPaths {
		p := filepath.Join(dir, file)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, nil
		}
	}
	return "", fmt.Errorf("could not find native static library `%s`, perhaps an -L flag is missing?", name)
}

// symbolTableMagic reports archiver-internal member names that must not be
// re-added when merging archive contents.
func symbolTableMagic(name string) bool {
	switch name {
	case "", "/", "//", "__.SYMDEF", "__.SYMDEF SORTED":
		return true
	}
	return false
}

// AddNativeLibrary merges the contents of a named native static library into
// the archive. The library is extracted into a scratch directory which is
// removed on every return path.
func (b *Builder) AddNativeLibrary(name string) error {
	lib, err := b.findLibrary(name)
	if err != nil {
		return err
	}
	return b.mergeArchive(lib, func(member string) (string, bool) {
		return member, !symbolTableMagic(member)
	})
}

// AddRlib merges an upstream crate's rlib. Metadata and bytecode members
// never make it into downstream archives, and when whole-program
// optimization already folded the crate's code into the final object the
// crate's own object member is skipped too. Members are renamed so that
// same-named members from different crates cannot collide.
func (b *Builder) AddRlib(path, crateName string, lto bool) error {
	object := crateName + ".o"
	return b.mergeArchive(path, func(member string) (string, bool) {
		switch {
		case symbolTableMagic(member):
			return "", false
		case member == crate.MetadataFilename:
			return "", false
		case strings.HasSuffix(member, ".bytecode.deflate"):
			return "", false
		case lto && member == object:
			return "", false
		}
		return fmt.Sprintf("r-%s-%s", crateName, member), true
	})
}

// mergeArchive extracts src into a scratch directory and re-adds every
// member that rename admits.
func (b *Builder) mergeArchive(src string, rename func(string) (string, bool)) error {
	scratch, err := os.MkdirTemp("", "ember-ar")
	if err != nil {
		return fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(scratch)
	}()

	absSrc, err := filepath.Abs(src)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", src, err)
	}
	if err := b.run(scratch, "x", absSrc); err != nil {
		return err
	}

	entries, err := os.ReadDir(scratch)
	if err != nil {
		return fmt.Errorf("failed to read scratch dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		newName, keep := rename(entry.Name())
		if !keep {
			continue
		}
		memberPath := filepath.Join(scratch, entry.Name())
		if newName != entry.Name() {
			renamed := filepath.Join(scratch, newName)
			if err := os.Rename(memberPath, renamed); err != nil {
				return fmt.Errorf("failed to rename archive member %s: %w", entry.Name(), err)
			}
			memberPath = renamed
		}
		if err := b.AddFile(memberPath); err != nil {
			return err
		}
	}
	return nil
}
