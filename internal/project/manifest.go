// Package project loads ember.toml crate manifests: the package name plus
// the crate's declared native libraries, linker arguments and library
// search paths.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"ember/internal/crate"
)

// ManifestName is the file the link stage looks for, walking up from the
// working directory.
const ManifestName = "ember.toml"

// Manifest is a parsed ember.toml plus its on-disk location.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the manifest document.
type Config struct {
	Package PackageConfig `toml:"package"`
	Link    LinkConfig    `toml:"link"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

// LinkConfig declares the crate's native link requirements.
type LinkConfig struct {
	Args        []string        `toml:"args"`
	SearchPaths []string        `toml:"search-paths"`
	Libraries   []LibraryConfig `toml:"libraries"`
}

type LibraryConfig struct {
	Name string `toml:"name"`
	Kind string `toml:"kind"`
}

// ErrPackageSectionMissing indicates that [package] is missing.
var ErrPackageSectionMissing = errors.New("missing [package]")

// Load parses one manifest file.
func Load(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	if name := cfg.Package.Name; name != "" {
		if err := crate.ValidateCrateName(name); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	for _, lib := range cfg.Link.Libraries {
		if lib.Name == "" {
			return nil, fmt.Errorf("%s: [[link.libraries]] entry without a name", path)
		}
		if _, err := crate.ParseNativeLibraryKind(lib.Kind); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, nil
}

// Find walks up from startDir looking for a manifest. The second return
// value reports whether one was found.
func Find(startDir string) (*Manifest, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			m, err := Load(candidate)
			if err != nil {
				return nil, true, err
			}
			return m, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil, false, nil
}

// NativeLibs converts the declared libraries into the link-stage model.
func (m *Manifest) NativeLibs() []crate.NativeLib {
	libs := make([]crate.NativeLib, 0, len(m.Config.Link.Libraries))
	for _, lib := range m.Config.Link.Libraries {
		kind, err := crate.ParseNativeLibraryKind(lib.Kind)
		if err != nil {
			// Load already validated the kind.
			continue
		}
		libs = append(libs, crate.NativeLib{Kind: kind, Name: lib.Name})
	}
	return libs
}

// SearchPaths resolves the declared search paths against the manifest root.
func (m *Manifest) SearchPaths() []string {
	paths := make([]string, 0, len(m.Config.Link.SearchPaths))
	for _, p := range m.Config.Link.SearchPaths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(m.Root, p)
		}
		paths = append(paths, p)
	}
	return paths
}
