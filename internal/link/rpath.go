package link

import (
	"path/filepath"
)

// rpathConfig describes one rpath computation. Realpath is injectable so
// tests do not depend on the filesystem.
type rpathConfig struct {
	// LibDirs are the directories holding dynamic libraries the output
	// links against, in link order.
	LibDirs []string
	// OutDir is the directory the output artifact lands in.
	OutDir string
	// Prefix is the linker's executable-relative token, $ORIGIN on
	// GNU-style targets and @loader_path on OSX-like ones.
	Prefix string
	// RuntimeLibPath is the absolute fallback for relocated installs.
	RuntimeLibPath string
	Realpath       func(string) (string, error)
}

func rpathPrefix(isLikeOSX bool) string {
	if isLikeOSX {
		return "@loader_path"
	}
	return "$ORIGIN"
}

// rpathFlags renders one -Wl,-rpath flag per distinct rpath: a relative
// rpath for every library directory so the artifact tree can move as a
// unit, then an absolute one pointing at the installed runtime.
func rpathFlags(cfg rpathConfig) []string {
	realpath := cfg.Realpath
	if realpath == nil {
		realpath = func(p string) (string, error) { return filepath.Abs(p) }
	}

	var rpaths []string
	for _, dir := range cfg.LibDirs {
		if r, ok := relativeRPath(cfg, realpath, dir); ok {
			rpaths = append(rpaths, r)
		}
	}
	if cfg.RuntimeLibPath != "" {
		rpaths = append(rpaths, cfg.RuntimeLibPath)
	}

	seen := make(map[string]bool, len(rpaths))
	var flags []string
	for _, r := range rpaths {
		if seen[r] {
			continue
		}
		seen[r] = true
		flags = append(flags, "-Wl,-rpath,"+r)
	}
	return flags
}

func relativeRPath(cfg rpathConfig, realpath func(string) (string, error), libDir string) (string, bool) {
	out, err := realpath(cfg.OutDir)
	if err != nil {
		return "", false
	}
	lib, err := realpath(libDir)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(out, lib)
	if err != nil {
		return "", false
	}
	return cfg.Prefix + "/" + filepath.ToSlash(rel), true
}

// rpathArgs computes the rpath flags for one native link, feeding the
// planner's dynamic-crate directories through the rpath computation.
func (d *Driver) rpathArgs(out string, crates []CrateLink) []string {
	sess := d.Sess
	if !sess.Opts.Rpath || !sess.Target.HasRpath {
		return nil
	}
	var dirs []string
	for _, c := range crates {
		if c.Dynamic {
			dirs = append(dirs, c.Dir)
		}
	}
	return rpathFlags(rpathConfig{
		LibDirs:        dirs,
		OutDir:         filepath.Dir(out),
		Prefix:         rpathPrefix(sess.Target.IsLikeOSX),
		RuntimeLibPath: sess.RuntimeLibPath(),
	})
}
