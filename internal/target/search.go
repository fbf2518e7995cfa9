package target

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// TargetPathEnv holds colon-separated directories searched for
// <triple>.json specs.
const TargetPathEnv = "EMBER_TARGET_PATH"

// systemSpecDir is the fallback directory for installed target specs.
const systemSpecDir = "/etc/ember"

// Lookup resolves a target name to a verified spec. Resolution order:
// builtin table, literal file path, <name>.json across the directories in
// TargetPathEnv, then the system spec directory.
func Lookup(name string) (*Target, error) {
	if ctor, ok := builtins[name]; ok {
		t := ctor()
		return t.Verify()
	}

	if fileExists(name) {
		return FromFile(name)
	}

	fileName := name + ".json"
	dirs := filepath.SplitList(os.Getenv(TargetPathEnv))
	dirs = append(dirs, systemSpecDir)
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		p := filepath.Join(dir, fileName)
		if fileExists(p) {
			return FromFile(p)
		}
	}

	known := Builtins()
	sort.Strings(known)
	return nil, fmt.Errorf("unknown target %q (builtin targets: %v)", name, known)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
