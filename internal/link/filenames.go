package link

import (
	"path/filepath"
	"strings"

	"ember/internal/crate"
	"ember/internal/session"
)

// FilenameFor derives the output filename for one artifact kind, using
// the target's platform affixes. The extra filename (when present) sits
// between the crate name and the suffix so that parallel builds of the
// same crate do not collide.
func FilenameFor(sess *session.Session, kind crate.ArtifactKind, name string) string {
	libname := name + sess.Opts.ExtraFilename
	t := sess.Target
	switch kind {
	case crate.ArtifactRlib:
		return "lib" + libname + ".rlib"
	case crate.ArtifactDylib:
		return t.DllPrefix + libname + t.DllSuffix
	case crate.ArtifactStaticlib:
		return t.StaticlibPrefix + libname + t.StaticlibSuffix
	case crate.ArtifactExecutable:
		return name + t.ExeSuffix
	}
	return libname
}

// OutputPath joins the derived filename onto the session's output
// directory.
func OutputPath(sess *session.Session, kind crate.ArtifactKind, name string) string {
	return filepath.Join(sess.Opts.OutputDir, FilenameFor(sess, kind, name))
}

// unlib strips the platform dll prefix and suffix from a dynamic
// library filename, recovering the name usable with the linker's -l
// flag. Each affix is stripped on its own: Windows has no dll prefix
// but its suffix still has to go.
func unlib(sess *session.Session, filename string) string {
	t := sess.Target
	if t.DllSuffix != "" && strings.HasSuffix(filename, t.DllSuffix) {
		filename = filename[:len(filename)-len(t.DllSuffix)]
	}
	if t.DllPrefix != "" && strings.HasPrefix(filename, t.DllPrefix) {
		filename = filename[len(t.DllPrefix):]
	}
	return filename
}
