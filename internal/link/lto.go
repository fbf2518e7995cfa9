package link

import (
	"path/filepath"
	"strings"

	"ember/internal/archive"
	"ember/internal/crate"
	"ember/internal/diag"
)

// ltoRelinkArchive prepares an upstream rlib for a post-LTO link. The
// crate's own object was already folded into the final object, so linking
// the archived copy again would define every symbol twice. The rlib is
// copied into the scratch dir, the object member is deleted from the
// copy, and include reports whether anything object-like is left worth
// putting on the link line. The on-disk rlib is never touched.
func (d *Driver) ltoRelinkArchive(scratch string, cr crate.Data) (path string, include bool, err error) {
	sess := d.Sess
	dst := filepath.Join(scratch, filepath.Base(cr.Source.RlibPath))
	if err := copyFile(cr.Source.RlibPath, dst); err != nil {
		return "", false, sess.Diags.Fatal(diag.IOCopyFailed, "%v", err)
	}

	ab, err := archive.Open(d.ltoArchiveConfig(dst))
	if err != nil {
		return "", false, sess.Diags.Fatal(diag.IOWriteFailed, "%v", err)
	}
	if err := ab.RemoveFile(rlibObjectName(cr.Source.RlibPath)); err != nil {
		return "", false, sess.Diags.Fatal(diag.ToolFailed, "%v", err)
	}
	files, err := ab.Files()
	if err != nil {
		return "", false, sess.Diags.Fatal(diag.ToolFailed, "%v", err)
	}
	return dst, hasObjectMember(files), nil
}

// rlibObjectName derives the object member name from the rlib filename,
// so crates built with an extra filename suffix still resolve. For
// libfoo-abc.rlib the object member is foo-abc.o.
func rlibObjectName(rlibPath string) string {
	stem := filepath.Base(rlibPath)
	stem = strings.TrimSuffix(stem, ".rlib")
	stem = strings.TrimPrefix(stem, "lib")
	return stem + ".o"
}

func (d *Driver) ltoArchiveConfig(dst string) archive.Config {
	cfg := d.archiveConfig(dst)
	cfg.LibSearchPaths = nil
	return cfg
}

// hasObjectMember reports whether any member would contribute code to a
// link. An archive holding only metadata and bytecode members would make
// some linkers balk, so it is excluded entirely.
func hasObjectMember(files []string) bool {
	for _, f := range files {
		if strings.HasSuffix(f, ".o") {
			return true
		}
	}
	return false
}
