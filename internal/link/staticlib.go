package link

import (
	"ember/internal/crate"
	"ember/internal/diag"
)

// linkStaticlib produces a standalone static library: the local crate's
// archive plus the runtime archives plus every upstream crate folded in
// wholesale. Native dynamic libraries cannot be bundled, so they are
// surfaced to the user instead.
func (d *Driver) linkStaticlib(input *Input, out string) error {
	sess := d.Sess
	ab, err := d.buildRlib(input, out, false)
	if err != nil {
		return err
	}

	if !sess.Target.DisableStackChecking {
		if err := ab.AddNativeLibrary("morestack"); err != nil {
			sess.Diags.Err(diag.IOLibraryNotFound, "%v", err)
		}
	}
	if err := ab.AddNativeLibrary("compiler-rt"); err != nil {
		sess.Diags.Err(diag.IOLibraryNotFound, "%v", err)
	}

	formats := sess.Formats[crate.ArtifactStaticlib]
	var allNative []crate.NativeLib
	for i, cr := range sess.Cstore.Used() {
		if i >= len(formats) || formats[i] != crate.LinkageStatic {
			continue
		}
		if cr.Source.RlibPath == "" {
			sess.Diags.Err(diag.IOMissingRlib, "could not find rlib for: `%s`", cr.Name)
			continue
		}
		if err := ab.AddRlib(cr.Source.RlibPath, cr.Name, sess.LTO()); err != nil {
			sess.Diags.Err(diag.IOWriteFailed,
				"failed to add %s to archive: %v", cr.Source.RlibPath, err)
			continue
		}
		allNative = append(allNative, cr.NativeLibs...)
	}

	if err := ab.UpdateSymbols(); err != nil {
		return sess.Diags.Fatal(diag.ToolFailed, "%v", err)
	}
	ab.Build()

	// Deliberately not deduplicated: order and repetition can matter to
	// the consumer's linker.
	if len(allNative) > 0 {
		sess.Diags.Warn(diag.LinkNativeArtifacts,
			"link against the following native artifacts when linking against this static library")
		sess.Diags.Note(diag.LinkNativeArtifacts,
			"the order and any duplication can be significant on some platforms, "+
				"and so may need to be preserved")
		for _, lib := range allNative {
			sess.Diags.Note(diag.LinkNativeArtifacts, "%s: %s", lib.Kind, lib.Name)
		}
	}
	return sess.Diags.AbortIfErrors()
}
