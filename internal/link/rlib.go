package link

import (
	"compress/flate"
	"os"
	"path/filepath"
	"strings"

	"ember/internal/archive"
	"ember/internal/crate"
	"ember/internal/diag"
)

// bytecodeExt is deliberately longer than the archiver's 16-byte short
// name limit, forcing the member into the extended name table where no
// truncation can collide with object members.
const bytecodeExt = ".bytecode.deflate"

func (d *Driver) archiveConfig(dst string) archive.Config {
	sess := d.Sess
	return archive.Config{
		Dst:            dst,
		LibSearchPaths: sess.AllLibSearchPaths(),
		SlibPrefix:     sess.Target.StaticlibPrefix,
		SlibSuffix:     sess.Target.StaticlibSuffix,
		ArProg:         sess.ArProg(),
		Run:            d.Run,
		PrintCommands:  sess.Opts.PrintCommands,
	}
}

// linkRlib produces the crate's rlib: object, local native static
// libraries, the metadata member and the deflated bytecode member.
func (d *Driver) linkRlib(input *Input, out string) error {
	ab, err := d.buildRlib(input, out, true)
	if err != nil {
		return err
	}
	ab.Build()
	return d.Sess.Diags.AbortIfErrors()
}

// buildRlib assembles the archive shared by rlib and staticlib outputs.
// When withMetadata is false only the object and native members go in,
// leaving the archive extendable by the staticlib path.
//
// On OSX-like targets the archiver refuses to update the symbol table
// once non-object members are present, so the table is written before
// metadata and bytecode are added and the archive is finalized and
// reopened in append mode around that point.
func (d *Driver) buildRlib(input *Input, out string, withMetadata bool) (*archive.Builder, error) {
	sess := d.Sess
	ab, err := archive.Create(d.archiveConfig(out))
	if err != nil {
		return nil, sess.Diags.Fatal(diag.IOWriteFailed, "%v", err)
	}
	if err := ab.AddFile(input.ObjectPath); err != nil {
		return nil, sess.Diags.Fatal(diag.IOWriteFailed,
			"failed to add %s to archive: %v", input.ObjectPath, err)
	}
	for _, lib := range input.NativeLibs {
		if lib.Kind != crate.NativeStatic {
			continue
		}
		if err := ab.AddNativeLibrary(lib.Name); err != nil {
			sess.Diags.Err(diag.IOLibraryNotFound, "%v", err)
		}
	}

	if sess.Target.IsLikeOSX {
		if err := ab.UpdateSymbols(); err != nil {
			return nil, sess.Diags.Fatal(diag.ToolFailed, "%v", err)
		}
		ab = ab.Build().Extend()
	}

	if withMetadata {
		if err := d.addMetadata(ab, input); err != nil {
			return nil, err
		}
		if err := d.addBytecode(ab, input); err != nil {
			return nil, err
		}
	}

	if !sess.Target.IsLikeOSX {
		if err := ab.UpdateSymbols(); err != nil {
			return nil, sess.Diags.Fatal(diag.ToolFailed, "%v", err)
		}
	}
	return ab, nil
}

func (d *Driver) addMetadata(ab *archive.Builder, input *Input) error {
	sess := d.Sess
	scratch, err := os.MkdirTemp("", "ember-metadata")
	if err != nil {
		return sess.Diags.Fatal(diag.IOWriteFailed, "failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(scratch)

	metadata := filepath.Join(scratch, crate.MetadataFilename)
	if err := os.WriteFile(metadata, input.Metadata, 0o644); err != nil {
		return sess.Diags.Fatal(diag.IOWriteFailed,
			"failed to write %s: %v", metadata, err)
	}
	if err := ab.AddFile(metadata); err != nil {
		return sess.Diags.Fatal(diag.IOWriteFailed,
			"failed to add metadata to archive: %v", err)
	}
	return nil
}

func (d *Driver) addBytecode(ab *archive.Builder, input *Input) error {
	sess := d.Sess
	if input.BytecodePath == "" {
		return nil
	}
	// The member is named after the object file so that downstream LTO
	// lookups by object stem find the matching bytecode.
	deflated := withExt(input.ObjectPath, bytecodeExt)
	if err := writeDeflate(input.BytecodePath, deflated); err != nil {
		return sess.Diags.Fatal(diag.IOCompressFailed,
			"failed to compress bytecode %s: %v", input.BytecodePath, err)
	}
	if err := ab.AddFile(deflated); err != nil {
		return sess.Diags.Fatal(diag.IOWriteFailed,
			"failed to add bytecode to archive: %v", err)
	}
	if !sess.Opts.SaveTemps {
		for _, p := range []string{deflated, input.BytecodePath} {
			if err := os.Remove(p); err != nil {
				sess.Diags.Err(diag.IORemoveFailed, "failed to remove %s: %v", p, err)
			}
		}
	}
	return nil
}

func writeDeflate(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	zw, err := flate.NewWriter(f, flate.BestCompression)
	if err != nil {
		f.Close()
		return err
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		f.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func withExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
