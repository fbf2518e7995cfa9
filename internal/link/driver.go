// Package link assembles final compilation artifacts: rlib and static
// library archives, dynamic libraries and executables. It owns artifact
// naming, archive surgery for whole-program optimization, and the ordered
// assembly of the native link line.
package link

import (
	"fmt"
	"io"
	"os"
	"time"

	"ember/internal/crate"
	"ember/internal/diag"
	"ember/internal/session"
	"ember/internal/tool"
)

// Input is what upstream code generation hands the link stage for the
// local crate.
type Input struct {
	// ObjectPath is the compiled object for the crate.
	ObjectPath string
	// MetadataObjectPath is the object wrapping the metadata blob,
	// linked into dylibs so downstream compilations can read it.
	MetadataObjectPath string
	// BytecodePath is the serialized optimizer bytecode, bundled into
	// rlibs for downstream whole-program optimization.
	BytecodePath string
	// Metadata is the crate's serialized metadata blob.
	Metadata []byte
	// NativeLibs are the native libraries the local crate declared.
	NativeLibs []crate.NativeLib
	// LinkArgs are linker arguments the local crate declared.
	LinkArgs []string
}

// Driver runs the link stage for one compilation.
type Driver struct {
	Sess *session.Session
	// Run executes external tools; nil means tool.Run.
	Run tool.Runner
	// Progress receives per-artifact stage events; nil disables them.
	Progress ProgressSink
}

func (d *Driver) runner() tool.Runner {
	if d.Run == nil {
		return tool.Run
	}
	return d.Run
}

func (d *Driver) emit(evt Event) {
	if d.Progress != nil {
		d.Progress.OnEvent(evt)
	}
}

// LinkBinary produces every requested artifact kind from one compiled
// input, returning the output paths in request order. Temporary inputs
// are removed afterwards unless the session keeps them.
func (d *Driver) LinkBinary(input *Input, kinds []crate.ArtifactKind) ([]string, error) {
	sess := d.Sess
	outs := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		if session.InvalidArtifactForTarget(sess.Target, kind) {
			return nil, sess.Diags.Bug("invalid artifact kind %s for target %s",
				kind, sess.Opts.TargetTriple)
		}
		out, err := d.linkOutput(input, kind)
		if err != nil {
			return nil, err
		}
		outs = append(outs, out)
	}

	if !sess.Opts.SaveTemps {
		for _, p := range []string{input.ObjectPath, input.MetadataObjectPath} {
			if p == "" {
				continue
			}
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				sess.Diags.Err(diag.IORemoveFailed, "failed to remove %s: %v", p, err)
			}
		}
		if err := sess.Diags.AbortIfErrors(); err != nil {
			return nil, err
		}
	}
	return outs, nil
}

func (d *Driver) linkOutput(input *Input, kind crate.ArtifactKind) (string, error) {
	sess := d.Sess
	out := OutputPath(sess, kind, sess.Opts.CrateName)

	// The linker and archiver report opaque errors for unwritable
	// outputs, so check up front where the message can be precise.
	for _, p := range []string{out, input.ObjectPath} {
		if !isWriteable(p) {
			return "", sess.Diags.Fatal(diag.IONotWriteable,
				"output file %s is not writeable -- check its permissions", p)
		}
	}

	stage := stageFor(kind)
	start := time.Now()
	d.emit(Event{Artifact: out, Stage: stage, Status: StatusWorking})

	var err error
	switch kind {
	case crate.ArtifactRlib:
		err = d.linkRlib(input, out)
	case crate.ArtifactStaticlib:
		err = d.linkStaticlib(input, out)
	case crate.ArtifactDylib:
		err = d.linkNatively(input, true, out)
	case crate.ArtifactExecutable:
		err = d.linkNatively(input, false, out)
	}
	if err != nil {
		d.emit(Event{Artifact: out, Stage: stage, Status: StatusError, Err: err, Elapsed: time.Since(start)})
		return "", err
	}
	d.emit(Event{Artifact: out, Stage: stage, Status: StatusDone, Elapsed: time.Since(start)})
	return out, nil
}

func stageFor(kind crate.ArtifactKind) Stage {
	switch kind {
	case crate.ArtifactRlib:
		return StageRlib
	case crate.ArtifactStaticlib:
		return StageStaticlib
	}
	return StageNative
}

// RunAssembler turns an assembly file into an object with the target's C
// compiler driver.
func (d *Driver) RunAssembler(asmPath, objPath string) error {
	sess := d.Sess
	prog := sess.LinkerProg()
	args := []string{"-c", "-o", objPath, asmPath}
	tool.Print(sess.Opts.PrintCommands, prog, args)
	if _, err := d.runner()("", prog, args...); err != nil {
		sess.Diags.Err(diag.ToolFailed, "assembling with `%s` failed: %v", prog, err)
		return sess.Diags.AbortIfErrors()
	}
	return nil
}

// isWriteable reports whether path either does not exist yet or is a file
// the owner may write.
func isWriteable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return os.IsNotExist(err)
	}
	return info.Mode().Perm()&0o200 != 0
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	return out.Close()
}
