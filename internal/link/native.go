package link

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ember/internal/crate"
	"ember/internal/diag"
	"ember/internal/session"
	"ember/internal/tool"
)

// linkNatively drives the system linker to produce an executable or a
// dynamic library. The scratch dir holds LTO-doctored archive copies and
// is removed on every return path.
func (d *Driver) linkNatively(input *Input, dylib bool, out string) error {
	sess := d.Sess
	scratch, err := os.MkdirTemp("", "ember-link")
	if err != nil {
		return sess.Diags.Fatal(diag.IOWriteFailed, "failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(scratch)

	prog := sess.LinkerProg()
	args, err := d.buildLinkArgs(input, dylib, out, scratch)
	if err != nil {
		return err
	}

	if sess.Opts.PrintLinkArgs {
		fmt.Println(tool.CommandLine(prog, args))
	}
	tool.Print(sess.Opts.PrintCommands, prog, args)

	// Library lookups and the planner may have recorded errors; stop
	// before spending time in the linker.
	if err := sess.Diags.AbortIfErrors(); err != nil {
		return err
	}

	if output, err := d.runner()("", prog, args...); err != nil {
		var terr *tool.Error
		if errors.As(err, &terr) && terr.Spawn {
			sess.Diags.Err(diag.ToolSpawnFailed,
				"could not exec the linker `%s`: %v", prog, terr.Cause)
		} else {
			cause := err
			if terr != nil {
				cause = terr.Cause
			}
			sess.Diags.Err(diag.ToolFailed, "linking with `%s` failed: %v", prog, cause)
			sess.Diags.Note(diag.ToolFailed, "%s", tool.CommandLine(prog, args))
			if msg := strings.TrimSpace(string(output)); msg != "" {
				sess.Diags.Note(diag.ToolFailed, "%s", msg)
			}
		}
		return sess.Diags.AbortIfErrors()
	}

	if sess.Target.IsLikeOSX && sess.Opts.DebugInfo {
		d.runDsymutil(out)
	}
	return nil
}

// runDsymutil bundles debug symbols on OSX-like targets. Best effort: the
// artifact already linked, so failure is a warning.
func (d *Driver) runDsymutil(out string) {
	start := time.Now()
	d.emit(Event{Artifact: out, Stage: StageDsym, Status: StatusWorking})
	if _, err := d.runner()("", "dsymutil", out); err != nil {
		d.Sess.Diags.Warn(diag.ToolFailed, "failed to run dsymutil: %v", err)
		d.emit(Event{Artifact: out, Stage: StageDsym, Status: StatusError, Err: err, Elapsed: time.Since(start)})
		return
	}
	d.emit(Event{Artifact: out, Stage: StageDsym, Status: StatusDone, Elapsed: time.Since(start)})
}

// buildLinkArgs assembles the linker argument sequence. The system linker
// resolves symbols left to right, so each contribution lands in a fixed
// group and the group order is the contract.
func (d *Driver) buildLinkArgs(input *Input, dylib bool, out, scratch string) ([]string, error) {
	sess := d.Sess
	t := sess.Target
	var a linkArgs

	a.add(groupPre, t.PreLinkArgs...)

	if p := sess.RuntimeLibPath(); p != "" {
		a.add(groupOutput, "-L", p)
	}
	a.add(groupOutput, "-o", out, input.ObjectPath)

	// GNU and Windows targets force-include morestack through their
	// pre-link args. OSX cannot: -force_load wants an absolute path,
	// so the sysroot-relative form is built here.
	if t.IsLikeOSX && !t.DisableStackChecking {
		a.add(groupEarly, "-Wl,-force_load,"+filepath.Join(sess.RuntimeLibPath(), "libmorestack.a"))
	}
	if dylib && input.MetadataObjectPath != "" {
		a.add(groupEarly, input.MetadataObjectPath)
	}
	// Not for dylibs: gc-sections would discard the metadata section.
	if !dylib && !t.IsLikeOSX {
		a.add(groupEarly, "-Wl,--gc-sections")
	}
	if t.LinkerIsGnu && sess.Opts.OptLevel >= session.OptDefault {
		a.add(groupEarly, "-Wl,-O1")
	}

	kind := crate.ArtifactExecutable
	if dylib {
		kind = crate.ArtifactDylib
	}
	crates, err := d.planUpstreamCrates(kind, scratch)
	if err != nil {
		return nil, err
	}
	for _, c := range crates {
		if c.Dynamic {
			if c.Dir != "" && c.Dir != "." {
				a.add(groupCrates, "-L", c.Dir)
			}
			a.add(groupCrates, "-l"+c.Name)
		} else {
			a.add(groupCrates, c.Path)
		}
	}

	d.addLocalNativeLibraries(&a, input)
	if err := d.addUpstreamNativeLibraries(&a); err != nil {
		return nil, err
	}

	if dylib {
		if t.IsLikeOSX {
			a.add(groupLate, "-dynamiclib", "-Wl,-dylib")
			if sess.Opts.Rpath {
				a.add(groupLate, "-Wl,-install_name,@rpath/"+filepath.Base(out))
			}
		} else {
			a.add(groupLate, "-shared")
		}
	}
	a.add(groupLate, d.rpathArgs(out, crates)...)

	a.add(groupUser, sess.Opts.UserLinkArgs...)
	a.add(groupUser, input.LinkArgs...)

	a.add(groupPost, t.PostLinkArgs...)
	return a.finalize(), nil
}

// addLocalNativeLibraries puts the local crate's declared native
// libraries on the line, with static/dynamic linkage hints on platforms
// whose linker honors them.
func (d *Driver) addLocalNativeLibraries(a *linkArgs, input *Input) {
	sess := d.Sess
	for _, dir := range sess.Opts.LibSearchPaths {
		a.add(groupLocalNative, "-L", dir)
	}
	takesHints := !sess.Target.IsLikeOSX
	hinted := false
	for _, lib := range input.NativeLibs {
		switch lib.Kind {
		case crate.NativeStatic:
			if takesHints {
				a.add(groupLocalNative, "-Wl,-Bstatic")
				hinted = true
			}
			a.add(groupLocalNative, "-l"+lib.Name)
		case crate.NativeUnknown:
			if takesHints {
				a.add(groupLocalNative, "-Wl,-Bdynamic")
				hinted = true
			}
			a.add(groupLocalNative, "-l"+lib.Name)
		case crate.NativeFramework:
			a.add(groupLocalNative, "-framework", lib.Name)
		}
	}
	// Leave the linker in dynamic mode for whatever follows.
	if hinted {
		a.add(groupLocalNative, "-Wl,-Bdynamic")
	}
}

// addUpstreamNativeLibraries adds the native libraries upstream crates
// declared, in store order. Static native dependencies never propagate
// past their owning crate's archive, so one showing up here is a
// programming error.
func (d *Driver) addUpstreamNativeLibraries(a *linkArgs) error {
	sess := d.Sess
	for _, cr := range sess.Cstore.Used() {
		for _, lib := range cr.NativeLibs {
			switch lib.Kind {
			case crate.NativeUnknown:
				a.add(groupUpstreamNative, "-l"+lib.Name)
			case crate.NativeFramework:
				a.add(groupUpstreamNative, "-framework", lib.Name)
			case crate.NativeStatic:
				return sess.Diags.Bug(
					"static library %s shouldn't be propagated past crate `%s`",
					lib.Name, cr.Name)
			}
		}
	}
	return nil
}
