// Package main implements the emberc CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"ember/internal/crate"
	"ember/internal/diag"
	"ember/internal/link"
	"ember/internal/observ"
	"ember/internal/project"
	"ember/internal/session"
	"ember/internal/target"
	"ember/internal/tool"
)

var linkCmd = &cobra.Command{
	Use:   "link [flags] <object-file>",
	Short: "Link a compiled crate into its output artifacts",
	Long:  "Link a compiled object into rlib, staticlib, dylib or executable artifacts, using ember.toml for native library declarations.",
	Args:  cobra.ExactArgs(1),
	RunE:  linkExecution,
}

func init() {
	linkCmd.Flags().String("crate-name", "", "override the crate name")
	linkCmd.Flags().StringSlice("crate-type", nil, "artifact kinds to produce (rlib|staticlib|dylib|bin)")
	linkCmd.Flags().String("out-dir", ".", "directory for output artifacts")
	linkCmd.Flags().String("target", "", "target triple or path to a target spec JSON file")
	linkCmd.Flags().String("sysroot", "", "compiler installation root")
	linkCmd.Flags().String("extra-filename", "", "suffix inserted into library file stems")
	linkCmd.Flags().StringSliceP("lib-path", "L", nil, "additional library search paths")
	linkCmd.Flags().StringSlice("extern", nil, "upstream crate as name=path (.rlib or dynamic library)")
	linkCmd.Flags().String("metadata", "", "path to the crate metadata blob")
	linkCmd.Flags().String("metadata-object", "", "path to the compiled metadata object (dylib only)")
	linkCmd.Flags().String("bytecode", "", "path to the crate bytecode for LTO bundling")
	linkCmd.Flags().String("linker", "", "override the target's linker program")
	linkCmd.Flags().String("ar", "", "override the archiver program")
	linkCmd.Flags().String("relocation-model", "", "override the relocation model")
	linkCmd.Flags().String("code-model", "", "override the code model")
	linkCmd.Flags().Bool("lto", false, "upstream crates were folded in by whole-program optimization")
	linkCmd.Flags().IntP("opt-level", "O", 0, "optimization level (0-3)")
	linkCmd.Flags().BoolP("debug", "g", false, "debug info was emitted; bundle symbols where applicable")
	linkCmd.Flags().Bool("rpath", false, "embed runtime search paths in dynamic artifacts")
	linkCmd.Flags().Bool("save-temps", false, "keep intermediate files")
	linkCmd.Flags().Bool("print-link-args", false, "print the linker invocation verbatim")
	linkCmd.Flags().Bool("print-commands", false, "echo every external tool command")
	linkCmd.Flags().StringSlice("link-arg", nil, "extra argument passed through to the linker")
	linkCmd.Flags().String("ui", "auto", "interactive progress display (auto|on|off)")
}

func linkExecution(cmd *cobra.Command, args []string) error {
	objPath := args[0]
	flags := cmd.Flags()

	colorMode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}

	sink := diag.NewSink(os.Stderr, maxDiagnostics, colorEnabled(colorMode))

	triple, err := flags.GetString("target")
	if err != nil {
		return err
	}
	if triple == "" {
		triple = defaultTriple
	}
	tgt, err := target.Lookup(triple)
	if err != nil {
		return sink.Fatal(diag.CfgBadTargetSpec, "%v", err)
	}

	manifest, haveManifest, err := project.Find(filepath.Dir(objPath))
	if err != nil {
		return err
	}

	manifestName := ""
	if haveManifest {
		manifestName = manifest.Config.Package.Name
	}
	explicitName, err := flags.GetString("crate-name")
	if err != nil {
		return err
	}
	crateName := crate.FindCrateName(explicitName, manifestName, objPath)
	if err := crate.ValidateCrateName(crateName); err != nil {
		return sink.Fatal(diag.CfgMissingCrateName, "%v", err)
	}

	opts, err := readLinkOptions(flags, crateName, triple)
	if err != nil {
		return err
	}
	if haveManifest {
		opts.LibSearchPaths = append(opts.LibSearchPaths, manifest.SearchPaths()...)
	}

	sess := session.New(tgt, opts, sink)

	externs, err := flags.GetStringSlice("extern")
	if err != nil {
		return err
	}
	if err := registerExterns(sess, externs); err != nil {
		return err
	}

	kindNames, err := flags.GetStringSlice("crate-type")
	if err != nil {
		return err
	}
	kinds, err := readArtifactKinds(kindNames, tgt)
	if err != nil {
		return err
	}
	resolveFormats(sess, kinds)

	if err := sess.ValidateConfig(kinds); err != nil {
		return err
	}
	session.InitBackend(sess.LinkerProg(), sess.ArProg())

	input, err := readLinkInput(flags, sess, objPath, manifest, haveManifest)
	if err != nil {
		return err
	}

	timer := observ.NewTimer()
	phase := timer.Begin("link")

	uiValue, err := flags.GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	var outs []string
	if shouldUseTUI(mode) && !quiet {
		outs, err = runLinkWithUI(sess, input, kinds)
	} else {
		d := &link.Driver{Sess: sess}
		outs, err = d.LinkBinary(input, kinds)
	}
	timer.End(phase, fmt.Sprintf("%d artifacts", len(outs)))
	if err != nil {
		return err
	}

	if !quiet {
		for _, out := range outs {
			fmt.Fprintln(cmd.OutOrStdout(), out)
		}
	}
	if timings {
		fmt.Fprint(cmd.OutOrStdout(), timer.Summary())
	}
	return nil
}

const defaultTriple = "x86_64-unknown-linux-gnu"

func readLinkOptions(flags *pflag.FlagSet, crateName, triple string) (session.Options, error) {
	var opts session.Options
	var err error
	opts.CrateName = crateName
	opts.TargetTriple = triple
	if opts.ExtraFilename, err = flags.GetString("extra-filename"); err != nil {
		return opts, err
	}
	if opts.Sysroot, err = flags.GetString("sysroot"); err != nil {
		return opts, err
	}
	if opts.OutputDir, err = flags.GetString("out-dir"); err != nil {
		return opts, err
	}
	if opts.Linker, err = flags.GetString("linker"); err != nil {
		return opts, err
	}
	if opts.Ar, err = flags.GetString("ar"); err != nil {
		return opts, err
	}
	if opts.RelocationModel, err = flags.GetString("relocation-model"); err != nil {
		return opts, err
	}
	if opts.CodeModel, err = flags.GetString("code-model"); err != nil {
		return opts, err
	}
	if opts.LTO, err = flags.GetBool("lto"); err != nil {
		return opts, err
	}
	optLevel, err := flags.GetInt("opt-level")
	if err != nil {
		return opts, err
	}
	if optLevel < 0 || optLevel > 3 {
		return opts, fmt.Errorf("invalid optimization level %d (expected 0-3)", optLevel)
	}
	opts.OptLevel = session.OptLevel(optLevel)
	if opts.DebugInfo, err = flags.GetBool("debug"); err != nil {
		return opts, err
	}
	if opts.Rpath, err = flags.GetBool("rpath"); err != nil {
		return opts, err
	}
	if opts.SaveTemps, err = flags.GetBool("save-temps"); err != nil {
		return opts, err
	}
	if opts.PrintLinkArgs, err = flags.GetBool("print-link-args"); err != nil {
		return opts, err
	}
	if opts.PrintCommands, err = flags.GetBool("print-commands"); err != nil {
		return opts, err
	}
	if opts.LibSearchPaths, err = flags.GetStringSlice("lib-path"); err != nil {
		return opts, err
	}
	if opts.UserLinkArgs, err = flags.GetStringSlice("link-arg"); err != nil {
		return opts, err
	}
	return opts, nil
}

// registerExterns loads upstream crates from name=path flags, in the
// order given. That order is the link order.
func registerExterns(sess *session.Session, externs []string) error {
	for _, spec := range externs {
		name, path, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("invalid --extern %q (expected name=path)", spec)
		}
		data := crate.Data{Name: name}
		if strings.HasSuffix(path, ".rlib") {
			data.Source.RlibPath = path
		} else {
			data.Source.DylibPath = path
		}
		if data.Source.RlibPath != "" {
			if blob, err := readRlibMetadata(sess, data.Source.RlibPath); err == nil {
				fillFromMetadata(&data, blob)
			}
		}
		sess.Cstore.Add(data)
	}
	return nil
}

// fillFromMetadata decodes an rlib metadata member into the crate
// record: the hash, the native libraries the crate pulls in, and any
// link arguments it requests. A blob that fails to decode is skipped;
// missing pieces surface later with better context.
func fillFromMetadata(data *crate.Data, blob []byte) {
	meta, err := crate.DecodeMetadata(blob)
	if err != nil {
		return
	}
	data.Metadata = blob
	data.Hash = meta.CrateHash
	data.NativeLibs = meta.NativeLibs()
	data.LinkArgs = meta.LinkArgs
}

// readRlibMetadata pulls the metadata member out of an upstream rlib.
// Failure is not an error here: the crate may still link.
func readRlibMetadata(sess *session.Session, rlibPath string) ([]byte, error) {
	scratch, err := os.MkdirTemp("", "ember-extern")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(scratch)

	abs, err := filepath.Abs(rlibPath)
	if err != nil {
		return nil, err
	}
	if _, err := tool.Run(scratch, sess.ArProg(), "x", abs, crate.MetadataFilename); err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(scratch, crate.MetadataFilename))
}

func readArtifactKinds(names []string, tgt *target.Target) ([]crate.ArtifactKind, error) {
	if len(names) == 0 {
		return []crate.ArtifactKind{session.DefaultArtifactForTarget(tgt)}, nil
	}
	kinds := make([]crate.ArtifactKind, 0, len(names))
	for _, name := range names {
		kind, err := crate.ParseArtifactKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// resolveFormats fills the dependency format table from what is on disk:
// a crate with an rlib links statically into archives and executables, a
// crate with only a dynamic library links dynamically where the target
// allows it.
func resolveFormats(sess *session.Session, kinds []crate.ArtifactKind) {
	used := sess.Cstore.Used()
	for _, kind := range kinds {
		formats := make([]crate.Linkage, len(used))
		for i, cr := range used {
			switch {
			case kind == crate.ArtifactRlib:
				formats[i] = crate.LinkageNotNeeded
			case kind == crate.ArtifactDylib && !sess.Opts.LTO && cr.Source.DylibPath != "":
				formats[i] = crate.LinkageDynamic
			case cr.Source.RlibPath != "":
				formats[i] = crate.LinkageStatic
			case cr.Source.DylibPath != "" && !sess.Opts.LTO:
				formats[i] = crate.LinkageDynamic
			default:
				formats[i] = crate.LinkageNotNeeded
			}
		}
		sess.Formats[kind] = formats
	}
}

func readLinkInput(flags *pflag.FlagSet, sess *session.Session, objPath string, manifest *project.Manifest, haveManifest bool) (*link.Input, error) {
	input := &link.Input{ObjectPath: objPath}
	var err error
	if input.MetadataObjectPath, err = flags.GetString("metadata-object"); err != nil {
		return nil, err
	}
	if input.BytecodePath, err = flags.GetString("bytecode"); err != nil {
		return nil, err
	}
	metadataPath, err := flags.GetString("metadata")
	if err != nil {
		return nil, err
	}
	if metadataPath != "" {
		if input.Metadata, err = os.ReadFile(metadataPath); err != nil {
			return nil, sess.Diags.Fatal(diag.IOWriteFailed, "failed to read metadata %s: %v", metadataPath, err)
		}
	} else {
		meta := crate.MetadataFor(crate.LinkMeta{CrateName: sess.Opts.CrateName}, nil, nil, nil)
		if input.Metadata, err = crate.EncodeMetadata(meta); err != nil {
			return nil, err
		}
	}
	if haveManifest {
		input.NativeLibs = manifest.NativeLibs()
		input.LinkArgs = manifest.Config.Link.Args
	}
	return input, nil
}
