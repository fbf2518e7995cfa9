package target

// Builtin platform bases. A base fills in everything a family of triples
// shares; the concrete triple constructors overwrite the required fields.

func linuxBase() Target {
	t := Default()
	t.Linker = "cc"
	t.DynamicLinking = true
	t.Executables = true
	t.DisableStackChecking = false
	t.LinkerIsGnu = true
	t.HasRpath = true
	t.PreLinkArgs = []string{
		"-Wl,--whole-archive",
		"-lmorestack",
		"-Wl,--no-whole-archive",
		"-Wl,--as-needed",
		"-fPIC",
	}
	return t
}

func appleBase() Target {
	t := Default()
	t.Linker = "cc"
	t.DynamicLinking = true
	t.Executables = true
	t.DisableStackChecking = false
	t.IsLikeOSX = true
	t.HasRpath = true
	// OSX has -dead_strip, which doesn't rely on function sections.
	t.FunctionSections = false
	t.EliminateFramePointer = false
	t.DllPrefix = "lib"
	t.DllSuffix = ".dylib"
	return t
}

func windowsBase() Target {
	t := Default()
	t.Linker = "gcc"
	t.DynamicLinking = true
	t.Executables = true
	t.DisableStackChecking = false
	t.FunctionSections = false
	t.IsLikeWindows = true
	t.DllPrefix = ""
	t.DllSuffix = ".dll"
	t.ExeSuffix = ".exe"
	t.StaticlibPrefix = ""
	t.StaticlibSuffix = ".lib"
	t.PreLinkArgs = []string{
		"-Wl,--whole-archive",
		"-lmorestack",
		"-Wl,--no-whole-archive",
		"-nodefaultlibs",
		"-shared-libgcc",
		// COFF section names over 8 characters get truncated by older
		// toolchains, and the metadata section name is longer than that.
		"-Wl,--enable-long-section-names",
	}
	return t
}

func freebsdBase() Target {
	t := Default()
	t.Linker = "cc"
	t.DynamicLinking = true
	t.Executables = true
	t.DisableStackChecking = false
	t.LinkerIsGnu = true
	t.HasRpath = true
	t.PreLinkArgs = []string{"-L/usr/local/lib"}
	return t
}

func dragonflyBase() Target {
	t := Default()
	t.Linker = "cc"
	t.DynamicLinking = true
	t.Executables = true
	t.DisableStackChecking = false
	t.LinkerIsGnu = true
	t.HasRpath = true
	t.PreLinkArgs = []string{
		"-L/usr/local/lib",
		"-L/usr/local/lib/gcc47",
		"-L/usr/local/lib/gcc44",
	}
	return t
}

const (
	dataLayout64 = "e-p:64:64:64-i1:8:8-i8:8:8-i16:16:16-i32:32:32-i64:64:64" +
		"-f32:32:32-f64:64:64-v64:64:64-v128:128:128-a0:0:64-s0:64:64" +
		"-f80:128:128-n8:16:32:64-S128"
	dataLayout32 = "e-p:32:32:32-i1:8:8-i8:8:8-i16:16:16-i32:32:32-i64:32:64" +
		"-f32:32:32-f64:32:64-v64:64:64-v128:128:128-a0:0:64-f80:32:32-n8:16:32"
	dataLayoutARM = "e-p:32:32:32-i1:8:8-i8:8:8-i16:16:16-i32:32:32-i64:64:64" +
		"-f32:32:32-f64:64:64-v64:64:64-v128:64:128-a0:0:64-n32"
)

func with64(t Target, llvmTarget string) Target {
	t.DataLayout = dataLayout64
	t.LlvmTarget = llvmTarget
	t.TargetEndian = "little"
	t.TargetWordSize = "64"
	t.Arch = "x86_64"
	return t
}

func with32(t Target, llvmTarget string) Target {
	t.DataLayout = dataLayout32
	t.LlvmTarget = llvmTarget
	t.TargetEndian = "little"
	t.TargetWordSize = "32"
	t.Arch = "x86"
	return t
}

// builtins maps triple names (with dashes) to their constructors.
var builtins = map[string]func() Target{
	"x86_64-unknown-linux-gnu": func() Target {
		return with64(linuxBase(), "x86_64-unknown-linux-gnu")
	},
	"i686-unknown-linux-gnu": func() Target {
		return with32(linuxBase(), "i686-unknown-linux-gnu")
	},
	"arm-unknown-linux-gnueabihf": func() Target {
		t := linuxBase()
		t.DataLayout = dataLayoutARM
		t.LlvmTarget = "arm-unknown-linux-gnueabihf"
		t.TargetEndian = "little"
		t.TargetWordSize = "32"
		t.Arch = "arm"
		t.Features = "+v6,+vfp2"
		return t
	},
	"x86_64-apple-darwin": func() Target {
		t := with64(appleBase(), "x86_64-apple-darwin")
		t.CPU = "core2"
		return t
	},
	"i686-apple-darwin": func() Target {
		t := with32(appleBase(), "i686-apple-darwin")
		t.CPU = "yonah"
		return t
	},
	"x86_64-pc-windows-gnu": func() Target {
		return with64(windowsBase(), "x86_64-pc-windows-gnu")
	},
	"i686-pc-windows-gnu": func() Target {
		return with32(windowsBase(), "i686-pc-windows-gnu")
	},
	"x86_64-unknown-freebsd": func() Target {
		return with64(freebsdBase(), "x86_64-unknown-freebsd")
	},
	"x86_64-unknown-dragonfly": func() Target {
		return with64(dragonflyBase(), "x86_64-unknown-dragonfly")
	},
}

// Builtins returns the names of all builtin target specs.
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	return names
}
