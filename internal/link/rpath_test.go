package link

import (
	"testing"

	"ember/internal/session"
)

func identityPath(p string) (string, error) { return p, nil }

func TestRpathFlagsRelative(t *testing.T) {
	flags := rpathFlags(rpathConfig{
		LibDirs:  []string{"/deps/lib"},
		OutDir:   "/out",
		Prefix:   "$ORIGIN",
		Realpath: identityPath,
	})
	want := []string{"-Wl,-rpath,$ORIGIN/../deps/lib"}
	if len(flags) != 1 || flags[0] != want[0] {
		t.Fatalf("rpathFlags = %v, want %v", flags, want)
	}
}

func TestRpathFlagsDedupAndFallback(t *testing.T) {
	flags := rpathFlags(rpathConfig{
		LibDirs:        []string{"/deps/lib", "/deps/lib"},
		OutDir:         "/out",
		Prefix:         "@loader_path",
		RuntimeLibPath: "/usr/local/lib/emberc",
		Realpath:       identityPath,
	})
	want := []string{
		"-Wl,-rpath,@loader_path/../deps/lib",
		"-Wl,-rpath,/usr/local/lib/emberc",
	}
	if len(flags) != len(want) {
		t.Fatalf("rpathFlags = %v, want %v", flags, want)
	}
	for i := range want {
		if flags[i] != want[i] {
			t.Errorf("rpathFlags[%d] = %q, want %q", i, flags[i], want[i])
		}
	}
}

func TestRpathDisabled(t *testing.T) {
	tgt := gnuTarget()
	tgt.HasRpath = false
	sess := testSession(t, tgt, session.Options{Rpath: true})
	d := &Driver{Sess: sess}
	if flags := d.rpathArgs("/out/app", []CrateLink{{Dynamic: true, Dir: "/deps"}}); flags != nil {
		t.Fatalf("rpathArgs = %v, want none", flags)
	}
}
