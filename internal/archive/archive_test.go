package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeAr records archiver invocations and simulates extraction by dropping
// the configured member files into the working directory.
type fakeAr struct {
	calls   []string
	extract []string
}

func (f *fakeAr) run(dir, prog string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, strings.Join(append([]string{prog}, args...), " "))
	if len(args) > 0 && args[0] == "x" {
		for _, name := range f.extract {
			if err := os.WriteFile(filepath.Join(dir, name), []byte("member"), 0o600); err != nil {
				return nil, err
			}
		}
	}
	return nil, nil
}

func testConfig(t *testing.T, f *fakeAr) Config {
	t.Helper()
	return Config{
		Dst:        filepath.Join(t.TempDir(), "libfoo.rlib"),
		SlibPrefix: "lib",
		SlibSuffix: ".a",
		Run:        f.run,
	}
}

func TestBuilderRecordsMemberOrder(t *testing.T) {
	f := &fakeAr{}
	ab, err := Create(testConfig(t, f))
	if err != nil {
		t.Fatal(err)
	}

	for _, m := range []string{"/tmp/foo.o", "/tmp/ember.metadata.bin", "/tmp/foo.bytecode.deflate"} {
		if err := ab.AddFile(m); err != nil {
			t.Fatal(err)
		}
	}
	got := ab.Members()
	want := []string{"foo.o", "ember.metadata.bin", "foo.bytecode.deflate"}
	if len(got) != len(want) {
		t.Fatalf("Members = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Members[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFinalizedBuilderRejectsAppends(t *testing.T) {
	f := &fakeAr{}
	ab, err := Create(testConfig(t, f))
	if err != nil {
		t.Fatal(err)
	}

	ab = ab.Build()
	if err := ab.AddFile("/tmp/late.o"); err == nil {
		t.Fatal("AddFile on a finalized archive should fail")
	}
	if err := ab.Extend().AddFile("/tmp/late.o"); err != nil {
		t.Fatalf("AddFile after Extend: %v", err)
	}
}

func TestUpdateSymbolsTiming(t *testing.T) {
	f := &fakeAr{}
	ab, err := Create(testConfig(t, f))
	if err != nil {
		t.Fatal(err)
	}
	if err := ab.AddFile("/tmp/foo.o"); err != nil {
		t.Fatal(err)
	}
	if err := ab.UpdateSymbols(); err != nil {
		t.Fatal(err)
	}
	ab = ab.Build().Extend()
	if err := ab.AddFile("/tmp/meta"); err != nil {
		t.Fatal(err)
	}

	// The symbol-table update must land between the two adds.
	var ops []string
	for _, c := range f.calls {
		fields := strings.Fields(c)
		ops = append(ops, fields[1])
	}
	want := []string{"r", "s", "r"}
	if len(ops) != len(want) {
		t.Fatalf("archiver ops = %v", ops)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("archiver ops = %v, want %v", ops, want)
		}
	}
}

func TestRemoveFile(t *testing.T) {
	f := &fakeAr{}
	ab, err := Create(testConfig(t, f))
	if err != nil {
		t.Fatal(err)
	}
	if err := ab.AddFile("/tmp/foo.o"); err != nil {
		t.Fatal(err)
	}
	if err := ab.AddFile("/tmp/bar.o"); err != nil {
		t.Fatal(err)
	}
	if err := ab.RemoveFile("foo.o"); err != nil {
		t.Fatal(err)
	}
	got := ab.Members()
	if len(got) != 1 || got[0] != "bar.o" {
		t.Fatalf("Members after removal = %v", got)
	}
	last := f.calls[len(f.calls)-1]
	if !strings.Contains(last, " d ") || !strings.HasSuffix(last, "foo.o") {
		t.Fatalf("expected an ar d invocation, got %q", last)
	}
}

func TestAddRlibSkipsMagicMembers(t *testing.T) {
	f := &fakeAr{extract: []string{
		"foo.o",
		"ember.metadata.bin",
		"foo.bytecode.deflate",
		"__.SYMDEF",
		"native.o",
	}}
	ab, err := Create(testConfig(t, f))
	if err != nil {
		t.Fatal(err)
	}

	rlib := filepath.Join(t.TempDir(), "libfoo.rlib")
	if err := os.WriteFile(rlib, []byte("!<arch>\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := ab.AddRlib(rlib, "foo", false); err != nil {
		t.Fatal(err)
	}
	members := ab.Members()
	if len(members) != 2 {
		t.Fatalf("Members = %v, want the object and the native member only", members)
	}
	for _, m := range members {
		if !strings.HasPrefix(m, "r-foo-") {
			t.Fatalf("merged member %q should carry the crate prefix", m)
		}
		if strings.Contains(m, "metadata") || strings.Contains(m, "bytecode") {
			t.Fatalf("magic member %q leaked into the merge", m)
		}
	}
}

func TestAddRlibLTOSkipsObject(t *testing.T) {
	f := &fakeAr{extract: []string{"foo.o", "native.o"}}
	ab, err := Create(testConfig(t, f))
	if err != nil {
		t.Fatal(err)
	}
	rlib := filepath.Join(t.TempDir(), "libfoo.rlib")
	if err := os.WriteFile(rlib, []byte("!<arch>\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := ab.AddRlib(rlib, "foo", true); err != nil {
		t.Fatal(err)
	}
	members := ab.Members()
	if len(members) != 1 || members[0] != "r-foo-native.o" {
		t.Fatalf("Members = %v, want only the native member under LTO", members)
	}
}

func TestFindLibrary(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "libz.a"), []byte("!<arch>\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	f := &fakeAr{}
	cfg := testConfig(t, f)
	cfg.LibSearchPaths = []string{t.TempDir(), dir}
	ab, err := Create(cfg)
	if err != nil {
		t.Fatal(err)
	}
	p, err := ab.findLibrary("z")
	if err != nil {
		t.Fatalf("findLibrary: %v", err)
	}
	if filepath.Base(p) != "libz.a" {
		t.Fatalf("found %q", p)
	}
	if _, err := ab.findLibrary("missing"); err == nil {
		t.Fatal("findLibrary must fail for unknown libraries")
	}
}
