package project

import (
	"os"
	"path/filepath"
	"testing"

	"ember/internal/crate"
)

const sampleManifest = `
[package]
name = "mycrate"

[link]
args = ["-Wl,--as-needed"]
search-paths = ["native"]

[[link.libraries]]
name = "z"
kind = "static"

[[link.libraries]]
name = "CoreFoundation"
kind = "framework"

[[link.libraries]]
name = "curl"
`

func writeManifest(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, t.TempDir(), sampleManifest)
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Config.Package.Name != "mycrate" {
		t.Fatalf("package name = %q", m.Config.Package.Name)
	}
	libs := m.NativeLibs()
	want := []crate.NativeLib{
		{Kind: crate.NativeStatic, Name: "z"},
		{Kind: crate.NativeFramework, Name: "CoreFoundation"},
		{Kind: crate.NativeUnknown, Name: "curl"},
	}
	if len(libs) != len(want) {
		t.Fatalf("NativeLibs = %v", libs)
	}
	for i := range want {
		if libs[i] != want[i] {
			t.Fatalf("NativeLibs[%d] = %v, want %v", i, libs[i], want[i])
		}
	}
	sp := m.SearchPaths()
	if len(sp) != 1 || !filepath.IsAbs(sp[0]) {
		t.Fatalf("SearchPaths = %v, want one absolute path", sp)
	}
}

func TestLoadManifestRejectsBadKind(t *testing.T) {
	path := writeManifest(t, t.TempDir(), `
[package]
name = "x"

[[link.libraries]]
name = "z"
kind = "plugin"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load must reject unknown library kinds")
	}
}

func TestLoadManifestRequiresPackage(t *testing.T) {
	path := writeManifest(t, t.TempDir(), `[link]
args = []
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load must require [package]")
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, sampleManifest)
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o750); err != nil {
		t.Fatal(err)
	}

	m, found, err := Find(nested)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !found {
		t.Fatal("Find should locate the manifest in an ancestor")
	}
	if m.Root != root {
		t.Fatalf("Root = %q, want %q", m.Root, root)
	}
}
