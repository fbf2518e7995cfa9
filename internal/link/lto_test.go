package link

import (
	"os"
	"path/filepath"
	"testing"

	"ember/internal/crate"
	"ember/internal/session"
)

// ltoSession sets up an LTO link against one upstream rlib on disk.
// The rlib carries an extra filename, so the object member name has
// to be derived from the filename, not the crate name.
func ltoSession(t *testing.T, list []string) (*session.Session, *fakeTool, crate.Data) {
	t.Helper()
	deps := t.TempDir()
	rlib := filepath.Join(deps, "libA-x1.rlib")
	if err := os.WriteFile(rlib, []byte("!<arch>\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	sess := testSession(t, gnuTarget(), session.Options{CrateName: "app", LTO: true})
	cr := crate.Data{Name: "A", Source: crate.Source{RlibPath: rlib}}
	sess.Cstore.Add(cr)
	sess.Formats[crate.ArtifactExecutable] = []crate.Linkage{crate.LinkageStatic}
	return sess, &fakeTool{list: list}, cr
}

func TestLTORemovesObjectByRlibStem(t *testing.T) {
	sess, f, _ := ltoSession(t, []string{
		"A-x1.o", "ember.metadata.bin", "A-x1.bytecode.deflate",
	})
	scratch := t.TempDir()
	d := &Driver{Sess: sess, Run: f.run}

	links, err := d.planUpstreamCrates(crate.ArtifactExecutable, scratch)
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 1 {
		t.Fatalf("links = %v, want one entry", links)
	}
	want := filepath.Join(scratch, "libA-x1.rlib")
	if links[0].Path != want || links[0].Dynamic {
		t.Errorf("link = %+v, want static path %s", links[0], want)
	}

	var removed []string
	for _, call := range f.calls {
		if len(call) == 4 && call[1] == "d" {
			removed = append(removed, call[3])
		}
	}
	if len(removed) != 1 || removed[0] != "A-x1.o" {
		t.Errorf("removed members = %v, want [A-x1.o]", removed)
	}
}

func TestLTOExcludesObjectlessArchive(t *testing.T) {
	sess, f, _ := ltoSession(t, []string{
		"ember.metadata.bin", "A-x1.bytecode.deflate",
	})
	d := &Driver{Sess: sess, Run: f.run}

	links, err := d.planUpstreamCrates(crate.ArtifactExecutable, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 0 {
		t.Errorf("links = %v, want archive left off the link line", links)
	}
}

func TestLTOLeavesSourceRlibIntact(t *testing.T) {
	sess, f, cr := ltoSession(t, []string{"A-x1.o"})
	d := &Driver{Sess: sess, Run: f.run}

	if _, err := d.planUpstreamCrates(crate.ArtifactExecutable, t.TempDir()); err != nil {
		t.Fatal(err)
	}
	for _, call := range f.calls {
		for _, arg := range call[1:] {
			if arg == cr.Source.RlibPath {
				t.Fatalf("archiver touched the source rlib: %v", call)
			}
		}
	}
}
