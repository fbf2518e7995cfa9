package mangle_test

import (
	"strings"
	"testing"

	"golang.org/x/sync/errgroup"

	"ember/internal/mangle"
)

func TestSymbolHashShape(t *testing.T) {
	h := mangle.NewHasher("foo", "cafedeadbeef", nil)
	hash := h.SymbolHash("fn() -> int")
	if len(hash) != 17 {
		t.Fatalf("hash %q should be sentinel plus 16 hex digits", hash)
	}
	if hash[0] != 'h' {
		t.Fatalf("hash %q must start with the non-digit sentinel", hash)
	}
	for _, c := range hash[1:] {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Fatalf("hash %q contains non-hex %q", hash, c)
		}
	}
}

func TestSymbolHashStability(t *testing.T) {
	base := mangle.NewHasher("foo", "hash1", [][]byte{[]byte("meta")})
	ref := base.SymbolHash("T")

	if got := mangle.NewHasher("foo", "hash1", [][]byte{[]byte("meta")}).SymbolHash("T"); got != ref {
		t.Fatal("identical inputs must reproduce the exact hash")
	}

	changed := []*mangle.Hasher{
		mangle.NewHasher("bar", "hash1", [][]byte{[]byte("meta")}),
		mangle.NewHasher("foo", "hash2", [][]byte{[]byte("meta")}),
		mangle.NewHasher("foo", "hash1", [][]byte{[]byte("other")}),
		mangle.NewHasher("foo", "hash1", nil),
	}
	for i, h := range changed {
		if h.SymbolHash("T") == ref {
			t.Fatalf("variant %d should change the symbol hash", i)
		}
	}
	if base.SymbolHash("U") == ref {
		t.Fatal("changing the type signature should change the symbol hash")
	}
}

func TestMangleExportedNameDisambiguation(t *testing.T) {
	h := mangle.NewHasher("foo", "cafedeadbeef", nil)
	path := []string{"foo", "a"}

	// Two same-named items in sibling scopes share path and type; only the
	// numeric id tells them apart.
	n1 := h.MangleExportedName(path, "fn()", 1)
	n2 := h.MangleExportedName(path, "fn()", 2)
	if n1 == n2 {
		t.Fatalf("identical paths with different ids must mangle distinctly: %q", n1)
	}
	if !strings.HasPrefix(n1, "_ZN") || !strings.HasSuffix(n1, "E") {
		t.Fatalf("exported name %q violates the grammar", n1)
	}
}

func TestSymbolHashMemoConcurrent(t *testing.T) {
	h := mangle.NewHasher("foo", "cafedeadbeef", nil)
	want := h.SymbolHash("fn(int) -> int")

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			for j := 0; j < 100; j++ {
				if got := h.SymbolHash("fn(int) -> int"); got != want {
					t.Errorf("concurrent SymbolHash = %q, want %q", got, want)
				}
				h.SymbolHash("fn(str) -> str")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}
