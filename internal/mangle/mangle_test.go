package mangle

import (
	"strings"
	"testing"
)

func TestSanitizeEscapeTable(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"foo", "foo"},
		{"Foo_bar.baz$", "Foo_bar.baz$"},
		{"a@b", "a$SP$b"},
		// Results starting with '$' pick up the underscore qualifier.
		{"~T", "_$UP$T"},
		{"*T", "_$RP$T"},
		{"&T", "_$BP$T"},
		{"Vec<int>", "Vec$LT$int$GT$"},
		{"f(a,b)", "f$LP$a$C$b$RP$"},
		{"a-b:c", "a.b.c"},
		{"a b", "a$x20b"},
		{"тип", "_$u0442$u0438$u043f"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeCharset(t *testing.T) {
	inputs := []string{
		"plain", "with space", "weird!#%^chars", "()<>,@~*&:-",
		"ユニコード", "mixed 'quotes' and \"doubles\"", "", "123start",
	}
	legal := func(b byte) bool {
		return b >= 'a' && b <= 'z' ||
			b >= 'A' && b <= 'Z' ||
			b >= '0' && b <= '9' ||
			b == '_' || b == '.' || b == '$'
	}
	for _, in := range inputs {
		out := Sanitize(in)
		for i := 0; i < len(out); i++ {
			if !legal(out[i]) {
				t.Fatalf("Sanitize(%q) produced illegal byte %q in %q", in, out[i], out)
			}
		}
	}
}

func TestSanitizeUnderscoreQualifies(t *testing.T) {
	// Results starting with a non-ident character get a leading underscore.
	if got := Sanitize("1abc"); got != "_1abc" {
		t.Fatalf("Sanitize(1abc) = %q", got)
	}
	if got := Sanitize("@x"); got != "_$SP$x" {
		t.Fatalf("Sanitize(@x) = %q", got)
	}
	// Already-fine prefixes stay untouched.
	if got := Sanitize("_x"); got != "_x" {
		t.Fatalf("Sanitize(_x) = %q", got)
	}
}

func TestMangleGrammar(t *testing.T) {
	got := Mangle([]string{"std", "io", "print"}, "")
	if got != "_ZN3std2io5printE" {
		t.Fatalf("Mangle = %q", got)
	}

	withHash := Mangle([]string{"std", "io", "print"}, "h0123456789abcdef")
	if withHash != "_ZN3std2io5print17h0123456789abcdefE" {
		t.Fatalf("Mangle with hash = %q", withHash)
	}

	for _, s := range []string{got, withHash} {
		if !strings.HasPrefix(s, "_ZN") || !strings.HasSuffix(s, "E") {
			t.Fatalf("mangled name %q violates the _ZN...E grammar", s)
		}
	}
}

func TestMangleDeterministic(t *testing.T) {
	path := []string{"crate", "module", "item<A,B>"}
	first := Mangle(path, "habcdef0123456789")
	for i := 0; i < 10; i++ {
		if got := Mangle(path, "habcdef0123456789"); got != first {
			t.Fatalf("Mangle not deterministic: %q vs %q", got, first)
		}
	}
}

func TestDisambiguator(t *testing.T) {
	if got := disambiguator(0); got != "aaa" {
		t.Fatalf("disambiguator(0) = %q", got)
	}
	if got := disambiguator(1); got != "baa" {
		t.Fatalf("disambiguator(1) = %q", got)
	}
	if len(disambiguator(1<<60)) != 3 {
		t.Fatal("disambiguator must always be three characters")
	}
	if disambiguator(7) == disambiguator(8) {
		t.Fatal("distinct small ids must disambiguate")
	}
}
