// Package mangle flattens hierarchical crate item paths into linker-legal
// symbol names. The source language has no global namespace between crates;
// system linkers do. Names are flattened C++-style (_ZN...E) and made unique
// with a content-derived hash suffix.
package mangle

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Sanitize maps a path component onto the character set the assembler
// accepts in symbols: a-z, A-Z, 0-9, ., _, $.
func Sanitize(s string) string {
	var result strings.Builder
	for _, c := range s {
		switch c {
		// Escape these with $ sequences.
		case '@':
			result.WriteString("$SP$")
		case '~':
			result.WriteString("$UP$")
		case '*':
			result.WriteString("$RP$")
		case '&':
			result.WriteString("$BP$")
		case '<':
			result.WriteString("$LT$")
		case '>':
			result.WriteString("$GT$")
		case '(':
			result.WriteString("$LP$")
		case ')':
			result.WriteString("$RP$")
		case ',':
			result.WriteString("$C$")

		// '.' doesn't occur in types and functions, so reuse it
		// for ':' and '-'.
		case '-', ':':
			result.WriteByte('.')

		default:
			if c >= 'a' && c <= 'z' ||
				c >= 'A' && c <= 'Z' ||
				c >= '0' && c <= '9' ||
				c == '_' || c == '.' || c == '$' {
				result.WriteRune(c)
			} else {
				result.WriteString(escapeRune(c))
			}
		}
	}

	out := result.String()
	// Underscore-qualify anything that didn't start as an ident.
	if len(out) > 0 && out[0] != '_' && !unicode.IsLetter(rune(out[0])) {
		return "_" + out
	}
	return out
}

// escapeRune renders a disallowed rune as '$' followed by its unicode escape
// digits without the leading marker.
func escapeRune(c rune) string {
	switch {
	case c < 0x100:
		return fmt.Sprintf("$x%02x", c)
	case c < 0x10000:
		return fmt.Sprintf("$u%04x", c)
	default:
		return fmt.Sprintf("$U%08x", c)
	}
}

// Mangle builds a nested-name symbol from path components and an optional
// hash suffix (hash == "" omits it). Identical inputs always produce
// identical output.
func Mangle(components []string, hash string) string {
	var n strings.Builder
	// _Z begins a name sequence, N means nested.
	n.WriteString("_ZN")

	push := func(s string) {
		sani := Sanitize(s)
		n.WriteString(strconv.Itoa(len(sani)))
		n.WriteString(sani)
	}
	for _, c := range components {
		push(c)
	}
	if hash != "" {
		push(hash)
	}

	n.WriteByte('E')
	return n.String()
}

// ExportedName mangles a path with its symbol hash attached.
func ExportedName(path []string, hash string) string {
	return Mangle(path, hash)
}

// extraChars is the base-62 alphabet for disambiguator suffixes.
const extraChars = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789"

// disambiguator derives three extra characters from a numeric item id.
// Paths can be completely identical for different items, e.g. two functions
// named a nested in sibling blocks, so the hash alone is not enough.
func disambiguator(id uint64) string {
	n := uint64(len(extraChars))
	var b [3]byte
	for i := range b {
		b[i] = extraChars[id%n]
		id /= n
	}
	return string(b[:])
}
