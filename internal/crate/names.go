package crate

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FindCrateName decides the logical crate name. Precedence: explicit option,
// manifest package name, input file stem. The fallback mirrors what the
// compiler emits when nothing names the crate.
func FindCrateName(explicit, manifestName, inputPath string) string {
	if explicit != "" {
		return explicit
	}
	if manifestName != "" {
		return manifestName
	}
	if inputPath != "" {
		base := filepath.Base(inputPath)
		if stem := strings.TrimSuffix(base, filepath.Ext(base)); stem != "" && stem != "." {
			return stem
		}
	}
	return "ember-out"
}

// ValidateCrateName rejects names that cannot survive as filename stems and
// symbol-hash seeds.
func ValidateCrateName(name string) error {
	if name == "" {
		return fmt.Errorf("crate name must not be empty")
	}
	for _, c := range name {
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
			c >= '0' && c <= '9' || c == '_' || c == '-' {
			continue
		}
		return fmt.Errorf("invalid character %q in crate name %q", c, name)
	}
	return nil
}
