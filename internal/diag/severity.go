package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevNote is for informational follow-up lines.
	SevNote Severity = iota
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
	// SevFatal ends the compilation as soon as it is reported.
	SevFatal
	// SevBug marks an internal invariant violation, not a user-facing problem.
	SevBug
)

func (s Severity) String() string {
	switch s {
	case SevNote:
		return "note"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	case SevFatal:
		return "fatal"
	case SevBug:
		return "internal error"
	}
	return "unknown"
}
