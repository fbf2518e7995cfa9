package diag

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// FatalError ends the compilation without further checkpoints.
type FatalError struct {
	Msg string
}

func (e *FatalError) Error() string { return e.Msg }

// BugError marks a violated internal invariant. It is a programming-logic
// failure, not a user-facing diagnostic.
type BugError struct {
	Msg string
}

func (e *BugError) Error() string { return "internal error: " + e.Msg }

// IsFatal reports whether err terminates compilation (fatal or bug).
func IsFatal(err error) bool {
	var fe *FatalError
	var be *BugError
	return errors.As(err, &fe) || errors.As(err, &be)
}

// Sink collects diagnostics and renders them to a writer as they arrive.
// Recoverable problems accumulate; callers check AbortIfErrors at natural
// checkpoints instead of unwinding on the first error.
type Sink struct {
	bag      *Bag
	out      io.Writer
	colorize bool

	errColor  *color.Color
	warnColor *color.Color
	noteColor *color.Color
	bugColor  *color.Color
}

// NewSink constructs a sink writing rendered diagnostics to out.
func NewSink(out io.Writer, maxDiagnostics int, colorize bool) *Sink {
	return &Sink{
		bag:       NewBag(maxDiagnostics),
		out:       out,
		colorize:  colorize,
		errColor:  color.New(color.FgRed, color.Bold),
		warnColor: color.New(color.FgYellow, color.Bold),
		noteColor: color.New(color.FgCyan),
		bugColor:  color.New(color.FgMagenta, color.Bold),
	}
}

func (s *Sink) Bag() *Bag { return s.bag }

func (s *Sink) HasErrors() bool { return s.bag.HasErrors() }

func (s *Sink) render(sev Severity, msg string) {
	if s.out == nil {
		return
	}
	label := sev.String()
	if s.colorize {
		c := s.noteColor
		switch sev {
		case SevError, SevFatal:
			c = s.errColor
		case SevWarning:
			c = s.warnColor
		case SevBug:
			c = s.bugColor
		}
		label = c.Sprint(label)
	}
	fmt.Fprintf(s.out, "%s: %s\n", label, msg)
}

func (s *Sink) report(sev Severity, code Code, msg string) {
	s.bag.Add(Diagnostic{Severity: sev, Code: code, Message: msg})
	s.render(sev, msg)
}

// Err records a recoverable error. Compilation continues until the next
// AbortIfErrors checkpoint.
func (s *Sink) Err(code Code, format string, args ...any) {
	s.report(SevError, code, fmt.Sprintf(format, args...))
}

func (s *Sink) Warn(code Code, format string, args ...any) {
	s.report(SevWarning, code, fmt.Sprintf(format, args...))
}

func (s *Sink) Note(code Code, format string, args ...any) {
	s.report(SevNote, code, fmt.Sprintf(format, args...))
}

// Fatal records the message and returns an error the caller must propagate
// without hitting any further checkpoints.
func (s *Sink) Fatal(code Code, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	s.report(SevFatal, code, msg)
	return &FatalError{Msg: msg}
}

// Bug reports a violated internal invariant and returns the terminating error.
func (s *Sink) Bug(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	s.report(SevBug, InternalBug, msg)
	return &BugError{Msg: msg}
}

// AbortIfErrors returns a terminating error when any Err has been recorded.
func (s *Sink) AbortIfErrors() error {
	if n := s.bag.ErrorCount(); n > 0 {
		msg := "aborting due to previous error"
		if n > 1 {
			msg = fmt.Sprintf("aborting due to %d previous errors", n)
		}
		return &FatalError{Msg: msg}
	}
	return nil
}
