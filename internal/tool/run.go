// Package tool runs external programs (archiver, linker, dsymutil) as
// blocking subprocesses with captured output. These invocations are the
// dominant real-world failure mode of the link stage, so every failure
// carries the tool name, the exit status or spawn error, the full command
// line and the combined output.
package tool

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Runner executes a program and returns its combined output. The link stage
// takes a Runner so tests can observe invocations without spawning anything.
type Runner func(dir, prog string, args ...string) ([]byte, error)

// Error describes a failed tool invocation.
type Error struct {
	Tool   string
	Args   []string
	Output string
	Cause  error
	// Spawn is true when the process could not be started at all.
	Spawn bool
}

func (e *Error) Error() string {
	if e.Spawn {
		return fmt.Sprintf("could not exec `%s`: %v", e.Tool, e.Cause)
	}
	msg := fmt.Sprintf("`%s` failed: %v\ncommand: %s", e.Tool, e.Cause, CommandLine(e.Tool, e.Args))
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// CommandLine renders an invocation verbatim for diagnostics.
func CommandLine(prog string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, prog)
	for _, a := range args {
		if strings.ContainsAny(a, " \t\"'") {
			parts = append(parts, fmt.Sprintf("%q", a))
		} else {
			parts = append(parts, a)
		}
	}
	return strings.Join(parts, " ")
}

// Run executes prog in dir (or the current directory when dir is empty),
// capturing combined stdout/stderr. Non-zero exit and spawn failures come
// back as *Error.
func Run(dir, prog string, args ...string) ([]byte, error) {
	cmd := exec.Command(prog, args...) // #nosec G204 -- tool and args come from target config
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		var execErr *exec.Error
		return out, &Error{
			Tool:   prog,
			Args:   args,
			Output: string(out),
			Cause:  err,
			Spawn:  errors.As(err, &execErr),
		}
	}
	return out, nil
}

// Print writes the command line to stdout when command echoing is enabled.
func Print(enabled bool, prog string, args []string) {
	if !enabled {
		return
	}
	fmt.Fprintf(os.Stdout, "%s\n", CommandLine(prog, args))
}
