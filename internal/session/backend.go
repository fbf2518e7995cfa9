package session

import (
	"os/exec"
	"sync"
	"sync/atomic"
)

// Backend initialization must happen exactly once per process, before any
// codegen or link activity. It is an explicit idempotent routine rather than
// an implicit lazily-triggered one.

var backendReady atomic.Bool

var toolPaths sync.Map // prog -> resolved path or ""

// InitBackend performs one-time process-wide setup: pre-resolving the tools
// the link stage will spawn. Calling it again is a no-op.
func InitBackend(progs ...string) {
	if !backendReady.CompareAndSwap(false, true) {
		return
	}
	for _, prog := range progs {
		resolveTool(prog)
	}
}

func resolveTool(prog string) string {
	if v, ok := toolPaths.Load(prog); ok {
		return v.(string)
	}
	path, err := exec.LookPath(prog)
	if err != nil {
		path = ""
	}
	toolPaths.Store(prog, path)
	return path
}

// ToolAvailable reports whether prog resolves on PATH. Results are cached
// for the life of the process.
func ToolAvailable(prog string) bool {
	return resolveTool(prog) != ""
}
