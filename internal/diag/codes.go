package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// Configuration
	CfgInfo                Code = 7000
	CfgBadRelocationModel  Code = 7001
	CfgBadCodeModel        Code = 7002
	CfgArtifactUnsupported Code = 7003
	CfgBadTargetSpec       Code = 7004
	CfgMissingCrateName    Code = 7005

	// I/O
	IOInfo            Code = 8000
	IOWriteFailed     Code = 8001
	IOCopyFailed      Code = 8002
	IORemoveFailed    Code = 8003
	IONotWriteable    Code = 8004
	IOMissingRlib     Code = 8005
	IOCompressFailed  Code = 8006
	IOLibraryNotFound Code = 8007

	// External tools
	ToolInfo        Code = 9000
	ToolFailed      Code = 9001
	ToolSpawnFailed Code = 9002

	// Static library notes
	LinkNativeArtifacts Code = 9100

	// Internal invariant violations
	InternalBug Code = 9900
)

func (c Code) String() string {
	return fmt.Sprintf("E%04d", uint16(c))
}
