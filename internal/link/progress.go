package link

import "time"

// Stage describes a high-level linking phase.
type Stage string

const (
	// StageRlib is the rlib archive assembly stage.
	StageRlib Stage = "rlib"
	// StageStaticlib is the static library assembly stage.
	StageStaticlib Stage = "staticlib"
	// StageLTO is the link-time-optimization archive rewrite stage.
	StageLTO Stage = "lto"
	// StageNative is the native linker invocation stage.
	StageNative Stage = "link"
	// StageDsym is the debug symbol bundling stage.
	StageDsym Stage = "dsym"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusWorking indicates the stage is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the stage is done.
	StatusDone Status = "done"
	// StatusError indicates the stage encountered an error.
	StatusError Status = "error"
)

// Event reports progress for an output artifact (or for the overall
// link when Artifact is empty).
type Event struct {
	Artifact string
	Stage    Stage
	Status   Status
	Err      error
	Elapsed  time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}
