package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"ember/internal/crate"
	"ember/internal/link"
	"ember/internal/session"
	"ember/internal/ui"
)

type linkOutcome struct {
	outs []string
	err  error
}

// runLinkWithUI drives the link in a goroutine while a Bubble Tea model
// renders its progress events.
func runLinkWithUI(sess *session.Session, input *link.Input, kinds []crate.ArtifactKind) ([]string, error) {
	events := make(chan link.Event, 256)
	outcomeCh := make(chan linkOutcome, 1)

	artifacts := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		artifacts = append(artifacts, link.OutputPath(sess, kind, sess.Opts.CrateName))
	}

	go func() {
		d := &link.Driver{Sess: sess, Progress: link.ChannelSink{Ch: events}}
		outs, err := d.LinkBinary(input, kinds)
		outcomeCh <- linkOutcome{outs: outs, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("linking "+sess.Opts.CrateName, artifacts, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.outs, uiErr
	}
	return outcome.outs, outcome.err
}
