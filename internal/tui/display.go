package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/toothbrush/confluence-copier/preview"
)

type pathMsg preview.PathView

type statusMsg preview.Status

// Display turns coordinator output into tea messages.  The model keeps one Wait command
// outstanding, so messages are picked up one at a time in the order they were shown.
type Display struct {
	msgs chan tea.Msg
	done chan struct{}
}

func NewDisplay() *Display {
	return &Display{
		msgs: make(chan tea.Msg, 32),
		done: make(chan struct{}),
	}
}

func (d *Display) ShowPath(view preview.PathView) {
	d.post(pathMsg(view))
}

func (d *Display) ShowStatus(status preview.Status) {
	d.post(statusMsg(status))
}

func (d *Display) post(msg tea.Msg) {
	if d.closed() {
		return
	}
	select {
	case d.msgs <- msg:
	case <-d.done:
	}
}

// Wait returns a command that delivers the next message.
func (d *Display) Wait() tea.Cmd {
	return func() tea.Msg {
		if d.closed() {
			return nil
		}
		select {
		case msg := <-d.msgs:
			return msg
		case <-d.done:
			return nil
		}
	}
}

// Close unblocks anyone still posting once the program is gone.
func (d *Display) Close() {
	close(d.done)
}

func (d *Display) closed() bool {
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}
