// Package tui is the interactive front end: two page inputs with live breadcrumbs, and a copy
// shortcut.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/toothbrush/confluence-copier/copier"
	"github.com/toothbrush/confluence-copier/preview"
)

// InputSink is told about every change to either input.  *preview.Coordinator is one.
type InputSink interface {
	InputChanged(side preview.Side, text string)
}

// Copier runs a copy.  *copier.Copier is one.
type Copier interface {
	Copy(ctx context.Context, from, to string) (*copier.Result, error)
}

type Config struct {
	Inputs  InputSink
	Display *Display
	Copier  Copier

	// Context for copies; defaults to context.Background().
	Context context.Context

	// Prefill the inputs, e.g. from the command line.
	From, To string
}

const (
	statusCopying   = "Copying content..."
	defaultWidth    = 80
	inputCharLimit  = 512
	minLabelWidth   = 20
	inputPromptFrom = "Copy from: "
	inputPromptTo   = "Copy to:   "
)

type copyDoneMsg struct {
	result *copier.Result
	err    error
}

type model struct {
	config Config

	inputs [2]textinput.Model
	focus  preview.Side
	paths  [2]preview.PathView
	status preview.Status

	copying bool
	width   int
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	if config.Context == nil {
		config.Context = context.Background()
	}

	m := &model{
		config: config,
		width:  defaultWidth,
		status: preview.Status{Kind: preview.StatusReady, Text: preview.MessageReady},
	}

	for _, side := range []preview.Side{preview.Source, preview.Destination} {
		in := textinput.New()
		in.Placeholder = "page ID or URL"
		in.CharLimit = inputCharLimit
		in.Width = defaultWidth - len(inputPromptFrom) - 2
		if side == preview.Source {
			in.Prompt = inputPromptFrom
		} else {
			in.Prompt = inputPromptTo
		}
		m.inputs[side] = in
		m.paths[side] = preview.PathView{Side: side, State: preview.Unset, Text: preview.MessageUnset}
	}
	m.inputs[preview.Source].Focus()

	m.inputs[preview.Source].SetValue(config.From)
	m.inputs[preview.Destination].SetValue(config.To)

	return m
}

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.waitForDisplay()}
	// prefilled values count as typed
	for side, in := range m.inputs {
		if in.Value() != "" {
			m.notify(preview.Side(side))
		}
	}
	return tea.Batch(cmds...)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		for i := range m.inputs {
			m.inputs[i].Width = max(minLabelWidth, msg.Width-len(inputPromptFrom)-2)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "shift+tab", "up", "down", "enter":
			m.toggleFocus()
			return m, nil
		case "ctrl+s":
			return m, m.startCopy()
		}

		side := m.focus
		before := m.inputs[side].Value()
		var cmd tea.Cmd
		m.inputs[side], cmd = m.inputs[side].Update(msg)
		if m.inputs[side].Value() != before {
			m.notify(side)
		}
		return m, cmd

	case pathMsg:
		m.paths[msg.Side] = preview.PathView(msg)
		return m, m.waitForDisplay()

	case statusMsg:
		if !m.copying {
			m.status = preview.Status(msg)
		}
		return m, m.waitForDisplay()

	case copyDoneMsg:
		m.copying = false
		m.status = copyStatus(msg)
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *model) toggleFocus() {
	m.inputs[m.focus].Blur()
	if m.focus == preview.Source {
		m.focus = preview.Destination
	} else {
		m.focus = preview.Source
	}
	m.inputs[m.focus].Focus()
}

func (m *model) notify(side preview.Side) {
	if m.config.Inputs != nil {
		m.config.Inputs.InputChanged(side, m.inputs[side].Value())
	}
}

func (m *model) waitForDisplay() tea.Cmd {
	if m.config.Display == nil {
		return nil
	}
	return m.config.Display.Wait()
}

// startCopy returns nil while a copy is already running.
func (m *model) startCopy() tea.Cmd {
	if m.copying || m.config.Copier == nil {
		return nil
	}
	m.copying = true
	m.status = preview.Status{Kind: preview.StatusInfo, Text: statusCopying}

	ctx := m.config.Context
	c := m.config.Copier
	from := m.inputs[preview.Source].Value()
	to := m.inputs[preview.Destination].Value()
	return func() tea.Msg {
		result, err := c.Copy(ctx, from, to)
		return copyDoneMsg{result: result, err: err}
	}
}

func copyStatus(done copyDoneMsg) preview.Status {
	if done.err != nil {
		return preview.Status{Kind: preview.StatusError, Text: fmt.Sprintf("Error: %v", done.err)}
	}
	if done.result == nil {
		return preview.Status{Kind: preview.StatusError, Text: "Error: copy returned nothing"}
	}

	text := done.result.Message()
	switch {
	case done.result.HistoryOpened:
		text += " Version history opened in browser."
	case done.result.BrowserErr != nil:
		text += " Couldn't open version history: " + done.result.BrowserErr.Error()
	}
	return preview.Status{Kind: preview.StatusSuccess, Text: text}
}
