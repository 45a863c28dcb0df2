package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/toothbrush/confluence-copier/preview"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	helperStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#a3be8c"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8ecae6"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffb347"))
	pathIndent   = lipgloss.NewStyle().PaddingLeft(len(inputPromptFrom))
)

const helpText = "tab switch field • ctrl+s copy • esc quit"

func (m *model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Confluence Copier"))
	b.WriteString("\n\n")

	for _, side := range []preview.Side{preview.Source, preview.Destination} {
		b.WriteString(m.inputs[side].View())
		b.WriteString("\n")
		b.WriteString(pathIndent.Render(m.renderPath(m.paths[side])))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(helperStyle.Render(helpText))
	b.WriteString("\n")

	return b.String()
}

func (m *model) renderPath(view preview.PathView) string {
	text := m.fit(view.Text, len(inputPromptFrom))
	switch view.State {
	case preview.Resolved:
		return successStyle.Render(text)
	case preview.Invalid:
		return errorStyle.Render(text)
	default:
		return helperStyle.Render(text)
	}
}

func (m *model) renderStatus() string {
	text := m.fit(m.status.Text, 0)
	switch m.status.Kind {
	case preview.StatusSuccess:
		return successStyle.Render(text)
	case preview.StatusWarning:
		return warningStyle.Render(text)
	case preview.StatusError:
		return errorStyle.Render(text)
	default:
		return infoStyle.Render(text)
	}
}

// fit cuts text down to the terminal width, less indent.
func (m *model) fit(text string, indent int) string {
	width := m.width - indent
	if width < minLabelWidth {
		width = minLabelWidth
	}
	return truncate.StringWithTail(text, uint(width), "…")
}
