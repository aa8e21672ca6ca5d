package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sokinpui/nexus/model"
)

// chromeHeight is the number of lines around the conversation viewport.
const chromeHeight = 5

// --- Styles ---
var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	userStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	diffStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.busy {
		b.WriteString(fmt.Sprintf("%s Thinking...", m.spinner.View()))
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(faintStyle.Render(m.viewHelp()))
	return b.String()
}

func (m Model) viewHeader() string {
	if m.file == nil {
		return faintStyle.Render("No file open")
	}
	return headerStyle.Render(m.file.Name) + " " + faintStyle.Render(describeFile(m.file))
}

func (m Model) viewHelp() string {
	help := []string{"enter send"}
	if m.last != nil {
		help = append(help, "ctrl+a apply", "ctrl+y copy")
	}
	help = append(help, "ctrl+r context", "esc quit")
	return strings.Join(help, " • ")
}

// describeFile summarises a snapshot for the header line.
func describeFile(f *model.FileSnapshot) string {
	parts := []string{f.Language, fmt.Sprintf("%d lines", f.LineCount)}
	if f.Selection != nil {
		parts = append(parts, fmt.Sprintf("selection %d-%d", f.Selection.StartLine, f.Selection.EndLine))
	}
	return strings.Join(parts, " · ")
}

func (m Model) renderEntries() string {
	if len(m.entries) == 0 {
		return faintStyle.Render("Ask a question about the open file.")
	}

	var b strings.Builder
	for i, e := range m.entries {
		if i > 0 {
			b.WriteString("\n")
		}
		switch e.role {
		case roleUser:
			b.WriteString(userStyle.Render("You: "))
			b.WriteString(e.text)
			b.WriteString("\n")
		case roleAssistant:
			b.WriteString(m.renderMarkdown(e.text))
			if e.diff != "" {
				b.WriteString(m.renderDiff(e))
				b.WriteString("\n")
			}
		case roleSystem:
			b.WriteString(levelStyle(e.level).Render(e.text))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderMarkdown(text string) string {
	if m.renderer == nil || text == "" {
		return text + "\n"
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text + "\n"
	}
	return out
}

func (m Model) renderDiff(e entry) string {
	title := headerStyle.Render("Proposed changes")
	if m.last != nil && m.last.replyID == e.replyID {
		title += faintStyle.Render("  ctrl+a to apply")
	}
	box := diffStyle
	if m.width > 4 {
		box = box.Width(m.width - 4)
	}
	return box.Render(title + "\n" + e.diff)
}

func levelStyle(level model.Level) lipgloss.Style {
	switch level {
	case model.LevelError:
		return errorStyle
	case model.LevelWarning:
		return warningStyle
	default:
		return infoStyle
	}
}
