// Package tui is the side panel: a chat view over the current file that runs
// in a terminal next to the editor.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/sokinpui/nexus/internal/markdown"
	"github.com/sokinpui/nexus/internal/protocol"
	"github.com/sokinpui/nexus/model"
)

// HandleFunc delivers a panel message to the assistant.
type HandleFunc func(ctx context.Context, msg model.Inbound) error

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// --- Messages ---

type outboundMsg struct{ model.Outbound }

type handledMsg struct {
	command model.Command
	err     error
}

type copiedMsg struct {
	what string
	err  error
}

// --- Model ---

type role int

const (
	roleUser role = iota
	roleAssistant
	roleSystem
)

type entry struct {
	role    role
	text    string
	diff    string
	replyID string
	level   model.Level
}

type suggestion struct {
	replyID string
	diff    string
}

// Model is the bubbletea model of the panel.
type Model struct {
	ctx    context.Context
	handle HandleFunc

	spinner  spinner.Model
	input    textarea.Model
	viewport viewport.Model
	renderer *glamour.TermRenderer

	file     *model.FileSnapshot
	entries  []entry
	last     *suggestion
	busy     bool
	applying bool

	width  int
	height int
}

// New creates the panel model. handle is called off the UI goroutine.
func New(ctx context.Context, handle HandleFunc) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	ta := textarea.New()
	ta.Placeholder = "Ask about this file..."
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	vp := viewport.New(0, 0)

	return Model{
		ctx:      ctx,
		handle:   handle,
		spinner:  s,
		input:    ta,
		viewport: vp,
	}
}

// Init asks for the current file context.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick, m.send(model.Inbound{Command: model.CmdGetFileContext}))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case outboundMsg:
		m.receive(msg.Outbound)
		return m, nil

	case handledMsg:
		if msg.err != nil {
			slog.Debug("panel command failed", "command", msg.command, "error", msg.err)
		}
		switch msg.command {
		case model.CmdSendMessage:
			m.busy = false
		case model.CmdApplyDiff:
			m.applying = false
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.addEntry(entry{role: roleSystem, level: model.LevelError, text: fmt.Sprintf("Failed to copy: %v", msg.err)})
		} else {
			m.addEntry(entry{role: roleSystem, level: model.LevelInfo, text: fmt.Sprintf("Copied %s to clipboard", msg.what)})
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "enter":
		return m.submit()

	case "ctrl+a":
		if m.last == nil {
			m.addEntry(entry{role: roleSystem, level: model.LevelWarning, text: "No suggested changes to apply"})
			return m, nil
		}
		if m.applying {
			return m, nil
		}
		m.applying = true
		return m, m.send(model.Inbound{Command: model.CmdApplyDiff, Changes: m.last.diff, ReplyID: m.last.replyID})

	case "ctrl+y":
		return m, m.copyLast()

	case "ctrl+r":
		return m, m.send(model.Inbound{Command: model.CmdGetFileContext})

	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the input as a message. It does nothing while a request is
// in flight.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.busy {
		return m, nil
	}
	m.input.Reset()
	m.addEntry(entry{role: roleUser, text: text})

	if m.file == nil {
		m.addEntry(entry{role: roleSystem, level: model.LevelWarning, text: "Please open a file first"})
		return m, nil
	}

	m.busy = true
	return m, tea.Batch(m.spinner.Tick, m.send(model.Inbound{Command: model.CmdSendMessage, Text: text}))
}

func (m *Model) receive(out model.Outbound) {
	switch out.Command {
	case model.CmdUpdateFileContext:
		m.file = out.Context
	case model.CmdAnalyzeFile:
		m.file = out.Context
		if out.Context != nil {
			m.addEntry(entry{role: roleSystem, level: model.LevelInfo, text: fmt.Sprintf("Ready to analyze %s. What would you like to know?", out.Context.Name)})
		}
	case model.CmdShowTyping:
		m.busy = true
	case model.CmdHideTyping:
		m.busy = false
	case model.CmdDisplayResponse:
		e := entry{role: roleAssistant, text: out.Text}
		if out.HasDiff {
			e.diff = out.Diff
			e.replyID = out.ReplyID
			m.last = &suggestion{replyID: out.ReplyID, diff: out.Diff}
		}
		m.addEntry(e)
	case model.CmdNotify:
		m.addEntry(entry{role: roleSystem, level: out.Level, text: out.Text})
	default:
		slog.Debug("unknown panel message", "command", out.Command)
	}
}

func (m Model) send(msg model.Inbound) tea.Cmd {
	ctx, handle := m.ctx, m.handle
	return func() tea.Msg {
		if handle == nil {
			return nil
		}
		return handledMsg{command: msg.Command, err: handle(ctx, msg)}
	}
}

// copyLast copies the last suggestion, or failing that the first code block
// of the last reply.
func (m Model) copyLast() tea.Cmd {
	text, what := m.copyTarget()
	if text == "" {
		return func() tea.Msg { return copiedMsg{err: fmt.Errorf("nothing to copy")} }
	}
	return func() tea.Msg {
		return copiedMsg{what: what, err: writeClipboard(text)}
	}
}

func (m Model) copyTarget() (string, string) {
	if m.last != nil {
		return protocol.Clean(m.last.diff), "suggested changes"
	}
	var language string
	if m.file != nil {
		language = m.file.Language
	}
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].role != roleAssistant {
			continue
		}
		if code, ok := markdown.BlockFor(m.entries[i].text, language); ok {
			return code, "code block"
		}
		break
	}
	return "", ""
}

func (m *Model) addEntry(e entry) {
	m.entries = append(m.entries, e)
	m.refresh()
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.input.SetWidth(max(width-2, 10))
	m.viewport.Width = width
	m.viewport.Height = max(height-chromeHeight, 1)

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		slog.Warn("failed to create markdown renderer", "error", err)
		r = nil
	}
	m.renderer = r
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderEntries())
	m.viewport.GotoBottom()
}
