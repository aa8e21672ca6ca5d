// Package nvim binds the assistant to a running Neovim instance over its
// msgpack-RPC socket.
package nvim

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/neovim/go-client/nvim"

	"github.com/sokinpui/nexus/internal/snapshot"
	"github.com/sokinpui/nexus/model"
)

const (
	eventMethod = "nexus_event"
	notifyTitle = "Nexus"
)

// ErrNoAddress is returned when no Neovim listen address is known.
var ErrNoAddress = errors.New("no Neovim address: pass --listen or run inside :terminal")

// readBufferLua returns the state of a buffer, or nil when it does not hold
// a file (terminal, help, quickfix and other special buffers). Buffer 0 means
// the current window, falling back to the previous window so that a panel
// running in :terminal sees the file next to it.
const readBufferLua = `
local buf = ...
local function usable(b)
  return b > 0 and vim.api.nvim_buf_is_valid(b) and vim.api.nvim_buf_is_loaded(b) and vim.bo[b].buftype == ''
end
if buf == 0 then
  buf = vim.api.nvim_get_current_buf()
  if not usable(buf) then buf = vim.fn.winbufnr(vim.fn.winnr('#')) end
end
if not usable(buf) then return nil end
return {
  buffer = buf,
  path = vim.api.nvim_buf_get_name(buf),
  filetype = vim.bo[buf].filetype,
  lines = vim.api.nvim_buf_get_lines(buf, 0, -1, false),
}
`

const writeBufferLua = `
local buf = ...
vim.api.nvim_buf_call(buf, function() vim.cmd('silent write') end)
`

const notifyLua = `
local msg, level, title = ...
vim.schedule(function() vim.notify(msg, level, { title = title }) end)
`

// Manager handles the connection and interaction with a Neovim instance.
type Manager struct {
	nvim    *nvim.Nvim
	address string
	events  *eventQueue
	watched bool
}

// bufferState mirrors the table returned by readBufferLua.
type bufferState struct {
	Buffer   int      `msgpack:"buffer"`
	Path     string   `msgpack:"path"`
	Filetype string   `msgpack:"filetype"`
	Lines    []string `msgpack:"lines"`
}

// Dial connects to the Neovim instance listening on address.
func Dial(address string) (*Manager, error) {
	if address == "" {
		return nil, ErrNoAddress
	}
	v, err := nvim.Dial(address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nvim at %s: %w", address, err)
	}
	slog.Debug("connected to nvim", "address", address, "channel", v.ChannelID())
	return newManager(v, address), nil
}

func newManager(v *nvim.Nvim, address string) *Manager {
	return &Manager{nvim: v, address: address, events: newEventQueue()}
}

// Close removes the installed commands and disconnects from Neovim.
func (m *Manager) Close() {
	if m.nvim == nil {
		return
	}
	if m.watched {
		if err := m.nvim.ExecLua(unwatchLua, nil); err != nil {
			slog.Debug("failed to remove nvim hooks", "error", err)
		}
	}
	if err := m.nvim.Close(); err != nil {
		slog.Debug("failed to close nvim connection", "error", err)
	}
}

// ActiveDocument reads the buffer of the current window, or of the previous
// window when the current one holds no file. It returns nil when neither does.
func (m *Manager) ActiveDocument() (*snapshot.EditorState, error) {
	return m.readBuffer(0)
}

// Document reads the given buffer. It returns nil when the buffer has been
// wiped or unloaded.
func (m *Manager) Document(doc model.DocumentID) (*snapshot.EditorState, error) {
	if doc <= 0 {
		return nil, nil
	}
	return m.readBuffer(int(doc))
}

func (m *Manager) readBuffer(buf int) (*snapshot.EditorState, error) {
	var state *bufferState
	if err := m.nvim.ExecLua(readBufferLua, &state, buf); err != nil {
		return nil, fmt.Errorf("failed to read buffer: %w", err)
	}
	if state == nil {
		return nil, nil
	}
	return &snapshot.EditorState{
		Document: model.DocumentID(state.Buffer),
		Path:     state.Path,
		Language: state.Filetype,
		Lines:    state.Lines,
	}, nil
}

// Confirm shows Neovim's confirm() dialog. The last choice is the default.
// It returns "" when the dialog is dismissed.
func (m *Manager) Confirm(message string, choices ...string) (string, error) {
	var n int
	if err := m.nvim.Call("confirm", &n, message, confirmButtons(choices), len(choices), "Warning"); err != nil {
		return "", fmt.Errorf("confirm dialog failed: %w", err)
	}
	return choiceLabel(choices, n), nil
}

// ReplaceAll replaces every line of the buffer in a single call, which
// Neovim records as one undo step.
func (m *Manager) ReplaceAll(doc model.DocumentID, content string) error {
	valid, err := m.nvim.IsBufferValid(nvim.Buffer(doc))
	if err != nil {
		return err
	}
	if !valid {
		return fmt.Errorf("buffer %d no longer exists", doc)
	}
	return m.nvim.SetBufferLines(nvim.Buffer(doc), 0, -1, true, toLines(content))
}

// Write saves the buffer to its file.
func (m *Manager) Write(doc model.DocumentID) error {
	return m.nvim.ExecLua(writeBufferLua, nil, int(doc))
}

// Notify shows a message through vim.notify. Failures are only logged.
func (m *Manager) Notify(level model.Level, message string) {
	if err := m.nvim.ExecLua(notifyLua, nil, message, logLevel(level), notifyTitle); err != nil {
		slog.Warn("failed to notify nvim", "message", message, "error", err)
	}
}

// confirmButtons renders choices in confirm()'s button syntax, with each
// first letter as accelerator.
func confirmButtons(choices []string) string {
	buttons := make([]string, len(choices))
	for i, c := range choices {
		buttons[i] = "&" + c
	}
	return strings.Join(buttons, "\n")
}

// choiceLabel maps confirm()'s 1-based result to its label.
func choiceLabel(choices []string, n int) string {
	if n < 1 || n > len(choices) {
		return ""
	}
	return choices[n-1]
}

func toLines(content string) [][]byte {
	lines := strings.Split(content, "\n")
	out := make([][]byte, len(lines))
	for i, l := range lines {
		out[i] = []byte(l)
	}
	return out
}

// logLevel maps a level to vim.log.levels.
func logLevel(level model.Level) int {
	switch level {
	case model.LevelError:
		return 4
	case model.LevelWarning:
		return 3
	default:
		return 2
	}
}
