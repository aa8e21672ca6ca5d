package nvim

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sokinpui/nexus/internal/snapshot"
)

// EventKind is the kind of editor event.
type EventKind string

const (
	// EventEnter is sent when a buffer is entered.
	EventEnter EventKind = "enter"
	// EventChanged is sent when the text of the current buffer changes.
	EventChanged EventKind = "changed"
	// EventContext is sent by :NexusContext.
	EventContext EventKind = "context"
	// EventAnalyze is sent by :NexusAnalyze.
	EventAnalyze EventKind = "analyze"
	// EventLeave is sent when Neovim exits.
	EventLeave EventKind = "leave"
)

// Event is a notification from the editor. Range is set when a command was
// given a line range.
type Event struct {
	Kind  EventKind
	Range *snapshot.LineRange
}

const watchLua = `
local ch, method = ...
local group = vim.api.nvim_create_augroup('nexus', { clear = true })
local function emit(kind, line1, line2)
  vim.rpcnotify(ch, method, kind, line1 or 0, line2 or 0)
end
vim.api.nvim_create_autocmd('BufEnter', { group = group, callback = function() emit('enter') end })
vim.api.nvim_create_autocmd({ 'TextChanged', 'TextChangedI' }, { group = group, callback = function() emit('changed') end })
vim.api.nvim_create_autocmd('VimLeavePre', { group = group, callback = function() emit('leave') end })
for name, kind in pairs({ NexusContext = 'context', NexusAnalyze = 'analyze' }) do
  vim.api.nvim_create_user_command(name, function(o)
    if o.range > 0 then emit(kind, o.line1, o.line2) else emit(kind) end
  end, { range = true, force = true })
end
`

const unwatchLua = `
pcall(vim.api.nvim_del_augroup_by_name, 'nexus')
pcall(vim.api.nvim_del_user_command, 'NexusContext')
pcall(vim.api.nvim_del_user_command, 'NexusAnalyze')
`

// Watch installs the editor hooks and calls fn for every event, in the order
// Neovim sent them, until ctx is done. fn may call back into the Manager.
func (m *Manager) Watch(ctx context.Context, fn func(Event)) error {
	if err := m.nvim.RegisterHandler(eventMethod, m.events.handle); err != nil {
		return fmt.Errorf("failed to register event handler: %w", err)
	}
	if err := m.nvim.ExecLua(watchLua, nil, m.nvim.ChannelID(), eventMethod); err != nil {
		return fmt.Errorf("failed to install nvim hooks: %w", err)
	}
	m.watched = true

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-m.events.ready:
			for _, ev := range m.events.drain() {
				slog.Debug("nvim event", "kind", ev.Kind, "range", ev.Range)
				fn(ev)
			}
		}
	}
}

// eventQueue buffers events between the RPC read loop and the consumer. The
// handler must not block: the consumer issues RPC calls whose replies are
// read by the same loop that runs the handler.
type eventQueue struct {
	mu    sync.Mutex
	queue []Event
	ready chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{ready: make(chan struct{}, 1)}
}

func (q *eventQueue) handle(kind string, line1, line2 int) {
	ev := Event{Kind: EventKind(kind)}
	if line1 > 0 || line2 > 0 {
		ev.Range = &snapshot.LineRange{Start: line1, End: line2}
	}
	q.push(ev)
}

func (q *eventQueue) push(ev Event) {
	q.mu.Lock()
	q.queue = coalesce(q.queue, ev)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *eventQueue) drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	events := q.queue
	q.queue = nil
	return events
}

// coalesce appends ev unless it is a text change already covered by the
// pending event before it.
func coalesce(queue []Event, ev Event) []Event {
	if ev.Kind == EventChanged && len(queue) > 0 {
		switch queue[len(queue)-1].Kind {
		case EventChanged, EventEnter:
			return queue
		}
	}
	return append(queue, ev)
}
