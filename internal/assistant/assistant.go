// Package assistant connects the editor, the panel and the remote model. It
// keeps the current file snapshot, turns panel messages into model requests
// and applies confirmed suggestions to the editor.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"

	"github.com/sokinpui/nexus/internal/gemini"
	"github.com/sokinpui/nexus/internal/protocol"
	"github.com/sokinpui/nexus/internal/snapshot"
	"github.com/sokinpui/nexus/model"
)

const (
	choiceApply  = "Apply Changes"
	choiceCancel = "Cancel"
)

// Editor is the host editor as seen by the assistant.
type Editor interface {
	// ActiveDocument reads the focused document. It returns nil when the
	// focused window does not hold a document.
	ActiveDocument() (*snapshot.EditorState, error)
	// Document reads the given document. It returns nil when it is no longer open.
	Document(doc model.DocumentID) (*snapshot.EditorState, error)
	// Confirm shows a modal prompt and returns the chosen label, or "" when dismissed.
	Confirm(message string, choices ...string) (string, error)
	// ReplaceAll replaces the whole text of the document as one undoable edit.
	ReplaceAll(doc model.DocumentID, content string) error
	// Write saves the document to disk.
	Write(doc model.DocumentID) error
	// Notify shows a message to the user.
	Notify(level model.Level, message string)
}

// Panel receives the messages the assistant emits for display.
type Panel interface {
	Post(msg model.Outbound)
}

// KeySource provides the API key. It is asked on every request.
type KeySource interface {
	APIKey() string
}

// Options tunes an Assistant.
type Options struct {
	// WriteOnApply saves the document after a suggestion is applied.
	WriteOnApply bool
	// ReplyTTL is how long a reply can still be applied.
	ReplyTTL time.Duration
	// MaxReplies bounds the number of applicable replies kept.
	MaxReplies int
}

// Assistant is the core component behind the panel.
type Assistant struct {
	editor    Editor
	panel     Panel
	generator gemini.Generator
	keys      KeySource
	opts      Options

	// current is the latest snapshot; every update replaces it.
	mu       sync.Mutex
	current  *model.FileSnapshot
	revision uint64

	// origins maps reply IDs to the snapshot their prompt was built from.
	origins   *ttlcache.Cache[string, model.FileSnapshot]
	closeOnce sync.Once
}

// New creates an Assistant.
func New(editor Editor, panel Panel, generator gemini.Generator, keys KeySource, opts Options) *Assistant {
	if opts.ReplyTTL <= 0 {
		opts.ReplyTTL = time.Hour
	}
	if opts.MaxReplies <= 0 {
		opts.MaxReplies = 64
	}
	origins := ttlcache.New[string, model.FileSnapshot](
		ttlcache.WithTTL[string, model.FileSnapshot](opts.ReplyTTL),
		ttlcache.WithCapacity[string, model.FileSnapshot](uint64(opts.MaxReplies)),
		ttlcache.WithDisableTouchOnHit[string, model.FileSnapshot](),
	)
	go origins.Start()
	return &Assistant{
		editor:    editor,
		panel:     panel,
		generator: generator,
		keys:      keys,
		opts:      opts,
		origins:   origins,
	}
}

// Close stops the reply expiration loop.
func (a *Assistant) Close() {
	a.closeOnce.Do(a.origins.Stop)
}

// Current returns a copy of the current snapshot, or nil if there is none.
func (a *Assistant) Current() *model.FileSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return nil
	}
	snap := *a.current
	return &snap
}

func (a *Assistant) setCurrent(snap model.FileSnapshot) model.FileSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.revision++
	snap.ID = a.revision
	a.current = &snap
	return snap
}

// Refresh captures the active document. When the editor has no document in
// focus the previous snapshot stays current and snapshot.ErrNoDocument is returned.
func (a *Assistant) Refresh() (*model.FileSnapshot, error) {
	return a.capture(nil, model.CmdUpdateFileContext)
}

// Select captures the active document with the given line range as selection.
func (a *Assistant) Select(startLine, endLine int) (*model.FileSnapshot, error) {
	return a.capture(&snapshot.LineRange{Start: startLine, End: endLine}, model.CmdUpdateFileContext)
}

// AnalyzeFile captures the active document and asks the panel to announce it.
// The range may be nil.
func (a *Assistant) AnalyzeFile(r *snapshot.LineRange) (*model.FileSnapshot, error) {
	snap, err := a.capture(r, model.CmdAnalyzeFile)
	if errors.Is(err, snapshot.ErrNoDocument) {
		a.notify(model.LevelWarning, "No active file to analyze")
	}
	return snap, err
}

func (a *Assistant) capture(r *snapshot.LineRange, cmd model.Command) (*model.FileSnapshot, error) {
	state, err := a.editor.ActiveDocument()
	if err != nil {
		slog.Warn("failed to read active document", "error", err)
		return nil, fmt.Errorf("failed to read active document: %w", err)
	}
	if state == nil {
		return nil, snapshot.ErrNoDocument
	}
	state.Selection = r

	snap, err := snapshot.Capture(state)
	if err != nil {
		return nil, err
	}
	snap = a.setCurrent(snap)
	slog.Debug("file context updated", "id", snap.ID, "path", snap.Path, "lines", snap.LineCount, "selection", snap.Selection != nil)
	a.panel.Post(model.Outbound{Command: cmd, Context: &snap})
	return &snap, nil
}

// SendFileContext sends the current snapshot to the panel. When nothing has
// been captured yet it captures the active document first.
func (a *Assistant) SendFileContext() {
	if snap := a.Current(); snap != nil {
		a.panel.Post(model.Outbound{Command: model.CmdUpdateFileContext, Context: snap})
		return
	}
	if _, err := a.Refresh(); err != nil {
		slog.Debug("no file context to send", "error", err)
	}
}

// SendMessage asks the remote model about the current snapshot. The panel is
// shown a typing indicator for the duration of the call; it is cleared on
// every return path once shown.
func (a *Assistant) SendMessage(ctx context.Context, text string) (*model.AssistantReply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	key := a.keys.APIKey()
	if key == "" {
		a.notify(model.LevelError, "Please set your Gemini API key in settings (gemini.api_key or NEXUS_API_KEY)")
		return nil, ErrMissingAPIKey
	}

	snap := a.Current()
	if snap == nil {
		a.notify(model.LevelWarning, "No active file context available")
		return nil, ErrNoActiveContext
	}

	a.panel.Post(model.Outbound{Command: model.CmdShowTyping})
	defer a.panel.Post(model.Outbound{Command: model.CmdHideTyping})

	prompt := protocol.BuildPrompt(*snap, text)
	slog.Debug("sending message", "snapshot", snap.ID, "file", snap.Name, "prompt_bytes", len(prompt))

	raw, err := a.generator.Generate(ctx, key, prompt)
	if err != nil {
		slog.Error("remote call failed", "error", err)
		a.notify(model.LevelError, fmt.Sprintf("Error connecting to Gemini API: %v", err))
		return nil, err
	}

	parsed := protocol.ParseReply(raw)
	reply := &model.AssistantReply{
		ID:               uuid.NewString(),
		SnapshotID:       snap.ID,
		Explanation:      parsed.Explanation,
		SuggestedContent: parsed.Suggestion,
	}

	out := model.Outbound{
		Command: model.CmdDisplayResponse,
		Text:    reply.Explanation,
		ReplyID: reply.ID,
	}
	if reply.HasSuggestion() {
		a.origins.Set(reply.ID, *snap, ttlcache.DefaultTTL)
		out.HasDiff = true
		out.Diff = *reply.SuggestedContent
	}
	slog.Debug("reply received", "reply", reply.ID, "has_diff", out.HasDiff)
	a.panel.Post(out)
	return reply, nil
}

// Apply replaces the text of the current document with the cleaned
// suggestion after the user confirms. It returns false without error when the
// user cancels. A non-empty replyID must name a reply whose file has not
// changed since it was generated.
func (a *Assistant) Apply(changes, replyID string) (bool, error) {
	cur := a.Current()
	if cur == nil {
		a.notify(model.LevelError, "No active file context available")
		return false, ErrNoActiveContext
	}

	live, err := a.editor.Document(cur.Document)
	if err != nil || live == nil {
		a.notify(model.LevelError, "No active editor found")
		if err == nil {
			err = fmt.Errorf("%s is no longer open", cur.Name)
		}
		return false, fmt.Errorf("%w: %v", ErrNoActiveContext, err)
	}

	if replyID != "" {
		if err := a.checkFresh(replyID, live); err != nil {
			a.notify(model.LevelWarning, fmt.Sprintf("%s changed since this suggestion was generated. Ask again for a fresh one.", cur.Name))
			return false, err
		}
	}

	content := protocol.Clean(changes)

	choice, err := a.editor.Confirm(fmt.Sprintf("Apply changes to %s?", cur.Name), choiceApply, choiceCancel)
	if err != nil {
		applyErr := &ApplyError{File: cur.Name, Err: err}
		a.notify(model.LevelError, fmt.Sprintf("Failed to apply changes: %v", err))
		return false, applyErr
	}
	if choice != choiceApply {
		slog.Debug("apply cancelled", "file", cur.Name)
		return false, nil
	}

	if err := a.editor.ReplaceAll(cur.Document, content); err != nil {
		slog.Error("apply failed", "file", cur.Path, "error", err)
		a.notify(model.LevelError, fmt.Sprintf("Failed to apply changes: %v", err))
		return false, &ApplyError{File: cur.Name, Err: err}
	}

	if a.opts.WriteOnApply {
		if err := a.editor.Write(cur.Document); err != nil {
			slog.Warn("failed to write document", "file", cur.Path, "error", err)
			a.notify(model.LevelWarning, fmt.Sprintf("Changes applied but not saved: %v", err))
			return true, nil
		}
	}

	slog.Info("changes applied", "file", cur.Path, "reply", replyID)
	a.notify(model.LevelInfo, "Changes applied successfully")
	return true, nil
}

// checkFresh verifies that the document still holds the text the reply was
// generated from.
func (a *Assistant) checkFresh(replyID string, live *snapshot.EditorState) error {
	item := a.origins.Get(replyID)
	if item == nil {
		return fmt.Errorf("%w: reply %s is unknown or expired", ErrStaleReply, replyID)
	}
	origin := item.Value()
	if origin.Document != live.Document || origin.Path != live.Path {
		return fmt.Errorf("%w: reply was generated for %s", ErrStaleReply, origin.Path)
	}
	if origin.Content != strings.Join(live.Lines, "\n") {
		return ErrStaleReply
	}
	return nil
}

// Handle dispatches a message from the panel.
func (a *Assistant) Handle(ctx context.Context, msg model.Inbound) error {
	slog.Debug("panel message", "command", msg.Command)

	switch msg.Command {
	case model.CmdSendMessage:
		_, err := a.SendMessage(ctx, msg.Text)
		return err
	case model.CmdApplyDiff:
		_, err := a.Apply(msg.Changes, msg.ReplyID)
		return err
	case model.CmdGetFileContext:
		a.SendFileContext()
		return nil
	default:
		return fmt.Errorf("unknown panel command %q", msg.Command)
	}
}

func (a *Assistant) notify(level model.Level, message string) {
	a.editor.Notify(level, message)
	a.panel.Post(model.Outbound{Command: model.CmdNotify, Level: level, Text: message})
}
