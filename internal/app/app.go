// Package app wires the editor, the remote model and the panel together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sokinpui/nexus/cli"
	"github.com/sokinpui/nexus/internal/assistant"
	"github.com/sokinpui/nexus/internal/config"
	"github.com/sokinpui/nexus/internal/logging"
	"github.com/sokinpui/nexus/internal/nvim"
	"github.com/sokinpui/nexus/internal/snapshot"
	"github.com/sokinpui/nexus/internal/source"
	"github.com/sokinpui/nexus/internal/tui"
	"github.com/sokinpui/nexus/internal/ui"
	"github.com/sokinpui/nexus/model"
)

// App orchestrates the entire application logic.
type App struct {
	opts   *cli.Options
	cfg    *config.Config
	source *source.Provider
}

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

func (e *DetailedError) Unwrap() error { return e.Err }

// New loads the configuration and applies the flag overrides.
func New(opts *cli.Options) (*App, error) {
	if err := config.LoadEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	applyFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &App{
		opts:   opts,
		cfg:    cfg,
		source: source.New(opts.Clipboard),
	}, nil
}

func applyFlags(cfg *config.Config, opts *cli.Options) {
	if opts.Listen != "" {
		cfg.Editor.Address = opts.Listen
	}
	if opts.Write {
		cfg.Editor.WriteOnApply = true
	}
	if opts.Verbose {
		cfg.Log.Verbose = true
	}
	if opts.LogFile != "" {
		cfg.Log.File = opts.LogFile
	}
}

// Run connects to Neovim and runs the panel, or a one-shot request when a
// message was given.
func (a *App) Run() (err error) {
	// Centralized panic recovery to provide stack traces for unexpected errors.
	defer func() {
		if r := recover(); r != nil {
			err = &DetailedError{
				Err:   fmt.Errorf("internal panic: %v", r),
				Stack: debug.Stack(),
			}
		}
	}()

	logFile, err := logging.Setup(logging.Options{
		File:       a.cfg.LogFile(),
		Verbose:    a.cfg.Log.Verbose,
		MaxSizeMB:  a.cfg.Log.MaxSizeMB,
		MaxBackups: a.cfg.Log.MaxBackups,
	})
	if err != nil {
		return err
	}
	defer logFile.Close()

	message, err := a.source.Message(a.opts.Message)
	if err != nil {
		return err
	}

	editor, err := nvim.Dial(a.cfg.EditorAddress())
	if err != nil {
		return err
	}
	defer editor.Close()

	slog.Info("nexus started", "api", a.cfg.Gemini.API, "model", a.cfg.Model(), "headless", message != "")
	if message != "" {
		return a.runOnce(editor, message)
	}
	return a.runPanel(editor)
}

func (a *App) newAssistant(editor assistant.Editor, panel assistant.Panel) *assistant.Assistant {
	return assistant.New(editor, panel, a.cfg.NewGenerator(), a.cfg, assistant.Options{
		WriteOnApply: a.cfg.Editor.WriteOnApply,
		ReplyTTL:     a.cfg.ReplyTTL(),
		MaxReplies:   a.cfg.Replies.MaxEntries,
	})
}

// runPanel runs the side panel until the user quits or Neovim exits.
func (a *App) runPanel(editor *nvim.Manager) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bridge := &tui.Bridge{}
	asst := a.newAssistant(editor, bridge)
	defer asst.Close()

	p := tea.NewProgram(tui.New(ctx, asst.Handle), tea.WithAltScreen(), tea.WithContext(ctx))
	bridge.SetProgram(p)

	go func() {
		if err := editor.Watch(ctx, func(ev nvim.Event) { dispatch(asst, ev, bridge.Quit) }); err != nil {
			slog.Error("editor events stopped", "error", err)
		}
	}()
	if a.opts.Analyze {
		go asst.AnalyzeFile(nil)
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running panel: %w", err)
	}
	return nil
}

// runOnce sends a single message and offers to apply the suggestion.
func (a *App) runOnce(editor *nvim.Manager, message string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	asst := a.newAssistant(editor, ui.NewPrinter())
	defer asst.Close()

	var err error
	if a.opts.Analyze {
		_, err = asst.AnalyzeFile(nil)
	} else {
		_, err = asst.Refresh()
	}
	if errors.Is(err, snapshot.ErrNoDocument) {
		return fmt.Errorf("no file is open in Neovim")
	}
	if err != nil {
		return err
	}

	reply, err := asst.SendMessage(ctx, message)
	if err != nil || reply == nil {
		return err
	}
	if !reply.HasSuggestion() || a.opts.NoApply {
		return nil
	}

	applied, err := asst.Apply(*reply.SuggestedContent, reply.ID)
	if err != nil {
		return err
	}
	if !applied {
		ui.Warning("Changes were not applied.")
	}
	return nil
}

// eventTarget is the part of the assistant driven by editor events.
type eventTarget interface {
	Refresh() (*model.FileSnapshot, error)
	Select(startLine, endLine int) (*model.FileSnapshot, error)
	AnalyzeFile(r *snapshot.LineRange) (*model.FileSnapshot, error)
}

// dispatch routes an editor event. quit is called when Neovim exits.
func dispatch(t eventTarget, ev nvim.Event, quit func()) {
	var err error
	switch ev.Kind {
	case nvim.EventEnter, nvim.EventChanged:
		_, err = t.Refresh()
	case nvim.EventContext:
		if ev.Range != nil {
			_, err = t.Select(ev.Range.Start, ev.Range.End)
		} else {
			_, err = t.Refresh()
		}
	case nvim.EventAnalyze:
		_, err = t.AnalyzeFile(ev.Range)
	case nvim.EventLeave:
		quit()
	default:
		slog.Debug("ignoring editor event", "kind", ev.Kind)
	}
	if err != nil && !errors.Is(err, snapshot.ErrNoDocument) {
		slog.Warn("failed to update file context", "event", ev.Kind, "error", err)
	}
}
