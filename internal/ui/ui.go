// Package ui prints to the terminal when nexus runs without the panel.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/sokinpui/nexus/model"
)

var (
	HeaderColor  = color.New(color.FgBlue, color.Bold)
	SuccessColor = color.New(color.FgGreen)
	WarningColor = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
	PathColor    = color.New(color.FgYellow)
	FaintColor   = color.New(color.Faint)
)

func Warning(format string, a ...interface{}) {
	WarningColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	ErrorColor.Fprintf(os.Stderr, format+"\n", a...)
}

// Printer shows assistant output on a terminal. Replies go to Out, status
// lines to Err.
type Printer struct {
	mu  sync.Mutex
	Out io.Writer
	Err io.Writer
}

// NewPrinter returns a Printer writing to stdout and stderr.
func NewPrinter() *Printer {
	return &Printer{Out: os.Stdout, Err: os.Stderr}
}

// Post prints msg.
func (p *Printer) Post(msg model.Outbound) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch msg.Command {
	case model.CmdUpdateFileContext, model.CmdAnalyzeFile:
		if msg.Context != nil {
			PathColor.Fprintf(p.Err, "%s", msg.Context.Name)
			FaintColor.Fprintf(p.Err, " (%s)\n", describe(msg.Context))
		}
	case model.CmdShowTyping:
		FaintColor.Fprintln(p.Err, "Thinking...")
	case model.CmdHideTyping:
	case model.CmdDisplayResponse:
		fmt.Fprintln(p.Out, msg.Text)
		if msg.HasDiff {
			HeaderColor.Fprintln(p.Out, "\n--- Proposed changes ---")
			fmt.Fprintln(p.Out, msg.Diff)
			HeaderColor.Fprintln(p.Out, "------------------------")
		}
	case model.CmdNotify:
		levelColor(msg.Level).Fprintln(p.Err, msg.Text)
	}
}

func describe(f *model.FileSnapshot) string {
	parts := []string{f.Language, fmt.Sprintf("%d lines", f.LineCount)}
	if f.Selection != nil {
		parts = append(parts, fmt.Sprintf("lines %d-%d selected", f.Selection.StartLine, f.Selection.EndLine))
	}
	return strings.Join(parts, ", ")
}

func levelColor(level model.Level) *color.Color {
	switch level {
	case model.LevelError:
		return ErrorColor
	case model.LevelWarning:
		return WarningColor
	default:
		return SuccessColor
	}
}
