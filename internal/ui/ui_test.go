package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/sokinpui/nexus/model"
)

func newTestPrinter(t *testing.T) (*Printer, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	var out, errOut bytes.Buffer
	return &Printer{Out: &out, Err: &errOut}, &out, &errOut
}

func TestPrinterReply(t *testing.T) {
	p, out, errOut := newTestPrinter(t)

	p.Post(model.Outbound{Command: model.CmdShowTyping})
	p.Post(model.Outbound{Command: model.CmdDisplayResponse, Text: "Add a comment.", HasDiff: true, Diff: "// comment\nlet x=1;"})
	p.Post(model.Outbound{Command: model.CmdHideTyping})

	got := out.String()
	if !strings.HasPrefix(got, "Add a comment.\n") {
		t.Errorf("reply output = %q", got)
	}
	if !strings.Contains(got, "--- Proposed changes ---\n// comment\nlet x=1;\n") {
		t.Errorf("proposed changes missing: %q", got)
	}
	if errOut.String() != "Thinking...\n" {
		t.Errorf("status output = %q", errOut.String())
	}
}

func TestPrinterReplyWithoutDiff(t *testing.T) {
	p, out, _ := newTestPrinter(t)
	p.Post(model.Outbound{Command: model.CmdDisplayResponse, Text: "Looks fine."})

	if out.String() != "Looks fine.\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestPrinterContextAndNotify(t *testing.T) {
	p, out, errOut := newTestPrinter(t)

	p.Post(model.Outbound{Command: model.CmdUpdateFileContext, Context: &model.FileSnapshot{
		Name: "a.go", Language: "go", LineCount: 10,
		Selection: &model.Selection{StartLine: 2, EndLine: 4},
	}})
	p.Post(model.Outbound{Command: model.CmdNotify, Level: model.LevelError, Text: "Error connecting to Gemini API: boom"})

	want := "a.go (go, 10 lines, lines 2-4 selected)\nError connecting to Gemini API: boom\n"
	if errOut.String() != want {
		t.Errorf("status output = %q, want %q", errOut.String(), want)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected reply output %q", out.String())
	}
}
