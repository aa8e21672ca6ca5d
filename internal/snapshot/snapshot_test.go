package snapshot

import (
	"errors"
	"testing"

	"github.com/sokinpui/nexus/model"
)

func TestCaptureWithoutSelection(t *testing.T) {
	state := &EditorState{
		Document: 3,
		Path:     "/work/src/a.ts",
		Language: "typescript",
		Lines:    []string{"let x=1;", "let y=2;"},
	}

	snap, err := Capture(state)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if snap.Name != "a.ts" {
		t.Errorf("expected name a.ts, got %q", snap.Name)
	}
	if snap.Path != "/work/src/a.ts" {
		t.Errorf("expected full path, got %q", snap.Path)
	}
	if snap.Content != "let x=1;\nlet y=2;" {
		t.Errorf("unexpected content %q", snap.Content)
	}
	if snap.LineCount != 2 {
		t.Errorf("expected 2 lines, got %d", snap.LineCount)
	}
	if snap.Document != model.DocumentID(3) {
		t.Errorf("expected document 3, got %d", snap.Document)
	}
	if snap.Selection != nil {
		t.Errorf("expected no selection, got %+v", snap.Selection)
	}
	if snap.ID != 0 {
		t.Errorf("captured snapshot should not carry an ID, got %d", snap.ID)
	}
}

func TestCaptureEmptyDocument(t *testing.T) {
	for _, lines := range [][]string{nil, {}, {""}} {
		snap, err := Capture(&EditorState{Path: "empty.txt", Lines: lines})
		if err != nil {
			t.Fatalf("Capture failed: %v", err)
		}
		if snap.Content != "" {
			t.Errorf("expected empty content, got %q", snap.Content)
		}
		if snap.LineCount != 1 {
			t.Errorf("expected an empty document to have 1 line, got %d", snap.LineCount)
		}
		if snap.Language != "plaintext" {
			t.Errorf("expected plaintext language, got %q", snap.Language)
		}
	}
}

func TestCaptureNoDocument(t *testing.T) {
	_, err := Capture(nil)
	if !errors.Is(err, ErrNoDocument) {
		t.Fatalf("expected ErrNoDocument, got %v", err)
	}
}

func TestCaptureUnnamedBuffer(t *testing.T) {
	snap, err := Capture(&EditorState{Lines: []string{"scratch"}})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if snap.Name != "[No Name]" {
		t.Errorf("expected [No Name], got %q", snap.Name)
	}
}

func TestCaptureSelection(t *testing.T) {
	lines := []string{"one", "two", "three", "four"}

	tests := []struct {
		name      string
		sel       *LineRange
		wantStart int
		wantEnd   int
		wantText  string
		wantNil   bool
	}{
		{name: "single line", sel: &LineRange{Start: 2, End: 2}, wantStart: 2, wantEnd: 2, wantText: "two"},
		{name: "range", sel: &LineRange{Start: 2, End: 3}, wantStart: 2, wantEnd: 3, wantText: "two\nthree"},
		{name: "reversed", sel: &LineRange{Start: 3, End: 1}, wantStart: 1, wantEnd: 3, wantText: "one\ntwo\nthree"},
		{name: "clamped", sel: &LineRange{Start: 0, End: 9}, wantStart: 1, wantEnd: 4, wantText: "one\ntwo\nthree\nfour"},
		{name: "past end", sel: &LineRange{Start: 7, End: 9}, wantNil: true},
		{name: "before start", sel: &LineRange{Start: -3, End: 0}, wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := Capture(&EditorState{Path: "f.go", Lines: lines, Selection: tt.sel})
			if err != nil {
				t.Fatalf("Capture failed: %v", err)
			}
			if tt.wantNil {
				if snap.Selection != nil {
					t.Fatalf("expected no selection, got %+v", snap.Selection)
				}
				return
			}
			if snap.Selection == nil {
				t.Fatal("expected a selection")
			}
			if snap.Selection.StartLine != tt.wantStart || snap.Selection.EndLine != tt.wantEnd {
				t.Errorf("expected lines %d-%d, got %d-%d", tt.wantStart, tt.wantEnd, snap.Selection.StartLine, snap.Selection.EndLine)
			}
			if snap.Selection.Text != tt.wantText {
				t.Errorf("expected text %q, got %q", tt.wantText, snap.Selection.Text)
			}
		})
	}
}

func TestCaptureLineWithEmbeddedNewline(t *testing.T) {
	lines := []string{"a\nb\nc"}

	t.Run("without selection", func(t *testing.T) {
		snap, err := Capture(&EditorState{Path: "nul.txt", Lines: lines})
		if err != nil {
			t.Fatalf("Capture failed: %v", err)
		}
		if snap.LineCount != 1 {
			t.Errorf("expected 1 line, got %d", snap.LineCount)
		}
		if snap.Content != "a\nb\nc" {
			t.Errorf("unexpected content %q", snap.Content)
		}
	})

	t.Run("with selection past the host lines", func(t *testing.T) {
		snap, err := Capture(&EditorState{Path: "nul.txt", Lines: lines, Selection: &LineRange{Start: 3, End: 3}})
		if err != nil {
			t.Fatalf("Capture failed: %v", err)
		}
		if snap.Selection != nil {
			t.Errorf("expected no selection, got %+v", snap.Selection)
		}
	})

	t.Run("with selection on the line", func(t *testing.T) {
		snap, err := Capture(&EditorState{Path: "nul.txt", Lines: append(lines, "d"), Selection: &LineRange{Start: 1, End: 5}})
		if err != nil {
			t.Fatalf("Capture failed: %v", err)
		}
		want := model.Selection{StartLine: 1, EndLine: 2, Text: "a\nb\nc\nd"}
		if snap.Selection == nil || *snap.Selection != want {
			t.Errorf("expected selection %+v, got %+v", want, snap.Selection)
		}
	})
}
