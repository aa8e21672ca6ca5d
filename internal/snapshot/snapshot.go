package snapshot

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/sokinpui/nexus/model"
)

const (
	unnamedBuffer   = "[No Name]"
	defaultLanguage = "plaintext"
)

// ErrNoDocument is returned when the editor has no document to capture.
var ErrNoDocument = errors.New("no active document")

// LineRange is a 1-based, inclusive line range as reported by the editor.
// The bounds may arrive in either order.
type LineRange struct {
	Start int
	End   int
}

// EditorState is the raw read-out of the editor's active document.
type EditorState struct {
	Document  model.DocumentID
	Path      string
	Language  string
	Lines     []string
	Selection *LineRange
}

// Capture builds a snapshot from the editor state. The returned snapshot has
// no ID; it gets one when it becomes the current snapshot.
func Capture(state *EditorState) (model.FileSnapshot, error) {
	if state == nil {
		return model.FileSnapshot{}, ErrNoDocument
	}

	content := strings.Join(state.Lines, "\n")
	snap := model.FileSnapshot{
		Document:  state.Document,
		Name:      displayName(state.Path),
		Path:      state.Path,
		Content:   content,
		Language:  state.Language,
		LineCount: LineCount(state.Lines),
	}
	if snap.Language == "" {
		snap.Language = defaultLanguage
	}
	snap.Selection = selectLines(state.Lines, snap.LineCount, state.Selection)
	return snap, nil
}

// LineCount counts the editor's lines. A line may itself hold "\n" (Neovim
// sends NUL bytes that way), so the content is not split to count. An empty
// document has one line.
func LineCount(lines []string) int {
	return max(len(lines), 1)
}

func displayName(path string) string {
	if path == "" {
		return unnamedBuffer
	}
	return filepath.Base(path)
}

func selectLines(lines []string, lineCount int, r *LineRange) *model.Selection {
	if r == nil {
		return nil
	}
	start, end := r.Start, r.End
	if start > end {
		start, end = end, start
	}
	if end < 1 || start > lineCount {
		return nil
	}
	start = max(start, 1)
	end = min(end, lineCount)

	var text string
	if start <= len(lines) {
		text = strings.Join(lines[start-1:min(end, len(lines))], "\n")
	}
	return &model.Selection{StartLine: start, EndLine: end, Text: text}
}
