package assistant

import (
	"context"
	"strings"
	"sync"

	"github.com/sokinpui/nexus/internal/snapshot"
	"github.com/sokinpui/nexus/model"
)

type notice struct {
	level   model.Level
	message string
}

type fakeEditor struct {
	mu sync.Mutex

	doc      *snapshot.EditorState
	focused  bool
	readErr  error
	choice   string
	prompts  []string
	replaces int
	replErr  error
	writes   int
	writeErr error
	notices  []notice
}

func newFakeEditor(path, language, content string) *fakeEditor {
	return &fakeEditor{
		doc: &snapshot.EditorState{
			Document: 7,
			Path:     path,
			Language: language,
			Lines:    strings.Split(content, "\n"),
		},
		focused: true,
		choice:  choiceApply,
	}
}

func (e *fakeEditor) clone() *snapshot.EditorState {
	state := *e.doc
	state.Lines = append([]string(nil), e.doc.Lines...)
	return &state
}

func (e *fakeEditor) ActiveDocument() (*snapshot.EditorState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.readErr != nil {
		return nil, e.readErr
	}
	if e.doc == nil || !e.focused {
		return nil, nil
	}
	return e.clone(), nil
}

func (e *fakeEditor) Document(doc model.DocumentID) (*snapshot.EditorState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doc == nil || e.doc.Document != doc {
		return nil, nil
	}
	return e.clone(), nil
}

func (e *fakeEditor) Confirm(message string, choices ...string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prompts = append(e.prompts, message)
	return e.choice, nil
}

func (e *fakeEditor) ReplaceAll(doc model.DocumentID, content string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.replaces++
	if e.replErr != nil {
		return e.replErr
	}
	e.doc.Lines = strings.Split(content, "\n")
	return nil
}

func (e *fakeEditor) Write(doc model.DocumentID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.writes++
	return e.writeErr
}

func (e *fakeEditor) Notify(level model.Level, message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notices = append(e.notices, notice{level, message})
}

func (e *fakeEditor) content() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return strings.Join(e.doc.Lines, "\n")
}

func (e *fakeEditor) setContent(content string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.doc.Lines = strings.Split(content, "\n")
}

func (e *fakeEditor) lastNotice() notice {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.notices) == 0 {
		return notice{}
	}
	return e.notices[len(e.notices)-1]
}

type fakePanel struct {
	mu   sync.Mutex
	msgs []model.Outbound
}

func (p *fakePanel) Post(msg model.Outbound) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
}

func (p *fakePanel) commands() []model.Command {
	p.mu.Lock()
	defer p.mu.Unlock()
	cmds := make([]model.Command, 0, len(p.msgs))
	for _, m := range p.msgs {
		cmds = append(cmds, m.Command)
	}
	return cmds
}

func (p *fakePanel) last(cmd model.Command) (model.Outbound, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.msgs) - 1; i >= 0; i-- {
		if p.msgs[i].Command == cmd {
			return p.msgs[i], true
		}
	}
	return model.Outbound{}, false
}

func (p *fakePanel) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = nil
}

type fakeGenerator struct {
	mu     sync.Mutex
	reply  string
	err    error
	calls  int
	prompt string
}

func (g *fakeGenerator) Generate(ctx context.Context, apiKey, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.prompt = prompt
	return g.reply, g.err
}

type staticKey string

func (k staticKey) APIKey() string { return string(k) }
