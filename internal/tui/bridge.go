package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sokinpui/nexus/model"
)

// Bridge forwards assistant output to a running program. Messages posted
// before a program is attached are dropped.
type Bridge struct {
	mu      sync.Mutex
	program *tea.Program
}

// SetProgram attaches the program that receives posted messages.
func (b *Bridge) SetProgram(p *tea.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.program = p
}

// Post sends msg to the panel.
func (b *Bridge) Post(msg model.Outbound) {
	b.mu.Lock()
	p := b.program
	b.mu.Unlock()
	if p != nil {
		p.Send(outboundMsg{msg})
	}
}

// Quit stops the attached program.
func (b *Bridge) Quit() {
	b.mu.Lock()
	p := b.program
	b.mu.Unlock()
	if p != nil {
		p.Quit()
	}
}
