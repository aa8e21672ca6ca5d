// Package source decides where a one-shot message comes from.
package source

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
)

// Provider determines and retrieves the message for a headless run.
type Provider struct {
	stdin         io.Reader
	piped         bool
	useClipboard  bool
	readClipboard func() (string, error)
}

// New creates a Provider reading os.Stdin when it is piped, and the clipboard
// when useClipboard is set.
func New(useClipboard bool) *Provider {
	piped := false
	if stat, err := os.Stdin.Stat(); err == nil {
		piped = (stat.Mode() & os.ModeCharDevice) == 0
	}
	return &Provider{
		stdin:         os.Stdin,
		piped:         piped,
		useClipboard:  useClipboard,
		readClipboard: clipboard.ReadAll,
	}
}

// Message returns the explicit message if set, else piped stdin, else the
// clipboard when enabled. An empty result means the panel should run.
func (p *Provider) Message(explicit string) (string, error) {
	if msg := strings.TrimSpace(explicit); msg != "" {
		return msg, nil
	}

	if p.piped {
		content, err := io.ReadAll(p.stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return strings.TrimSpace(string(content)), nil
	}

	if p.useClipboard {
		content, err := p.readClipboard()
		if err != nil {
			return "", fmt.Errorf("failed to read from clipboard: %w", err)
		}
		return strings.TrimSpace(content), nil
	}
	return "", nil
}
