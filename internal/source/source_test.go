package source

import (
	"errors"
	"strings"
	"testing"
)

func TestMessage(t *testing.T) {
	clip := func(s string, err error) func() (string, error) {
		return func() (string, error) { return s, err }
	}

	tests := []struct {
		name     string
		p        *Provider
		explicit string
		want     string
		wantErr  bool
	}{
		{
			name:     "explicit wins",
			p:        &Provider{stdin: strings.NewReader("from stdin"), piped: true},
			explicit: "  from flag ",
			want:     "from flag",
		},
		{
			name: "piped stdin",
			p:    &Provider{stdin: strings.NewReader("\nexplain this\n"), piped: true},
			want: "explain this",
		},
		{
			name: "stdin ignored when not piped",
			p:    &Provider{stdin: strings.NewReader("ignored")},
			want: "",
		},
		{
			name: "clipboard",
			p:    &Provider{useClipboard: true, readClipboard: clip("from clipboard", nil)},
			want: "from clipboard",
		},
		{
			name: "clipboard disabled",
			p:    &Provider{readClipboard: clip("unused", nil)},
			want: "",
		},
		{
			name:    "clipboard error",
			p:       &Provider{useClipboard: true, readClipboard: clip("", errors.New("no xclip"))},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.p.Message(tt.explicit)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Message() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Message() = %q, want %q", got, tt.want)
			}
		})
	}
}
