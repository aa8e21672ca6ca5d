package nvim

import (
	"testing"

	"github.com/sokinpui/nexus/model"
)

func TestDialWithoutAddress(t *testing.T) {
	if _, err := Dial(""); err != ErrNoAddress {
		t.Fatalf("Dial() error = %v, want ErrNoAddress", err)
	}
}

func TestConfirmButtons(t *testing.T) {
	got := confirmButtons([]string{"Apply Changes", "Cancel"})
	if got != "&Apply Changes\n&Cancel" {
		t.Errorf("confirmButtons() = %q", got)
	}
}

func TestChoiceLabel(t *testing.T) {
	choices := []string{"Apply Changes", "Cancel"}
	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{1, "Apply Changes"},
		{2, "Cancel"},
		{3, ""},
		{-1, ""},
	}
	for _, tt := range tests {
		if got := choiceLabel(choices, tt.n); got != tt.want {
			t.Errorf("choiceLabel(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestToLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"empty", "", []string{""}},
		{"single", "let x=1;", []string{"let x=1;"}},
		{"multi", "// comment\nlet x=1;", []string{"// comment", "let x=1;"}},
		{"blank lines kept", "a\n\nb", []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toLines(tt.content)
			if len(got) != len(tt.want) {
				t.Fatalf("toLines() = %q, want %q", got, tt.want)
			}
			for i := range got {
				if string(got[i]) != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLogLevel(t *testing.T) {
	tests := map[model.Level]int{
		model.LevelInfo:    2,
		model.LevelWarning: 3,
		model.LevelError:   4,
		"":                 2,
	}
	for level, want := range tests {
		if got := logLevel(level); got != want {
			t.Errorf("logLevel(%q) = %d, want %d", level, got, want)
		}
	}
}
