package protocol

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"fenced with language", "```ts\nHELLO\n```", "HELLO"},
		{"fenced without language", "```\na\nb\n```", "a\nb"},
		{"stray markers", "DIFF_START\nfoo\nDIFF_END", "foo"},
		{"indented fence", "  ```go\nfunc f() {}\n  ```  ", "func f() {}"},
		{"crlf fences", "```py\r\nprint(1)\r\n```\r\n", "print(1)"},
		{"language with symbols", "```c++\nint x;\n```", "int x;"},
		{"inline backticks kept", "use `x` here\n``` not a fence", "use `x` here\n``` not a fence"},
		{"plain text", "\n\n  body  \n", "body"},
		{"empty", "", ""},
		{"marker inside line kept", "say DIFF_START now", "say DIFF_START now"},
		{"inner indentation kept", "```\nif x {\n\treturn\n}\n```", "if x {\n\treturn\n}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"```ts\nHELLO\n```",
		"  ```go\nfoo\n",
		"\n ```\n```\nDIFF_START\n",
		"   \n\t```js\n  x  \n```\n\n",
		"DIFF_END\n ```\nDIFF_START",
		"a\n\n\nb",
		"``` python\ncode",
		"\r\n```\r\n",
	}
	for _, in := range inputs {
		once := Clean(in)
		if twice := Clean(once); twice != once {
			t.Errorf("Clean not idempotent for %q: once %q, twice %q", in, once, twice)
		}
	}
}
