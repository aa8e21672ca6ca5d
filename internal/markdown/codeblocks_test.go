package markdown

import "testing"

func TestCodeBlocks(t *testing.T) {
	source := "Rename the variable.\n\n```ts\nlet y = 1;\n```\n\nThen run it:\n\n```\nnode a.js\n```\n"

	blocks := CodeBlocks([]byte(source))
	want := []CodeBlock{
		{Lang: "ts", Content: "let y = 1;"},
		{Lang: "", Content: "node a.js"},
	}
	if len(blocks) != len(want) {
		t.Fatalf("got %d blocks, want %d: %+v", len(blocks), len(want), blocks)
	}
	for i, w := range want {
		if blocks[i] != w {
			t.Errorf("block %d = %+v, want %+v", i, blocks[i], w)
		}
	}
}

func TestCodeBlocksNone(t *testing.T) {
	if blocks := CodeBlocks([]byte("Nothing to change here.\n\n    indented code is not fenced\n")); len(blocks) != 0 {
		t.Errorf("got %+v, want no blocks", blocks)
	}
}

func TestBlockFor(t *testing.T) {
	reply := "Run the tests:\n\n```sh\nnpm test\n```\n\nThen change:\n\n```ts\nlet x = 2;\n```\n"

	tests := []struct {
		name     string
		md       string
		language string
		want     string
		wantOK   bool
	}{
		{"alias matches filetype", reply, "typescript", "let x = 2;", true},
		{"exact match", "```go\nx := 1\n```\n", "go", "x := 1", true},
		{"case insensitive", "```Python\npass\n```\n", "python", "pass", true},
		{"no match falls back to first", reply, "lua", "npm test", true},
		{"unknown language", reply, "", "npm test", true},
		{"multiline", "```\na\nb\n```", "text", "a\nb", true},
		{"none", "plain text", "go", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BlockFor(tt.md, tt.language)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("BlockFor() = %q, %v; want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
