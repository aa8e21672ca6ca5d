// Package markdown extracts fenced code blocks from model replies.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// CodeBlock is a fenced code block found in markdown text.
type CodeBlock struct {
	// Lang is the language of the fence (e.g. "go", "ts"), empty if unset.
	Lang string
	// Content is the text inside the fence without its final newline.
	Content string
}

// CodeBlocks returns every fenced code block in document order.
func CodeBlocks(source []byte) []CodeBlock {
	var blocks []CodeBlock
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	_ = ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		fenced, ok := node.(*ast.FencedCodeBlock)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}

		var content bytes.Buffer
		lines := fenced.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			content.Write(line.Value(source))
		}
		blocks = append(blocks, CodeBlock{
			Lang:    string(fenced.Language(source)),
			Content: strings.TrimSuffix(content.String(), "\n"),
		})
		return ast.WalkSkipChildren, nil
	})
	return blocks
}

// BlockFor picks the code block to copy for a file of the given language:
// the first block fenced with a matching language, else the first block.
func BlockFor(md, language string) (string, bool) {
	blocks := CodeBlocks([]byte(md))
	if len(blocks) == 0 {
		return "", false
	}
	for _, b := range blocks {
		if b.Lang != "" && sameLanguage(b.Lang, language) {
			return b.Content, true
		}
	}
	return blocks[0].Content, true
}

// aliases maps fence tags to Neovim filetypes where the two differ.
var aliases = map[string]string{
	"ts":     "typescript",
	"js":     "javascript",
	"py":     "python",
	"rb":     "ruby",
	"rs":     "rust",
	"sh":     "bash",
	"yml":    "yaml",
	"md":     "markdown",
	"c++":    "cpp",
	"golang": "go",
}

func sameLanguage(fence, filetype string) bool {
	fence = strings.ToLower(fence)
	filetype = strings.ToLower(filetype)
	if alias, ok := aliases[fence]; ok {
		fence = alias
	}
	return fence == filetype
}
