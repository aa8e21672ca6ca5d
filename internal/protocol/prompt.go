// Package protocol holds the text contract with the remote model: the prompt
// sent with every request, and the marker pair that delimits a suggested
// full-file replacement inside the free-text reply.
package protocol

import (
	"fmt"
	"strings"

	"github.com/sokinpui/nexus/model"
)

// The marker pair. Both the prompt and the parser use these values.
const (
	MarkerStart = "DIFF_START"
	MarkerEnd   = "DIFF_END"
)

// BuildPrompt renders the request for the remote model from the file
// snapshot and the user's message.
func BuildPrompt(snap model.FileSnapshot, message string) string {
	var b strings.Builder

	b.WriteString("You are a code assistant helping with file editing. Here's the current file context:\n\n")
	fmt.Fprintf(&b, "File: %s\n", snap.Name)
	fmt.Fprintf(&b, "Language: %s\n", snap.Language)
	fmt.Fprintf(&b, "Lines: %d\n\n", snap.LineCount)

	b.WriteString("Current file content:\n")
	fmt.Fprintf(&b, "```%s\n%s\n```", snap.Language, snap.Content)

	if sel := snap.Selection; sel != nil {
		fmt.Fprintf(&b, "\n\nCurrent selection (lines %d-%d):\n%s", sel.StartLine, sel.EndLine, sel.Text)
	}

	fmt.Fprintf(&b, "\n\nUser request: %s\n\n", message)

	b.WriteString("Please analyze the request and provide:\n")
	b.WriteString("1. A clear explanation of what changes are needed\n")
	b.WriteString("2. If code changes are required, provide the complete modified file content in this format:\n\n")
	fmt.Fprintf(&b, "%s\n", MarkerStart)
	b.WriteString("[the complete file content with the requested changes applied]\n")
	fmt.Fprintf(&b, "%s\n\n", MarkerEnd)

	b.WriteString("Make sure to:\n")
	b.WriteString("- Be context-aware of the existing code\n")
	b.WriteString("- Provide the complete, modified file content (not just the changes)\n")
	b.WriteString("- Explain the reasoning behind changes\n")
	b.WriteString("- Consider the existing code style and patterns\n")
	b.WriteString("- Only suggest changes that are necessary and safe\n")
	b.WriteString("- Preserve all existing content unless explicitly asked to remove it")

	return b.String()
}
