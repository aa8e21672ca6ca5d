package protocol

import (
	"regexp"
	"strings"
)

// fenceLineRegex matches a code fence line, with or without a language tag.
var fenceLineRegex = regexp.MustCompile("^```[\\w+#.-]*$")

// Clean strips fence lines and stray marker lines from suggested content.
// Lines are classified after trimming their surrounding whitespace, which
// keeps Clean idempotent.
func Clean(content string) string {
	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if isArtifactLine(strings.TrimSpace(line)) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func isArtifactLine(line string) bool {
	return line == MarkerStart || line == MarkerEnd || fenceLineRegex.MatchString(line)
}
