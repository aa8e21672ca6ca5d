package protocol

import "strings"

// Reply is the raw split of a model response.
type Reply struct {
	Explanation string
	// Suggestion is nil unless both markers were found in order.
	Suggestion *string
}

// ParseReply splits a model response on the first MarkerStart and the first
// MarkerEnd. A MarkerEnd that appears before the end of MarkerStart yields no
// suggestion.
func ParseReply(raw string) Reply {
	start := strings.Index(raw, MarkerStart)
	end := strings.Index(raw, MarkerEnd)
	if start == -1 || end == -1 || end < start+len(MarkerStart) {
		return Reply{Explanation: strings.TrimSpace(raw)}
	}

	body := strings.TrimSpace(raw[start+len(MarkerStart) : end])
	return Reply{
		Explanation: strings.TrimSpace(raw[:start]),
		Suggestion:  &body,
	}
}
