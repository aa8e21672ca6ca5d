package assistant

import (
	"errors"
	"fmt"

	"github.com/sokinpui/nexus/internal/gemini"
)

var (
	// ErrMissingAPIKey is returned when a message is sent without an API key.
	ErrMissingAPIKey = gemini.ErrMissingAPIKey
	// ErrNoActiveContext is returned when there is no document to work on.
	ErrNoActiveContext = errors.New("no active file context available")
	// ErrStaleReply is returned when a suggestion no longer matches the document
	// it was generated for.
	ErrStaleReply = errors.New("the file changed since this suggestion was generated")
)

// ApplyError reports a failed whole-document replacement.
type ApplyError struct {
	File string
	Err  error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("failed to apply changes to %s: %v", e.File, e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }
