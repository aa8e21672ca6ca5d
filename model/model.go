package model

// DocumentID is the editor's handle for an open document (a Neovim buffer number).
type DocumentID int

// Selection is a line range of a FileSnapshot. Lines are 1-based and inclusive.
type Selection struct {
	StartLine int    `json:"start"`
	EndLine   int    `json:"end"`
	Text      string `json:"text"`
}

// FileSnapshot is an immutable capture of the active document.
type FileSnapshot struct {
	// ID is the revision assigned when the snapshot became the current one.
	ID        uint64     `json:"id"`
	Document  DocumentID `json:"document"`
	Name      string     `json:"fileName"`
	Path      string     `json:"filePath"`
	Content   string     `json:"content"`
	Language  string     `json:"language"`
	LineCount int        `json:"lineCount"`
	Selection *Selection `json:"selection,omitempty"`
}

// AssistantReply is one parsed response of the remote model.
type AssistantReply struct {
	ID               string  `json:"id"`
	SnapshotID       uint64  `json:"snapshotId"`
	Explanation      string  `json:"text"`
	SuggestedContent *string `json:"diff,omitempty"`
}

// HasSuggestion reports whether a replacement can be offered for the reply.
func (r AssistantReply) HasSuggestion() bool {
	return r.SuggestedContent != nil
}

// Command names a message exchanged between the assistant and its panel.
type Command string

// Commands sent by the assistant to the panel.
const (
	CmdUpdateFileContext Command = "updateFileContext"
	CmdAnalyzeFile       Command = "analyzeFile"
	CmdShowTyping        Command = "showTyping"
	CmdHideTyping        Command = "hideTyping"
	CmdDisplayResponse   Command = "displayResponse"
	CmdNotify            Command = "notify"
)

// Commands sent by the panel to the assistant.
const (
	CmdSendMessage    Command = "sendMessage"
	CmdApplyDiff      Command = "applyDiff"
	CmdGetFileContext Command = "getFileContext"
)

// Level is the severity of a user-visible notification.
type Level string

const (
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARN"
	LevelError   Level = "ERROR"
)

// Outbound is a message from the assistant to the panel.
type Outbound struct {
	Command Command       `json:"command"`
	Context *FileSnapshot `json:"context,omitempty"`
	Text    string        `json:"text,omitempty"`
	HasDiff bool          `json:"hasDiff,omitempty"`
	Diff    string        `json:"diff,omitempty"`
	ReplyID string        `json:"replyId,omitempty"`
	Level   Level         `json:"level,omitempty"`
}

// Inbound is a message from the panel to the assistant.
type Inbound struct {
	Command Command `json:"command"`
	Text    string  `json:"text,omitempty"`
	Changes string  `json:"changes,omitempty"`
	ReplyID string  `json:"replyId,omitempty"`
}
