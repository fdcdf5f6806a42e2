package sessionkit

import (
	"encoding/json"
	"time"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContentType discriminates ContentBlock variants.
type ContentType string

const (
	ContentTypeText       ContentType = "text"
	ContentTypeToolUse    ContentType = "tool_use"
	ContentTypeToolResult ContentType = "tool_result"
	ContentTypeThinking   ContentType = "thinking"
)

// MetadataKeySummary marks a synthetic assistant message produced by
// compaction. The validator and the lineage manager both recognize it.
const MetadataKeySummary = "compaction_summary"

// ContentBlock represents a single content block within a message.
// Different fields are populated based on the Type.
type ContentBlock struct {
	Type ContentType `json:"type"`

	// Text content (ContentTypeText, ContentTypeThinking)
	Text string `json:"text,omitempty"`

	// Tool use fields (ContentTypeToolUse)
	ToolUseID string          `json:"tool_use_id,omitempty"`
	ToolName  string          `json:"tool_name,omitempty"`
	ToolInput json.RawMessage `json:"tool_input,omitempty"`

	// Tool result fields (ContentTypeToolResult)
	ToolResultForUseID string `json:"tool_result_for_use_id,omitempty"`
	ToolContent        string `json:"tool_content,omitempty"`
	IsError            bool   `json:"is_error,omitempty"`
}

// Clone returns a deep copy of the block.
func (b ContentBlock) Clone() ContentBlock {
	out := b
	if b.ToolInput != nil {
		out.ToolInput = append(json.RawMessage(nil), b.ToolInput...)
	}
	return out
}

// Message represents one conversation message.
type Message struct {
	ID        string         `json:"id"`
	Role      Role           `json:"role"`
	Content   []ContentBlock `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	out := m
	if m.Content != nil {
		out.Content = make([]ContentBlock, len(m.Content))
		for i, b := range m.Content {
			out.Content[i] = b.Clone()
		}
	}
	if m.Metadata != nil {
		out.Metadata = make(map[string]any, len(m.Metadata))
		for k, v := range m.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// IsCompactionSummary reports whether the message is a synthetic summary
// produced by a previous compaction.
func (m Message) IsCompactionSummary() bool {
	v, ok := m.Metadata[MetadataKeySummary]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// CloneMessages deep-copies a message slice.
func CloneMessages(messages []Message) []Message {
	if messages == nil {
		return nil
	}
	out := make([]Message, len(messages))
	for i, m := range messages {
		out[i] = m.Clone()
	}
	return out
}

// Session represents a conversation context. The ID is immutable once
// assigned; compaction never edits a session in place, it derives a child
// session with ParentID pointing back at the original.
type Session struct {
	ID        string         `json:"id"`
	ParentID  *string        `json:"parent_id,omitempty"`
	Model     string         `json:"model"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Messages  []Message      `json:"messages"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.ParentID != nil {
		parent := *s.ParentID
		out.ParentID = &parent
	}
	if s.Metadata != nil {
		out.Metadata = make(map[string]any, len(s.Metadata))
		for k, v := range s.Metadata {
			out.Metadata[k] = v
		}
	}
	out.Messages = CloneMessages(s.Messages)
	return &out
}
