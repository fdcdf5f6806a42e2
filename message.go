package sessionkit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NewMessage creates a new message with a fresh identifier.
func NewMessage(role Role, content []ContentBlock) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Metadata:  make(map[string]any),
		CreatedAt: time.Now(),
	}
}

// NewUserMessage creates a new user message with text content.
func NewUserMessage(text string) Message {
	return NewMessage(RoleUser, []ContentBlock{NewTextBlock(text)})
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content ...ContentBlock) Message {
	return NewMessage(RoleAssistant, content)
}

// NewTextBlock creates a text content block.
func NewTextBlock(text string) ContentBlock {
	return ContentBlock{
		Type: ContentTypeText,
		Text: text,
	}
}

// NewThinkingBlock creates a thinking content block.
func NewThinkingBlock(text string) ContentBlock {
	return ContentBlock{
		Type: ContentTypeThinking,
		Text: text,
	}
}

// NewToolUseBlock creates a tool use content block.
func NewToolUseBlock(id, name string, input map[string]any) ContentBlock {
	inputRaw, _ := json.Marshal(input)
	return ContentBlock{
		Type:      ContentTypeToolUse,
		ToolUseID: id,
		ToolName:  name,
		ToolInput: inputRaw,
	}
}

// NewToolResultBlock creates a tool result content block.
func NewToolResultBlock(toolUseID string, content string, isError bool) ContentBlock {
	return ContentBlock{
		Type:               ContentTypeToolResult,
		ToolResultForUseID: toolUseID,
		ToolContent:        content,
		IsError:            isError,
	}
}
