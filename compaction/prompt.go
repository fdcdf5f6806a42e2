package compaction

import (
	"fmt"
	"strings"

	"github.com/sessionkit/sessionkit"
)

// SummarySystemPrompt instructs the summarizer model. The sectioned
// format keeps the summary useful as a drop-in replacement for the
// discarded history: the conversation must be continuable from the
// summary plus the preserved tail alone.
const SummarySystemPrompt = `You summarize the older portion of a conversation between a user and an AI agent so that the conversation can continue without it. The newest turns are kept verbatim elsewhere; your summary replaces everything older.

Write a narrative summary organized into these sections (write "None" where a section is empty):

1. **Goal and Requirements** — what the user is trying to accomplish, with any stated constraints.
2. **Decisions Made** — conclusions reached, approaches chosen, alternatives rejected and why.
3. **Work Completed** — concrete artifacts produced or changed (files, names, identifiers), and results of tool invocations that still matter.
4. **Failures and Corrections** — errors hit, fixes applied, and anything the user corrected.
5. **Outstanding Work** — what remains open, and the immediate next step.

Rules: preserve exact names, paths, and error messages; keep user quotes that convey intent; never invent information not present in the transcript; prefer specifics over commentary.`

// BuildSummaryPrompt wraps a flattened transcript into the user message
// sent to the summarizer.
func BuildSummaryPrompt(transcript string) string {
	return `Summarize the following conversation transcript per your instructions.

<transcript>
` + transcript + `
</transcript>

The summary will stand in for this portion of the conversation; include everything needed to continue it.`
}

// toolResultPreviewChars caps how much of a tool result is shown to the
// summarizer verbatim.
const toolResultPreviewChars = 500

// FormatTranscript flattens messages into readable text for the
// summarizer. Tool traffic is rendered inline; long tool results are
// abbreviated.
func FormatTranscript(messages []sessionkit.Message) string {
	var b strings.Builder
	for _, msg := range messages {
		b.WriteString(roleLabel(msg.Role))
		b.WriteString(":\n")
		b.WriteString(flattenContent(msg))
		b.WriteString("\n\n")
	}
	return b.String()
}

func roleLabel(role sessionkit.Role) string {
	if role == sessionkit.RoleAssistant {
		return "Assistant"
	}
	return "User"
}

func flattenContent(msg sessionkit.Message) string {
	var parts []string
	for _, block := range msg.Content {
		switch block.Type {
		case sessionkit.ContentTypeText:
			if block.Text != "" {
				parts = append(parts, block.Text)
			}
		case sessionkit.ContentTypeThinking:
			if block.Text != "" {
				parts = append(parts, fmt.Sprintf("[Thinking: %s]", block.Text))
			}
		case sessionkit.ContentTypeToolUse:
			parts = append(parts, fmt.Sprintf("[Tool call %s: %s %s]",
				block.ToolUseID, block.ToolName, string(block.ToolInput)))
		case sessionkit.ContentTypeToolResult:
			content := block.ToolContent
			if len(content) > toolResultPreviewChars {
				content = content[:toolResultPreviewChars-3] + "..."
			}
			label := "Tool result"
			if block.IsError {
				label = "Tool error"
			}
			parts = append(parts, fmt.Sprintf("[%s %s: %s]", label, block.ToolResultForUseID, content))
		}
	}
	return strings.Join(parts, "\n")
}
