package compaction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sessionkit/sessionkit"
)

func TestFormatTranscript(t *testing.T) {
	messages := []sessionkit.Message{
		userText("check the build"),
		sessionkit.NewAssistantMessage(
			sessionkit.NewThinkingBlock("need the CI status first"),
			sessionkit.NewToolUseBlock("toolu_ci", "ci_status", map[string]any{"branch": "main"}),
		),
		userToolResult("toolu_ci", "build #4812 passed"),
		assistantText("the build on main passed"),
	}

	out := FormatTranscript(messages)

	assert.Contains(t, out, "User:\ncheck the build")
	assert.Contains(t, out, "[Thinking: need the CI status first]")
	assert.Contains(t, out, "[Tool call toolu_ci: ci_status")
	assert.Contains(t, out, "[Tool result toolu_ci: build #4812 passed]")
	assert.Contains(t, out, "Assistant:\nthe build on main passed")
}

func TestFormatTranscript_TruncatesLongToolResults(t *testing.T) {
	long := strings.Repeat("z", toolResultPreviewChars*2)
	messages := []sessionkit.Message{
		userToolResult("toolu_big", long),
	}

	out := FormatTranscript(messages)

	assert.NotContains(t, out, long)
	assert.Contains(t, out, "...")
}

func TestFormatTranscript_ToolError(t *testing.T) {
	msg := sessionkit.NewUserMessage("")
	msg.Content = []sessionkit.ContentBlock{
		sessionkit.NewToolResultBlock("toolu_err", "permission denied", true),
	}

	out := FormatTranscript([]sessionkit.Message{msg})
	assert.Contains(t, out, "[Tool error toolu_err: permission denied]")
}

func TestBuildSummaryPrompt(t *testing.T) {
	prompt := BuildSummaryPrompt("User:\nhello\n")

	assert.Contains(t, prompt, "<transcript>")
	assert.Contains(t, prompt, "</transcript>")
	assert.Contains(t, prompt, "User:\nhello")
}

func TestPruneToolOutputs(t *testing.T) {
	long := strings.Repeat("x", 100)
	messages := []sessionkit.Message{
		userToolResult("toolu_a", "short"),
		userToolResult("toolu_b", long),
		userText("unrelated text stays as is"),
	}

	pruned := pruneToolOutputs(messages, 50)

	assert.Equal(t, "short", pruned[0].Content[0].ToolContent)
	assert.Equal(t, prunedPlaceholder, pruned[1].Content[0].ToolContent)
	assert.Equal(t, "unrelated text stays as is", pruned[2].Content[0].Text)

	// Originals untouched.
	assert.Equal(t, long, messages[1].Content[0].ToolContent)
}
