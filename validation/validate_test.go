package validation

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sessionkit/sessionkit"
)

func userText(text string) sessionkit.Message {
	return sessionkit.NewUserMessage(text)
}

func assistantText(text string) sessionkit.Message {
	return sessionkit.NewAssistantMessage(sessionkit.NewTextBlock(text))
}

func assistantToolUse(id, name string) sessionkit.Message {
	return sessionkit.NewAssistantMessage(
		sessionkit.NewToolUseBlock(id, name, map[string]any{"query": "x"}),
	)
}

func userToolResult(id string) sessionkit.Message {
	return sessionkit.NewMessage(sessionkit.RoleUser, []sessionkit.ContentBlock{
		sessionkit.NewToolResultBlock(id, "ok", false),
	})
}

// pairedConversation builds a valid transcript with the given number of
// matched tool use/result pairs: one opening user message, pairs×
// (assistant tool use + user tool result), one closing assistant message.
func pairedConversation(pairs int) []sessionkit.Message {
	msgs := []sessionkit.Message{userText("start")}
	for i := 0; i < pairs; i++ {
		id := "toolu_" + string(rune('a'+i%26)) + string(rune('0'+i/26))
		msgs = append(msgs, assistantToolUse(id, "search"), userToolResult(id))
	}
	return append(msgs, assistantText("done"))
}

func TestValidate_Empty(t *testing.T) {
	report := Validate(nil)
	assert.Equal(t, StatusValid, report.Status)
	assert.Empty(t, report.Issues)
	assert.Equal(t, Counts{}, report.Counts)
}

func TestValidate_MatchedPairs(t *testing.T) {
	// 38 messages: 1 opening + 18 pairs + 1 closing.
	msgs := pairedConversation(18)
	require.Len(t, msgs, 38)

	report := Validate(msgs)

	assert.Equal(t, StatusValid, report.Status)
	assert.Empty(t, report.Issues)
	assert.Equal(t, Counts{Messages: 38, ToolUseBlocks: 18, ToolResultBlocks: 18}, report.Counts)
}

func TestValidate_InProgressToolUse(t *testing.T) {
	msgs := []sessionkit.Message{
		userText("look this up"),
		assistantToolUse("toolu_01", "search"),
	}

	report := Validate(msgs)

	assert.Equal(t, StatusValid, report.Status)
	assert.Zero(t, report.ErrorCount())
	issues := report.IssuesWithCode(CodeInProgressToolUse)
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityInfo, issues[0].Severity)
	assert.Equal(t, 1, issues[0].MessageIndex)
}

func TestValidate_IncompleteToolUse(t *testing.T) {
	msgs := []sessionkit.Message{
		userText("look this up"),
		assistantToolUse("toolu_01", "search"),
		userText("never mind, different question"),
		assistantText("sure"),
	}

	report := Validate(msgs)

	assert.Equal(t, StatusInvalid, report.Status)
	issues := report.IssuesWithCode(CodeIncompleteToolUse)
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityError, issues[0].Severity)
	assert.Equal(t, 1, issues[0].MessageIndex)
	assert.Empty(t, report.IssuesWithCode(CodeInProgressToolUse))
}

func TestValidate_OrphanedToolResult(t *testing.T) {
	msgs := []sessionkit.Message{
		userText("hello"),
		assistantText("hi"),
		userToolResult("toolu_never_issued"),
	}

	report := Validate(msgs)

	assert.Equal(t, StatusInvalid, report.Status)
	issues := report.IssuesWithCode(CodeOrphanedToolResult)
	require.Len(t, issues, 1)
	assert.Equal(t, 2, issues[0].MessageIndex)
}

func TestValidate_ToolResultInAssistantMessage(t *testing.T) {
	msgs := []sessionkit.Message{
		userText("hello"),
		assistantToolUse("toolu_01", "search"),
		userToolResult("toolu_01"),
		sessionkit.NewAssistantMessage(
			sessionkit.NewTextBlock("answer"),
			sessionkit.NewToolResultBlock("toolu_01", "bogus", false),
		),
	}

	report := Validate(msgs)

	assert.Equal(t, StatusInvalid, report.Status)
	assert.Len(t, report.IssuesWithCode(CodeOrphanedToolResult), 1)
}

func TestValidate_RoleNotAlternating(t *testing.T) {
	msgs := []sessionkit.Message{
		userText("first"),
		userText("second in a row"),
		assistantText("reply"),
	}

	report := Validate(msgs)

	assert.Equal(t, StatusInvalid, report.Status)
	issues := report.IssuesWithCode(CodeRoleNotAlternating)
	require.Len(t, issues, 1)
	assert.Equal(t, 1, issues[0].MessageIndex)
}

func TestValidate_MalformedToolUse(t *testing.T) {
	tests := []struct {
		name string
		msgs []sessionkit.Message
	}{
		{
			name: "missing id",
			msgs: []sessionkit.Message{
				userText("go"),
				sessionkit.NewAssistantMessage(sessionkit.ContentBlock{
					Type:     sessionkit.ContentTypeToolUse,
					ToolName: "search",
				}),
			},
		},
		{
			name: "missing name",
			msgs: []sessionkit.Message{
				userText("go"),
				sessionkit.NewAssistantMessage(sessionkit.ContentBlock{
					Type:      sessionkit.ContentTypeToolUse,
					ToolUseID: "toolu_01",
				}),
			},
		},
		{
			name: "duplicate id",
			msgs: []sessionkit.Message{
				userText("go"),
				assistantToolUse("toolu_dup", "search"),
				userToolResult("toolu_dup"),
				assistantToolUse("toolu_dup", "search"),
				userToolResult("toolu_dup"),
			},
		},
		{
			name: "tool use in user message",
			msgs: []sessionkit.Message{
				sessionkit.NewMessage(sessionkit.RoleUser, []sessionkit.ContentBlock{
					sessionkit.NewToolUseBlock("toolu_01", "search", nil),
				}),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Validate(tt.msgs)
			assert.Equal(t, StatusInvalid, report.Status)
			assert.NotEmpty(t, report.IssuesWithCode(CodeMalformedToolUse))
		})
	}
}

func TestValidate_Deterministic(t *testing.T) {
	msgs := []sessionkit.Message{
		userText("first"),
		assistantToolUse("toolu_01", "search"),
		userText("no result, new topic"),
		assistantText("ok"),
		userToolResult("toolu_unknown"),
	}

	first := Validate(msgs)
	second := Validate(msgs)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Validate is not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	msgs := pairedConversation(3)
	before := sessionkit.CloneMessages(msgs)

	_ = Validate(msgs)

	if !reflect.DeepEqual(before, msgs) {
		t.Fatal("Validate mutated its input")
	}
}

// Valid transcripts must satisfy alternation and pairing completeness.
func TestValidate_ValidImpliesInvariants(t *testing.T) {
	msgs := pairedConversation(5)
	report := Validate(msgs)
	require.True(t, report.Valid())

	for i := 1; i < len(msgs); i++ {
		assert.NotEqual(t, msgs[i-1].Role, msgs[i].Role, "adjacent roles at %d", i)
	}
	assert.Equal(t, report.Counts.ToolUseBlocks, report.Counts.ToolResultBlocks)
}
