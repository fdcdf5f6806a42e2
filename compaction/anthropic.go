package compaction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/sessionkit/sessionkit"
)

// AnthropicSummarizer implements Summarizer with Claude's streaming API.
// Streaming keeps long summarization requests within proxy idle timeouts.
type AnthropicSummarizer struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicSummarizer creates a summarizer using the given model.
// A faster, cheaper model than the conversation's own is usually right.
func NewAnthropicSummarizer(client *anthropic.Client, model string, maxTokens int64) *AnthropicSummarizer {
	return &AnthropicSummarizer{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
	}
}

// Summarize implements Summarizer.
func (s *AnthropicSummarizer) Summarize(ctx context.Context, messages []sessionkit.Message) (string, error) {
	if len(messages) == 0 {
		return "", ErrNoMessagesToCompact
	}

	prompt := BuildSummaryPrompt(FormatTranscript(messages))

	stream := s.client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: s.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: SummarySystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})

	message := anthropic.Message{}
	for stream.Next() {
		event := stream.Current()
		if err := message.Accumulate(event); err != nil {
			return "", fmt.Errorf("%w: accumulate stream: %v", ErrSummarizerFailure, err)
		}
	}
	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSummarizerFailure, err)
	}

	var summary strings.Builder
	for _, block := range message.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			summary.WriteString(text.Text)
		}
	}
	if summary.Len() == 0 {
		return "", fmt.Errorf("%w: empty response", ErrSummarizerFailure)
	}

	return summary.String(), nil
}

// AnthropicTokenCounter counts tokens with Claude's count-tokens API. It
// is not an Estimator, since it performs I/O and can fail. Callers who
// want exact counts before deciding to compact can use it directly and
// fall back to an Estimator on error.
type AnthropicTokenCounter struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicTokenCounter creates a counter for the given model.
func NewAnthropicTokenCounter(client *anthropic.Client, model string) *AnthropicTokenCounter {
	return &AnthropicTokenCounter{client: client, model: model}
}

// CountTokens returns the exact input token count for the messages.
func (c *AnthropicTokenCounter) CountTokens(ctx context.Context, messages []sessionkit.Message) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	params, err := toAnthropicMessages(messages)
	if err != nil {
		return 0, err
	}

	result, err := c.client.Messages.CountTokens(ctx, anthropic.MessageCountTokensParams{
		Model:    anthropic.Model(c.model),
		Messages: params,
	})
	if err != nil {
		return 0, fmt.Errorf("count tokens: %w", err)
	}
	return int(result.InputTokens), nil
}

// toAnthropicMessages converts the value model into API message params.
func toAnthropicMessages(messages []sessionkit.Message) ([]anthropic.MessageParam, error) {
	result := make([]anthropic.MessageParam, 0, len(messages))

	for _, msg := range messages {
		role := anthropic.MessageParamRoleUser
		if msg.Role == sessionkit.RoleAssistant {
			role = anthropic.MessageParamRoleAssistant
		}

		content := make([]anthropic.ContentBlockParamUnion, 0, len(msg.Content))
		for _, block := range msg.Content {
			switch block.Type {
			case sessionkit.ContentTypeText:
				content = append(content, anthropic.NewTextBlock(block.Text))
			case sessionkit.ContentTypeThinking:
				// Counted as text; the exact thinking token accounting is
				// model-internal.
				content = append(content, anthropic.NewTextBlock(block.Text))
			case sessionkit.ContentTypeToolUse:
				var input any
				if len(block.ToolInput) > 0 {
					if err := json.Unmarshal(block.ToolInput, &input); err != nil {
						input = map[string]any{}
					}
				}
				content = append(content, anthropic.NewToolUseBlock(block.ToolUseID, input, block.ToolName))
			case sessionkit.ContentTypeToolResult:
				content = append(content, anthropic.NewToolResultBlock(block.ToolResultForUseID, block.ToolContent, block.IsError))
			}
		}

		if len(content) > 0 {
			result = append(result, anthropic.MessageParam{
				Role:    role,
				Content: content,
			})
		}
	}

	return result, nil
}
