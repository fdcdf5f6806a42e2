package lineage

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sessionkit/sessionkit"
)

func sampleSession() *sessionkit.Session {
	return &sessionkit.Session{
		ID:    "original-id",
		Model: "claude-sonnet-4-5",
		Metadata: map[string]any{
			"owner": "platform-team",
		},
		Messages: []sessionkit.Message{
			sessionkit.NewUserMessage("first"),
			sessionkit.NewAssistantMessage(sessionkit.NewTextBlock("second")),
			sessionkit.NewUserMessage("third"),
			sessionkit.NewAssistantMessage(sessionkit.NewTextBlock("fourth")),
		},
	}
}

func summaryMessage(text string) sessionkit.Message {
	msg := sessionkit.NewAssistantMessage(sessionkit.NewTextBlock(text))
	msg.Metadata[sessionkit.MetadataKeySummary] = true
	return msg
}

func TestDerive(t *testing.T) {
	original := sampleSession()
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	carried := []sessionkit.Message{
		summaryMessage("summary of the first turn"),
		original.Messages[2],
		original.Messages[3],
	}

	derived := Derive(original, carried, WithClock(func() time.Time { return now }))

	assert.NotEqual(t, original.ID, derived.ID)
	assert.NotEmpty(t, derived.ID)
	require.NotNil(t, derived.ParentID)
	assert.Equal(t, original.ID, *derived.ParentID)
	assert.Equal(t, original.Model, derived.Model)
	assert.Equal(t, now, derived.CreatedAt)
	assert.Equal(t, now, derived.UpdatedAt)
	assert.Len(t, derived.Messages, 3)
}

func TestDerive_ProvenanceMetadata(t *testing.T) {
	original := sampleSession()
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	carried := []sessionkit.Message{
		summaryMessage("summary"),
		original.Messages[2],
		original.Messages[3],
	}

	derived := Derive(original, carried, WithClock(func() time.Time { return now }))

	assert.Equal(t, "original-id", derived.Metadata[MetadataCompactedFrom])
	assert.Equal(t, "2026-03-14T09:26:53Z", derived.Metadata[MetadataCompactedAt])
	assert.Equal(t, 4, derived.Metadata[MetadataOriginalMessageCount])
	// The summary message does not count as preserved.
	assert.Equal(t, 2, derived.Metadata[MetadataPreservedMessageCount])
	// Original metadata carries over.
	assert.Equal(t, "platform-team", derived.Metadata["owner"])
}

func TestDerive_WithIDFunc(t *testing.T) {
	original := sampleSession()
	derived := Derive(original, original.Messages, WithIDFunc(func() string { return "pinned-id" }))
	assert.Equal(t, "pinned-id", derived.ID)
}

func TestDerive_UniqueIDs(t *testing.T) {
	original := sampleSession()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		derived := Derive(original, original.Messages)
		if seen[derived.ID] {
			t.Fatalf("duplicate derived session id %s", derived.ID)
		}
		seen[derived.ID] = true
	}
}

func TestDerive_OriginalUntouched(t *testing.T) {
	original := sampleSession()
	originalID := original.ID
	metadataLen := len(original.Metadata)
	messageCount := len(original.Messages)
	firstText := original.Messages[0].Content[0].Text

	derived := Derive(original, original.Messages[2:])

	assert.Equal(t, originalID, original.ID)
	assert.Nil(t, original.ParentID)
	assert.Len(t, original.Metadata, metadataLen)
	assert.NotContains(t, original.Metadata, MetadataCompactedFrom)
	assert.Len(t, original.Messages, messageCount)
	assert.Equal(t, firstText, original.Messages[0].Content[0].Text)

	// Mutating the derived copy must not reach the original.
	derived.Messages[0].Content[0].Text = "mutated"
	assert.Equal(t, "third", original.Messages[2].Content[0].Text)
}

func TestDerive_Chained(t *testing.T) {
	root := sampleSession()

	current := root
	for i := 0; i < 3; i++ {
		carried := append(
			[]sessionkit.Message{summaryMessage(fmt.Sprintf("summary %d", i))},
			current.Messages[len(current.Messages)-2:]...,
		)
		next := Derive(current, carried)
		require.NotNil(t, next.ParentID)
		assert.Equal(t, current.ID, *next.ParentID)
		current = next
	}

	assert.NotEqual(t, root.ID, current.ID)
}
