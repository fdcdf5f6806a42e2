package compaction

import (
	"github.com/sessionkit/sessionkit"
)

// prunedPlaceholder replaces oversized tool outputs in summarizer input.
const prunedPlaceholder = "[TOOL OUTPUT PRUNED]"

// pruneToolOutputs returns a deep copy of the messages with tool-result
// payloads longer than overChars replaced by a placeholder. Only the
// summarizer input is ever pruned; transcripts handed back to callers are
// built from unpruned originals.
func pruneToolOutputs(messages []sessionkit.Message, overChars int) []sessionkit.Message {
	out := sessionkit.CloneMessages(messages)
	for i := range out {
		for j := range out[i].Content {
			block := &out[i].Content[j]
			if block.Type != sessionkit.ContentTypeToolResult {
				continue
			}
			if len(block.ToolContent) > overChars {
				block.ToolContent = prunedPlaceholder
			}
		}
	}
	return out
}
