package compaction

import (
	"github.com/sessionkit/sessionkit"
)

// turnStarts returns the indexes of messages that begin a user-initiated
// turn: every user message whose predecessor is not a user message. A
// turn is that user message plus all messages up to the next turn start.
func turnStarts(messages []sessionkit.Message) []int {
	var starts []int
	for i, msg := range messages {
		if msg.Role != sessionkit.RoleUser {
			continue
		}
		if i == 0 || messages[i-1].Role != sessionkit.RoleUser {
			starts = append(starts, i)
		}
	}
	return starts
}

// outstandingAt returns, for every boundary position b in [0, len],
// the number of assistant tool uses issued before b whose tool result has
// not yet appeared before b. A boundary with a zero count does not bisect
// any tool pairing.
func outstandingAt(messages []sessionkit.Message) []int {
	counts := make([]int, len(messages)+1)
	pending := make(map[string]struct{})

	for i, msg := range messages {
		counts[i] = len(pending)
		for _, block := range msg.Content {
			switch block.Type {
			case sessionkit.ContentTypeToolUse:
				if msg.Role == sessionkit.RoleAssistant && block.ToolUseID != "" {
					pending[block.ToolUseID] = struct{}{}
				}
			case sessionkit.ContentTypeToolResult:
				delete(pending, block.ToolResultForUseID)
			}
		}
	}
	counts[len(messages)] = len(pending)
	return counts
}

// splitForCompaction partitions the transcript into a head to summarize
// and a tail preserved verbatim. The boundary always lands on a user-turn
// start, so the tail is a self-contained conversation fragment. Starting
// from the boundary that keeps exactly preserveTurns turns, the search
// walks backward turn by turn until it finds a boundary that does not
// bisect an outstanding tool pairing.
//
// An empty head (the conversation has at most preserveTurns turns, or no
// safe boundary leaves anything to summarize) is returned without error;
// the caller treats it as a no-op. ErrUnsafeSplit is returned only when
// every candidate boundary would bisect a pairing.
func splitForCompaction(messages []sessionkit.Message, preserveTurns int) (head, tail []sessionkit.Message, err error) {
	starts := turnStarts(messages)
	if len(starts) <= preserveTurns {
		return nil, messages, nil
	}

	counts := outstandingAt(messages)

	// Explicit decreasing scan over turn starts; recursion would be easy
	// here but the worst case on very long histories must stay obvious.
	for p := len(starts) - preserveTurns; p >= 0; p-- {
		b := starts[p]
		if counts[b] != 0 {
			continue
		}
		if b == 0 {
			// The only safe boundary keeps everything: nothing to do.
			return nil, messages, nil
		}
		return messages[:b], messages[b:], nil
	}

	return nil, nil, ErrUnsafeSplit
}
