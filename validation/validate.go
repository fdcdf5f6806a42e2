package validation

import (
	"fmt"

	"github.com/sessionkit/sessionkit"
)

// Validate walks the transcript once and reports every structural defect
// it finds. It is deterministic, side-effect-free, and total: a nil or
// empty transcript is trivially valid.
//
// The invariants checked:
//
//   - roles alternate between adjacent messages
//   - every assistant tool use is matched by exactly one later tool
//     result in a user message; the only unmatched tool uses allowed are
//     on the final message (reported as info, not error)
//   - no tool result references an unknown or already-matched tool use
//   - tool use blocks carry an id and a name, ids are unique, and tool
//     uses appear only in assistant messages
func Validate(messages []sessionkit.Message) *Report {
	report := &Report{Status: StatusValid}

	// pending maps an outstanding tool use id to the index of the message
	// that issued it. pendingOrder keeps emission order deterministic.
	pending := make(map[string]int)
	var pendingOrder []string
	seen := make(map[string]bool)

	for i, msg := range messages {
		report.Counts.Messages++

		if i > 0 && msg.Role == messages[i-1].Role {
			report.addIssue(Issue{
				Severity:     SeverityError,
				Code:         CodeRoleNotAlternating,
				MessageIndex: i,
				Detail:       fmt.Sprintf("message %d and message %d both have role %q", i-1, i, msg.Role),
			})
		}

		for _, block := range msg.Content {
			switch block.Type {
			case sessionkit.ContentTypeToolUse:
				report.Counts.ToolUseBlocks++

				if block.ToolUseID == "" || block.ToolName == "" {
					report.addIssue(Issue{
						Severity:     SeverityError,
						Code:         CodeMalformedToolUse,
						MessageIndex: i,
						Detail:       "tool use block missing id or name",
					})
					continue
				}
				if msg.Role != sessionkit.RoleAssistant {
					report.addIssue(Issue{
						Severity:     SeverityError,
						Code:         CodeMalformedToolUse,
						MessageIndex: i,
						Detail:       fmt.Sprintf("tool use %q appears in a %s message", block.ToolUseID, msg.Role),
					})
					continue
				}
				if seen[block.ToolUseID] {
					report.addIssue(Issue{
						Severity:     SeverityError,
						Code:         CodeMalformedToolUse,
						MessageIndex: i,
						Detail:       fmt.Sprintf("tool use id %q is not unique within the session", block.ToolUseID),
					})
					continue
				}
				seen[block.ToolUseID] = true
				pending[block.ToolUseID] = i
				pendingOrder = append(pendingOrder, block.ToolUseID)

			case sessionkit.ContentTypeToolResult:
				report.Counts.ToolResultBlocks++

				if msg.Role == sessionkit.RoleUser {
					if _, ok := pending[block.ToolResultForUseID]; ok {
						delete(pending, block.ToolResultForUseID)
						continue
					}
				}
				report.addIssue(Issue{
					Severity:     SeverityError,
					Code:         CodeOrphanedToolResult,
					MessageIndex: i,
					Detail:       fmt.Sprintf("tool result references %q which has no outstanding tool use", block.ToolResultForUseID),
				})

			case sessionkit.ContentTypeText, sessionkit.ContentTypeThinking:
				// No structural constraints beyond role alternation.
			}
		}
	}

	last := len(messages) - 1
	for _, id := range pendingOrder {
		idx, ok := pending[id]
		if !ok {
			continue
		}
		if idx == last {
			report.addIssue(Issue{
				Severity:     SeverityInfo,
				Code:         CodeInProgressToolUse,
				MessageIndex: idx,
				Detail:       fmt.Sprintf("tool use %q on the final message has no result yet", id),
			})
		} else {
			report.addIssue(Issue{
				Severity:     SeverityError,
				Code:         CodeIncompleteToolUse,
				MessageIndex: idx,
				Detail:       fmt.Sprintf("tool use %q was never answered by a tool result", id),
			})
		}
	}

	return report
}

func (r *Report) addIssue(issue Issue) {
	r.Issues = append(r.Issues, issue)
	if issue.Severity == SeverityError {
		r.Status = StatusInvalid
	}
}
