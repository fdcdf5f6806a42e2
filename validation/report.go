package validation

// Severity classifies how serious a validation issue is.
type Severity string

const (
	// SeverityError issues make the transcript unacceptable to the API.
	SeverityError Severity = "error"

	// SeverityWarning issues are suspicious but not contract violations.
	SeverityWarning Severity = "warning"

	// SeverityInfo issues are informational, e.g. a legitimately
	// in-progress tool call on the final message.
	SeverityInfo Severity = "info"
)

// Code identifies the reason for a validation issue.
type Code string

const (
	// CodeRoleNotAlternating: two adjacent messages share a role.
	CodeRoleNotAlternating Code = "ROLE_NOT_ALTERNATING"

	// CodeOrphanedToolResult: a tool result references a tool use that
	// never appeared.
	CodeOrphanedToolResult Code = "ORPHANED_TOOL_RESULT"

	// CodeIncompleteToolUse: a tool use before the final message has no
	// matching tool result.
	CodeIncompleteToolUse Code = "INCOMPLETE_TOOL_USE"

	// CodeInProgressToolUse: the final message carries a tool use whose
	// result has not arrived yet. Informational only.
	CodeInProgressToolUse Code = "IN_PROGRESS_TOOL_USE"

	// CodeMalformedToolUse: a tool use block is missing its id or name,
	// reuses an id, or appears outside an assistant message.
	CodeMalformedToolUse Code = "MALFORMED_TOOL_USE"
)

// Status is the overall verdict of a validation run.
type Status string

const (
	StatusValid   Status = "valid"
	StatusInvalid Status = "invalid"
)

// Issue is a single defect or observation found during validation.
type Issue struct {
	Severity     Severity `json:"severity"`
	Code         Code     `json:"code"`
	MessageIndex int      `json:"message_index"`
	Detail       string   `json:"detail"`
}

// Counts summarizes the shape of the validated transcript.
type Counts struct {
	Messages         int `json:"messages"`
	ToolUseBlocks    int `json:"tool_use_blocks"`
	ToolResultBlocks int `json:"tool_result_blocks"`
}

// Report is the complete result of validating a transcript.
// Status is StatusInvalid iff at least one error-severity issue exists.
type Report struct {
	Status Status  `json:"status"`
	Issues []Issue `json:"issues"`
	Counts Counts  `json:"counts"`
}

// Valid reports whether the transcript passed validation.
func (r *Report) Valid() bool {
	return r.Status == StatusValid
}

// ErrorCount returns the number of error-severity issues.
func (r *Report) ErrorCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}

// IssuesWithCode returns all issues carrying the given code, in order.
func (r *Report) IssuesWithCode(code Code) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Code == code {
			out = append(out, issue)
		}
	}
	return out
}
