// Package validation checks conversation transcripts against the
// structural contract of strict conversational APIs: message roles must
// alternate, and every tool invocation by the assistant must be answered
// by exactly one tool result in the following user message.
//
// Validate is pure and total: it never fails, never mutates its input,
// and always returns a Report. Compaction runs the same Validate on both
// the original transcript and the compacted candidate, so a transcript
// accepted after compaction satisfies exactly the invariants the original
// was held to.
package validation
