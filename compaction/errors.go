package compaction

import (
	"errors"
	"fmt"

	"github.com/sessionkit/sessionkit/validation"
)

// Sentinel errors for compaction operations.
var (
	// ErrInvalidConfig indicates invalid compaction configuration.
	ErrInvalidConfig = errors.New("invalid compaction configuration")

	// ErrNoMessagesToCompact indicates there is nothing to summarize.
	ErrNoMessagesToCompact = errors.New("no messages to compact")

	// ErrUnsafeSplit indicates no user-turn boundary satisfies both the
	// preserved-turn policy and the tool-pairing invariant. Callers
	// should reduce preserve_turns or skip compaction.
	ErrUnsafeSplit = errors.New("no safe turn boundary for compaction")

	// ErrSummarizerFailure indicates the external summarizer call failed,
	// timed out, was cancelled, or returned unusable content. The
	// original session is never affected; retrying later is safe.
	ErrSummarizerFailure = errors.New("summarizer failure")
)

// PostValidationError is returned when the assembled compacted transcript
// fails structural validation. It always carries the full report; a
// candidate that fails validation is never accepted.
type PostValidationError struct {
	Report *validation.Report
}

// Error implements the error interface.
func (e *PostValidationError) Error() string {
	n := 0
	if e.Report != nil {
		n = e.Report.ErrorCount()
	}
	return fmt.Sprintf("compacted transcript failed validation with %d error issue(s)", n)
}

// CompactionError provides structured error context for compaction
// operations.
type CompactionError struct {
	// Op is the operation that failed (e.g., "Compact", "Partition",
	// "Summarize").
	Op string

	// SessionID is the session being compacted, if known.
	SessionID string

	// Err is the underlying error.
	Err error

	// Context holds additional key-value pairs for debugging.
	Context map[string]any
}

// Error returns a formatted error message.
func (e *CompactionError) Error() string {
	msg := fmt.Sprintf("compaction %s failed", e.Op)
	if e.SessionID != "" {
		msg += fmt.Sprintf(" for session %s", e.SessionID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *CompactionError) Unwrap() error {
	return e.Err
}

// NewCompactionError creates a new CompactionError.
func NewCompactionError(op string, err error) *CompactionError {
	return &CompactionError{Op: op, Err: err}
}

// WithSession sets the session ID and returns the error for chaining.
func (e *CompactionError) WithSession(sessionID string) *CompactionError {
	e.SessionID = sessionID
	return e
}

// WithContext adds a key-value pair and returns the error for chaining.
func (e *CompactionError) WithContext(key string, value any) *CompactionError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
