package sessionkit

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrSessionNotFound is returned when a session does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrStorageError is returned when a storage operation failed.
	ErrStorageError = errors.New("storage operation failed")
)

// SessionError represents an error with additional operation context.
type SessionError struct {
	Op        string         // Operation that failed
	SessionID string         // Session ID if applicable
	Err       error          // Underlying error
	Context   map[string]any // Additional context
}

// Error implements the error interface.
func (e *SessionError) Error() string {
	if e.SessionID != "" {
		return fmt.Sprintf("%s (session=%s): %v", e.Op, e.SessionID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *SessionError) Unwrap() error {
	return e.Err
}

// WithContext adds additional context to the error.
func (e *SessionError) WithContext(key string, value any) *SessionError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// NewSessionError creates a new SessionError.
func NewSessionError(op string, err error) *SessionError {
	return &SessionError{Op: op, Err: err}
}

// NewSessionErrorWithSession creates a new SessionError with a session ID.
func NewSessionErrorWithSession(op, sessionID string, err error) *SessionError {
	return &SessionError{Op: op, SessionID: sessionID, Err: err}
}
