// Package storage persists sessions and compaction events in PostgreSQL.
// The engine never touches storage itself: callers load a session, hand
// it to the compactor by value, and save the derived session (plus,
// typically, the untouched original for audit).
//
// Two implementations are provided: PostgresStore on jackc/pgx, and
// SQLStore on database/sql for callers standardized on lib/pq.
package storage

import (
	"context"
	"strings"
	"time"

	"github.com/sessionkit/sessionkit"
)

// Store is the persistence interface for sessions and their compaction
// history.
type Store interface {
	// CreateSession inserts a new session, including its messages.
	CreateSession(ctx context.Context, session *sessionkit.Session) error

	// GetSession loads a session by ID. Returns
	// sessionkit.ErrSessionNotFound if it does not exist.
	GetSession(ctx context.Context, sessionID string) (*sessionkit.Session, error)

	// SaveSession updates an existing session's model, metadata, and
	// messages. The ID is immutable.
	SaveSession(ctx context.Context, session *sessionkit.Session) error

	// AppendMessages appends messages to an existing session's
	// transcript. Returns sessionkit.ErrSessionNotFound if the session
	// does not exist.
	AppendMessages(ctx context.Context, sessionID string, messages []sessionkit.Message) error

	// GetMessages loads only a session's messages. Returns
	// sessionkit.ErrSessionNotFound if the session does not exist.
	GetMessages(ctx context.Context, sessionID string) ([]sessionkit.Message, error)

	// ListChildren returns the IDs of sessions derived from the given
	// session, oldest first.
	ListChildren(ctx context.Context, sessionID string) ([]string, error)

	// SaveCompactionEvent records a performed compaction.
	SaveCompactionEvent(ctx context.Context, event *CompactionEvent) error

	// GetCompactionHistory returns compaction events for a session,
	// oldest first.
	GetCompactionHistory(ctx context.Context, sessionID string) ([]*CompactionEvent, error)
}

// schemaStatements splits the embedded schema into individual statements
// so drivers that reject multi-statement Exec calls can apply it.
func schemaStatements(schema string) []string {
	var statements []string
	for _, chunk := range strings.Split(schema, ";") {
		var lines []string
		for _, line := range strings.Split(chunk, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "--") {
				continue
			}
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			continue
		}
		statements = append(statements, strings.Join(lines, "\n"))
	}
	return statements
}

// CompactionEvent is the durable record of one performed compaction.
type CompactionEvent struct {
	ID                  string    `json:"id"`
	SessionID           string    `json:"session_id"`
	ParentSessionID     string    `json:"parent_session_id"`
	OriginalTokens      int       `json:"original_tokens"`
	SummaryTokens       int       `json:"summary_tokens"`
	CompactedTokens     int       `json:"compacted_tokens"`
	MessagesSummarized  int       `json:"messages_summarized"`
	MessagesPreserved   int       `json:"messages_preserved"`
	PreservedMessageIDs []string  `json:"preserved_message_ids"`
	CompressionRatio    float64   `json:"compression_ratio"`
	DurationMS          int64     `json:"duration_ms"`
	CreatedAt           time.Time `json:"created_at"`
}
