package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/sessionkit/sessionkit"
)

// SQLStore implements Store on database/sql. It targets PostgreSQL and
// uses lib/pq array support for the preserved-message-id columns; open
// the *sql.DB with the "postgres" (lib/pq) driver.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore creates a store over the given database handle. The caller
// owns the handle's lifecycle.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// EnsureSchema creates the sessionkit tables if they do not exist.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements(schemaSQL) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: ensure schema: %v", sessionkit.ErrStorageError, err)
		}
	}
	return nil
}

// CreateSession implements Store.
func (s *SQLStore) CreateSession(ctx context.Context, session *sessionkit.Session) error {
	metadataJSON, messagesJSON, err := marshalSession(session)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sessionkit_sessions (id, parent_id, model, metadata, messages, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	if _, err := s.db.ExecContext(ctx, query, session.ID, session.ParentID, session.Model, metadataJSON, messagesJSON); err != nil {
		return fmt.Errorf("%w: create session: %v", sessionkit.ErrStorageError, err)
	}
	return nil
}

// GetSession implements Store.
func (s *SQLStore) GetSession(ctx context.Context, sessionID string) (*sessionkit.Session, error) {
	query := `
		SELECT id, parent_id, model, metadata, messages, created_at, updated_at
		FROM sessionkit_sessions
		WHERE id = $1
	`

	var session sessionkit.Session
	var metadataJSON, messagesJSON []byte

	row := s.db.QueryRowContext(ctx, query, sessionID)
	err := row.Scan(&session.ID, &session.ParentID, &session.Model, &metadataJSON, &messagesJSON, &session.CreatedAt, &session.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sessionkit.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get session: %v", sessionkit.ErrStorageError, err)
	}

	if err := unmarshalSession(&session, metadataJSON, messagesJSON); err != nil {
		return nil, err
	}
	return &session, nil
}

// SaveSession implements Store.
func (s *SQLStore) SaveSession(ctx context.Context, session *sessionkit.Session) error {
	metadataJSON, messagesJSON, err := marshalSession(session)
	if err != nil {
		return err
	}

	query := `
		UPDATE sessionkit_sessions
		SET model = $2, metadata = $3, messages = $4, updated_at = NOW()
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, session.ID, session.Model, metadataJSON, messagesJSON)
	if err != nil {
		return fmt.Errorf("%w: save session: %v", sessionkit.ErrStorageError, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sessionkit.ErrSessionNotFound
	}
	return nil
}

// AppendMessages implements Store.
func (s *SQLStore) AppendMessages(ctx context.Context, sessionID string, messages []sessionkit.Message) error {
	if len(messages) == 0 {
		return nil
	}
	messagesJSON, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("%w: marshal messages: %v", sessionkit.ErrStorageError, err)
	}

	query := `
		UPDATE sessionkit_sessions
		SET messages = messages || $2::jsonb, updated_at = NOW()
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, sessionID, messagesJSON)
	if err != nil {
		return fmt.Errorf("%w: append messages: %v", sessionkit.ErrStorageError, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sessionkit.ErrSessionNotFound
	}
	return nil
}

// GetMessages implements Store.
func (s *SQLStore) GetMessages(ctx context.Context, sessionID string) ([]sessionkit.Message, error) {
	query := `SELECT messages FROM sessionkit_sessions WHERE id = $1`

	var messagesJSON []byte
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(&messagesJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sessionkit.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get messages: %v", sessionkit.ErrStorageError, err)
	}

	var messages []sessionkit.Message
	if err := json.Unmarshal(messagesJSON, &messages); err != nil {
		return nil, fmt.Errorf("%w: unmarshal messages: %v", sessionkit.ErrStorageError, err)
	}
	return messages, nil
}

// ListChildren implements Store.
func (s *SQLStore) ListChildren(ctx context.Context, sessionID string) ([]string, error) {
	query := `
		SELECT id FROM sessionkit_sessions
		WHERE parent_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: list children: %v", sessionkit.ErrStorageError, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: list children: %v", sessionkit.ErrStorageError, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list children: %v", sessionkit.ErrStorageError, err)
	}
	return ids, nil
}

// SaveCompactionEvent implements Store.
func (s *SQLStore) SaveCompactionEvent(ctx context.Context, event *CompactionEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	query := `
		INSERT INTO sessionkit_compaction_events
			(id, session_id, parent_session_id, original_tokens, summary_tokens, compacted_tokens,
			 messages_summarized, messages_preserved, preserved_message_ids, compression_ratio,
			 duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID, event.SessionID, event.ParentSessionID,
		event.OriginalTokens, event.SummaryTokens, event.CompactedTokens,
		event.MessagesSummarized, event.MessagesPreserved, pq.Array(event.PreservedMessageIDs),
		event.CompressionRatio, event.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("%w: save compaction event: %v", sessionkit.ErrStorageError, err)
	}
	return nil
}

// GetCompactionHistory implements Store.
func (s *SQLStore) GetCompactionHistory(ctx context.Context, sessionID string) ([]*CompactionEvent, error) {
	query := `
		SELECT id, session_id, parent_session_id, original_tokens, summary_tokens, compacted_tokens,
		       messages_summarized, messages_preserved, preserved_message_ids, compression_ratio,
		       duration_ms, created_at
		FROM sessionkit_compaction_events
		WHERE session_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: get compaction history: %v", sessionkit.ErrStorageError, err)
	}
	defer rows.Close()

	var events []*CompactionEvent
	for rows.Next() {
		var ev CompactionEvent
		if err := rows.Scan(
			&ev.ID, &ev.SessionID, &ev.ParentSessionID,
			&ev.OriginalTokens, &ev.SummaryTokens, &ev.CompactedTokens,
			&ev.MessagesSummarized, &ev.MessagesPreserved, pq.Array(&ev.PreservedMessageIDs),
			&ev.CompressionRatio, &ev.DurationMS, &ev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: get compaction history: %v", sessionkit.ErrStorageError, err)
		}
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: get compaction history: %v", sessionkit.ErrStorageError, err)
	}
	return events, nil
}
