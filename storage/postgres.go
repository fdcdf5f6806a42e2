package storage

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sessionkit/sessionkit"
)

//go:embed schema.sql
var schemaSQL string

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store over the given pool. The caller owns
// the pool's lifecycle.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the sessionkit tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements(schemaSQL) {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: ensure schema: %v", sessionkit.ErrStorageError, err)
		}
	}
	return nil
}

// CreateSession implements Store.
func (s *PostgresStore) CreateSession(ctx context.Context, session *sessionkit.Session) error {
	metadataJSON, messagesJSON, err := marshalSession(session)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sessionkit_sessions (id, parent_id, model, metadata, messages, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	if _, err := s.pool.Exec(ctx, query, session.ID, session.ParentID, session.Model, metadataJSON, messagesJSON); err != nil {
		return fmt.Errorf("%w: create session: %v", sessionkit.ErrStorageError, err)
	}
	return nil
}

// GetSession implements Store.
func (s *PostgresStore) GetSession(ctx context.Context, sessionID string) (*sessionkit.Session, error) {
	query := `
		SELECT id, parent_id, model, metadata, messages, created_at, updated_at
		FROM sessionkit_sessions
		WHERE id = $1
	`

	var session sessionkit.Session
	var metadataJSON, messagesJSON []byte

	row := s.pool.QueryRow(ctx, query, sessionID)
	err := row.Scan(&session.ID, &session.ParentID, &session.Model, &metadataJSON, &messagesJSON, &session.CreatedAt, &session.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
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
func (s *PostgresStore) SaveSession(ctx context.Context, session *sessionkit.Session) error {
	metadataJSON, messagesJSON, err := marshalSession(session)
	if err != nil {
		return err
	}

	query := `
		UPDATE sessionkit_sessions
		SET model = $2, metadata = $3, messages = $4, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, query, session.ID, session.Model, metadataJSON, messagesJSON)
	if err != nil {
		return fmt.Errorf("%w: save session: %v", sessionkit.ErrStorageError, err)
	}
	if tag.RowsAffected() == 0 {
		return sessionkit.ErrSessionNotFound
	}
	return nil
}

// AppendMessages implements Store. The append happens in the database, so
// concurrent appenders interleave instead of overwriting each other.
func (s *PostgresStore) AppendMessages(ctx context.Context, sessionID string, messages []sessionkit.Message) error {
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
	tag, err := s.pool.Exec(ctx, query, sessionID, messagesJSON)
	if err != nil {
		return fmt.Errorf("%w: append messages: %v", sessionkit.ErrStorageError, err)
	}
	if tag.RowsAffected() == 0 {
		return sessionkit.ErrSessionNotFound
	}
	return nil
}

// GetMessages implements Store.
func (s *PostgresStore) GetMessages(ctx context.Context, sessionID string) ([]sessionkit.Message, error) {
	query := `SELECT messages FROM sessionkit_sessions WHERE id = $1`

	var messagesJSON []byte
	err := s.pool.QueryRow(ctx, query, sessionID).Scan(&messagesJSON)
	if errors.Is(err, pgx.ErrNoRows) {
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
func (s *PostgresStore) ListChildren(ctx context.Context, sessionID string) ([]string, error) {
	query := `
		SELECT id FROM sessionkit_sessions
		WHERE parent_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.pool.Query(ctx, query, sessionID)
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
func (s *PostgresStore) SaveCompactionEvent(ctx context.Context, event *CompactionEvent) error {
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
	_, err := s.pool.Exec(ctx, query,
		event.ID, event.SessionID, event.ParentSessionID,
		event.OriginalTokens, event.SummaryTokens, event.CompactedTokens,
		event.MessagesSummarized, event.MessagesPreserved, event.PreservedMessageIDs,
		event.CompressionRatio, event.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("%w: save compaction event: %v", sessionkit.ErrStorageError, err)
	}
	return nil
}

// GetCompactionHistory implements Store.
func (s *PostgresStore) GetCompactionHistory(ctx context.Context, sessionID string) ([]*CompactionEvent, error) {
	query := `
		SELECT id, session_id, parent_session_id, original_tokens, summary_tokens, compacted_tokens,
		       messages_summarized, messages_preserved, preserved_message_ids, compression_ratio,
		       duration_ms, created_at
		FROM sessionkit_compaction_events
		WHERE session_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.pool.Query(ctx, query, sessionID)
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
			&ev.MessagesSummarized, &ev.MessagesPreserved, &ev.PreservedMessageIDs,
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

func marshalSession(session *sessionkit.Session) (metadataJSON, messagesJSON []byte, err error) {
	metadata := session.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err = json.Marshal(metadata)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: marshal metadata: %v", sessionkit.ErrStorageError, err)
	}

	messages := session.Messages
	if messages == nil {
		messages = []sessionkit.Message{}
	}
	messagesJSON, err = json.Marshal(messages)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: marshal messages: %v", sessionkit.ErrStorageError, err)
	}
	return metadataJSON, messagesJSON, nil
}

func unmarshalSession(session *sessionkit.Session, metadataJSON, messagesJSON []byte) error {
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &session.Metadata); err != nil {
			return fmt.Errorf("%w: unmarshal metadata: %v", sessionkit.ErrStorageError, err)
		}
	}
	if len(messagesJSON) > 0 {
		if err := json.Unmarshal(messagesJSON, &session.Messages); err != nil {
			return fmt.Errorf("%w: unmarshal messages: %v", sessionkit.ErrStorageError, err)
		}
	}
	return nil
}
