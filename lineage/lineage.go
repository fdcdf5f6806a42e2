// Package lineage mints derived sessions. A derived session gets a fresh
// globally-unique identifier, points back at its original through
// ParentID, inherits the model, and records compaction provenance in its
// metadata. Originals are never modified; the parent/child chain is the
// audit trail.
package lineage

import (
	"time"

	"github.com/google/uuid"

	"github.com/sessionkit/sessionkit"
)

// Metadata keys recording compaction provenance on derived sessions.
const (
	MetadataCompactedFrom         = "compacted_from"
	MetadataCompactedAt           = "compacted_at"
	MetadataOriginalMessageCount  = "original_message_count"
	MetadataPreservedMessageCount = "preserved_message_count"
)

type options struct {
	now   func() time.Time
	newID func() string
}

// Option customizes Derive. Production callers need none of these; they
// exist so tests can pin time and identifiers.
type Option func(*options)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDFunc overrides identifier generation. The function must return
// globally-unique strings; an identifier collision is a correctness bug,
// not a performance one.
func WithIDFunc(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

// Derive builds a new session carrying the given messages, linked to the
// original as its child. Identifiers are random UUIDv4 strings (122 bits
// of randomness, collision probability cryptographically negligible).
// Metadata is shallow-copied from the original and augmented with
// provenance; messages are deep-cloned so the derived session shares no
// mutable state with the caller's values.
func Derive(original *sessionkit.Session, messages []sessionkit.Message, opts ...Option) *sessionkit.Session {
	o := options{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}

	now := o.now()
	parentID := original.ID

	preserved := 0
	for _, msg := range messages {
		if !msg.IsCompactionSummary() {
			preserved++
		}
	}

	metadata := make(map[string]any, len(original.Metadata)+4)
	for k, v := range original.Metadata {
		metadata[k] = v
	}
	metadata[MetadataCompactedFrom] = original.ID
	metadata[MetadataCompactedAt] = now.UTC().Format(time.RFC3339)
	metadata[MetadataOriginalMessageCount] = len(original.Messages)
	metadata[MetadataPreservedMessageCount] = preserved

	return &sessionkit.Session{
		ID:        o.newID(),
		ParentID:  &parentID,
		Model:     original.Model,
		Metadata:  metadata,
		Messages:  sessionkit.CloneMessages(messages),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
