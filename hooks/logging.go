package hooks

import (
	"context"
	"log"

	"github.com/sessionkit/sessionkit"
	"github.com/sessionkit/sessionkit/compaction"
	"github.com/sessionkit/sessionkit/validation"
)

// LoggingHooks provides built-in logging hooks for observability.
type LoggingHooks struct {
	logger *log.Logger
}

// NewLoggingHooks creates logging hooks with the provided logger.
func NewLoggingHooks(logger *log.Logger) *LoggingHooks {
	return &LoggingHooks{logger: logger}
}

// DefaultLoggingHooks creates logging hooks with the default logger.
func DefaultLoggingHooks() *LoggingHooks {
	return &LoggingHooks{logger: log.Default()}
}

// Register attaches all logging hooks to the registry.
func (h *LoggingHooks) Register(r *Registry) {
	r.OnBeforeCompaction(h.BeforeCompaction)
	r.OnAfterCompaction(h.AfterCompaction)
	r.OnValidation(h.Validation)
}

// BeforeCompaction logs the compaction attempt.
func (h *LoggingHooks) BeforeCompaction(ctx context.Context, session *sessionkit.Session) error {
	h.logger.Printf("[sessionkit] compacting session %s (%d messages)", session.ID, len(session.Messages))
	return nil
}

// AfterCompaction logs the compaction outcome.
func (h *LoggingHooks) AfterCompaction(ctx context.Context, result *compaction.Result) error {
	if result.Outcome != compaction.OutcomePerformed {
		h.logger.Printf("[sessionkit] compaction of %s skipped: %s", result.OriginalSessionID, result.Outcome)
		return nil
	}
	h.logger.Printf("[sessionkit] compacted %s -> %s: %d -> %d tokens (ratio %.4f)",
		result.OriginalSessionID, result.NewSessionID,
		result.OriginalTokens, result.CompactedTokens, result.CompressionRatio)
	return nil
}

// Validation logs the validation verdict.
func (h *LoggingHooks) Validation(ctx context.Context, sessionID string, report *validation.Report) error {
	h.logger.Printf("[sessionkit] validation of %s: %s (%d issues, %d errors)",
		sessionID, report.Status, len(report.Issues), report.ErrorCount())
	return nil
}
