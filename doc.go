// Package sessionkit provides the conversation model and supporting engine
// for long-running, tool-using agent sessions: structural validation of
// transcripts against the strict role-alternation and tool-pairing contract
// of conversational APIs, and token-budget compaction that replaces the
// older part of a conversation with a generated summary while provably
// keeping the transcript valid.
//
// The root package holds the immutable value model (Session, Message,
// ContentBlock). The engine itself lives in subpackages:
//
//   - validation: pure structural validator producing a Report
//   - compaction: token accounting, compaction policy, and the
//     orchestrator that builds, validates, and commits a compacted
//     transcript
//   - lineage: derivation of new sessions from compacted transcripts with
//     parent/child provenance
//   - storage: a Store interface plus PostgreSQL implementations for
//     callers that persist sessions and compaction events
//   - hooks: an observability hook registry
//
// # Immutability
//
// Messages and sessions are treated as values. The engine never mutates
// its input: compaction deep-clones what it keeps and assembles a fresh
// Session, so the original remains available for audit or rollback.
//
// # Quick start
//
//	cfg := compaction.DefaultConfig()
//	summarizer := compaction.NewAnthropicSummarizer(client, "claude-3-5-haiku-20241022", 4096)
//	compactor, _ := compaction.New(cfg, nil, summarizer, nil)
//
//	result, err := compactor.Compact(ctx, session)
//	if err != nil {
//	    // original session is untouched on every error path
//	    return err
//	}
//	if result.Outcome == compaction.OutcomePerformed {
//	    _ = store.CreateSession(ctx, result.Session)
//	}
package sessionkit
