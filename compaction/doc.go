// Package compaction shrinks over-long conversations to fit a token
// budget while guaranteeing the result still satisfies the structural
// contract enforced by package validation.
//
// Compaction is transactional: the orchestrator partitions the transcript
// at a safe user-turn boundary, asks an external Summarizer for a
// narrative summary of the discarded head, assembles a candidate
// transcript of [summary message, preserved tail...], re-validates the
// candidate, and only then derives a new session. Any failure (an unsafe
// split, a summarizer error or timeout, a candidate that fails validation)
// aborts the whole operation and leaves the caller's session untouched.
//
// Token accounting is deliberately approximate and pluggable: the engine
// only needs threshold comparisons, not billing accuracy. The default
// HeuristicEstimator costs nothing; TiktokenEstimator trades a dependency
// for tighter bounds; AnthropicTokenCounter (separate from the Estimator
// interface because it performs I/O) gives exact counts via the API.
//
// Concurrent use: a Compactor is safe for concurrent calls on independent
// sessions, since every call works on its own copies. Concurrent
// compaction of the same session id is not serialized here: two callers
// can race to produce two divergent derived sessions, both valid and
// neither authoritative. Reconciliation belongs to the caller.
package compaction
