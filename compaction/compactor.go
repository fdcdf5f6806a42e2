package compaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sessionkit/sessionkit"
	"github.com/sessionkit/sessionkit/lineage"
	"github.com/sessionkit/sessionkit/validation"
)

// Outcome distinguishes the ways a compaction call can succeed.
type Outcome string

const (
	// OutcomePerformed: the session was compacted and a derived session
	// is attached to the result.
	OutcomePerformed Outcome = "performed"

	// OutcomeNotNeeded: token usage is below the trigger threshold.
	OutcomeNotNeeded Outcome = "not_needed"

	// OutcomeTooShort: the conversation has no summarizable head once
	// the preserved turns are accounted for.
	OutcomeTooShort Outcome = "too_short"
)

// Result contains the outcome of a compaction operation. Session and
// SummaryMessage are populated only when Outcome is OutcomePerformed.
type Result struct {
	// Outcome tells performed, not-needed, and too-short apart.
	Outcome Outcome

	// OriginalSessionID is the session handed in.
	OriginalSessionID string

	// NewSessionID is the derived session's identifier.
	NewSessionID string

	// Session is the derived session: summary message plus preserved
	// tail, validated, with lineage metadata. The input session is never
	// modified.
	Session *sessionkit.Session

	// SummaryMessage is the synthetic assistant message holding the
	// generated summary.
	SummaryMessage *sessionkit.Message

	// OriginalMessageCount is the input transcript length.
	OriginalMessageCount int

	// SummarizedMessageCount is how many head messages the summary
	// replaced.
	SummarizedMessageCount int

	// PreservedMessageCount is the length of the verbatim tail.
	PreservedMessageCount int

	// PreservedMessageIDs lists the tail message IDs, in order.
	PreservedMessageIDs []string

	// OriginalTokens is the estimate for the full input transcript.
	OriginalTokens int

	// SummaryTokens is the estimate for the summary message.
	SummaryTokens int

	// CompactedTokens is the estimate for the derived transcript.
	CompactedTokens int

	// CompressionRatio is SummaryTokens / OriginalTokens.
	CompressionRatio float64

	// Duration is how long the compaction took.
	Duration time.Duration
}

// Stats describes a session's standing against the compaction policy.
type Stats struct {
	SessionID       string
	TotalMessages   int
	TotalTokens     int
	TurnCount       int
	UsagePercent    float64
	NeedsCompaction bool
}

// Compactor orchestrates conversation compaction. It holds no mutable
// state between calls and is safe for concurrent use on independent
// sessions; concurrent compaction of the same session id is a caller
// concern (see the package documentation).
type Compactor struct {
	config     *Config
	estimator  Estimator
	summarizer Summarizer
	logger     Logger
}

// New creates a Compactor. A nil config gets defaults, a nil estimator
// gets HeuristicEstimator, a nil logger is silenced. The summarizer is
// required.
func New(config *Config, estimator Estimator, summarizer Summarizer, logger Logger) (*Compactor, error) {
	if config == nil {
		config = DefaultConfig()
	} else {
		config.ApplyDefaults()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if summarizer == nil {
		return nil, NewCompactionError("New", errors.New("summarizer is required"))
	}
	if estimator == nil {
		estimator = HeuristicEstimator{}
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Compactor{
		config:     config,
		estimator:  estimator,
		summarizer: summarizer,
		logger:     logger,
	}, nil
}

// Config returns the compactor's configuration.
func (c *Compactor) Config() *Config {
	return c.config
}

// Stats reports the session's token usage and whether the policy calls
// for compaction. Pure: no external calls.
func (c *Compactor) Stats(session *sessionkit.Session) *Stats {
	if session == nil {
		return &Stats{}
	}
	tokens := c.estimator.EstimateMessages(session.Messages)
	return &Stats{
		SessionID:       session.ID,
		TotalMessages:   len(session.Messages),
		TotalTokens:     tokens,
		TurnCount:       len(turnStarts(session.Messages)),
		UsagePercent:    float64(tokens) / float64(c.config.ContextWindow),
		NeedsCompaction: ShouldCompact(tokens, c.config.ContextWindow, c.config.TriggerThreshold),
	}
}

// Compact applies the compaction policy to the session. If usage is below
// the trigger threshold or the conversation is shorter than the preserved
// window, it returns a no-op Result whose Outcome says so.
//
// Compaction is all-or-nothing: on any error the input session is
// untouched and no derived session exists. The only suspension point is
// the summarizer call; cancel or time-bound it through ctx.
func (c *Compactor) Compact(ctx context.Context, session *sessionkit.Session) (*Result, error) {
	return c.compact(ctx, session, false)
}

// ForceCompact compacts regardless of the trigger threshold. Useful when
// the caller has better information than the estimator, e.g. an exact
// count from AnthropicTokenCounter.
func (c *Compactor) ForceCompact(ctx context.Context, session *sessionkit.Session) (*Result, error) {
	return c.compact(ctx, session, true)
}

func (c *Compactor) compact(ctx context.Context, session *sessionkit.Session, force bool) (*Result, error) {
	start := time.Now()

	if session == nil {
		return nil, NewCompactionError("Compact", errors.New("session is nil"))
	}

	originalTokens := c.estimator.EstimateMessages(session.Messages)

	if !force && !ShouldCompact(originalTokens, c.config.ContextWindow, c.config.TriggerThreshold) {
		c.logger.Debug("compaction not needed",
			"session_id", session.ID,
			"tokens", originalTokens,
			"trigger_tokens", c.config.TriggerTokens(),
		)
		return &Result{
			Outcome:              OutcomeNotNeeded,
			OriginalSessionID:    session.ID,
			OriginalMessageCount: len(session.Messages),
			OriginalTokens:       originalTokens,
			Duration:             time.Since(start),
		}, nil
	}

	head, tail, err := splitForCompaction(session.Messages, c.config.PreserveTurns)
	if err != nil {
		return nil, NewCompactionError("Partition", err).
			WithSession(session.ID).
			WithContext("preserve_turns", c.config.PreserveTurns)
	}
	if len(head) == 0 {
		c.logger.Debug("conversation shorter than preserved window",
			"session_id", session.ID,
			"messages", len(session.Messages),
		)
		return &Result{
			Outcome:              OutcomeTooShort,
			OriginalSessionID:    session.ID,
			OriginalMessageCount: len(session.Messages),
			OriginalTokens:       originalTokens,
			Duration:             time.Since(start),
		}, nil
	}

	c.logger.Info("starting compaction",
		"session_id", session.ID,
		"messages", len(session.Messages),
		"head", len(head),
		"tail", len(tail),
		"tokens", originalTokens,
	)

	summaryInput := head
	if c.config.PruneToolOutputs {
		summaryInput = pruneToolOutputs(head, c.config.PruneOverChars)
	}

	summaryText, err := c.summarizer.Summarize(ctx, summaryInput)
	if err != nil {
		if !errors.Is(err, ErrSummarizerFailure) {
			err = joinSummarizerErr(err)
		}
		return nil, NewCompactionError("Summarize", err).WithSession(session.ID)
	}
	summaryText = strings.TrimSpace(summaryText)
	if summaryText == "" {
		return nil, NewCompactionError("Summarize", joinSummarizerErr(errors.New("empty summary"))).
			WithSession(session.ID)
	}

	summary := sessionkit.NewAssistantMessage(sessionkit.NewTextBlock(summaryText))
	summary.Metadata[sessionkit.MetadataKeySummary] = true
	summary.Metadata["summarized_messages"] = len(head)

	candidate := make([]sessionkit.Message, 0, 1+len(tail))
	candidate = append(candidate, summary)
	candidate = append(candidate, sessionkit.CloneMessages(tail)...)

	report := validation.Validate(candidate)
	if !report.Valid() {
		c.logger.Error("compacted transcript failed validation",
			"session_id", session.ID,
			"error_issues", report.ErrorCount(),
		)
		return nil, NewCompactionError("Validate", &PostValidationError{Report: report}).
			WithSession(session.ID)
	}

	derived := lineage.Derive(session, candidate)

	summaryTokens := c.estimator.EstimateMessages([]sessionkit.Message{summary})
	compactedTokens := c.estimator.EstimateMessages(candidate)
	ratio := 0.0
	if originalTokens > 0 {
		ratio = float64(summaryTokens) / float64(originalTokens)
	}

	preservedIDs := make([]string, len(tail))
	for i, msg := range tail {
		preservedIDs[i] = msg.ID
	}

	result := &Result{
		Outcome:                OutcomePerformed,
		OriginalSessionID:      session.ID,
		NewSessionID:           derived.ID,
		Session:                derived,
		SummaryMessage:         &summary,
		OriginalMessageCount:   len(session.Messages),
		SummarizedMessageCount: len(head),
		PreservedMessageCount:  len(tail),
		PreservedMessageIDs:    preservedIDs,
		OriginalTokens:         originalTokens,
		SummaryTokens:          summaryTokens,
		CompactedTokens:        compactedTokens,
		CompressionRatio:       ratio,
		Duration:               time.Since(start),
	}

	c.logger.Info("compaction complete",
		"session_id", session.ID,
		"new_session_id", derived.ID,
		"original_tokens", originalTokens,
		"compacted_tokens", compactedTokens,
		"compression_ratio", ratio,
		"duration_ms", result.Duration.Milliseconds(),
	)

	return result, nil
}

// joinSummarizerErr tags an arbitrary summarizer error with the sentinel
// so callers can branch on errors.Is(err, ErrSummarizerFailure).
func joinSummarizerErr(err error) error {
	return fmt.Errorf("%w: %v", ErrSummarizerFailure, err)
}
