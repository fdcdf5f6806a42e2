package compaction

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/sessionkit/sessionkit"
)

// Estimator approximates the token cost of transcript content. An
// estimator must be deterministic and monotonic: appending any non-empty
// block to any message never decreases the estimate. Exact model
// tokenization is not required; compaction only compares estimates
// against thresholds.
type Estimator interface {
	// EstimateMessages returns the estimated token cost of the sequence,
	// including per-message structural overhead.
	EstimateMessages(messages []sessionkit.Message) int

	// EstimateText returns the estimated token cost of plain text.
	EstimateText(text string) int
}

// ShouldCompact reports whether the current token usage has reached the
// configured fraction of the context window.
func ShouldCompact(currentTokens, contextWindow int, threshold float64) bool {
	return float64(currentTokens) >= float64(contextWindow)*threshold
}

// Per-block structural overhead, in tokens. Matches the serialization
// overhead of the upstream message format closely enough for threshold
// comparison.
const (
	messageOverheadTokens = 4
	toolBlockOverhead     = 10
)

// HeuristicEstimator estimates tokens from character counts at roughly
// four characters per token, plus fixed per-message and per-tool-block
// overheads. It is deterministic and dependency-free.
//
// Accuracy: within ~±30% of real tokenizers on English prose, worse on
// source code and non-Latin scripts. Good enough for deciding when to
// compact; never use it for billing.
type HeuristicEstimator struct{}

// EstimateText implements Estimator.
func (HeuristicEstimator) EstimateText(text string) int {
	return approximateTokens(text)
}

// EstimateMessages implements Estimator.
func (e HeuristicEstimator) EstimateMessages(messages []sessionkit.Message) int {
	total := 0
	for _, msg := range messages {
		total += estimateMessage(e, msg)
	}
	return total
}

// approximateTokens estimates token count from character count at ~4
// characters per token, minimum 1 for non-empty text.
func approximateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	tokens := (len(text) + 3) / 4
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// estimateMessage walks a message's blocks, charging text through the
// estimator's EstimateText and adding structural overhead.
func estimateMessage(e Estimator, msg sessionkit.Message) int {
	total := messageOverheadTokens

	for _, block := range msg.Content {
		switch block.Type {
		case sessionkit.ContentTypeText, sessionkit.ContentTypeThinking:
			total += e.EstimateText(block.Text)
		case sessionkit.ContentTypeToolUse:
			total += toolBlockOverhead
			total += e.EstimateText(block.ToolName)
			if len(block.ToolInput) > 0 {
				total += e.EstimateText(string(block.ToolInput))
			}
		case sessionkit.ContentTypeToolResult:
			total += toolBlockOverhead
			total += e.EstimateText(block.ToolContent)
		}
	}

	return total
}

// TiktokenEstimator estimates tokens with a tiktoken encoding. The
// encoding is initialized lazily on first use (loading encoding data can
// be slow); until then, and on any initialization failure, it falls back
// to the heuristic so estimates stay total and deterministic per process.
type TiktokenEstimator struct {
	encoding string

	once    sync.Once
	enc     *tiktoken.Tiktoken
	initErr error
}

// DefaultEncoding is the tiktoken encoding used when none is given.
const DefaultEncoding = "cl100k_base"

// NewTiktokenEstimator creates an estimator for the given tiktoken
// encoding name, e.g. "cl100k_base" or "o200k_base".
func NewTiktokenEstimator(encoding string) *TiktokenEstimator {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	return &TiktokenEstimator{encoding: encoding}
}

func (t *TiktokenEstimator) init() {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding(t.encoding)
		if err != nil {
			t.initErr = err
			return
		}
		t.enc = enc
	})
}

// EstimateText implements Estimator.
func (t *TiktokenEstimator) EstimateText(text string) int {
	if len(text) == 0 {
		return 0
	}
	t.init()
	if t.initErr != nil || t.enc == nil {
		return approximateTokens(text)
	}
	n := len(t.enc.Encode(text, nil, nil))
	if n < 1 {
		n = 1
	}
	return n
}

// EstimateMessages implements Estimator.
func (t *TiktokenEstimator) EstimateMessages(messages []sessionkit.Message) int {
	total := 0
	for _, msg := range messages {
		total += estimateMessage(t, msg)
	}
	return total
}
