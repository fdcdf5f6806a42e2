package compaction

import (
	"context"

	"github.com/sessionkit/sessionkit"
)

// Summarizer is the external capability that turns the discarded head of
// a conversation into narrative text. The engine owns the protocol around
// the call (what is sent, what the response must satisfy, what happens on
// failure) but not the call itself.
//
// Implementations must honor ctx cancellation and deadlines; the
// orchestrator treats a timeout exactly like any other failure and aborts
// without touching the original session. The orchestrator never retries;
// retrying a paid generative call is caller policy.
type Summarizer interface {
	Summarize(ctx context.Context, messages []sessionkit.Message) (string, error)
}

// SummarizerFunc adapts a function to the Summarizer interface.
type SummarizerFunc func(ctx context.Context, messages []sessionkit.Message) (string, error)

// Summarize implements Summarizer.
func (f SummarizerFunc) Summarize(ctx context.Context, messages []sessionkit.Message) (string, error) {
	return f(ctx, messages)
}
