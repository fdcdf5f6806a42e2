// Package hooks provides an observability hook registry for the
// compaction engine. Callers register functions to run before and after
// compaction and after validation; the engine's data types are passed
// through unmodified. A hook returning an error stops the remaining
// hooks and is surfaced to the caller driving the trigger.
package hooks

import (
	"context"
	"sync"

	"github.com/sessionkit/sessionkit"
	"github.com/sessionkit/sessionkit/compaction"
	"github.com/sessionkit/sessionkit/validation"
)

// BeforeCompactionHook is called before a compaction attempt.
type BeforeCompactionHook func(ctx context.Context, session *sessionkit.Session) error

// AfterCompactionHook is called after a successful compaction.
type AfterCompactionHook func(ctx context.Context, result *compaction.Result) error

// ValidationHook is called after a validation run.
type ValidationHook func(ctx context.Context, sessionID string, report *validation.Report) error

// Registry holds registered hooks. The zero value is not usable; create
// with NewRegistry. Safe for concurrent registration and triggering.
type Registry struct {
	mu               sync.RWMutex
	beforeCompaction []BeforeCompactionHook
	afterCompaction  []AfterCompactionHook
	validation       []ValidationHook
}

// NewRegistry creates an empty hook registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// OnBeforeCompaction registers a hook to run before compaction.
func (r *Registry) OnBeforeCompaction(hook BeforeCompactionHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beforeCompaction = append(r.beforeCompaction, hook)
}

// OnAfterCompaction registers a hook to run after compaction.
func (r *Registry) OnAfterCompaction(hook AfterCompactionHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.afterCompaction = append(r.afterCompaction, hook)
}

// OnValidation registers a hook to run after a validation pass.
func (r *Registry) OnValidation(hook ValidationHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validation = append(r.validation, hook)
}

// TriggerBeforeCompaction calls registered before-compaction hooks in
// registration order, stopping at the first error.
func (r *Registry) TriggerBeforeCompaction(ctx context.Context, session *sessionkit.Session) error {
	r.mu.RLock()
	hooks := make([]BeforeCompactionHook, len(r.beforeCompaction))
	copy(hooks, r.beforeCompaction)
	r.mu.RUnlock()

	for _, hook := range hooks {
		if err := hook(ctx, session); err != nil {
			return err
		}
	}
	return nil
}

// TriggerAfterCompaction calls registered after-compaction hooks in
// registration order, stopping at the first error.
func (r *Registry) TriggerAfterCompaction(ctx context.Context, result *compaction.Result) error {
	r.mu.RLock()
	hooks := make([]AfterCompactionHook, len(r.afterCompaction))
	copy(hooks, r.afterCompaction)
	r.mu.RUnlock()

	for _, hook := range hooks {
		if err := hook(ctx, result); err != nil {
			return err
		}
	}
	return nil
}

// TriggerValidation calls registered validation hooks in registration
// order, stopping at the first error.
func (r *Registry) TriggerValidation(ctx context.Context, sessionID string, report *validation.Report) error {
	r.mu.RLock()
	hooks := make([]ValidationHook, len(r.validation))
	copy(hooks, r.validation)
	r.mu.RUnlock()

	for _, hook := range hooks {
		if err := hook(ctx, sessionID, report); err != nil {
			return err
		}
	}
	return nil
}
