package persistence

import (
	"context"
	"sync"
)

type commitHooksKey struct{}

// CommitHook is a side effect that must only happen once a unit of work is durable.
// It receives a context detached from the unit, so it never sees a finished database transaction.
type CommitHook func(ctx context.Context)

// CommitHooks collects the hooks of one unit of work
type CommitHooks struct {
	base  context.Context
	mu    sync.Mutex
	hooks []CommitHook
}

// WithCommitHooks attaches a fresh hook list to ctx. Unit of work implementations call it from Begin
// before adding their own values, so hooks later run against the caller's context.
func WithCommitHooks(ctx context.Context) (context.Context, *CommitHooks) {
	h := &CommitHooks{base: context.WithoutCancel(ctx)}
	return context.WithValue(ctx, commitHooksKey{}, h), h
}

// CommitHooksFrom returns the hook list carried by ctx, or nil outside a unit of work
func CommitHooksFrom(ctx context.Context) *CommitHooks {
	h, _ := ctx.Value(commitHooksKey{}).(*CommitHooks)
	return h
}

// AfterCommit defers fn until the unit of work in ctx commits.
// Outside a unit of work the write is already durable, so fn runs immediately.
func AfterCommit(ctx context.Context, fn CommitHook) {
	if h := CommitHooksFrom(ctx); h != nil {
		h.add(fn)
		return
	}
	fn(context.WithoutCancel(ctx))
}

func (h *CommitHooks) add(fn CommitHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, fn)
}

// Run executes the hooks in registration order and clears the list
func (h *CommitHooks) Run() {
	h.mu.Lock()
	hooks := h.hooks
	h.hooks = nil
	h.mu.Unlock()

	for _, fn := range hooks {
		fn(h.base)
	}
}

// Discard drops pending hooks after a rollback
func (h *CommitHooks) Discard() {
	h.mu.Lock()
	h.hooks = nil
	h.mu.Unlock()
}
