package hooks

import (
	"sync"

	"github.com/rickchristie/arkaine"
)

// Registry stores hooks in registration order and dispatches events to the hooks that
// implement the matching interface.
//
//	registry := hooks.NewRegistry().
//	    Register(observe.NewLogHook(logger)).
//	    Register(metrics)
//	exec := executor.New(agent).WithHooks(registry)
//
// A single hook may implement any combination of the interfaces in package arkaine.
// Register is safe to call concurrently with the Fire methods; a hook registered during a
// run only sees events fired after Register returns.
type Registry struct {
	mu    sync.RWMutex
	hooks []any
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{hooks: make([]any, 0)}
}

// Register appends hook. Hooks are called in the order they are registered.
func (r *Registry) Register(hook any) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, hook)
	return r
}

// Len returns the number of registered hooks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks)
}

func (r *Registry) snapshot() []any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]any, len(r.hooks))
	copy(out, r.hooks)
	return out
}

func (r *Registry) FireBeforeExecution(execCtx *arkaine.ExecutionContext, event arkaine.BeforeExecutionEvent) {
	for _, h := range r.snapshot() {
		if hook, ok := h.(arkaine.BeforeExecutionHook); ok {
			hook.OnBeforeExecution(execCtx, event)
		}
	}
}

func (r *Registry) FireAfterExecution(execCtx *arkaine.ExecutionContext, event arkaine.AfterExecutionEvent) {
	for _, h := range r.snapshot() {
		if hook, ok := h.(arkaine.AfterExecutionHook); ok {
			hook.OnAfterExecution(execCtx, event)
		}
	}
}

func (r *Registry) FireBeforeIteration(execCtx *arkaine.ExecutionContext, event arkaine.BeforeIterationEvent) {
	for _, h := range r.snapshot() {
		if hook, ok := h.(arkaine.BeforeIterationHook); ok {
			hook.OnBeforeIteration(execCtx, event)
		}
	}
}

func (r *Registry) FireAfterIteration(execCtx *arkaine.ExecutionContext, event arkaine.AfterIterationEvent) {
	for _, h := range r.snapshot() {
		if hook, ok := h.(arkaine.AfterIterationHook); ok {
			hook.OnAfterIteration(execCtx, event)
		}
	}
}

func (r *Registry) FireBeforeModelCall(execCtx *arkaine.ExecutionContext, event arkaine.BeforeModelCallEvent) {
	for _, h := range r.snapshot() {
		if hook, ok := h.(arkaine.BeforeModelCallHook); ok {
			hook.OnBeforeModelCall(execCtx, event)
		}
	}
}

func (r *Registry) FireAfterModelCall(execCtx *arkaine.ExecutionContext, event arkaine.AfterModelCallEvent) {
	for _, h := range r.snapshot() {
		if hook, ok := h.(arkaine.AfterModelCallHook); ok {
			hook.OnAfterModelCall(execCtx, event)
		}
	}
}

func (r *Registry) FireBeforeToolCall(execCtx *arkaine.ExecutionContext, event arkaine.BeforeToolCallEvent) {
	for _, h := range r.snapshot() {
		if hook, ok := h.(arkaine.BeforeToolCallHook); ok {
			hook.OnBeforeToolCall(execCtx, event)
		}
	}
}

func (r *Registry) FireAfterToolCall(execCtx *arkaine.ExecutionContext, event arkaine.AfterToolCallEvent) {
	for _, h := range r.snapshot() {
		if hook, ok := h.(arkaine.AfterToolCallHook); ok {
			hook.OnAfterToolCall(execCtx, event)
		}
	}
}

// Compile-time check that Registry implements arkaine.HookFirer.
var _ arkaine.HookFirer = (*Registry)(nil)
