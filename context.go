package arkaine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TerminationReason records why a run stopped.
type TerminationReason string

const (
	TerminationSuccess         TerminationReason = "success"
	TerminationError           TerminationReason = "error"
	TerminationMaxIterations   TerminationReason = "max_iterations"
	TerminationContextCanceled TerminationReason = "context_canceled"
)

// ExecutionContext holds the state of one run: its Go context, the task, the message
// history and the outcome. It is owned by a single run and never shared between runs.
//
// History is safe for concurrent appends so that tool calls dispatched in parallel within
// one step can record their results as they complete.
type ExecutionContext struct {
	ctx  context.Context
	id   string
	name string
	task string

	mu                sync.Mutex
	messages          []Message
	iteration         int
	startTime         time.Time
	endTime           time.Time
	terminationReason TerminationReason
	result            string
	err               error
	hookFirer         HookFirer
}

// NewExecutionContext creates a context for a run named name working on task.
func NewExecutionContext(ctx context.Context, name string, task string) *ExecutionContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ExecutionContext{
		ctx:       ctx,
		id:        uuid.NewString(),
		name:      name,
		task:      task,
		startTime: time.Now(),
	}
}

// Context returns the Go context that bounds the run.
func (c *ExecutionContext) Context() context.Context {
	return c.ctx
}

// ID returns the run's unique identifier.
func (c *ExecutionContext) ID() string {
	return c.id
}

// Name returns the run's name.
func (c *ExecutionContext) Name() string {
	return c.name
}

// Task returns the task the run was started with.
func (c *ExecutionContext) Task() string {
	return c.task
}

// Messages returns a copy of the history accumulated so far.
func (c *ExecutionContext) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// AppendMessages appends msgs to the history.
func (c *ExecutionContext) AppendMessages(msgs ...Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msgs...)
}

// Iteration returns the current 1-based iteration number, or 0 before the first one.
func (c *ExecutionContext) Iteration() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.iteration
}

// StartIteration increments the iteration counter and returns the new value.
func (c *ExecutionContext) StartIteration() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.iteration++
	return c.iteration
}

// SetTermination records the outcome of the run.
func (c *ExecutionContext) SetTermination(reason TerminationReason, result string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.terminationReason = reason
	c.result = result
	c.err = err
	c.endTime = time.Now()
}

func (c *ExecutionContext) TerminationReason() TerminationReason {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.terminationReason
}

// Result returns the final answer, empty unless the run succeeded.
func (c *ExecutionContext) Result() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Error returns the failure that ended the run, if any.
func (c *ExecutionContext) Error() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Duration returns the run's wall time so far, or in total once terminated.
func (c *ExecutionContext) Duration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.endTime.IsZero() {
		return time.Since(c.startTime)
	}
	return c.endTime.Sub(c.startTime)
}

// SetHookFirer installs the dispatcher used by the Fire* methods. The executor calls this
// before the first iteration.
func (c *ExecutionContext) SetHookFirer(h HookFirer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hookFirer = h
}

func (c *ExecutionContext) firer() HookFirer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hookFirer
}

// FireBeforeModelCall dispatches event to the installed hooks, if any.
func (c *ExecutionContext) FireBeforeModelCall(event BeforeModelCallEvent) {
	if h := c.firer(); h != nil {
		h.FireBeforeModelCall(c, event)
	}
}

// FireAfterModelCall dispatches event to the installed hooks, if any.
func (c *ExecutionContext) FireAfterModelCall(event AfterModelCallEvent) {
	if h := c.firer(); h != nil {
		h.FireAfterModelCall(c, event)
	}
}

// FireBeforeToolCall dispatches event to the installed hooks, if any.
func (c *ExecutionContext) FireBeforeToolCall(event BeforeToolCallEvent) {
	if h := c.firer(); h != nil {
		h.FireBeforeToolCall(c, event)
	}
}

// FireAfterToolCall dispatches event to the installed hooks, if any.
func (c *ExecutionContext) FireAfterToolCall(event AfterToolCallEvent) {
	if h := c.firer(); h != nil {
		h.FireAfterToolCall(c, event)
	}
}
