package hooks

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickchristie/arkaine"
)

type logEntry struct {
	hook  string
	event string
}

type journal struct {
	mu      sync.Mutex
	entries []logEntry
}

func (j *journal) add(hook, event string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, logEntry{hook: hook, event: event})
}

func (j *journal) all() []logEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]logEntry(nil), j.entries...)
}

// everyHook implements all eight hook interfaces.
type everyHook struct {
	name string
	j    *journal
}

func (h *everyHook) OnBeforeExecution(*arkaine.ExecutionContext, arkaine.BeforeExecutionEvent) {
	h.j.add(h.name, "before_execution")
}

func (h *everyHook) OnAfterExecution(*arkaine.ExecutionContext, arkaine.AfterExecutionEvent) {
	h.j.add(h.name, "after_execution")
}

func (h *everyHook) OnBeforeIteration(*arkaine.ExecutionContext, arkaine.BeforeIterationEvent) {
	h.j.add(h.name, "before_iteration")
}

func (h *everyHook) OnAfterIteration(*arkaine.ExecutionContext, arkaine.AfterIterationEvent) {
	h.j.add(h.name, "after_iteration")
}

func (h *everyHook) OnBeforeModelCall(*arkaine.ExecutionContext, arkaine.BeforeModelCallEvent) {
	h.j.add(h.name, "before_model_call")
}

func (h *everyHook) OnAfterModelCall(*arkaine.ExecutionContext, arkaine.AfterModelCallEvent) {
	h.j.add(h.name, "after_model_call")
}

func (h *everyHook) OnBeforeToolCall(*arkaine.ExecutionContext, arkaine.BeforeToolCallEvent) {
	h.j.add(h.name, "before_tool_call")
}

func (h *everyHook) OnAfterToolCall(*arkaine.ExecutionContext, arkaine.AfterToolCallEvent) {
	h.j.add(h.name, "after_tool_call")
}

// toolOnlyHook implements only the tool call hooks.
type toolOnlyHook struct {
	j *journal
}

func (h *toolOnlyHook) OnBeforeToolCall(*arkaine.ExecutionContext, arkaine.BeforeToolCallEvent) {
	h.j.add("tools", "before_tool_call")
}

func (h *toolOnlyHook) OnAfterToolCall(*arkaine.ExecutionContext, arkaine.AfterToolCallEvent) {
	h.j.add("tools", "after_tool_call")
}

func fireAll(r *Registry, execCtx *arkaine.ExecutionContext) {
	r.FireBeforeExecution(execCtx, arkaine.BeforeExecutionEvent{})
	r.FireBeforeIteration(execCtx, arkaine.BeforeIterationEvent{})
	r.FireBeforeModelCall(execCtx, arkaine.BeforeModelCallEvent{})
	r.FireAfterModelCall(execCtx, arkaine.AfterModelCallEvent{})
	r.FireBeforeToolCall(execCtx, arkaine.BeforeToolCallEvent{})
	r.FireAfterToolCall(execCtx, arkaine.AfterToolCallEvent{})
	r.FireAfterIteration(execCtx, arkaine.AfterIterationEvent{})
	r.FireAfterExecution(execCtx, arkaine.AfterExecutionEvent{})
}

func TestRegistry_Fire(t *testing.T) {
	tests := []struct {
		name     string
		input    func(j *journal) []any
		expected []logEntry
	}{
		{
			name:     "empty registry",
			input:    func(*journal) []any { return nil },
			expected: nil,
		},
		{
			name: "hooks without any interface are skipped",
			input: func(*journal) []any {
				return []any{"not a hook", 42}
			},
			expected: nil,
		},
		{
			name: "partial implementation sees only its events",
			input: func(j *journal) []any {
				return []any{&toolOnlyHook{j: j}}
			},
			expected: []logEntry{
				{"tools", "before_tool_call"},
				{"tools", "after_tool_call"},
			},
		},
		{
			name: "registration order is call order",
			input: func(j *journal) []any {
				return []any{&everyHook{name: "a", j: j}, &toolOnlyHook{j: j}, &everyHook{name: "b", j: j}}
			},
			expected: []logEntry{
				{"a", "before_execution"},
				{"b", "before_execution"},
				{"a", "before_iteration"},
				{"b", "before_iteration"},
				{"a", "before_model_call"},
				{"b", "before_model_call"},
				{"a", "after_model_call"},
				{"b", "after_model_call"},
				{"a", "before_tool_call"},
				{"tools", "before_tool_call"},
				{"b", "before_tool_call"},
				{"a", "after_tool_call"},
				{"tools", "after_tool_call"},
				{"b", "after_tool_call"},
				{"a", "after_iteration"},
				{"b", "after_iteration"},
				{"a", "after_execution"},
				{"b", "after_execution"},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			j := &journal{}
			r := NewRegistry()
			for _, h := range tc.input(j) {
				r.Register(h)
			}

			fireAll(r, arkaine.NewExecutionContext(context.Background(), "run", "task"))

			assert.Equal(t, tc.expected, j.all())
		})
	}
}

func TestRegistry_Len(t *testing.T) {
	j := &journal{}
	r := NewRegistry()
	assert.Equal(t, 0, r.Len())

	same := r.Register(&toolOnlyHook{j: j}).Register(&everyHook{name: "a", j: j})
	assert.Same(t, r, same)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_InstalledAsHookFirer(t *testing.T) {
	j := &journal{}
	r := NewRegistry().Register(&toolOnlyHook{j: j})

	execCtx := arkaine.NewExecutionContext(context.Background(), "run", "task")
	execCtx.SetHookFirer(r)
	execCtx.FireBeforeToolCall(arkaine.BeforeToolCallEvent{ToolName: "search"})
	execCtx.FireAfterToolCall(arkaine.AfterToolCallEvent{ToolName: "search"})
	execCtx.FireBeforeModelCall(arkaine.BeforeModelCallEvent{})

	assert.Equal(t, []logEntry{
		{"tools", "before_tool_call"},
		{"tools", "after_tool_call"},
	}, j.all())
}

func TestRegistry_ConcurrentRegisterAndFire(t *testing.T) {
	j := &journal{}
	r := NewRegistry()
	execCtx := arkaine.NewExecutionContext(context.Background(), "run", "task")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.Register(&toolOnlyHook{j: j})
		}()
		go func() {
			defer wg.Done()
			r.FireAfterToolCall(execCtx, arkaine.AfterToolCallEvent{})
		}()
	}
	wg.Wait()

	require.Equal(t, 20, r.Len())

	before := len(j.all())
	r.FireAfterToolCall(execCtx, arkaine.AfterToolCallEvent{})
	assert.Len(t, j.all(), before+20)
}
