package arkaine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExecutionContext(t *testing.T) {
	execCtx := NewExecutionContext(nil, "run", "task")

	assert.NotNil(t, execCtx.Context())
	assert.NotEmpty(t, execCtx.ID())
	assert.Equal(t, "run", execCtx.Name())
	assert.Equal(t, "task", execCtx.Task())
	assert.Equal(t, 0, execCtx.Iteration())
	assert.Empty(t, execCtx.Messages())
	assert.Empty(t, execCtx.TerminationReason())

	other := NewExecutionContext(context.Background(), "run", "task")
	assert.NotEqual(t, execCtx.ID(), other.ID())
}

func TestExecutionContext_MessagesIsCopy(t *testing.T) {
	execCtx := NewExecutionContext(context.Background(), "run", "task")
	execCtx.AppendMessages(SystemMessage("s"), UserMessage("u"))

	msgs := execCtx.Messages()
	msgs[0].Content = "changed"

	assert.Equal(t, []Message{SystemMessage("s"), UserMessage("u")}, execCtx.Messages())
}

func TestExecutionContext_ConcurrentAppends(t *testing.T) {
	execCtx := NewExecutionContext(context.Background(), "run", "task")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			execCtx.AppendMessages(AssistantMessage("x"))
		}()
	}
	wg.Wait()

	assert.Len(t, execCtx.Messages(), 50)
}

func TestExecutionContext_Termination(t *testing.T) {
	errBoom := errors.New("boom")

	type input struct {
		reason TerminationReason
		result string
		err    error
	}

	tests := []struct {
		name  string
		input input
	}{
		{name: "success", input: input{reason: TerminationSuccess, result: "42"}},
		{name: "error", input: input{reason: TerminationError, err: errBoom}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			execCtx := NewExecutionContext(context.Background(), "run", "task")
			assert.Equal(t, 1, execCtx.StartIteration())
			assert.Equal(t, 2, execCtx.StartIteration())

			execCtx.SetTermination(tc.input.reason, tc.input.result, tc.input.err)
			d := execCtx.Duration()

			assert.Equal(t, tc.input.reason, execCtx.TerminationReason())
			assert.Equal(t, tc.input.result, execCtx.Result())
			assert.Equal(t, tc.input.err, execCtx.Error())
			assert.Equal(t, 2, execCtx.Iteration())
			assert.Equal(t, d, execCtx.Duration(), "duration is frozen once terminated")
		})
	}
}

type firerRecorder struct {
	events []string
}

func (f *firerRecorder) FireBeforeModelCall(*ExecutionContext, BeforeModelCallEvent) {
	f.events = append(f.events, "before_model")
}

func (f *firerRecorder) FireAfterModelCall(*ExecutionContext, AfterModelCallEvent) {
	f.events = append(f.events, "after_model")
}

func (f *firerRecorder) FireBeforeToolCall(*ExecutionContext, BeforeToolCallEvent) {
	f.events = append(f.events, "before_tool")
}

func (f *firerRecorder) FireAfterToolCall(*ExecutionContext, AfterToolCallEvent) {
	f.events = append(f.events, "after_tool")
}

func TestExecutionContext_Fire(t *testing.T) {
	execCtx := NewExecutionContext(context.Background(), "run", "task")

	// No firer installed: nothing happens.
	execCtx.FireBeforeModelCall(BeforeModelCallEvent{})

	rec := &firerRecorder{}
	execCtx.SetHookFirer(rec)
	execCtx.FireBeforeModelCall(BeforeModelCallEvent{})
	execCtx.FireAfterModelCall(AfterModelCallEvent{})
	execCtx.FireBeforeToolCall(BeforeToolCallEvent{})
	execCtx.FireAfterToolCall(AfterToolCallEvent{})

	require.Equal(t, []string{"before_model", "after_model", "before_tool", "after_tool"}, rec.events)
}

func TestCalls(t *testing.T) {
	one := ToolCall{ToolName: "a"}
	two := ToolCall{ToolName: "b"}

	tests := []struct {
		name     string
		input    Decision
		expected []ToolCall
	}{
		{name: "reasoning", input: Reasoning{Text: "hmm"}, expected: nil},
		{name: "answer", input: FinalAnswer{Answer: "42"}, expected: nil},
		{name: "single call", input: one, expected: []ToolCall{one}},
		{name: "several calls", input: ToolCalls{Calls: []ToolCall{one, two}}, expected: []ToolCall{one, two}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Calls(tc.input))
		})
	}
}
