package react

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rickchristie/arkaine"
	"github.com/rickchristie/arkaine/format"
	"github.com/rickchristie/arkaine/hooks"
	"github.com/rickchristie/arkaine/internal/tt"
	"github.com/rickchristie/arkaine/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var searchArgs = []arkaine.Argument{
	{Name: "q", Type: "string", Description: "search query", Required: true},
}

func searchTool(result string) (*arkaine.FuncTool, *tt.Counter) {
	return tt.NewMockTool("search", searchArgs, tt.FailingN(result))
}

// ----------------------------------------------------------------------------
// Decisions
// ----------------------------------------------------------------------------

func TestAgent_Run_Decisions(t *testing.T) {
	type input struct {
		replies []string
	}

	type expected struct {
		answer     string
		modelCalls int
		toolCalls  int
		roles      []arkaine.Role // of the last model call
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name: "immediate answer",
			input: input{replies: []string{
				"Thought: done\nAnswer: The capital is Paris",
			}},
			expected: expected{
				answer:     "The capital is Paris",
				modelCalls: 1,
				roles:      []arkaine.Role{arkaine.RoleSystem, arkaine.RoleUser},
			},
		},
		{
			name: "tool call then answer",
			input: input{replies: []string{
				"Thought: checking\nAction: search\nAction Input: {\"q\": \"cats\"}",
				"Thought: found it\nAnswer: Cats purr.",
			}},
			expected: expected{
				answer:     "Cats purr.",
				modelCalls: 2,
				toolCalls:  1,
				roles: []arkaine.Role{
					arkaine.RoleSystem, arkaine.RoleUser, arkaine.RoleAssistant, arkaine.RoleSystem,
				},
			},
		},
		{
			name: "reasoning re-prompts",
			input: input{replies: []string{
				"Thought: only thinking",
				"Thought: now I know\nAnswer: 42",
			}},
			expected: expected{
				answer:     "42",
				modelCalls: 2,
				roles:      []arkaine.Role{arkaine.RoleSystem, arkaine.RoleUser, arkaine.RoleAssistant},
			},
		},
		{
			name: "action wins over answer in the same reply",
			input: input{replies: []string{
				"Thought: t\nAction: search\nAction Input: {\"q\": \"x\"}\nAnswer: premature",
				"Thought: t\nAnswer: grounded",
			}},
			expected: expected{
				answer:     "grounded",
				modelCalls: 2,
				toolCalls:  1,
				roles: []arkaine.Role{
					arkaine.RoleSystem, arkaine.RoleUser, arkaine.RoleAssistant, arkaine.RoleSystem,
				},
			},
		},
		{
			name: "multi-line answer",
			input: input{replies: []string{
				"Thought: listing\nAnswer: first\nsecond\n  third",
			}},
			expected: expected{
				answer:     "first\nsecond\n  third",
				modelCalls: 1,
				roles:      []arkaine.Role{arkaine.RoleSystem, arkaine.RoleUser},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			model := tt.NewMockModel()
			for _, r := range tc.input.replies {
				model.AddReply(r)
			}
			tool, counter := searchTool("found 3 cats")

			agent := NewAgent(model).RegisterTool(tool)
			answer, err := agent.Run(context.Background(), "tell me about cats")

			require.NoError(t, err)
			assert.Equal(t, tc.expected.answer, answer)
			assert.Equal(t, tc.expected.modelCalls, model.CallCount())
			assert.Equal(t, tc.expected.toolCalls, counter.Value())
			assert.Equal(t, tc.expected.roles, tt.Roles(model.LastMessages()))
		})
	}
}

func TestAgent_Run_ToolResultMessage(t *testing.T) {
	model := tt.NewMockModel().
		AddReply("Thought: checking\nAction: search\nAction Input: {\"q\": \"cats\", \"limit\": 3}").
		AddReply("Thought: done\nAnswer: ok")

	args := append([]arkaine.Argument{}, searchArgs...)
	args = append(args, arkaine.Argument{Name: "limit", Type: "int", Description: "max results"})
	tool, _ := tt.NewMockTool("search", args, tt.FailingN("Cats are small mammals."))

	_, err := NewAgent(model).RegisterTool(tool).Run(context.Background(), "cats")
	require.NoError(t, err)

	history := model.LastMessages()
	require.Len(t, history, 4)
	assert.Equal(t, "Thought: checking\nAction: search\nAction Input: {\"q\": \"cats\", \"limit\": 3}", history[2].Content)
	tt.AssertTextEqual(t,
		"---\nsearch(limit=3, q=\"cats\") returned:\nCats are small mammals.\n",
		history[3].Content,
	)
}

// ----------------------------------------------------------------------------
// Failures
// ----------------------------------------------------------------------------

func TestAgent_Run_Errors(t *testing.T) {
	errUpstream := errors.New("503 service unavailable")
	errTool := errors.New("index offline")

	type input struct {
		replies  []string
		modelErr error
		toolErr  error
		maxTurns int
	}

	type expected struct {
		kinds      []error
		modelCalls int
		toolCalls  int
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:     "missing thought is a response error wrapping the format error",
			input:    input{replies: []string{"I think the answer is 4"}},
			expected: expected{kinds: []error{arkaine.KindResponse, arkaine.KindFormat, arkaine.ErrMissingThought}, modelCalls: 1},
		},
		{
			name:     "action without input",
			input:    input{replies: []string{"Thought: t\nAction: search\nAnswer: x"}},
			expected: expected{kinds: []error{arkaine.KindResponse, arkaine.KindFormat, arkaine.ErrActionWithoutInput}, modelCalls: 1},
		},
		{
			name:     "empty reply",
			input:    input{replies: []string{""}},
			expected: expected{kinds: []error{arkaine.KindResponse, arkaine.ErrMissingThought}, modelCalls: 1},
		},
		{
			name:     "model failure",
			input:    input{modelErr: errUpstream},
			expected: expected{kinds: []error{arkaine.KindResponse, errUpstream}, modelCalls: 1},
		},
		{
			name:     "unknown tool",
			input:    input{replies: []string{"Thought: t\nAction: weather\nAction Input: {\"city\": \"Paris\"}"}},
			expected: expected{kinds: []error{arkaine.KindTool, arkaine.ErrUnknownTool}, modelCalls: 1},
		},
		{
			name:     "non-object arguments never reach the tool",
			input:    input{replies: []string{"Thought: t\nAction: search\nAction Input: 42"}},
			expected: expected{kinds: []error{arkaine.KindTool, arkaine.ErrInvalidArguments}, modelCalls: 1},
		},
		{
			name:     "raw string arguments never reach the tool",
			input:    input{replies: []string{"Thought: t\nAction: search\nAction Input: cats please"}},
			expected: expected{kinds: []error{arkaine.KindTool, arkaine.ErrInvalidArguments}, modelCalls: 1},
		},
		{
			name:     "schema mismatch",
			input:    input{replies: []string{"Thought: t\nAction: search\nAction Input: {\"query\": \"cats\"}"}},
			expected: expected{kinds: []error{arkaine.KindTool, arkaine.ErrInvalidArguments}, modelCalls: 1},
		},
		{
			name: "tool failure",
			input: input{
				replies: []string{"Thought: t\nAction: search\nAction Input: {\"q\": \"cats\"}"},
				toolErr: errTool,
			},
			expected: expected{kinds: []error{arkaine.KindTool, errTool}, modelCalls: 1, toolCalls: 1},
		},
		{
			name:     "runaway reasoning hits the turn bound",
			input:    input{replies: []string{"Thought: a", "Thought: b", "Thought: c"}, maxTurns: 3},
			expected: expected{kinds: []error{arkaine.KindResponse, arkaine.ErrMaxIterations}, modelCalls: 3},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			model := tt.NewMockModel()
			model.DefaultReply = "Thought: still thinking"
			for _, r := range tc.input.replies {
				model.AddReply(r)
			}
			if tc.input.modelErr != nil {
				model.AddError(tc.input.modelErr)
			}

			var toolErrs []error
			if tc.input.toolErr != nil {
				toolErrs = append(toolErrs, tc.input.toolErr)
			}
			tool, counter := tt.NewMockTool("search", searchArgs, tt.FailingN("ok", toolErrs...))

			agent := NewAgent(model).RegisterTool(tool).WithMaxTurns(tc.input.maxTurns)
			answer, err := agent.Run(context.Background(), "task")

			require.Error(t, err)
			assert.Empty(t, answer)
			for _, kind := range tc.expected.kinds {
				assert.ErrorIs(t, err, kind)
			}
			assert.Equal(t, tc.expected.modelCalls, model.CallCount())
			assert.Equal(t, tc.expected.toolCalls, counter.Value())
		})
	}
}

func TestAgent_Run_ToolErrorCarriesContext(t *testing.T) {
	errFlaky := errors.New("rate limited")
	base, counter := tt.NewMockTool("search", searchArgs, func(context.Context, arkaine.Arguments) (any, error) {
		return nil, errFlaky
	})
	wrapped := retry.MustWrap(base, retry.Config{MaxRetries: 2})

	model := tt.NewMockModel().AddReply("Thought: t\nAction: search\nAction Input: {\"q\": \"cats\"}")
	_, err := NewAgent(model).RegisterTool(wrapped).Run(context.Background(), "task")

	require.Error(t, err)
	assert.ErrorIs(t, err, arkaine.KindTool)
	assert.ErrorIs(t, err, retry.ErrExhausted)
	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 3, counter.Value())

	var ae *arkaine.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "search", ae.Tool)
	assert.Equal(t, 3, ae.Attempts)
}

func TestAgent_Run_ToolErrorsAsObservations(t *testing.T) {
	tests := []struct {
		name     string
		input    string // first reply
		expected string // injected observation prefix
	}{
		{
			name:     "unknown tool",
			input:    "Thought: t\nAction: weather\nAction Input: {\"city\": \"Paris\"}",
			expected: "---\nweather(city=\"Paris\") failed:\n",
		},
		{
			name:     "non-object arguments",
			input:    "Thought: t\nAction: search\nAction Input: 42",
			expected: "---\nsearch(42) failed:\n",
		},
		{
			name:     "tool failure",
			input:    "Thought: t\nAction: search\nAction Input: {\"q\": \"boom\"}",
			expected: "---\nsearch(q=\"boom\") failed:\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			model := tt.NewMockModel().
				AddReply(tc.input).
				AddReply("Thought: recovered\nAnswer: fine")
			tool, _ := tt.NewMockTool("search", searchArgs, func(_ context.Context, args arkaine.Arguments) (any, error) {
				if args["q"] == "boom" {
					return nil, errors.New("exploded")
				}
				return "ok", nil
			})

			agent := NewAgent(model).RegisterTool(tool).WithToolErrorsAsObservations(true)
			answer, err := agent.Run(context.Background(), "task")

			require.NoError(t, err)
			assert.Equal(t, "fine", answer)

			history := model.LastMessages()
			require.Len(t, history, 4)
			assert.Equal(t, arkaine.RoleSystem, history[3].Role)
			assert.True(t, strings.HasPrefix(history[3].Content, tc.expected), history[3].Content)
		})
	}
}

func TestAgent_Run_Cancellation(t *testing.T) {
	t.Run("during model call", func(t *testing.T) {
		model := tt.NewMockModel().WithDelay(time.Hour)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := NewAgent(model).Run(ctx, "task")
		assert.ErrorIs(t, err, arkaine.KindCancelled)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("during tool call", func(t *testing.T) {
		model := tt.NewMockModel().
			AddReply("Thought: t\nAction: search\nAction Input: {\"q\": \"slow\"}")
		tool, _ := tt.NewMockTool("search", searchArgs, func(ctx context.Context, _ arkaine.Arguments) (any, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(20*time.Millisecond, cancel)

		_, err := NewAgent(model).
			RegisterTool(tool).
			WithToolErrorsAsObservations(true).
			Run(ctx, "task")
		assert.ErrorIs(t, err, arkaine.KindCancelled, "cancellation is never turned into an observation")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// ----------------------------------------------------------------------------
// Concurrency
// ----------------------------------------------------------------------------

func TestAgent_Run_ParallelDispatchHonorsLimit(t *testing.T) {
	const calls = 6

	reply := "<thought>fan out</thought>\n"
	for i := 0; i < calls; i++ {
		reply += `<action>{"tool": "slow", "args": {"q": "x"}}</action>` + "\n"
	}
	model := tt.NewMockModel().
		AddReply(reply).
		AddReply("<thought>done</thought><answer>all done</answer>")

	var (
		current atomic.Int64
		peak    atomic.Int64
	)
	tool, counter := tt.NewMockTool("slow", searchArgs, func(context.Context, arkaine.Arguments) (any, error) {
		n := current.Add(1)
		defer current.Add(-1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		return "ok", nil
	})

	agent := NewAgent(model).
		WithFormat(format.NewXML()).
		RegisterTool(tool).
		WithMaxSimultaneousTools(2)

	answer, err := agent.Run(context.Background(), "task")
	require.NoError(t, err)
	assert.Equal(t, "all done", answer)
	assert.Equal(t, calls, counter.Value())
	assert.LessOrEqual(t, peak.Load(), int64(2))

	results := 0
	for _, m := range model.LastMessages() {
		if m.Role == arkaine.RoleSystem && strings.Contains(m.Content, "returned:") {
			results++
		}
	}
	assert.Equal(t, calls, results, "one message per completed call")
}

func TestAgent_Run_ParallelFailureCancelsSiblings(t *testing.T) {
	model := tt.NewMockModel().AddReply(`<thought>t</thought>
<action>{"tool": "fail", "args": {}}</action>
<action>{"tool": "wait", "args": {}}</action>`)

	errBoom := errors.New("boom")
	failing, _ := tt.NewMockTool("fail", nil, func(context.Context, arkaine.Arguments) (any, error) {
		return nil, errBoom
	})
	waiting, _ := tt.NewMockTool("wait", nil, func(ctx context.Context, _ arkaine.Arguments) (any, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
			return "late", nil
		}
	})

	start := time.Now()
	_, err := NewAgent(model).
		WithFormat(format.NewXML()).
		RegisterTool(failing).
		RegisterTool(waiting).
		Run(context.Background(), "task")

	assert.ErrorIs(t, err, errBoom)
	assert.ErrorIs(t, err, arkaine.KindTool)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestAgent_ConcurrentRunsAreIndependent(t *testing.T) {
	model := arkaine.ModelFunc(func(_ context.Context, msgs []arkaine.Message) (string, error) {
		task := strings.TrimPrefix(strings.Split(msgs[1].Content, "\n")[0], "Task: ")
		return "Thought: echo\nAnswer: " + task, nil
	})
	agent := NewAgent(model)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			task := strings.Repeat("x", i+1)
			answer, err := agent.Run(context.Background(), task)
			assert.NoError(t, err)
			assert.Equal(t, task, answer)
		}(i)
	}
	wg.Wait()
}

// ----------------------------------------------------------------------------
// Prompts
// ----------------------------------------------------------------------------

func TestAgent_Prompt(t *testing.T) {
	model := tt.NewMockModel()
	tool, _ := searchTool("ok")
	clock := arkaine.NewMockTimeProvider(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	agent := NewAgent(model).
		RegisterTool(tool).
		WithBehaviorAndContext("You help with cat facts. Today is {{.Time.Weekday}}.").
		WithCriticalRules("Never invent sources.").
		WithTimeProvider(clock)

	_, err := agent.Run(context.Background(), "how many cats?")
	require.NoError(t, err)

	msgs := model.LastMessages()
	require.Len(t, msgs, 2)

	system := msgs[0].Content
	assert.True(t, strings.HasPrefix(system, "You help with cat facts. Today is Monday.\n\n"))
	assert.Contains(t, system, "Today is Monday, 2026-03-02.")
	assert.Contains(t, system, "## Critical Rules\n\nNever invent sources.")
	assert.Contains(t, system, "- name: search")
	assert.Contains(t, system, "Action: the tool name, one of [search]")
	assert.NotContains(t, system, "No tools are available")

	tt.AssertTextEqual(t, "Task: how many cats?\n\nBegin!\n", msgs[1].Content)
}

func TestAgent_Prompt_NoTools(t *testing.T) {
	model := tt.NewMockModel()
	_, err := NewAgent(model).Run(context.Background(), "hi")
	require.NoError(t, err)

	system := model.LastMessages()[0].Content
	assert.Contains(t, system, "No tools are available")
	assert.NotContains(t, system, "## Critical Rules")
}

func TestAgent_Prompt_SharedFormat(t *testing.T) {
	shared := format.NewReAct()
	alpha, _ := tt.NewMockTool("alpha", searchArgs, tt.FailingN("a"))
	beta, _ := tt.NewMockTool("beta", searchArgs, tt.FailingN("b"))

	modelA, modelB := tt.NewMockModel(), tt.NewMockModel()
	agentA := NewAgent(modelA).WithFormat(shared).RegisterTool(alpha)
	agentB := NewAgent(modelB).WithFormat(shared).RegisterTool(beta)

	_, err := agentA.Run(context.Background(), "a")
	require.NoError(t, err)
	_, err = agentB.Run(context.Background(), "b")
	require.NoError(t, err)

	systemA := modelA.LastMessages()[0].Content
	systemB := modelB.LastMessages()[0].Content
	assert.Contains(t, systemA, "Action: the tool name, one of [alpha]")
	assert.NotContains(t, systemA, "beta")
	assert.Contains(t, systemB, "Action: the tool name, one of [beta]")
	assert.NotContains(t, systemB, "alpha")

	assert.NotContains(t, shared.Describe(), "one of [", "the caller's format is left untouched")
}

func TestAgent_TemplateStrings(t *testing.T) {
	agent := NewAgent(tt.NewMockModel())

	_, err := agent.WithSystemTemplateString("{{.Broken")
	assert.Error(t, err)
	_, err = agent.WithTaskTemplateString("{{.Broken")
	assert.Error(t, err)

	_, err = agent.WithSystemTemplateString("SYSTEM {{.ToolsPrompt}}")
	require.NoError(t, err)
	_, err = agent.WithTaskTemplateString("TASK {{.Task}}")
	require.NoError(t, err)

	model := tt.NewMockModel()
	agent.model = model
	_, err = agent.Run(context.Background(), "x")
	require.NoError(t, err)

	msgs := model.LastMessages()
	assert.Equal(t, "SYSTEM ", msgs[0].Content)
	assert.Equal(t, "TASK x", msgs[1].Content)
}

func TestAgent_RegisterDuplicatePanics(t *testing.T) {
	a, _ := searchTool("a")
	b, _ := searchTool("b")
	agent := NewAgent(tt.NewMockModel()).RegisterTool(a)
	assert.Panics(t, func() { agent.RegisterTool(b) })
}

// ----------------------------------------------------------------------------
// Hooks
// ----------------------------------------------------------------------------

type countingHook struct {
	mu     sync.Mutex
	events map[string]int
	errs   []error
}

func newCountingHook() *countingHook {
	return &countingHook{events: make(map[string]int)}
}

func (h *countingHook) inc(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events[name]++
}

func (h *countingHook) OnBeforeModelCall(*arkaine.ExecutionContext, arkaine.BeforeModelCallEvent) {
	h.inc("before_model")
}

func (h *countingHook) OnAfterModelCall(*arkaine.ExecutionContext, arkaine.AfterModelCallEvent) {
	h.inc("after_model")
}

func (h *countingHook) OnBeforeToolCall(*arkaine.ExecutionContext, arkaine.BeforeToolCallEvent) {
	h.inc("before_tool")
}

func (h *countingHook) OnAfterToolCall(_ *arkaine.ExecutionContext, e arkaine.AfterToolCallEvent) {
	h.inc("after_tool")
	if e.Error != nil {
		h.mu.Lock()
		h.errs = append(h.errs, e.Error)
		h.mu.Unlock()
	}
}

func TestAgent_Hooks(t *testing.T) {
	model := tt.NewMockModel().
		AddReply("Thought: t\nAction: search\nAction Input: {\"q\": \"cats\"}").
		AddReply("Thought: t\nAction: missing\nAction Input: {}").
		AddReply("Thought: t\nAnswer: done")
	tool, _ := searchTool("ok")
	hook := newCountingHook()

	_, err := NewAgent(model).
		RegisterTool(tool).
		WithToolErrorsAsObservations(true).
		WithHooks(hooks.NewRegistry().Register(hook)).
		Run(context.Background(), "task")
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		"before_model": 3,
		"after_model":  3,
		"before_tool":  1,
		"after_tool":   2,
	}, hook.events)
	require.Len(t, hook.errs, 1)
	assert.ErrorIs(t, hook.errs[0], arkaine.ErrUnknownTool)
}
