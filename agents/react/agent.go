package react

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/rickchristie/arkaine"
	"github.com/rickchristie/arkaine/executor"
	"github.com/rickchristie/arkaine/format"
	"github.com/rickchristie/arkaine/hooks"
	"github.com/rickchristie/arkaine/retry"
	"github.com/rickchristie/arkaine/toolchain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultMaxSimultaneousTools bounds concurrent tool calls within one step when
// WithMaxSimultaneousTools is not called.
const DefaultMaxSimultaneousTools = 4

// Agent implements the ReAct (Reasoning and Acting) agent loop.
// Flow: Think -> Act -> Observe -> Repeat until an answer.
//
// The history of a run is built as follows:
//   - System message: ReAct explanation, tool catalog and reply protocol
//   - User message: the task
//   - Assistant message per model reply
//   - System message per completed tool call, in completion order
//
// Templates can be customized via WithSystemTemplate() and WithTaskTemplate() for full control
// over prompting.
type Agent struct {
	behaviorAndContext string
	criticalRules      string
	systemTemplate     *template.Template
	taskTemplate       *template.Template
	model              arkaine.Model
	format             arkaine.DecisionFormat
	tools              *toolchain.Set
	timeProvider       arkaine.TimeProvider
	maxSimultaneous    int
	observeToolErrors  bool
	maxTurns           int
	hooks              *hooks.Registry
	logger             *zap.Logger
}

// NewAgent creates a new Agent with the given model and default settings.
// Defaults:
//   - Format: format.NewReAct()
//   - Tools: empty toolchain.Set
//   - MaxSimultaneousTools: DefaultMaxSimultaneousTools
//   - MaxTurns (for Run): executor.DefaultMaxIterations
//   - TimeProvider: arkaine.NewDefaultTimeProvider()
//   - SystemTemplate: DefaultSystemTemplate
//   - TaskTemplate: DefaultTaskTemplate
func NewAgent(model arkaine.Model) *Agent {
	return &Agent{
		model:           model,
		format:          format.NewReAct(),
		tools:           toolchain.MustNew(),
		timeProvider:    arkaine.NewDefaultTimeProvider(),
		systemTemplate:  DefaultSystemTemplate,
		taskTemplate:    DefaultTaskTemplate,
		maxSimultaneous: DefaultMaxSimultaneousTools,
		maxTurns:        executor.DefaultMaxIterations,
		logger:          zap.NewNop(),
	}
}

// WithBehaviorAndContext sets behavior instructions and context to include in the system prompt.
// This is prepended to the default ReAct instructions, not a replacement.
// Use WithSystemTemplate() to completely replace the system prompt template.
func (r *Agent) WithBehaviorAndContext(prompt string) *Agent {
	r.behaviorAndContext = prompt
	return r
}

// WithCriticalRules sets critical rules to include in the system prompt.
func (r *Agent) WithCriticalRules(rules string) *Agent {
	r.criticalRules = rules
	return r
}

// WithSystemTemplate sets a custom system prompt template.
// See SystemPromptData for the fields available to it.
func (r *Agent) WithSystemTemplate(tmpl *template.Template) *Agent {
	r.systemTemplate = tmpl
	return r
}

// WithSystemTemplateString sets a custom system prompt template from a string.
//
// Example:
//
//	agent.WithSystemTemplateString(`You are a research assistant.
//	{{.ToolsPrompt}}
//	{{.OutputPrompt}}`)
//
// Returns error if the template string is invalid.
func (r *Agent) WithSystemTemplateString(tmplStr string) (*Agent, error) {
	tmpl, err := template.New("react_system").Parse(tmplStr)
	if err != nil {
		return r, fmt.Errorf("failed to parse template: %w", err)
	}
	r.systemTemplate = tmpl
	return r, nil
}

// WithTaskTemplate sets a custom task prompt template.
// See TaskPromptData for the fields available to it.
func (r *Agent) WithTaskTemplate(tmpl *template.Template) *Agent {
	r.taskTemplate = tmpl
	return r
}

// WithTaskTemplateString sets a custom task prompt template from a string.
// Returns error if the template string is invalid.
func (r *Agent) WithTaskTemplateString(tmplStr string) (*Agent, error) {
	tmpl, err := template.New("react_task").Parse(tmplStr)
	if err != nil {
		return r, fmt.Errorf("failed to parse template: %w", err)
	}
	r.taskTemplate = tmpl
	return r, nil
}

// WithFormat sets the decision format.
func (r *Agent) WithFormat(f arkaine.DecisionFormat) *Agent {
	r.format = f
	return r
}

// WithTools replaces the tool set.
func (r *Agent) WithTools(set *toolchain.Set) *Agent {
	r.tools = set
	return r
}

// RegisterTool adds a tool to the tool set. Panics if the name is already taken.
func (r *Agent) RegisterTool(tool arkaine.Tool) *Agent {
	if err := r.tools.Add(tool); err != nil {
		panic(err)
	}
	return r
}

// Tools returns the agent's tool set.
func (r *Agent) Tools() *toolchain.Set {
	return r.tools
}

// WithMaxSimultaneousTools bounds how many tool calls of one step run at once. Values
// below 1 are ignored.
func (r *Agent) WithMaxSimultaneousTools(n int) *Agent {
	if n > 0 {
		r.maxSimultaneous = n
	}
	return r
}

// WithToolErrorsAsObservations controls what happens when a requested tool is unknown,
// gets malformed arguments or fails. By default the run fails with a KindTool error.
// When enabled the failure is reported to the model as a system message and the loop
// continues.
func (r *Agent) WithToolErrorsAsObservations(enabled bool) *Agent {
	r.observeToolErrors = enabled
	return r
}

// WithMaxTurns sets the model-call bound used by Run. Values below 1 are ignored.
func (r *Agent) WithMaxTurns(n int) *Agent {
	if n > 0 {
		r.maxTurns = n
	}
	return r
}

// WithHooks sets the hook registry used by Run.
func (r *Agent) WithHooks(h *hooks.Registry) *Agent {
	r.hooks = h
	return r
}

// WithTimeProvider sets the time provider.
// Use this to inject a mock time provider for testing.
func (r *Agent) WithTimeProvider(tp arkaine.TimeProvider) *Agent {
	r.timeProvider = tp
	return r
}

// WithLogger sets the logger for dispatch diagnostics.
func (r *Agent) WithLogger(logger *zap.Logger) *Agent {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// outputPrompt describes the reply protocol. A ReAct format is described with this
// agent's tool names on a private copy, so one format value can be shared by agents.
func (r *Agent) outputPrompt() string {
	rf, ok := r.format.(*format.ReAct)
	if !ok || rf == nil {
		return r.format.Describe()
	}
	f := *rf
	return f.WithToolNames(r.tools.Names()...).Describe()
}

// Run answers task, driving the agent with an executor bounded by WithMaxTurns.
func (r *Agent) Run(ctx context.Context, task string) (string, error) {
	exec := executor.New(r).
		WithMaxIterations(r.maxTurns).
		WithHooks(r.hooks).
		WithLogger(r.logger)
	return exec.Run(ctx, "react", task)
}

// Next executes one iteration of the ReAct loop: exactly one model call, followed by
// the tool calls the reply requests.
//
//   - FinalAnswer terminates the run with the answer.
//   - Reasoning continues; the reply is already in history, so the model is re-prompted.
//   - ToolCall and ToolCalls are dispatched and their results appended, then the loop
//     continues.
//
// A reply that does not follow the format fails the iteration with a KindResponse error
// wrapping the KindFormat parse error. Malformed replies are not fed back to the model.
func (r *Agent) Next(execCtx *arkaine.ExecutionContext) (*arkaine.AgentLoopResult, error) {
	ctx := execCtx.Context()

	if len(execCtx.Messages()) == 0 {
		prompt, err := r.buildPrompt(execCtx.Task())
		if err != nil {
			return nil, err
		}
		execCtx.AppendMessages(prompt...)
	}

	reply, err := r.callModel(execCtx)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, arkaine.NewError(arkaine.KindCancelled, "model", err)
		}
		return nil, arkaine.NewError(arkaine.KindResponse, "model", err)
	}
	execCtx.AppendMessages(arkaine.AssistantMessage(reply))

	decision, err := r.format.Parse(reply)
	if err != nil {
		return nil, arkaine.NewError(arkaine.KindResponse, "parse", err)
	}

	switch d := decision.(type) {
	case arkaine.FinalAnswer:
		return &arkaine.AgentLoopResult{Action: arkaine.LATerminate, Result: d.Answer}, nil
	case arkaine.Reasoning:
		return &arkaine.AgentLoopResult{Action: arkaine.LAContinue}, nil
	}

	if err := r.dispatch(execCtx, arkaine.Calls(decision)); err != nil {
		return nil, err
	}
	return &arkaine.AgentLoopResult{Action: arkaine.LAContinue}, nil
}

// buildPrompt renders the system and task messages that open a run.
func (r *Agent) buildPrompt(task string) ([]arkaine.Message, error) {
	systemContent, err := ExecuteTemplate(r.systemTemplate, SystemPromptData{
		BehaviorAndContext: r.processTemplateString(r.behaviorAndContext),
		CriticalRules:      r.processTemplateString(r.criticalRules),
		OutputPrompt:       r.outputPrompt(),
		ToolsPrompt:        r.tools.AvailableToolsPrompt(),
		Time:               r.timeProvider,
	})
	if err != nil {
		return nil, fmt.Errorf("render system prompt: %w", err)
	}

	taskContent, err := ExecuteTemplate(r.taskTemplate, TaskPromptData{Task: task})
	if err != nil {
		return nil, fmt.Errorf("render task prompt: %w", err)
	}

	return []arkaine.Message{
		arkaine.SystemMessage(systemContent),
		arkaine.UserMessage(taskContent),
	}, nil
}

// processTemplateString expands template variables like {{.Time.Today}} in user-supplied
// prompt fragments. Input that is not a valid template is returned unchanged.
func (r *Agent) processTemplateString(input string) string {
	if !strings.Contains(input, "{{") {
		return input
	}
	tmpl, err := template.New("template_string").Parse(input)
	if err != nil {
		return input
	}
	out, err := ExecuteTemplate(tmpl, struct{ Time arkaine.TimeProvider }{Time: r.timeProvider})
	if err != nil {
		return input
	}
	return out
}

func (r *Agent) callModel(execCtx *arkaine.ExecutionContext) (string, error) {
	messages := execCtx.Messages()
	execCtx.FireBeforeModelCall(arkaine.BeforeModelCallEvent{Messages: messages})

	start := time.Now()
	reply, err := r.model.Complete(execCtx.Context(), messages)

	execCtx.FireAfterModelCall(arkaine.AfterModelCallEvent{
		Messages: messages,
		Response: reply,
		Duration: time.Since(start),
		Error:    err,
	})
	return reply, err
}

// dispatch runs calls with at most maxSimultaneous in flight. Each result is appended to
// history as soon as its call completes. The first hard failure cancels the calls still
// running and is returned.
func (r *Agent) dispatch(execCtx *arkaine.ExecutionContext, calls []arkaine.ToolCall) error {
	parent := execCtx.Context()
	limiter := semaphore.NewWeighted(int64(r.maxSimultaneous))
	g, ctx := errgroup.WithContext(parent)

	var acquireErr error
	for _, call := range calls {
		if acquireErr = limiter.Acquire(ctx, 1); acquireErr != nil {
			break
		}
		g.Go(func() error {
			defer limiter.Release(1)
			return r.invoke(execCtx, ctx, call)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if acquireErr != nil {
		return arkaine.NewError(arkaine.KindCancelled, "dispatch", acquireErr)
	}
	if err := parent.Err(); err != nil {
		return arkaine.NewError(arkaine.KindCancelled, "dispatch", err)
	}
	return nil
}

// invoke performs one requested tool call and records its outcome in history.
func (r *Agent) invoke(execCtx *arkaine.ExecutionContext, ctx context.Context, call arkaine.ToolCall) error {
	tool, err := r.tools.Lookup(call.ToolName)
	if err != nil {
		return r.reject(execCtx, call, err)
	}
	args, err := toolchain.ToArguments(call.ToolName, call.Arguments)
	if err != nil {
		return r.reject(execCtx, call, err)
	}

	execCtx.FireBeforeToolCall(arkaine.BeforeToolCallEvent{ToolName: call.ToolName, Arguments: args})
	start := time.Now()
	result, err := tool.Invoke(ctx, args)
	duration := time.Since(start)

	if err != nil {
		err = r.classify(ctx, call.ToolName, err)
	}
	execCtx.FireAfterToolCall(arkaine.AfterToolCallEvent{
		ToolName:  call.ToolName,
		Arguments: args,
		Result:    result,
		Duration:  duration,
		Error:     err,
	})

	if err != nil {
		r.logger.Debug("tool call failed",
			zap.String("tool", call.ToolName),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return r.fail(execCtx, call, err)
	}

	r.logger.Debug("tool call completed",
		zap.String("tool", call.ToolName),
		zap.Duration("duration", duration),
	)
	execCtx.AppendMessages(arkaine.SystemMessage(toolchain.FormatResult(call.ToolName, args, result)))
	return nil
}

// reject handles a call that never reached its tool.
func (r *Agent) reject(execCtx *arkaine.ExecutionContext, call arkaine.ToolCall, err error) error {
	execCtx.FireAfterToolCall(arkaine.AfterToolCallEvent{
		ToolName:  call.ToolName,
		Arguments: call.Arguments,
		Error:     err,
	})
	return r.fail(execCtx, call, err)
}

// fail either surfaces err or, in observation mode, reports it to the model.
// Cancellation is always surfaced.
func (r *Agent) fail(execCtx *arkaine.ExecutionContext, call arkaine.ToolCall, err error) error {
	if !r.observeToolErrors || errors.Is(err, arkaine.KindCancelled) {
		return err
	}
	execCtx.AppendMessages(arkaine.SystemMessage(toolchain.FormatFailure(call.ToolName, call.Arguments, err)))
	return nil
}

// classify maps a tool failure onto the run's error kinds.
func (r *Agent) classify(ctx context.Context, name string, err error) error {
	if errors.Is(err, arkaine.KindCancelled) {
		return err
	}
	if ctx.Err() != nil {
		return arkaine.NewError(arkaine.KindCancelled, "invoke", err).WithTool(name)
	}
	if errors.Is(err, arkaine.KindTool) {
		return err
	}

	attempts := 1
	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		attempts = exhausted.Attempts
	}
	return arkaine.NewError(arkaine.KindTool, "invoke", err).WithTool(name).WithAttempts(attempts)
}

// Compile-time check that Agent implements arkaine.AgentLoop.
var _ arkaine.AgentLoop = (*Agent)(nil)
