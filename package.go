// Package arkaine provides the building blocks of a ReAct (Reasoning and Acting) agent in Go.
//
// The root package holds the contracts. Implementations live in sub-packages:
//
//   - format: decision formats ([format.ReAct] line protocol, [format.XML] multi-action)
//   - retry: bounded retry decorator for tools
//   - registrar: tool registry with asynchronous call-event fan-out
//   - toolchain: ordered tool set, tool catalog prompt, result framing
//   - agents/react: the ReAct loop
//   - executor: iteration driver with an iteration bound and hooks
//   - models: langchaingo-backed [Model] implementations
//   - toolbox: Wikipedia and web search tools
//   - observe: zap, prometheus, OpenTelemetry and YAML audit observers
//
// # Quick Start
//
//	llm, err := models.New(models.Options{Provider: "ollama", Model: "llama3.2"})
//	if err != nil {
//	    return err
//	}
//
//	lookupOrder := arkaine.NewTool("lookup_order", "Look up order details by order ID",
//	    []arkaine.Argument{
//	        {Name: "order_id", Type: "string", Description: "the order ID", Required: true},
//	    },
//	    func(ctx context.Context, args arkaine.Arguments) (any, error) {
//	        return orders.Lookup(ctx, args["order_id"].(string))
//	    },
//	)
//
//	agent := react.NewAgent(llm).
//	    WithBehaviorAndContext("You are a helpful customer service agent.").
//	    RegisterTool(retry.MustWrap(lookupOrder, retry.Config{MaxRetries: 2})).
//	    WithMaxTurns(8)
//
//	answer, err := agent.Run(ctx, "Where is order 1234?")
//
// # Tools
//
// A [Tool] has a stable ID, a name the model uses, a description, an ordered [Argument]
// list and an Invoke method. [NewTool] builds one from a function; arguments are validated
// against a JSON schema derived from the argument list before the function runs.
//
// Every invocation, successful or not, is reported to the tool's [ToolCallListener]s as
// one [Invocation] record. Adding the same listener twice does not duplicate notifications.
//
// # Decisions
//
// The model's reply is parsed by a [DecisionFormat] into exactly one [Decision]:
//
//   - [Reasoning]: only a thought; the loop re-prompts
//   - [ToolCall] / [ToolCalls]: one or more tools to run
//   - [FinalAnswer]: the run's result
//
// # Errors
//
// Failures carry an [ErrorKind] that callers match with errors.Is:
//
//	_, err := agent.Run(ctx, task)
//	switch {
//	case errors.Is(err, arkaine.KindCancelled):
//	    // ctx was cancelled or timed out
//	case errors.Is(err, arkaine.KindTool):
//	    var ae *arkaine.Error
//	    errors.As(err, &ae) // ae.Tool, ae.Attempts
//	case errors.Is(err, arkaine.KindResponse):
//	    // the model failed or replied outside the format
//	}
//
// # Hooks
//
// Hooks observe a run from the executor's side (see package hooks). Listeners observe
// tools from the tool's side (see package registrar). Both are synchronous; the registrar
// moves listener work onto its worker pool.
//
// # ExecutionContext
//
// [ExecutionContext] is the per-run state: history, iteration counter, result and
// termination reason. Each run gets its own, so one agent can serve concurrent runs.
//
// # TimeProvider
//
// [TimeProvider] abstracts the clock for invocation timestamps and prompt templates.
// Tests use [MockTimeProvider] for deterministic output.
//
// # Writing Your Own Loop
//
// Implement [AgentLoop] and drive it with executor.Executor:
//
//	type EchoLoop struct{}
//
//	func (EchoLoop) Next(execCtx *arkaine.ExecutionContext) (*arkaine.AgentLoopResult, error) {
//	    return &arkaine.AgentLoopResult{Action: arkaine.LATerminate, Result: execCtx.Task()}, nil
//	}
//
//	answer, err := executor.New(EchoLoop{}).Run(ctx, "echo", "hello")
package arkaine
