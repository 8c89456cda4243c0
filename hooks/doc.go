// Package hooks provides a registry for execution lifecycle hooks.
//
// Hooks observe a run at fixed points. Each hook interface corresponds to one event type;
// implement only the interfaces you need.
//
// # Hook Interfaces
//
// Executor lifecycle hooks:
//   - [arkaine.BeforeExecutionHook] - called once before the first iteration
//   - [arkaine.AfterExecutionHook] - called once after the run stops
//   - [arkaine.BeforeIterationHook] - called before each iteration
//   - [arkaine.AfterIterationHook] - called after each successful iteration
//
// Model call hooks:
//   - [arkaine.BeforeModelCallHook]
//   - [arkaine.AfterModelCallHook]
//
// Tool call hooks (only for calls requested by the model):
//   - [arkaine.BeforeToolCallHook]
//   - [arkaine.AfterToolCallHook] - may be called concurrently when tools run in parallel
//
// # Creating a Hook
//
//	type SlowToolHook struct{ logger *zap.Logger }
//
//	func (h *SlowToolHook) OnAfterToolCall(execCtx *arkaine.ExecutionContext, e arkaine.AfterToolCallEvent) {
//	    if e.Duration > time.Second {
//	        h.logger.Warn("slow tool", zap.String("tool", e.ToolName))
//	    }
//	}
//
//	var _ arkaine.AfterToolCallHook = (*SlowToolHook)(nil)
//
// # Registering Hooks
//
// Register directly on an executor:
//
//	exec := executor.New(loop).RegisterHook(&SlowToolHook{logger})
//
// or share one registry between agents:
//
//	registry := hooks.NewRegistry().Register(observe.NewLogHook(logger))
//	a := react.NewAgent(model1).WithHooks(registry)
//	b := react.NewAgent(model2).WithHooks(registry)
//
// RegisterHook adds to the executor's registry; WithHooks replaces it.
//
// Package observe contains hooks for zap logging, prometheus metrics and OpenTelemetry
// tracing.
package hooks
