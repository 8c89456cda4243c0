package arkaine

// -----------------------------------------------------------------------------
// Hook Interfaces
// -----------------------------------------------------------------------------
//
// Hooks observe a run at fixed points. To use hooks:
//
//  1. Implement the desired hook interface(s)
//  2. Register with hooks.Registry
//  3. Pass the registry to executor.Executor.WithHooks
//
// Example:
//
//	type IterationLogger struct {
//	    logger *zap.Logger
//	}
//
//	func (h *IterationLogger) OnBeforeIteration(execCtx *ExecutionContext, e BeforeIterationEvent) {
//	    h.logger.Debug("iteration", zap.Int("n", e.Iteration))
//	}
//
// Hooks are called synchronously in registration order. For paired hooks the After hook is
// always called if the Before hook was called, even on error. Hooks do not return errors.
//
// Hooks see the run from the executor's side. To observe every invocation of a tool no
// matter who invokes it, attach a ToolCallListener (see registrar.Registrar) instead.
// -----------------------------------------------------------------------------

// BeforeExecutionHook is called once before the first iteration.
type BeforeExecutionHook interface {
	OnBeforeExecution(execCtx *ExecutionContext, event BeforeExecutionEvent)
}

// AfterExecutionHook is called once after the run stops.
type AfterExecutionHook interface {
	OnAfterExecution(execCtx *ExecutionContext, event AfterExecutionEvent)
}

// BeforeIterationHook is called before every iteration.
type BeforeIterationHook interface {
	OnBeforeIteration(execCtx *ExecutionContext, event BeforeIterationEvent)
}

// AfterIterationHook is called after every iteration that did not fail.
type AfterIterationHook interface {
	OnAfterIteration(execCtx *ExecutionContext, event AfterIterationEvent)
}

// BeforeModelCallHook is called before every model call.
type BeforeModelCallHook interface {
	OnBeforeModelCall(execCtx *ExecutionContext, event BeforeModelCallEvent)
}

// AfterModelCallHook is called after every model call.
type AfterModelCallHook interface {
	OnAfterModelCall(execCtx *ExecutionContext, event AfterModelCallEvent)
}

// BeforeToolCallHook is called before every tool call requested by the model.
type BeforeToolCallHook interface {
	OnBeforeToolCall(execCtx *ExecutionContext, event BeforeToolCallEvent)
}

// AfterToolCallHook is called after every tool call requested by the model. With parallel
// dispatch it may be called from several goroutines at once.
type AfterToolCallHook interface {
	OnAfterToolCall(execCtx *ExecutionContext, event AfterToolCallEvent)
}

// HookFirer dispatches model and tool events on behalf of an ExecutionContext.
// hooks.Registry implements it.
type HookFirer interface {
	FireBeforeModelCall(execCtx *ExecutionContext, event BeforeModelCallEvent)
	FireAfterModelCall(execCtx *ExecutionContext, event AfterModelCallEvent)
	FireBeforeToolCall(execCtx *ExecutionContext, event BeforeToolCallEvent)
	FireAfterToolCall(execCtx *ExecutionContext, event AfterToolCallEvent)
}
