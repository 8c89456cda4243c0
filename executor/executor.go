package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rickchristie/arkaine"
	"github.com/rickchristie/arkaine/hooks"
	"go.uber.org/zap"
)

// DefaultMaxIterations bounds a run when WithMaxIterations is not called.
const DefaultMaxIterations = 10

// Executor orchestrates the execution of an AgentLoop, managing the lifecycle, hooks and
// the iteration bound.
//
// The Executor is responsible for:
//   - Running the AgentLoop repeatedly until it returns [arkaine.LATerminate]
//   - Invoking lifecycle hooks at appropriate points
//   - Stopping a run that exceeds its iteration bound
//   - Mapping context cancellation to [arkaine.KindCancelled]
//
// An Executor holds no per-run state and may execute several runs concurrently, each with
// its own ExecutionContext.
type Executor struct {
	loop          arkaine.AgentLoop
	maxIterations int
	hooks         *hooks.Registry
	logger        *zap.Logger
}

// New creates a new Executor for loop.
func New(loop arkaine.AgentLoop) *Executor {
	return &Executor{
		loop:          loop,
		maxIterations: DefaultMaxIterations,
		hooks:         hooks.NewRegistry(),
		logger:        zap.NewNop(),
	}
}

// WithMaxIterations sets how many times AgentLoop.Next may run. Values below 1 are ignored.
func (e *Executor) WithMaxIterations(n int) *Executor {
	if n > 0 {
		e.maxIterations = n
	}
	return e
}

// WithHooks replaces the executor's hook registry with the provided one.
// Use this when you need to share a registry across multiple executors.
//
// Example:
//
//	shared := hooks.NewRegistry().Register(metrics)
//
//	exec1 := executor.New(loop1).WithHooks(shared)
//	exec2 := executor.New(loop2).WithHooks(shared)
func (e *Executor) WithHooks(h *hooks.Registry) *Executor {
	if h != nil {
		e.hooks = h
	}
	return e
}

// RegisterHook adds a hook to the executor's existing hook registry.
// The hook can implement any combination of hook interfaces
// (BeforeExecutionHook, AfterToolCallHook, etc.).
func (e *Executor) RegisterHook(hook any) *Executor {
	e.hooks.Register(hook)
	return e
}

// WithLogger sets the logger that records iteration boundaries at debug level.
func (e *Executor) WithLogger(logger *zap.Logger) *Executor {
	if logger != nil {
		e.logger = logger
	}
	return e
}

// MaxIterations returns the iteration bound.
func (e *Executor) MaxIterations() int {
	return e.maxIterations
}

// Execute runs the AgentLoop until termination.
//
// The execution flow:
//  1. Call BeforeExecution hooks
//  2. Repeatedly call AgentLoop.Next until:
//     - It returns LATerminate
//     - The iteration bound is reached (KindResponse wrapping ErrMaxIterations)
//     - The context is done (KindCancelled)
//     - An error occurs
//  3. Call AfterExecution hooks
//
// The outcome is stored in execCtx: see Result, Error and TerminationReason.
func (e *Executor) Execute(execCtx *arkaine.ExecutionContext) {
	execCtx.SetHookFirer(e.hooks)
	logger := e.logger.With(zap.String("run", execCtx.Name()), zap.String("run_id", execCtx.ID()))

	defer func() {
		e.hooks.FireAfterExecution(execCtx, arkaine.AfterExecutionEvent{
			TerminationReason: execCtx.TerminationReason(),
			Result:            execCtx.Result(),
			Error:             execCtx.Error(),
			Duration:          execCtx.Duration(),
		})
	}()

	e.hooks.FireBeforeExecution(execCtx, arkaine.BeforeExecutionEvent{Task: execCtx.Task()})

	for {
		goCtx := execCtx.Context()
		if goCtx.Err() != nil {
			execCtx.SetTermination(
				arkaine.TerminationContextCanceled,
				"",
				arkaine.NewError(arkaine.KindCancelled, "execute", goCtx.Err()),
			)
			return
		}

		if execCtx.Iteration() >= e.maxIterations {
			logger.Debug("iteration bound reached", zap.Int("max_iterations", e.maxIterations))
			execCtx.SetTermination(
				arkaine.TerminationMaxIterations,
				"",
				arkaine.NewError(arkaine.KindResponse, "execute",
					fmt.Errorf("%w: %d", arkaine.ErrMaxIterations, e.maxIterations)),
			)
			return
		}

		iteration := execCtx.StartIteration()
		iterStart := time.Now()
		logger.Debug("iteration started", zap.Int("iteration", iteration))

		e.hooks.FireBeforeIteration(execCtx, arkaine.BeforeIterationEvent{Iteration: iteration})

		loopResult, loopErr := e.loop.Next(execCtx)
		iterDuration := time.Since(iterStart)

		if loopErr != nil {
			logger.Debug("iteration failed",
				zap.Int("iteration", iteration),
				zap.Duration("duration", iterDuration),
				zap.Error(loopErr),
			)
			if isCancellation(goCtx, loopErr) {
				execCtx.SetTermination(arkaine.TerminationContextCanceled, "", asCancelled(goCtx, loopErr))
				return
			}
			execErr := fmt.Errorf("AgentLoop.Next (iteration %d): %w", iteration, loopErr)
			execCtx.SetTermination(arkaine.TerminationError, "", execErr)
			return
		}

		logger.Debug("iteration finished",
			zap.Int("iteration", iteration),
			zap.String("action", string(loopResult.Action)),
			zap.Duration("duration", iterDuration),
		)
		e.hooks.FireAfterIteration(execCtx, arkaine.AfterIterationEvent{
			Iteration: iteration,
			Result:    loopResult,
			Duration:  iterDuration,
		})

		if loopResult.Action == arkaine.LATerminate {
			execCtx.SetTermination(arkaine.TerminationSuccess, loopResult.Result, nil)
			return
		}
	}
}

// Run executes one run of task under ctx and returns its answer.
func (e *Executor) Run(ctx context.Context, name, task string) (string, error) {
	execCtx := arkaine.NewExecutionContext(ctx, name, task)
	e.Execute(execCtx)
	return execCtx.Result(), execCtx.Error()
}

func isCancellation(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, arkaine.KindCancelled)
}

func asCancelled(ctx context.Context, err error) error {
	if errors.Is(err, arkaine.KindCancelled) {
		return err
	}
	cause := ctx.Err()
	if cause == nil {
		cause = err
	}
	return arkaine.NewError(arkaine.KindCancelled, "execute", cause)
}
