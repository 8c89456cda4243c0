// Package observe provides ready-made observers for tools and runs.
//
// Tool observers implement arkaine.ToolCallListener and are attached through a
// registrar.Registrar, so they see every invocation of every registered tool, including
// each retry attempt. Run observers implement the hook interfaces of package arkaine and
// are registered on a hooks.Registry.
//
//	reg := registrar.New(registrar.Config{Enabled: true})
//	reg.AddToolCallListener(observe.NewLogListener(logger))
//	reg.AddToolCallListener(metrics)
//
//	registry := hooks.NewRegistry().Register(observe.NewLogHook(logger)).Register(metrics)
package observe

import (
	"github.com/rickchristie/arkaine"
	"go.uber.org/zap"
)

// LogListener logs every tool invocation. Successful invocations are logged at debug
// level, failures at warn level.
type LogListener struct {
	logger *zap.Logger
}

// NewLogListener creates a LogListener. A nil logger discards everything.
func NewLogListener(logger *zap.Logger) *LogListener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogListener{logger: logger}
}

// OnToolCall implements arkaine.ToolCallListener.
func (l *LogListener) OnToolCall(tool arkaine.Tool, inv arkaine.Invocation) {
	fields := []zap.Field{
		zap.String("tool", inv.ToolName),
		zap.String("tool_id", inv.ToolID),
		zap.Duration("duration", inv.Duration()),
	}
	if inv.Failed() {
		l.logger.Warn("tool call failed", append(fields, zap.Error(inv.Err))...)
		return
	}
	l.logger.Debug("tool call completed", fields...)
}

// LogHook logs run boundaries and model calls.
type LogHook struct {
	logger *zap.Logger
}

// NewLogHook creates a LogHook. A nil logger discards everything.
func NewLogHook(logger *zap.Logger) *LogHook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogHook{logger: logger}
}

func (h *LogHook) runFields(execCtx *arkaine.ExecutionContext) []zap.Field {
	return []zap.Field{
		zap.String("run", execCtx.Name()),
		zap.String("run_id", execCtx.ID()),
	}
}

func (h *LogHook) OnBeforeExecution(execCtx *arkaine.ExecutionContext, e arkaine.BeforeExecutionEvent) {
	h.logger.Info("run started", append(h.runFields(execCtx), zap.String("task", e.Task))...)
}

func (h *LogHook) OnAfterExecution(execCtx *arkaine.ExecutionContext, e arkaine.AfterExecutionEvent) {
	fields := append(h.runFields(execCtx),
		zap.String("termination", string(e.TerminationReason)),
		zap.Int("iterations", execCtx.Iteration()),
		zap.Duration("duration", e.Duration),
	)
	if e.Error != nil {
		h.logger.Warn("run failed", append(fields, zap.Error(e.Error))...)
		return
	}
	h.logger.Info("run finished", fields...)
}

func (h *LogHook) OnAfterModelCall(execCtx *arkaine.ExecutionContext, e arkaine.AfterModelCallEvent) {
	fields := append(h.runFields(execCtx),
		zap.Int("messages", len(e.Messages)),
		zap.Duration("duration", e.Duration),
	)
	if e.Error != nil {
		fields = append(fields, zap.Error(e.Error))
	}
	h.logger.Debug("model call", fields...)
}

var (
	_ arkaine.ToolCallListener    = (*LogListener)(nil)
	_ arkaine.BeforeExecutionHook = (*LogHook)(nil)
	_ arkaine.AfterExecutionHook  = (*LogHook)(nil)
	_ arkaine.AfterModelCallHook  = (*LogHook)(nil)
)
