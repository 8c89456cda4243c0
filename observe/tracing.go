package observe

import (
	"context"
	"sync"
	"time"

	"github.com/rickchristie/arkaine"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/rickchristie/arkaine/observe"

// Span names.
const (
	SpanRun       = "arkaine.run"
	SpanModelCall = "arkaine.model_call"
	SpanToolCall  = "arkaine.tool_call"
)

// Tracing records OpenTelemetry spans: one per run, a child per model call, and one per
// tool invocation seen by the registrar.
//
// Tool invocations carry no run context, so their spans are roots.
type Tracing struct {
	tracer trace.Tracer

	mu   sync.Mutex
	runs map[string]trace.Span
}

// NewTracing creates a Tracing from tp. A nil tp uses the global provider.
func NewTracing(tp trace.TracerProvider) *Tracing {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Tracing{
		tracer: tp.Tracer(instrumentationName),
		runs:   make(map[string]trace.Span),
	}
}

func (t *Tracing) OnBeforeExecution(execCtx *arkaine.ExecutionContext, e arkaine.BeforeExecutionEvent) {
	_, span := t.tracer.Start(execCtx.Context(), SpanRun,
		trace.WithAttributes(
			attribute.String("run.name", execCtx.Name()),
			attribute.String("run.id", execCtx.ID()),
			attribute.String("run.task", e.Task),
		),
	)
	t.mu.Lock()
	t.runs[execCtx.ID()] = span
	t.mu.Unlock()
}

func (t *Tracing) OnAfterExecution(execCtx *arkaine.ExecutionContext, e arkaine.AfterExecutionEvent) {
	t.mu.Lock()
	span, ok := t.runs[execCtx.ID()]
	delete(t.runs, execCtx.ID())
	t.mu.Unlock()
	if !ok {
		return
	}

	span.SetAttributes(
		attribute.String("run.termination", string(e.TerminationReason)),
		attribute.Int("run.iterations", execCtx.Iteration()),
	)
	endSpan(span, e.Error)
}

func (t *Tracing) OnAfterModelCall(execCtx *arkaine.ExecutionContext, e arkaine.AfterModelCallEvent) {
	ctx := execCtx.Context()
	t.mu.Lock()
	if run, ok := t.runs[execCtx.ID()]; ok {
		ctx = trace.ContextWithSpan(ctx, run)
	}
	t.mu.Unlock()

	end := time.Now()
	_, span := t.tracer.Start(ctx, SpanModelCall,
		trace.WithTimestamp(end.Add(-e.Duration)),
		trace.WithAttributes(attribute.Int("model.messages", len(e.Messages))),
	)
	endSpan(span, e.Error, trace.WithTimestamp(end))
}

// OnToolCall implements arkaine.ToolCallListener.
func (t *Tracing) OnToolCall(tool arkaine.Tool, inv arkaine.Invocation) {
	_, span := t.tracer.Start(context.Background(), SpanToolCall,
		trace.WithTimestamp(inv.StartedAt),
		trace.WithAttributes(
			attribute.String("tool.name", inv.ToolName),
			attribute.String("tool.id", inv.ToolID),
		),
	)
	endSpan(span, inv.Err, trace.WithTimestamp(inv.FinishedAt))
}

// ActiveRuns returns the number of runs whose span is still open.
func (t *Tracing) ActiveRuns() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.runs)
}

func endSpan(span trace.Span, err error, opts ...trace.SpanEndOption) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(opts...)
}

var (
	_ arkaine.ToolCallListener    = (*Tracing)(nil)
	_ arkaine.BeforeExecutionHook = (*Tracing)(nil)
	_ arkaine.AfterExecutionHook  = (*Tracing)(nil)
	_ arkaine.AfterModelCallHook  = (*Tracing)(nil)
)
