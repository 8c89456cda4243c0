package observe

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rickchristie/arkaine"
)

// DefaultNamespace prefixes every metric name when no namespace is configured.
const DefaultNamespace = "arkaine"

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics records prometheus metrics for tool invocations, model calls and runs.
//
// It is both a tool call listener and a hook:
//
//	metrics, err := observe.NewMetrics("arkaine", prometheus.DefaultRegisterer)
//	reg.AddToolCallListener(metrics)
//	registry.Register(metrics)
type Metrics struct {
	toolCalls     *prometheus.CounterVec
	toolDuration  *prometheus.HistogramVec
	modelCalls    *prometheus.CounterVec
	modelDuration prometheus.Histogram
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	runIterations prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg. It fails if any collector
// is already registered, so use one Metrics per registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) (m *Metrics, err error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		return nil, errors.New("metrics: registerer is required")
	}

	// promauto panics on duplicate registration.
	defer func() {
		if r := recover(); r != nil {
			m = nil
			if e, ok := r.(error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()

	factory := promauto.With(reg)
	return &Metrics{
		toolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Total number of tool invocations, including retry attempts",
			},
			[]string{"tool", "status"},
		),
		toolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tool_call_duration_seconds",
				Help:      "Tool invocation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		modelCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "model_calls_total",
				Help:      "Total number of model calls",
			},
			[]string{"status"},
		),
		modelDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "model_call_duration_seconds",
				Help:      "Model call duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of agent runs by termination reason",
			},
			[]string{"termination"},
		),
		runDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Agent run duration in seconds",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
		),
		runIterations: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_iterations",
				Help:      "Iterations used per agent run",
				Buckets:   prometheus.LinearBuckets(1, 1, 10),
			},
		),
	}, nil
}

// OnToolCall implements arkaine.ToolCallListener.
func (m *Metrics) OnToolCall(tool arkaine.Tool, inv arkaine.Invocation) {
	m.toolCalls.WithLabelValues(inv.ToolName, status(inv.Err)).Inc()
	m.toolDuration.WithLabelValues(inv.ToolName).Observe(inv.Duration().Seconds())
}

func (m *Metrics) OnAfterModelCall(_ *arkaine.ExecutionContext, e arkaine.AfterModelCallEvent) {
	m.modelCalls.WithLabelValues(status(e.Error)).Inc()
	m.modelDuration.Observe(e.Duration.Seconds())
}

func (m *Metrics) OnAfterExecution(execCtx *arkaine.ExecutionContext, e arkaine.AfterExecutionEvent) {
	m.runs.WithLabelValues(string(e.TerminationReason)).Inc()
	m.runDuration.Observe(e.Duration.Seconds())
	m.runIterations.Observe(float64(execCtx.Iteration()))
}

func status(err error) string {
	if err != nil {
		return statusError
	}
	return statusSuccess
}

var (
	_ arkaine.ToolCallListener   = (*Metrics)(nil)
	_ arkaine.AfterModelCallHook = (*Metrics)(nil)
	_ arkaine.AfterExecutionHook = (*Metrics)(nil)
)
