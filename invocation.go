package arkaine

import "time"

// Invocation records one call of a tool. It is built when the call starts, completed when
// the call returns, and handed to the tool's call listeners. The core does not retain it.
type Invocation struct {
	// ToolID is the stable identity of the invoked tool.
	ToolID string

	// ToolName is the name the model used to request the tool.
	ToolName string

	// Arguments are the arguments the tool was invoked with.
	Arguments Arguments

	// Result is the tool's return value. Nil when Err is set.
	Result any

	// Err is the failure returned by the tool, if any.
	Err error

	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns how long the invocation took.
func (i Invocation) Duration() time.Duration {
	return i.FinishedAt.Sub(i.StartedAt)
}

// Failed reports whether the invocation returned an error.
func (i Invocation) Failed() bool {
	return i.Err != nil
}

// ToolCallListener is notified after every invocation of a tool it is attached to.
// Listeners run synchronously on the invoking goroutine, so implementations that do real
// work should hand off (see registrar.Registrar).
type ToolCallListener interface {
	OnToolCall(tool Tool, inv Invocation)
}

// ToolCallListenerFunc adapts a function to ToolCallListener.
type ToolCallListenerFunc func(tool Tool, inv Invocation)

// OnToolCall calls f(tool, inv).
func (f ToolCallListenerFunc) OnToolCall(tool Tool, inv Invocation) {
	f(tool, inv)
}
