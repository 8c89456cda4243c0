package arkaine

import "time"

// BeforeExecutionEvent is fired once before the first iteration of a run.
type BeforeExecutionEvent struct {
	Task string
}

// AfterExecutionEvent is fired once after a run stops, whatever the reason.
type AfterExecutionEvent struct {
	TerminationReason TerminationReason
	Result            string
	Error             error
	Duration          time.Duration
}

// BeforeIterationEvent is fired before every call to AgentLoop.Next.
type BeforeIterationEvent struct {
	Iteration int
}

// AfterIterationEvent is fired after every successful call to AgentLoop.Next.
type AfterIterationEvent struct {
	Iteration int
	Result    *AgentLoopResult
	Duration  time.Duration
}

// BeforeModelCallEvent is fired before the model is called.
type BeforeModelCallEvent struct {
	Messages []Message
}

// AfterModelCallEvent is fired after the model returns or fails.
type AfterModelCallEvent struct {
	Messages []Message
	Response string
	Duration time.Duration
	Error    error
}

// BeforeToolCallEvent is fired before a requested tool is invoked.
type BeforeToolCallEvent struct {
	ToolName  string
	Arguments any
}

// AfterToolCallEvent is fired after a requested tool returns or fails. Unknown tools and
// rejected arguments also produce this event, with Error set.
type AfterToolCallEvent struct {
	ToolName  string
	Arguments any
	Result    any
	Duration  time.Duration
	Error     error
}
