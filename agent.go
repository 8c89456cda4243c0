package arkaine

// AgentLoop is responsible for:
//  1. Constructing the prompt sent to the model from the run's history.
//  2. Calling the model.
//  3. Parsing the reply into a Decision and acting on it (tool calls, final answer).
//  4. Deciding whether to continue or terminate.
//
// The executor calls [AgentLoop.Next] repeatedly until it returns [LATerminate] or an error.
// Every call to Next performs exactly one model call, so the executor's iteration bound is
// also the run's turn bound.
type AgentLoop interface {
	Next(execCtx *ExecutionContext) (*AgentLoopResult, error)
}

// LoopAction tells the executor what to do after an iteration.
type LoopAction string

const (
	LAContinue  LoopAction = "continue"
	LATerminate LoopAction = "terminate"
)

// AgentLoopResult is the outcome of one iteration.
type AgentLoopResult struct {
	// Action indicates whether to continue or terminate the loop.
	Action LoopAction

	// Result is the final answer. Only set when Action is LATerminate.
	Result string
}
