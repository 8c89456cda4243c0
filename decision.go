package arkaine

// Decision is the structured interpretation of one model reply. Exactly one of the
// variants below is produced per reply, and every variant carries a non-empty thought.
//
// Variants:
//   - Reasoning: thought only; the loop re-prompts
//   - ToolCall: one tool requested
//   - ToolCalls: several tools requested in the same step (multi-action formats)
//   - FinalAnswer: terminal
type Decision interface {
	// Thought returns the reasoning text that accompanied the decision.
	Thought() string

	isDecision()
}

// Reasoning is a reply with a thought but no action and no answer.
type Reasoning struct {
	Text string
}

// ToolCall requests the invocation of a single tool.
//
// Arguments holds the decoded Action Input. It is usually a map[string]any but may be any
// JSON value or the raw input string when the input was not valid JSON; the control loop
// rejects non-object arguments at the invocation boundary.
type ToolCall struct {
	ThoughtText string
	ToolName    string
	Arguments   any
}

// ToolCalls requests several tools within one reasoning step.
type ToolCalls struct {
	ThoughtText string
	Calls       []ToolCall
}

// FinalAnswer terminates the run with Answer.
type FinalAnswer struct {
	ThoughtText string
	Answer      string
}

func (d Reasoning) Thought() string   { return d.Text }
func (d ToolCall) Thought() string    { return d.ThoughtText }
func (d ToolCalls) Thought() string   { return d.ThoughtText }
func (d FinalAnswer) Thought() string { return d.ThoughtText }

func (Reasoning) isDecision()   {}
func (ToolCall) isDecision()    {}
func (ToolCalls) isDecision()   {}
func (FinalAnswer) isDecision() {}

// Calls flattens d into the tool calls it requests. Non-tool decisions return nil.
func Calls(d Decision) []ToolCall {
	switch v := d.(type) {
	case ToolCall:
		return []ToolCall{v}
	case ToolCalls:
		return v.Calls
	default:
		return nil
	}
}
