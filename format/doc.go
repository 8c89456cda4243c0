// Package format provides the decision formats that turn model replies into
// [arkaine.Decision] values.
//
// A format works in both directions:
//
//  1. Describe() - instructions for the model, embedded in the system prompt
//  2. Parse() - converts one reply into Reasoning, ToolCall, ToolCalls or FinalAnswer
//
// # Available Formats
//
//   - [ReAct]: the line-oriented Thought / Action / Action Input / Answer protocol,
//     one tool call per reply
//   - [XML]: tagged <thought>, <action> and <answer> blocks, several tool calls per reply
//
// # Errors
//
// Malformed replies produce errors of kind [arkaine.KindFormat] wrapping one of
// [arkaine.ErrMissingThought], [arkaine.ErrActionWithoutInput],
// [arkaine.ErrMissingToolName] or [ErrInvalidAction]:
//
//	decision, err := format.ParseReAct(reply)
//	if errors.Is(err, arkaine.KindFormat) {
//	    // reply did not follow the protocol
//	}
//
// Arguments that are valid JSON but not an object are passed through unchanged; rejecting
// them is left to the agent at the tool boundary.
package format
