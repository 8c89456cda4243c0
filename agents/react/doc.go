// Package react implements the ReAct (Reasoning and Acting) agent loop pattern.
//
// # Overview
//
// The ReAct pattern alternates between thinking (reasoning) and acting (tool execution)
// to solve tasks. Each iteration follows the cycle: Think -> Act -> Observe -> Repeat.
//
//	agent := react.NewAgent(model).
//	    RegisterTool(search).
//	    RegisterTool(calculator)
//
//	answer, err := agent.Run(ctx, "What is the population of Paris times two?")
//
// # Agent Loop Behavior
//
// Every iteration makes exactly one model call and parses the reply with the configured
// [arkaine.DecisionFormat] (default [format.ReAct]).
//
// ## 1. Actions Take Priority Over Termination
//
// A reply that names an action and also carries an answer is a tool call. The answer is
// discarded and the next iteration answers from the actual tool result.
//
// ## 2. Reasoning Re-prompts
//
// A reply with only a thought is kept in history and the model is called again. The
// executor's iteration bound stops a model that never acts or answers.
//
// ## 3. Malformed Replies Fail the Run
//
// A reply that does not follow the format is not fed back to the model. The iteration
// fails with a KindResponse error wrapping the KindFormat parse error:
//
//	_, err := agent.Run(ctx, task)
//	errors.Is(err, arkaine.KindResponse)       // true
//	errors.Is(err, arkaine.KindFormat)         // true
//	errors.Is(err, arkaine.ErrMissingThought)  // true when the Thought line is missing
//
// ## 4. Tool Failures
//
// Unknown tools, non-object arguments and tool failures fail the run with a KindTool error
// naming the tool. With WithToolErrorsAsObservations(true) they are instead appended to
// history as:
//
//	---
//	search(q="cats") failed:
//	<error>
//
// and the loop continues. Cancellation always fails the run with KindCancelled.
//
// # Concurrency
//
// Formats that request several tools per reply ([format.XML]) have their calls dispatched
// concurrently, at most WithMaxSimultaneousTools at a time. Results are appended in
// completion order. An Agent holds no per-run state and can serve concurrent runs.
//
// # Templates
//
// The system prompt is a Go text/template with access to:
//   - Time provider functions: {{.Time.Today}}, {{.Time.Weekday}}, {{.Time.Format "layout"}}
//   - Behavior context: {{.BehaviorAndContext}}
//   - Critical rules: {{.CriticalRules}}
//   - Output format: {{.OutputPrompt}}
//   - Tools description: {{.ToolsPrompt}}
package react
