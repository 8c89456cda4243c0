package format

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/rickchristie/arkaine"
)

// Directive prefixes of the ReAct protocol. Matching is case-sensitive.
const (
	PrefixThought     = "Thought:"
	PrefixAction      = "Action:"
	PrefixActionInput = "Action Input:"
	PrefixAnswer      = "Answer:"
)

// ReAct parses the line-oriented Thought / Action / Action Input / Answer protocol.
//
// Example output:
//
//	Thought: I should look this up
//	Action: search
//	Action Input: {"q": "cats"}
//
// Grammar:
//   - the first non-empty line must start with "Thought:"; its trimmed remainder is the thought
//   - "Action:" sets the pending tool name; the last one wins
//   - "Action Input:" is decoded as JSON, falling back to the raw trimmed string
//   - "Answer:" takes its remainder plus every following line verbatim and stops the scan
//   - any other line is ignored
//
// Directives are recognized after leading whitespace is stripped from a line.
type ReAct struct {
	toolNames []string
}

// NewReAct creates a new ReAct format.
func NewReAct() *ReAct {
	return &ReAct{}
}

// WithToolNames lists the tool names shown in the protocol description.
func (f *ReAct) WithToolNames(names ...string) *ReAct {
	f.toolNames = names
	return f
}

// Describe returns the protocol instructions for the system prompt.
func (f *ReAct) Describe() string {
	var sb strings.Builder
	sb.WriteString("Respond using the following line-oriented format.\n\n")
	sb.WriteString("To use a tool:\n")
	sb.WriteString(PrefixThought + " your reasoning about what to do next\n")
	sb.WriteString(PrefixAction + " the tool name")
	if len(f.toolNames) > 0 {
		sb.WriteString(", one of [")
		sb.WriteString(strings.Join(f.toolNames, ", "))
		sb.WriteString("]")
	}
	sb.WriteString("\n")
	sb.WriteString(PrefixActionInput + " the tool arguments as a single-line JSON object\n\n")
	sb.WriteString("When you know the final answer:\n")
	sb.WriteString(PrefixThought + " your reasoning\n")
	sb.WriteString(PrefixAnswer + " the final answer, which may span multiple lines\n\n")
	sb.WriteString("Always begin with a Thought line. Request at most one tool per response, then wait ")
	sb.WriteString("for its result before continuing.\n")
	return sb.String()
}

// Parse converts text into a Decision. See ParseReAct.
func (f *ReAct) Parse(text string) (arkaine.Decision, error) {
	return ParseReAct(text)
}

// ParseReAct converts one model reply written in the ReAct protocol into a Decision.
//
// Resolution: an Action yields a ToolCall (any Answer is ignored), otherwise an Answer
// yields a FinalAnswer, otherwise the reply is Reasoning. Errors are KindFormat:
// a missing or empty Thought line (ErrMissingThought) and an Action without Action Input
// (ErrActionWithoutInput), the latter even when an Answer is present.
func ParseReAct(text string) (arkaine.Decision, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(strings.TrimSpace(text), "\n")

	first := strings.TrimSpace(lines[0])
	if !strings.HasPrefix(first, PrefixThought) {
		return nil, arkaine.FormatErrorf(arkaine.ErrMissingThought, "first line is %q", truncate(first, 40))
	}
	thought := strings.TrimSpace(strings.TrimPrefix(first, PrefixThought))
	if thought == "" {
		return nil, arkaine.FormatErrorf(arkaine.ErrMissingThought, "thought is empty")
	}

	var (
		action    string
		hasAction bool
		input     any
		hasInput  bool
		answer    string
		hasAnswer bool
	)

scan:
	for i := 1; i < len(lines); i++ {
		line := strings.TrimLeft(lines[i], " \t")
		if strings.TrimSpace(line) == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, PrefixAction):
			action = strings.TrimSpace(strings.TrimPrefix(line, PrefixAction))
			hasAction = true
		case strings.HasPrefix(line, PrefixActionInput):
			input = decodeActionInput(strings.TrimSpace(strings.TrimPrefix(line, PrefixActionInput)))
			hasInput = true
		case strings.HasPrefix(line, PrefixAnswer):
			answer = strings.TrimSpace(strings.TrimPrefix(line, PrefixAnswer))
			if rest := lines[i+1:]; len(rest) > 0 {
				answer += "\n" + strings.Join(rest, "\n")
			}
			hasAnswer = true
			break scan
		}
	}

	if hasAction && !hasInput {
		return nil, arkaine.FormatErrorf(arkaine.ErrActionWithoutInput, "action %q", action)
	}

	switch {
	case hasAction:
		return arkaine.ToolCall{ThoughtText: thought, ToolName: action, Arguments: input}, nil
	case hasAnswer:
		return arkaine.FinalAnswer{ThoughtText: thought, Answer: answer}, nil
	default:
		return arkaine.Reasoning{Text: thought}, nil
	}
}

// decodeActionInput returns the JSON value encoded in raw, or raw itself when it is not
// valid JSON.
func decodeActionInput(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// Compile-time check that ReAct implements arkaine.DecisionFormat.
var _ arkaine.DecisionFormat = (*ReAct)(nil)
