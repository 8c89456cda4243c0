package format

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rickchristie/arkaine"
	"gopkg.in/yaml.v3"
)

// ErrInvalidAction is returned when an <action> body is not a YAML or JSON mapping.
var ErrInvalidAction = errors.New("invalid action block")

var (
	xmlThought = regexp.MustCompile(`(?si)<thought>(.*?)</thought>`)
	xmlAction  = regexp.MustCompile(`(?si)<action>(.*?)</action>`)
	xmlAnswer  = regexp.MustCompile(`(?si)<answer>(.*?)</answer>`)
)

// XML uses XML-style tags to delimit sections and allows several actions per reply, which
// the ReAct agent dispatches concurrently.
//
// Example output:
//
//	<thought>
//	I need the weather in two cities.
//	</thought>
//	<action>
//	tool: weather
//	args:
//	  city: Tokyo
//	</action>
//	<action>
//	{"tool": "weather", "args": {"city": "Osaka"}}
//	</action>
//
// Action bodies are YAML, so JSON bodies work as well. Resolution follows the ReAct
// protocol: actions win over an answer, an answer wins over a bare thought.
type XML struct{}

// NewXML creates a new XML format.
func NewXML() *XML {
	return &XML{}
}

// Describe returns the protocol instructions for the system prompt.
func (f *XML) Describe() string {
	var sb strings.Builder
	sb.WriteString("Format your response using XML-style tags:\n\n")
	sb.WriteString("<thought>\nyour reasoning about what to do next\n</thought>\n\n")
	sb.WriteString("To call tools, add one <action> block per call. Independent calls may be ")
	sb.WriteString("issued together and run in parallel:\n")
	sb.WriteString("<action>\ntool: tool_name\nargs:\n  param: value\n</action>\n\n")
	sb.WriteString("When you know the final answer:\n")
	sb.WriteString("<answer>\nthe final answer\n</answer>\n\n")
	sb.WriteString("Always include a <thought> block.\n")
	return sb.String()
}

type xmlActionBody struct {
	Tool string `yaml:"tool"`
	Args any    `yaml:"args"`
}

// Parse converts text into a Decision.
func (f *XML) Parse(text string) (arkaine.Decision, error) {
	m := xmlThought.FindStringSubmatch(text)
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return nil, arkaine.FormatErrorf(arkaine.ErrMissingThought, "no <thought> block")
	}
	thought := strings.TrimSpace(m[1])

	var calls []arkaine.ToolCall
	for i, match := range xmlAction.FindAllStringSubmatch(text, -1) {
		call, err := parseXMLAction(match[1])
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i+1, err)
		}
		call.ThoughtText = thought
		calls = append(calls, call)
	}

	switch {
	case len(calls) == 1:
		return calls[0], nil
	case len(calls) > 1:
		return arkaine.ToolCalls{ThoughtText: thought, Calls: calls}, nil
	}

	if m := xmlAnswer.FindStringSubmatch(text); m != nil {
		return arkaine.FinalAnswer{ThoughtText: thought, Answer: strings.TrimSpace(m[1])}, nil
	}
	return arkaine.Reasoning{Text: thought}, nil
}

func parseXMLAction(body string) (arkaine.ToolCall, error) {
	var parsed xmlActionBody
	if err := yaml.Unmarshal([]byte(strings.TrimSpace(body)), &parsed); err != nil {
		return arkaine.ToolCall{}, arkaine.FormatErrorf(ErrInvalidAction, "%v", err)
	}
	if parsed.Tool == "" {
		return arkaine.ToolCall{}, arkaine.FormatErrorf(arkaine.ErrMissingToolName, "")
	}
	if parsed.Args == nil {
		return arkaine.ToolCall{}, arkaine.FormatErrorf(arkaine.ErrActionWithoutInput, "action %q", parsed.Tool)
	}
	return arkaine.ToolCall{ToolName: parsed.Tool, Arguments: parsed.Args}, nil
}

// Compile-time check that XML implements arkaine.DecisionFormat.
var _ arkaine.DecisionFormat = (*XML)(nil)
