package format

import (
	"testing"

	"github.com/rickchristie/arkaine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXML_Parse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected arkaine.Decision
	}{
		{
			name: "single yaml action",
			input: `<thought>look it up</thought>
<action>
tool: search
args:
  q: cats
</action>`,
			expected: arkaine.ToolCall{
				ThoughtText: "look it up",
				ToolName:    "search",
				Arguments:   map[string]any{"q": "cats"},
			},
		},
		{
			name: "several actions mixing yaml and json",
			input: `<Thought>
two cities
</Thought>
<action>
tool: weather
args:
  city: Tokyo
</action>
<action>{"tool": "weather", "args": {"city": "Osaka", "days": 3}}</action>`,
			expected: arkaine.ToolCalls{
				ThoughtText: "two cities",
				Calls: []arkaine.ToolCall{
					{ThoughtText: "two cities", ToolName: "weather", Arguments: map[string]any{"city": "Tokyo"}},
					{ThoughtText: "two cities", ToolName: "weather", Arguments: map[string]any{"city": "Osaka", "days": 3}},
				},
			},
		},
		{
			name: "actions win over answer",
			input: `<thought>t</thought>
<action>{"tool": "calc", "args": {}}</action>
<answer>42</answer>`,
			expected: arkaine.ToolCall{ThoughtText: "t", ToolName: "calc", Arguments: map[string]any{}},
		},
		{
			name:     "answer",
			input:    "<thought>done</thought>\n<answer>\nThe capital is Paris\n</answer>",
			expected: arkaine.FinalAnswer{ThoughtText: "done", Answer: "The capital is Paris"},
		},
		{
			name:     "thought only",
			input:    "<thought>thinking</thought>",
			expected: arkaine.Reasoning{Text: "thinking"},
		},
	}

	f := NewXML()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestXML_Parse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected error
	}{
		{
			name:     "missing thought",
			input:    "<answer>42</answer>",
			expected: arkaine.ErrMissingThought,
		},
		{
			name:     "blank thought",
			input:    "<thought>  </thought><answer>42</answer>",
			expected: arkaine.ErrMissingThought,
		},
		{
			name:     "action without tool",
			input:    "<thought>t</thought><action>{\"args\": {}}</action>",
			expected: arkaine.ErrMissingToolName,
		},
		{
			name:     "action without args",
			input:    "<thought>t</thought><action>tool: search</action>",
			expected: arkaine.ErrActionWithoutInput,
		},
		{
			name:     "action body is not a mapping",
			input:    "<thought>t</thought><action>just words</action>",
			expected: ErrInvalidAction,
		},
	}

	f := NewXML()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Parse(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expected)
			assert.ErrorIs(t, err, arkaine.KindFormat)
		})
	}
}

func TestXML_Describe(t *testing.T) {
	desc := NewXML().Describe()
	for _, want := range []string{"<thought>", "<action>", "<answer>", "tool: tool_name"} {
		assert.Contains(t, desc, want)
	}
}
