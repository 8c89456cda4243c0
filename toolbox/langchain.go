// Package toolbox provides ready-made tools backed by langchaingo tools.
//
// Every tool takes a single required "query" string argument:
//
//	wiki := toolbox.Wikipedia("my-agent/1.0 (ops@example.com)")
//	search, err := toolbox.WebSearch(5, "my-agent/1.0")
//
//	agent := react.NewAgent(model).RegisterTool(wiki).RegisterTool(search)
package toolbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/rickchristie/arkaine"
	"github.com/tmc/langchaingo/tools"
)

// QueryArgument is the only argument of every adapted tool.
const QueryArgument = "query"

// ErrEmptyQuery is returned when the query argument is blank.
var ErrEmptyQuery = errors.New("query must not be empty")

// FromLangchain adapts a langchaingo tool. The tool name is derived from t.Name(),
// lowercased with runs of non-alphanumerics replaced by "_", so "DuckDuckGo Search" becomes
// "duckduckgo_search".
func FromLangchain(t tools.Tool) *arkaine.FuncTool {
	return Adapt(ToolName(t.Name()), t.Description(), t)
}

// Adapt wraps t as a tool with the given name and description.
func Adapt(name, description string, t tools.Tool) *arkaine.FuncTool {
	args := []arkaine.Argument{{
		Name:        QueryArgument,
		Type:        "string",
		Description: "The text passed to the tool",
		Required:    true,
	}}
	return arkaine.NewTool(name, description, args, func(ctx context.Context, in arkaine.Arguments) (any, error) {
		query, _ := in[QueryArgument].(string)
		query = strings.TrimSpace(query)
		if query == "" {
			return nil, ErrEmptyQuery
		}
		out, err := t.Call(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return out, nil
	})
}

// ToolName normalizes a display name into a name a model can write on an Action line.
func ToolName(display string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.TrimSpace(display) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingSep = true
	}
	return b.String()
}
