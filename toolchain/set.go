package toolchain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rickchristie/arkaine"
	"gopkg.in/yaml.v3"
)

// Set is an ordered collection of tools addressed by name.
//
// Insertion order is kept: AvailableToolsPrompt lists tools in the order they were added.
// Set is safe for concurrent use.
type Set struct {
	mu     sync.RWMutex
	tools  []arkaine.Tool
	byName map[string]arkaine.Tool
}

// New creates a Set holding tools.
func New(tools ...arkaine.Tool) (*Set, error) {
	s := &Set{byName: make(map[string]arkaine.Tool, len(tools))}
	for _, t := range tools {
		if err := s.Add(t); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustNew is like New but panics on duplicate names.
func MustNew(tools ...arkaine.Tool) *Set {
	s, err := New(tools...)
	if err != nil {
		panic(err)
	}
	return s
}

// Add appends tool. Names must be unique within a set.
func (s *Set) Add(tool arkaine.Tool) error {
	if tool == nil {
		return fmt.Errorf("toolchain: cannot add nil tool")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[tool.Name()]; exists {
		return fmt.Errorf("%w: %q", arkaine.ErrDuplicateTool, tool.Name())
	}
	s.tools = append(s.tools, tool)
	s.byName[tool.Name()] = tool
	return nil
}

// Lookup returns the tool called name. An unknown name is a KindTool error wrapping
// arkaine.ErrUnknownTool that lists the available names.
func (s *Set) Lookup(name string) (arkaine.Tool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if t, ok := s.byName[name]; ok {
		return t, nil
	}
	return nil, arkaine.ToolErrorf(name, arkaine.ErrUnknownTool, "available tools: %s",
		strings.Join(s.namesLocked(), ", "))
}

// Tools returns the tools in insertion order.
func (s *Set) Tools() []arkaine.Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]arkaine.Tool, len(s.tools))
	copy(out, s.tools)
	return out
}

// Names returns the tool names in insertion order.
func (s *Set) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.namesLocked()
}

func (s *Set) namesLocked() []string {
	names := make([]string, len(s.tools))
	for i, t := range s.tools {
		names[i] = t.Name()
	}
	return names
}

// Len returns the number of tools.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tools)
}

type catalogEntry struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Arguments   []arkaine.Argument `yaml:"arguments,omitempty"`
}

// AvailableToolsPrompt renders the tool catalog as YAML, one list item per tool:
//
//	- name: search
//	  description: Search the web
//	  arguments:
//	    - name: q
//	      type: string
//	      description: query
//	      required: true
func (s *Set) AvailableToolsPrompt() string {
	tools := s.Tools()
	if len(tools) == 0 {
		return ""
	}

	entries := make([]catalogEntry, len(tools))
	for i, t := range tools {
		entries[i] = catalogEntry{
			Name:        t.Name(),
			Description: t.Description(),
			Arguments:   t.Arguments(),
		}
	}

	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		// Only unsupported types fail to encode, and catalogEntry has none.
		panic(fmt.Sprintf("toolchain: encode catalog: %v", err))
	}
	_ = enc.Close()
	return sb.String()
}

// ToArguments converts a parsed action input to a keyed argument set. Anything other than
// an object is a KindTool error wrapping arkaine.ErrInvalidArguments.
func ToArguments(tool string, raw any) (arkaine.Arguments, error) {
	switch v := raw.(type) {
	case arkaine.Arguments:
		return v, nil
	case map[string]any:
		return arkaine.Arguments(v), nil
	case nil:
		return nil, arkaine.ToolErrorf(tool, arkaine.ErrInvalidArguments, "expected an object, got null")
	default:
		return nil, arkaine.ToolErrorf(tool, arkaine.ErrInvalidArguments, "expected an object, got %T", raw)
	}
}

// FormatCall renders a call as name(key="value", n=1) with keys sorted.
func FormatCall(name string, args any) string {
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteString("(")

	switch v := args.(type) {
	case arkaine.Arguments:
		writeArgs(&sb, v)
	case map[string]any:
		writeArgs(&sb, v)
	case nil:
	default:
		sb.WriteString(formatValue(v))
	}

	sb.WriteString(")")
	return sb.String()
}

func writeArgs(sb *strings.Builder, args map[string]any) {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteString("=")
		if s, ok := args[k].(string); ok {
			sb.WriteString(`"` + s + `"`)
			continue
		}
		sb.WriteString(formatValue(args[k]))
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

// FormatResult renders the message injected into history after a successful call:
//
//	---
//	search(q="cats") returned:
//	<result>
func FormatResult(name string, args any, result any) string {
	return "---\n" + FormatCall(name, args) + " returned:\n" + resultText(result) + "\n"
}

// FormatFailure renders the observation injected into history when a failed call is fed
// back to the model instead of failing the run.
func FormatFailure(name string, args any, err error) string {
	return "---\n" + FormatCall(name, args) + " failed:\n" + err.Error() + "\n"
}

func resultText(result any) string {
	switch r := result.(type) {
	case nil:
		return ""
	case string:
		return r
	case fmt.Stringer:
		return r.String()
	default:
		return formatValue(r)
	}
}
