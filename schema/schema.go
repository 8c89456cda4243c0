// Package schema turns a tool's declared argument list into a compiled JSON schema.
//
// Tools declare arguments with loose type labels ("string", "int", "list[str]", ...).
// TypeOf maps a label onto a JSON Schema type, For assembles the object schema in
// declaration order, and Compile turns it into a validator:
//
//	s, err := schema.Compile(schema.For(
//	    schema.Field{Name: "query", Type: "string", Description: "search terms", Required: true},
//	    schema.Field{Name: "limit", Type: "int", Description: "max results"},
//	))
//	err = s.Validate(map[string]any{"query": "cats"})
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const resourceName = "arguments.json"

// Field is one declared argument.
type Field struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// For builds the object schema for fields. Required names keep declaration order.
// A later field with the same name replaces the earlier one.
func For(fields ...Field) map[string]any {
	props := make(map[string]any, len(fields))
	required := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))

	for _, f := range fields {
		prop := map[string]any{}
		if typ := TypeOf(f.Type); typ != "" {
			prop["type"] = typ
		}
		if f.Description != "" {
			prop["description"] = f.Description
		}
		props[f.Name] = prop

		if f.Required && !seen[f.Name] {
			required = append(required, f.Name)
			seen[f.Name] = true
		}
	}

	out := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

// TypeOf maps a loose type label onto a JSON Schema type name, case-insensitively.
// It returns "" for labels that should accept any JSON value.
func TypeOf(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	switch l {
	case "string", "str", "text":
		return "string"
	case "int", "integer":
		return "integer"
	case "float", "number", "double":
		return "number"
	case "bool", "boolean":
		return "boolean"
	case "list", "array":
		return "array"
	case "dict", "object", "map":
		return "object"
	}
	if strings.HasPrefix(l, "list[") || strings.HasPrefix(l, "[]") {
		return "array"
	}
	if strings.HasPrefix(l, "dict[") || strings.HasPrefix(l, "map[") {
		return "object"
	}
	return ""
}

// Schema pairs the raw schema (for prompts and logs) with its compiled validator.
type Schema struct {
	raw      map[string]any
	compiled *jsonschema.Schema
}

// Compile compiles raw. A nil map compiles to a nil Schema, which accepts anything.
func Compile(raw map[string]any) (*Schema, error) {
	if raw == nil {
		return nil, nil
	}

	doc, err := normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("schema is not JSON-encodable: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(resourceName, doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{raw: raw, compiled: compiled}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(raw map[string]any) *Schema {
	s, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// Raw returns the schema as a map.
func (s *Schema) Raw() map[string]any {
	if s == nil {
		return nil
	}
	return s.raw
}

// Validate checks args against the schema. A nil map is validated as an empty object.
//
// Values pass through a JSON round trip first, so Go-native values (int, []string) and
// values decoded from model output validate alike.
func (s *Schema) Validate(args map[string]any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	if args == nil {
		args = map[string]any{}
	}
	doc, err := normalize(args)
	if err != nil {
		return &ValidationError{Err: fmt.Errorf("arguments are not JSON-encodable: %w", err)}
	}
	if err := s.compiled.Validate(doc); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// ValidationError reports arguments rejected by a Schema.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "arguments do not match schema: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func normalize(v any) (any, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
}
