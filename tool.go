package arkaine

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/rickchristie/arkaine/schema"
)

// Tool is a named, schema-typed capability an agent may invoke.
//
// Responsibility design:
//   - Tool: validate arguments, execute logic, return a raw result, notify listeners
//   - toolchain.Set: describe tools to the model and look them up by name
//   - agents/react: decide when to call tools and format their results for the model
//
// Implementations must notify every attached ToolCallListener once per invocation, after
// the invocation completes or fails.
type Tool interface {
	// ID returns the tool's stable identity. Registries index tools by ID.
	ID() string

	// Name returns the identifier the model uses in tool calls.
	Name() string

	// Description returns a human-readable description for the model.
	Description() string

	// Arguments returns the ordered argument schema.
	Arguments() []Argument

	// Invoke executes the tool.
	Invoke(ctx context.Context, args Arguments) (any, error)

	// AddCallListener attaches a listener. Adding the same listener twice must not
	// produce duplicate notifications.
	AddCallListener(l ToolCallListener)
}

// Arguments is the keyed argument set passed to a tool.
type Arguments map[string]any

// Argument describes one parameter of a tool.
type Argument struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
}

// ToolFunc is the function backing a FuncTool.
type ToolFunc func(ctx context.Context, args Arguments) (any, error)

// FuncTool is a Tool backed by a plain function.
type FuncTool struct {
	id           string
	name         string
	description  string
	args         []Argument
	schema       *schema.Schema
	fn           ToolFunc
	timeProvider TimeProvider

	mu        sync.Mutex
	listeners []ToolCallListener
}

// NewTool creates a FuncTool. Arguments are validated against a JSON schema derived from
// args before fn is called.
//
// Example:
//
//	search := arkaine.NewTool("search", "Search the web",
//	    []arkaine.Argument{{Name: "q", Type: "string", Description: "query", Required: true}},
//	    func(ctx context.Context, args arkaine.Arguments) (any, error) {
//	        return doSearch(ctx, args["q"].(string))
//	    },
//	)
func NewTool(name, description string, args []Argument, fn ToolFunc) *FuncTool {
	return &FuncTool{
		id:           uuid.NewString(),
		name:         name,
		description:  description,
		args:         args,
		schema:       schema.MustCompile(ArgumentsSchema(args)),
		fn:           fn,
		timeProvider: NewDefaultTimeProvider(),
	}
}

// WithID overrides the generated identity.
func (t *FuncTool) WithID(id string) *FuncTool {
	t.id = id
	return t
}

// WithTimeProvider sets the clock used for invocation timestamps.
func (t *FuncTool) WithTimeProvider(tp TimeProvider) *FuncTool {
	t.timeProvider = tp
	return t
}

func (t *FuncTool) ID() string            { return t.id }
func (t *FuncTool) Name() string          { return t.name }
func (t *FuncTool) Description() string   { return t.description }
func (t *FuncTool) Arguments() []Argument { return t.args }

// AddCallListener attaches l unless an identical listener is already attached.
func (t *FuncTool) AddCallListener(l ToolCallListener) {
	if l == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, existing := range t.listeners {
		if SameListener(existing, l) {
			return
		}
	}
	t.listeners = append(t.listeners, l)
}

// Invoke validates args, calls the backing function and notifies listeners.
//
// Errors returned by the backing function are passed through unchanged so that retry
// policies can match on them. Validation failures are KindTool errors wrapping
// ErrInvalidArguments.
func (t *FuncTool) Invoke(ctx context.Context, args Arguments) (any, error) {
	if args == nil {
		args = Arguments{}
	}
	inv := Invocation{
		ToolID:    t.id,
		ToolName:  t.name,
		Arguments: args,
		StartedAt: t.timeProvider.Now(),
	}

	result, err := t.call(ctx, args)

	inv.Result = result
	inv.Err = err
	inv.FinishedAt = t.timeProvider.Now()
	NotifyListeners(t, t.snapshotListeners(), inv)

	return result, err
}

func (t *FuncTool) call(ctx context.Context, args Arguments) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewError(KindCancelled, "invoke", err).WithTool(t.name)
	}
	if err := t.schema.Validate(args); err != nil {
		return nil, ToolErrorf(t.name, ErrInvalidArguments, "%v", err)
	}
	return t.fn(ctx, args)
}

func (t *FuncTool) snapshotListeners() []ToolCallListener {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]ToolCallListener, len(t.listeners))
	copy(out, t.listeners)
	return out
}

// NotifyListeners calls every listener with inv. A panicking listener is recovered and
// does not prevent the remaining listeners from being called.
func NotifyListeners(tool Tool, listeners []ToolCallListener, inv Invocation) {
	for _, l := range listeners {
		func() {
			defer func() { _ = recover() }()
			l.OnToolCall(tool, inv)
		}()
	}
}

// SameListener reports whether a and b are the same listener. Listeners whose dynamic type
// is not comparable (functions, for instance) are never considered equal.
func SameListener(a, b ToolCallListener) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || ta == nil || !ta.Comparable() {
		return false
	}
	return a == b
}

// ArgumentsSchema builds the JSON schema describing args.
func ArgumentsSchema(args []Argument) map[string]any {
	fields := make([]schema.Field, len(args))
	for i, a := range args {
		fields[i] = schema.Field(a)
	}
	return schema.For(fields...)
}

// String renders the argument the way tool catalogs print it.
func (a Argument) String() string {
	req := "optional"
	if a.Required {
		req = "required"
	}
	return fmt.Sprintf("%s (%s, %s): %s", a.Name, a.Type, req, a.Description)
}

// Compile-time check that FuncTool implements Tool.
var _ Tool = (*FuncTool)(nil)
