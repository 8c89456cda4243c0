package arkaine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind tags a failure with the category a caller branches on. It implements error so
// that errors.Is(err, arkaine.KindTool) works on any wrapped failure carrying the kind.
type ErrorKind string

const (
	// KindFormat marks model text that does not follow the decision protocol.
	KindFormat ErrorKind = "format"

	// KindResponse marks an upstream model failure or an exceeded iteration bound.
	KindResponse ErrorKind = "response"

	// KindTool marks an unknown tool, an argument mismatch, or the tool's own failure.
	KindTool ErrorKind = "tool"

	// KindCancelled marks a run aborted by context cancellation or deadline.
	KindCancelled ErrorKind = "cancelled"
)

// Error implements the error interface.
func (k ErrorKind) Error() string {
	return string(k) + " error"
}

// Sentinel errors, wrapped with %w so callers can match them with errors.Is.
var (
	// ErrMissingThought is returned when the first non-empty line does not start with
	// "Thought:".
	ErrMissingThought = errors.New("response must begin with a Thought line")

	// ErrActionWithoutInput is returned when an Action line has no Action Input.
	ErrActionWithoutInput = errors.New("action specified without action input")

	// ErrMissingToolName is returned when an action block does not name a tool.
	ErrMissingToolName = errors.New("action does not name a tool")

	// ErrUnknownTool is returned when the model requests a tool that is not configured.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidArguments is returned when tool arguments are not a keyed object or fail
	// schema validation.
	ErrInvalidArguments = errors.New("invalid tool arguments")

	// ErrMaxIterations is returned when a run exceeds its turn bound.
	ErrMaxIterations = errors.New("maximum iterations exceeded")

	// ErrEmptyResponse is returned when a model produces no choices.
	ErrEmptyResponse = errors.New("model returned no choices")

	// ErrDuplicateTool is returned when two tools with the same name are added to a set.
	ErrDuplicateTool = errors.New("duplicate tool name")
)

// Error is the single failure type surfaced by a run. Besides the kind it carries enough
// context (operation, tool, attempts) to diagnose the failure without re-running.
type Error struct {
	Kind     ErrorKind
	Op       string
	Tool     string
	Attempts int
	Err      error
}

// NewError creates an Error of the given kind.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// WithTool records the tool the failure belongs to.
func (e *Error) WithTool(name string) *Error {
	e.Tool = name
	return e
}

// WithAttempts records how many invocation attempts were made.
func (e *Error) WithAttempts(n int) *Error {
	e.Attempts = n
	return e
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	sb.WriteString(" error")
	if e.Op != "" {
		fmt.Fprintf(&sb, " in %s", e.Op)
	}
	if e.Tool != "" {
		fmt.Fprintf(&sb, " (tool %q", e.Tool)
		if e.Attempts > 0 {
			fmt.Fprintf(&sb, ", %d attempts", e.Attempts)
		}
		sb.WriteString(")")
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is this error's kind.
func (e *Error) Is(target error) bool {
	if k, ok := target.(ErrorKind); ok {
		return k == e.Kind
	}
	return false
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	var k ErrorKind
	if errors.As(err, &k) {
		return k
	}
	return ""
}

// FormatErrorf creates a KindFormat error wrapping sentinel with detail.
func FormatErrorf(sentinel error, format string, args ...any) *Error {
	return NewError(KindFormat, "parse", wrapDetail(sentinel, format, args...))
}

// ToolErrorf creates a KindTool error for the named tool.
func ToolErrorf(tool string, sentinel error, format string, args ...any) *Error {
	return NewError(KindTool, "invoke", wrapDetail(sentinel, format, args...)).WithTool(tool)
}

func wrapDetail(sentinel error, format string, args ...any) error {
	if format == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
