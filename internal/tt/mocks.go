package tt

import (
	"context"
	"sync"
	"time"

	"github.com/rickchristie/arkaine"
)

// -----------------------------------------------------------------------------
// MockModel - implements arkaine.Model with scripted replies
// -----------------------------------------------------------------------------

// MockModel returns queued replies in order. Once the queue is exhausted it returns
// DefaultReply. It is safe for concurrent use.
type MockModel struct {
	mu        sync.Mutex
	replies   []string
	errors    []error
	callCount int
	delay     time.Duration

	// DefaultReply is returned once queued replies run out.
	DefaultReply string

	// CapturedMessages stores the messages passed to each Complete call.
	CapturedMessages [][]arkaine.Message
}

// NewMockModel creates a MockModel whose default reply is a final answer.
func NewMockModel() *MockModel {
	return &MockModel{DefaultReply: "Thought: done\nAnswer: done"}
}

// AddReply queues a reply.
func (m *MockModel) AddReply(reply string) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, reply)
	m.errors = append(m.errors, nil)
	return m
}

// AddError queues a failure for the next call.
func (m *MockModel) AddError(err error) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, "")
	m.errors = append(m.errors, err)
	return m
}

// WithDelay makes every call block for d or until ctx is done.
func (m *MockModel) WithDelay(d time.Duration) *MockModel {
	m.delay = d
	return m
}

// CallCount returns the number of Complete calls.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastMessages returns the messages of the most recent call.
func (m *MockModel) LastMessages() []arkaine.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.CapturedMessages) == 0 {
		return nil
	}
	return m.CapturedMessages[len(m.CapturedMessages)-1]
}

// Complete implements arkaine.Model.
func (m *MockModel) Complete(ctx context.Context, messages []arkaine.Message) (string, error) {
	m.mu.Lock()
	idx := m.callCount
	m.callCount++
	captured := make([]arkaine.Message, len(messages))
	copy(captured, messages)
	m.CapturedMessages = append(m.CapturedMessages, captured)
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(m.delay):
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if idx < len(m.replies) {
		return m.replies[idx], m.errors[idx]
	}
	return m.DefaultReply, nil
}

// -----------------------------------------------------------------------------
// MockTool - implements arkaine.Tool with scripted outcomes
// -----------------------------------------------------------------------------

// MockToolFunc computes a MockTool result.
type MockToolFunc func(ctx context.Context, args arkaine.Arguments) (any, error)

// NewMockTool creates a FuncTool whose behavior is fn. The returned counter reports how
// many times the tool ran.
func NewMockTool(name string, args []arkaine.Argument, fn MockToolFunc) (*arkaine.FuncTool, *Counter) {
	counter := &Counter{}
	tool := arkaine.NewTool(name, "mock tool "+name, args, func(ctx context.Context, a arkaine.Arguments) (any, error) {
		counter.Inc()
		return fn(ctx, a)
	})
	return tool, counter
}

// FailingN returns a MockToolFunc that fails with errs in order and then returns result.
func FailingN(result any, errs ...error) MockToolFunc {
	var mu sync.Mutex
	calls := 0
	return func(_ context.Context, _ arkaine.Arguments) (any, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls <= len(errs) {
			return nil, errs[calls-1]
		}
		return result, nil
	}
}

// Counter is a concurrency-safe call counter.
type Counter struct {
	mu sync.Mutex
	n  int
}

// Inc increments the counter.
func (c *Counter) Inc() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
}

// Value returns the current count.
func (c *Counter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// -----------------------------------------------------------------------------
// RecordingListener - implements arkaine.ToolCallListener
// -----------------------------------------------------------------------------

// RecordingListener stores every invocation it is notified of.
type RecordingListener struct {
	mu          sync.Mutex
	invocations []arkaine.Invocation
	signal      chan struct{}
}

// NewRecordingListener creates an empty RecordingListener.
func NewRecordingListener() *RecordingListener {
	return &RecordingListener{signal: make(chan struct{}, 1024)}
}

// OnToolCall implements arkaine.ToolCallListener.
func (l *RecordingListener) OnToolCall(_ arkaine.Tool, inv arkaine.Invocation) {
	l.mu.Lock()
	l.invocations = append(l.invocations, inv)
	l.mu.Unlock()
	select {
	case l.signal <- struct{}{}:
	default:
	}
}

// Invocations returns a copy of the recorded invocations.
func (l *RecordingListener) Invocations() []arkaine.Invocation {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]arkaine.Invocation, len(l.invocations))
	copy(out, l.invocations)
	return out
}

// Len returns the number of recorded invocations.
func (l *RecordingListener) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.invocations)
}

// WaitFor blocks until at least n invocations are recorded or timeout elapses. It reports
// whether n was reached.
func (l *RecordingListener) WaitFor(n int, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		if l.Len() >= n {
			return true
		}
		select {
		case <-l.signal:
		case <-deadline.C:
			return l.Len() >= n
		}
	}
}

// Compile-time checks.
var (
	_ arkaine.Model            = (*MockModel)(nil)
	_ arkaine.ToolCallListener = (*RecordingListener)(nil)
)
