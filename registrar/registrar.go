// Package registrar indexes tools by identity and fans their call events out to observers.
//
// A Registrar is created once by the composition root and shared by reference with every
// component that needs it:
//
//	reg := registrar.New(registrar.Config{Workers: 4, Logger: logger})
//	defer reg.Close(ctx)
//
//	reg.AddToolCallListener(observe.NewLogListener(logger))
//	reg.Register(search)
//	reg.Enable()
//
// Registered tools notify the registrar synchronously after each invocation. The registrar
// copies its listener list under its lock and hands one task per listener to a bounded
// worker pool, so a slow or panicking listener never delays the invoking tool.
//
// Listener execution order across workers is not guaranteed. Events of a single tool are
// queued in invocation order.
package registrar

import (
	"context"
	"sync"

	"github.com/rickchristie/arkaine"
	"github.com/rickchristie/arkaine/internal/pool"
	"go.uber.org/zap"
)

// DefaultWorkers is the worker count used when Config.Workers is not positive.
const DefaultWorkers = 4

// Config configures a Registrar.
type Config struct {
	// Workers bounds how many listener tasks run at once. Defaults to DefaultWorkers.
	Workers int

	// Enabled starts the registrar with fan-out switched on. Fan-out is off by default.
	Enabled bool

	// Logger receives recovered listener panics. Defaults to zap.NewNop().
	Logger *zap.Logger
}

// Registrar is a thread-safe tool registry with asynchronous call-event fan-out.
//
// The registry grows without bound; entries stay until Remove is called.
type Registrar struct {
	mu         sync.Mutex
	tools      map[string]arkaine.Tool
	order      []string
	listeners  []arkaine.ToolCallListener
	enabled    bool
	dispatched int64

	pool   *pool.Pool
	logger *zap.Logger
}

// New creates a Registrar and starts its worker pool. Call Close to stop the workers.
func New(cfg Config) *Registrar {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Registrar{
		tools:   make(map[string]arkaine.Tool),
		enabled: cfg.Enabled,
		pool:    pool.New(workers, logger),
		logger:  logger,
	}
}

// Register indexes tool by its ID and subscribes the registrar to its call events.
//
// Registering a known ID keeps the existing entry and reports false. The subscription is
// made either way; tools dedupe listeners, so it never doubles notifications.
func (r *Registrar) Register(tool arkaine.Tool) bool {
	if tool == nil {
		return false
	}

	r.mu.Lock()
	id := tool.ID()
	_, exists := r.tools[id]
	if !exists {
		r.tools[id] = tool
		r.order = append(r.order, id)
	}
	r.mu.Unlock()

	tool.AddCallListener(r)
	return !exists
}

// Remove drops the entry for id and reports whether it existed. Call events of a removed
// tool are no longer dispatched.
func (r *Registrar) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tools[id]; !ok {
		return false
	}
	delete(r.tools, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// GetTools returns a snapshot of the registered tools in registration order. Later
// registrations do not affect the returned slice.
func (r *Registrar) GetTools() []arkaine.Tool {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]arkaine.Tool, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.tools[id])
	}
	return out
}

// Tool returns the tool registered under id.
func (r *Registrar) Tool(id string) (arkaine.Tool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tools[id]
	return t, ok
}

// Len returns the number of registered tools.
func (r *Registrar) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tools)
}

// AddToolCallListener appends an observer. It receives events dispatched after it was
// added.
func (r *Registrar) AddToolCallListener(l arkaine.ToolCallListener) {
	if l == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// Enable switches fan-out on.
func (r *Registrar) Enable() {
	r.SetAutoRegistry(true)
}

// Disable switches fan-out off. Tools keep working; listeners receive nothing.
func (r *Registrar) Disable() {
	r.SetAutoRegistry(false)
}

// SetAutoRegistry switches fan-out on or off.
func (r *Registrar) SetAutoRegistry(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
}

// IsEnabled reports whether fan-out is on.
func (r *Registrar) IsEnabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

// Dispatched returns the number of listener tasks handed to the worker pool so far.
func (r *Registrar) Dispatched() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dispatched
}

// OnToolCall implements arkaine.ToolCallListener. It is called by registered tools on the
// invoking goroutine and returns without waiting for any listener.
func (r *Registrar) OnToolCall(tool arkaine.Tool, inv arkaine.Invocation) {
	r.mu.Lock()
	if !r.enabled || len(r.listeners) == 0 {
		r.mu.Unlock()
		return
	}
	if _, ok := r.tools[tool.ID()]; !ok {
		r.mu.Unlock()
		return
	}
	listeners := make([]arkaine.ToolCallListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	for _, l := range listeners {
		if !r.pool.Submit(func() { r.notify(l, tool, inv) }) {
			r.logger.Debug("registrar closed, dropping tool call event",
				zap.String("tool", tool.Name()),
			)
			return
		}
		r.mu.Lock()
		r.dispatched++
		r.mu.Unlock()
	}
}

func (r *Registrar) notify(l arkaine.ToolCallListener, tool arkaine.Tool, inv arkaine.Invocation) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("tool call listener panicked",
				zap.String("tool", tool.Name()),
				zap.String("tool_id", tool.ID()),
				zap.Any("panic", p),
			)
		}
	}()
	l.OnToolCall(tool, inv)
}

// Close stops accepting events and waits for queued listener tasks until ctx is done.
func (r *Registrar) Close(ctx context.Context) error {
	return r.pool.Close(ctx)
}

// Compile-time check that Registrar implements arkaine.ToolCallListener.
var _ arkaine.ToolCallListener = (*Registrar)(nil)
