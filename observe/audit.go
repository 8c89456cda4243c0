package observe

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rickchristie/arkaine"
	"gopkg.in/yaml.v3"
)

// AuditRecord is one invocation as written by Audit.
type AuditRecord struct {
	ToolID     string            `yaml:"tool_id"`
	Tool       string            `yaml:"tool"`
	Arguments  arkaine.Arguments `yaml:"arguments,omitempty"`
	Result     string            `yaml:"result,omitempty"`
	Error      string            `yaml:"error,omitempty"`
	StartedAt  time.Time         `yaml:"started_at"`
	FinishedAt time.Time         `yaml:"finished_at"`
	DurationMS int64             `yaml:"duration_ms"`
}

// Audit writes every tool invocation to w as a YAML document, one "---" separated document
// per invocation, so the trail can be read back with a yaml.Decoder.
type Audit struct {
	mu      sync.Mutex
	w       io.Writer
	written int
	err     error
}

// NewAudit creates an Audit writing to w.
func NewAudit(w io.Writer) *Audit {
	return &Audit{w: w}
}

// OnToolCall implements arkaine.ToolCallListener.
func (a *Audit) OnToolCall(tool arkaine.Tool, inv arkaine.Invocation) {
	rec := AuditRecord{
		ToolID:     inv.ToolID,
		Tool:       inv.ToolName,
		Arguments:  inv.Arguments,
		StartedAt:  inv.StartedAt,
		FinishedAt: inv.FinishedAt,
		DurationMS: inv.Duration().Milliseconds(),
	}
	if inv.Result != nil {
		rec.Result = fmt.Sprint(inv.Result)
	}
	if inv.Err != nil {
		rec.Error = inv.Err.Error()
	}

	data, err := yaml.Marshal(rec)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err == nil {
		_, err = fmt.Fprintf(a.w, "---\n%s", data)
	}
	if err != nil {
		a.err = err
		return
	}
	a.written++
}

// Written returns the number of records written.
func (a *Audit) Written() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.written
}

// Err returns the last write error, if any.
func (a *Audit) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

var _ arkaine.ToolCallListener = (*Audit)(nil)
