package arkaine

import (
	"sync"
	"time"
)

// TimeProvider supplies the current time. Tools use it to stamp invocations and prompt
// templates reach it through the .Time field:
//
//	Today is {{.Time.Today}} ({{.Time.Weekday}})
type TimeProvider interface {
	// Now returns the current time.
	Now() time.Time

	// Today returns the current date as YYYY-MM-DD.
	Today() string

	// Weekday returns the current day of the week, e.g. "Monday".
	Weekday() string

	// Format returns the current time formatted with a Go layout.
	Format(layout string) string
}

// DefaultTimeProvider reads the system clock.
type DefaultTimeProvider struct{}

// NewDefaultTimeProvider creates a new DefaultTimeProvider.
func NewDefaultTimeProvider() *DefaultTimeProvider {
	return &DefaultTimeProvider{}
}

func (p *DefaultTimeProvider) Now() time.Time              { return time.Now() }
func (p *DefaultTimeProvider) Today() string               { return p.Now().Format(time.DateOnly) }
func (p *DefaultTimeProvider) Weekday() string             { return p.Now().Weekday().String() }
func (p *DefaultTimeProvider) Format(layout string) string { return p.Now().Format(layout) }

// MockTimeProvider returns a fixed time, optionally advancing by Step on every Now call.
// It is safe for concurrent use.
type MockTimeProvider struct {
	mu    sync.Mutex
	fixed time.Time
	step  time.Duration
}

// NewMockTimeProvider creates a MockTimeProvider fixed at t.
func NewMockTimeProvider(t time.Time) *MockTimeProvider {
	return &MockTimeProvider{fixed: t}
}

// WithStep makes every Now call advance the clock by d after reading it.
func (m *MockTimeProvider) WithStep(d time.Duration) *MockTimeProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.step = d
	return m
}

// SetTime updates the fixed time.
func (m *MockTimeProvider) SetTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fixed = t
}

func (m *MockTimeProvider) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.fixed
	m.fixed = m.fixed.Add(m.step)
	return now
}

func (m *MockTimeProvider) Today() string               { return m.peek().Format(time.DateOnly) }
func (m *MockTimeProvider) Weekday() string             { return m.peek().Weekday().String() }
func (m *MockTimeProvider) Format(layout string) string { return m.peek().Format(layout) }

func (m *MockTimeProvider) peek() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fixed
}

// Compile-time checks.
var (
	_ TimeProvider = (*DefaultTimeProvider)(nil)
	_ TimeProvider = (*MockTimeProvider)(nil)
)
