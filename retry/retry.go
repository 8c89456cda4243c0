// Package retry decorates tools with bounded re-invocation on failure.
//
//	search := retry.MustWrap(base, retry.Config{
//	    MaxRetries: 2,
//	    Kinds:      []error{ErrRateLimited},
//	    Delay:      500 * time.Millisecond,
//	})
//
// The wrapper is itself an arkaine.Tool with the base tool's identity, so it can be
// registered and handed to an agent in place of the base tool.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rickchristie/arkaine"
	"go.uber.org/zap"
)

// ErrInvalidConfig is returned by Wrap for negative retry counts or delays.
var ErrInvalidConfig = errors.New("invalid retry config")

// ErrExhausted matches errors returned after every allowed attempt failed.
var ErrExhausted = errors.New("retries exhausted")

// Config controls a retry wrapper.
type Config struct {
	// MaxRetries is the number of re-invocations after the first failure. The wrapped tool
	// is invoked at most MaxRetries+1 times per call.
	MaxRetries int

	// Kinds lists the failures worth retrying, matched with errors.Is. They may be sentinel
	// errors or arkaine.ErrorKind values. Empty matches any failure.
	Kinds []error

	// Delay is slept between attempts. Zero retries immediately.
	Delay time.Duration

	// Name and Description override the base tool's, when set.
	Name        string
	Description string

	// Logger receives a debug entry per failed attempt. Defaults to zap.NewNop().
	Logger *zap.Logger
}

// Tool is a retrying arkaine.Tool.
type Tool struct {
	base   arkaine.Tool
	cfg    Config
	logger *zap.Logger
}

// Wrap decorates base with cfg.
func Wrap(base arkaine.Tool, cfg Config) (*Tool, error) {
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("%w: max retries %d is negative", ErrInvalidConfig, cfg.MaxRetries)
	}
	if cfg.Delay < 0 {
		return nil, fmt.Errorf("%w: delay %s is negative", ErrInvalidConfig, cfg.Delay)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tool{base: base, cfg: cfg, logger: logger}, nil
}

// MustWrap is like Wrap but panics on an invalid config.
func MustWrap(base arkaine.Tool, cfg Config) *Tool {
	t, err := Wrap(base, cfg)
	if err != nil {
		panic(err)
	}
	return t
}

// Unwrap returns the base tool.
func (t *Tool) Unwrap() arkaine.Tool {
	return t.base
}

// ID returns the base tool's identity.
func (t *Tool) ID() string {
	return t.base.ID()
}

func (t *Tool) Name() string {
	if t.cfg.Name != "" {
		return t.cfg.Name
	}
	return t.base.Name()
}

func (t *Tool) Description() string {
	if t.cfg.Description != "" {
		return t.cfg.Description
	}
	return t.base.Description()
}

func (t *Tool) Arguments() []arkaine.Argument {
	return t.base.Arguments()
}

// AddCallListener attaches l to the base tool, so listeners observe every attempt.
func (t *Tool) AddCallListener(l arkaine.ToolCallListener) {
	t.base.AddCallListener(l)
}

// Invoke calls the base tool until it succeeds, fails with an unmatched error, or the
// retry budget is spent.
//
// Unmatched failures and context errors are returned as-is. When the budget is spent the
// last failure is returned wrapped in an *ExhaustedError, which matches ErrExhausted and
// unwraps to that failure, so its kind is preserved.
func (t *Tool) Invoke(ctx context.Context, args arkaine.Arguments) (any, error) {
	attempt := 0
	for {
		attempt++
		result, err := t.base.Invoke(ctx, args)
		if err == nil {
			return result, nil
		}

		if isContextErr(ctx, err) || !t.matches(err) {
			return nil, err
		}
		if attempt > t.cfg.MaxRetries {
			t.logger.Warn("tool retries exhausted",
				zap.String("tool", t.Name()),
				zap.Int("attempts", attempt),
				zap.Error(err),
			)
			return nil, &ExhaustedError{Tool: t.Name(), Attempts: attempt, Err: err}
		}

		t.logger.Debug("tool attempt failed, retrying",
			zap.String("tool", t.Name()),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", t.cfg.MaxRetries),
			zap.Duration("delay", t.cfg.Delay),
			zap.Error(err),
		)

		if t.cfg.Delay > 0 {
			timer := time.NewTimer(t.cfg.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, arkaine.NewError(arkaine.KindCancelled, "retry", ctx.Err()).
					WithTool(t.Name()).
					WithAttempts(attempt)
			case <-timer.C:
			}
		}
	}
}

func (t *Tool) matches(err error) bool {
	if len(t.cfg.Kinds) == 0 {
		return true
	}
	for _, k := range t.cfg.Kinds {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}

func isContextErr(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, arkaine.KindCancelled)
}

// ExhaustedError reports the last failure after every attempt failed.
type ExhaustedError struct {
	Tool     string
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("tool %q failed after %d attempts: %v", e.Tool, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Is matches ErrExhausted.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}

// Compile-time check that Tool implements arkaine.Tool.
var _ arkaine.Tool = (*Tool)(nil)
