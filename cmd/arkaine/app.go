package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rickchristie/arkaine"
	"github.com/rickchristie/arkaine/agents/react"
	"github.com/rickchristie/arkaine/config"
	"github.com/rickchristie/arkaine/hooks"
	"github.com/rickchristie/arkaine/models"
	"github.com/rickchristie/arkaine/observe"
	"github.com/rickchristie/arkaine/registrar"
	"github.com/rickchristie/arkaine/retry"
	"github.com/rickchristie/arkaine/toolbox"
	"go.uber.org/zap"
)

// app is the wired agent with its observers.
type app struct {
	agent     *react.Agent
	registrar *registrar.Registrar
	metrics   *prometheus.Registry
	audit     io.Closer
	logger    *zap.Logger
}

func newModel(cfg *config.Config, logger *zap.Logger) (arkaine.Model, error) {
	return models.New(models.Options{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Temperature: cfg.LLM.Temperature,
		Logger:      logger.Named("model"),
	})
}

// newApp wires model, tools, registrar and observers. extra tools are registered after
// the toolbox tools.
func newApp(cfg *config.Config, logger *zap.Logger, model arkaine.Model, extra ...arkaine.Tool) (*app, error) {
	tools, err := buildTools(cfg, logger)
	if err != nil {
		return nil, err
	}
	tools = append(tools, extra...)

	a := &app{
		registrar: registrar.New(registrar.Config{
			Workers: cfg.Registrar.Workers,
			Enabled: cfg.Registrar.Enabled,
			Logger:  logger.Named("registrar"),
		}),
		metrics: prometheus.NewRegistry(),
		logger:  logger,
	}

	metrics, err := observe.NewMetrics(cfg.Metrics.Namespace, a.metrics)
	if err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}
	tracing := observe.NewTracing(nil)

	a.registrar.AddToolCallListener(observe.NewLogListener(logger.Named("tools")))
	a.registrar.AddToolCallListener(metrics)
	a.registrar.AddToolCallListener(tracing)
	if cfg.Registrar.AuditPath != "" {
		f, err := os.OpenFile(cfg.Registrar.AuditPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			_ = a.Close(context.Background())
			return nil, fmt.Errorf("failed to open audit trail: %w", err)
		}
		a.audit = f
		a.registrar.AddToolCallListener(observe.NewAudit(f))
	}

	registry := hooks.NewRegistry().
		Register(observe.NewLogHook(logger.Named("runs"))).
		Register(metrics).
		Register(tracing)

	a.agent = react.NewAgent(model).
		WithBehaviorAndContext(cfg.Agent.BehaviorAndContext).
		WithMaxTurns(cfg.Agent.MaxTurns).
		WithMaxSimultaneousTools(cfg.Agent.MaxSimultaneousTools).
		WithToolErrorsAsObservations(cfg.Agent.ToolErrorsAsObservations).
		WithHooks(registry).
		WithLogger(logger.Named("agent"))

	for _, tool := range tools {
		a.registrar.Register(tool)
		a.agent.RegisterTool(tool)
	}
	return a, nil
}

// buildTools creates the configured toolbox tools, each wrapped by retry.
func buildTools(cfg *config.Config, logger *zap.Logger) ([]arkaine.Tool, error) {
	var base []arkaine.Tool
	if cfg.Toolbox.Wikipedia {
		base = append(base, toolbox.Wikipedia(cfg.Toolbox.UserAgent))
	}
	if cfg.Toolbox.WebSearch {
		search, err := toolbox.WebSearch(cfg.Toolbox.WebSearchResults, cfg.Toolbox.UserAgent)
		if err != nil {
			return nil, err
		}
		base = append(base, search)
	}

	tools := make([]arkaine.Tool, 0, len(base))
	for _, tool := range base {
		wrapped, err := retry.Wrap(tool, retry.Config{
			MaxRetries: cfg.Retry.MaxRetries,
			Delay:      cfg.Retry.Delay,
			Logger:     logger.Named("retry"),
		})
		if err != nil {
			return nil, err
		}
		tools = append(tools, wrapped)
	}
	return tools, nil
}

// runTask runs one task and writes the answer to w.
func (a *app) runTask(ctx context.Context, w io.Writer, task string) error {
	answer, err := a.agent.Run(ctx, task)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, answer)
	return err
}

// Close drains pending listener notifications and closes the audit trail.
func (a *app) Close(ctx context.Context) error {
	err := a.registrar.Close(ctx)
	if a.audit != nil {
		err = errors.Join(err, a.audit.Close())
	}
	return err
}
