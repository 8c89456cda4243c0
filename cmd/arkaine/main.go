// Command arkaine is an interactive ReAct agent. Every line typed at the prompt becomes one
// task; Ctrl-C while a task runs cancels it, Ctrl-C at the prompt exits.
//
//	arkaine -f arkaine.yaml
//	arkaine --provider openai -m gpt-4.1-mini -t "Who wrote Dune?"
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rickchristie/arkaine"
	"github.com/rickchristie/arkaine/config"
	"go.uber.org/zap"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		if isHelp(err) {
			fmt.Println(err)
			return
		}
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, err := parseOptions(args)
	if err != nil {
		return err
	}

	cfg, err := opts.loader().Load()
	if err != nil {
		return err
	}
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	logger, err := cfg.Log.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	model, err := newModel(cfg, logger)
	if err != nil {
		return err
	}
	a, err := newApp(cfg, logger, model)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.Close(ctx); err != nil {
			logger.Warn("shutdown incomplete", zap.Error(err))
		}
	}()

	if opts.MetricsAddr != "" {
		srv := serveMetrics(opts.MetricsAddr, a, logger)
		defer func() { _ = srv.Close() }()
	}

	if opts.Task != "" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return a.runTask(ctx, os.Stdout, opts.Task)
	}
	return repl(a, cfg)
}

func serveMetrics(addr string, a *app, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.metrics, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))
	return srv
}

func repl(a *app, cfg *config.Config) error {
	rl, err := readline.New(colorCyan + "task> " + colorReset)
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	fmt.Printf("%s%sarkaine%s %s(%s/%s, %d tools)%s\n",
		colorBold, colorYellow, colorReset,
		colorDim, cfg.LLM.Provider, cfg.LLM.Model, a.agent.Tools().Len(), colorReset)
	fmt.Printf("%sType a task, /tools to list tools, or q to quit.%s\n\n", colorDim, colorReset)

	for {
		input, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				fmt.Printf("\n%sGoodbye!%s\n", colorGreen, colorReset)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		switch input {
		case "":
			continue
		case "q", "Q", "/quit":
			fmt.Printf("%sGoodbye!%s\n", colorGreen, colorReset)
			return nil
		case "/tools":
			printTools(os.Stdout, a)
			continue
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		err = a.runTask(ctx, os.Stdout, input)
		stop()
		if err != nil {
			reportRunError(os.Stderr, err)
		}
		fmt.Printf("%s%s%s\n\n", colorDim, strings.Repeat("-", 60), colorReset)
	}
}

func printTools(w io.Writer, a *app) {
	names := a.agent.Tools().Names()
	if len(names) == 0 {
		fmt.Fprintf(w, "%sNo tools configured.%s\n", colorDim, colorReset)
		return
	}
	for _, name := range names {
		fmt.Fprintf(w, "  %s%s%s\n", colorCyan, name, colorReset)
	}
}

// reportRunError prints err prefixed by its kind.
func reportRunError(w io.Writer, err error) {
	if errors.Is(err, arkaine.KindCancelled) {
		fmt.Fprintf(w, "%sCancelled.%s\n", colorYellow, colorReset)
		return
	}
	label := "error"
	if kind := arkaine.KindOf(err); kind != "" {
		label = string(kind)
	}
	fmt.Fprintf(w, "%s[%s] %v%s\n", colorRed, label, err, colorReset)
}
