package main

import (
	"errors"

	"github.com/jessevdk/go-flags"
	"github.com/rickchristie/arkaine/config"
)

// Options are the command line flags. Flags override the configuration file and the
// environment.
type Options struct {
	ConfigPath  string `short:"f" long:"config" description:"YAML configuration file"`
	Provider    string `long:"provider" description:"model provider (ollama, openai, github)"`
	Model       string `short:"m" long:"model" description:"model name"`
	MaxTurns    int    `long:"max-turns" description:"maximum model calls per task"`
	Task        string `short:"t" long:"task" description:"run a single task and exit"`
	MetricsAddr string `long:"metrics-addr" description:"serve prometheus metrics on this address, e.g. :9090"`
	Verbose     bool   `short:"v" long:"verbose" description:"log at debug level"`
}

// parseOptions parses args. A help request is returned as an error for which isHelp
// reports true.
func parseOptions(args []string) (*Options, error) {
	opts := &Options{}
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "arkaine"
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	return opts, nil
}

func isHelp(err error) bool {
	var fe *flags.Error
	return errors.As(err, &fe) && fe.Type == flags.ErrHelp
}

// apply writes the flags that were set onto cfg.
// loader returns the config loader for these options. A file named with -f must exist.
func (o *Options) loader() *config.Loader {
	if o.ConfigPath != "" {
		return config.NewLoader().WithRequiredConfigPath(o.ConfigPath)
	}
	return config.NewLoader()
}

func (o *Options) apply(cfg *config.Config) {
	if o.Provider != "" {
		cfg.LLM.Provider = o.Provider
	}
	if o.Model != "" {
		cfg.LLM.Model = o.Model
	}
	if o.MaxTurns != 0 {
		cfg.Agent.MaxTurns = o.MaxTurns
	}
	if o.Verbose {
		cfg.Log.Level = "debug"
		cfg.Log.Development = true
	}
}
