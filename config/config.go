// Package config loads arkaine configuration.
//
// Values are layered: defaults, then an optional YAML file, then environment variables
// prefixed with ARKAINE_ (nested fields are joined with "_", e.g. ARKAINE_LLM_MODEL or
// ARKAINE_AGENT_MAX_TURNS).
//
//	cfg, err := config.NewLoader().WithConfigPath("arkaine.yaml").Load()
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is the complete configuration of an arkaine process.
type Config struct {
	LLM       LLMConfig       `yaml:"llm" env:"LLM"`
	Agent     AgentConfig     `yaml:"agent" env:"AGENT"`
	Retry     RetryConfig     `yaml:"retry" env:"RETRY"`
	Registrar RegistrarConfig `yaml:"registrar" env:"REGISTRAR"`
	Toolbox   ToolboxConfig   `yaml:"toolbox" env:"TOOLBOX"`
	Log       LogConfig       `yaml:"log" env:"LOG"`
	Metrics   MetricsConfig   `yaml:"metrics" env:"METRICS"`
}

// LLMConfig selects the model provider.
type LLMConfig struct {
	// Provider is one of "ollama", "openai" or "github".
	Provider string `yaml:"provider" env:"PROVIDER"`
	Model    string `yaml:"model" env:"MODEL"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL"`
	APIKey   string `yaml:"api_key" env:"API_KEY"`
	// Temperature is left to the provider when unset.
	Temperature *float64 `yaml:"temperature" env:"TEMPERATURE"`
}

// AgentConfig configures the ReAct loop.
type AgentConfig struct {
	MaxTurns                 int  `yaml:"max_turns" env:"MAX_TURNS"`
	MaxSimultaneousTools     int  `yaml:"max_simultaneous_tools" env:"MAX_SIMULTANEOUS_TOOLS"`
	ToolErrorsAsObservations bool `yaml:"tool_errors_as_observations" env:"TOOL_ERRORS_AS_OBSERVATIONS"`
	// BehaviorAndContext is prepended to the system prompt.
	BehaviorAndContext string `yaml:"behavior_and_context" env:"BEHAVIOR_AND_CONTEXT"`
}

// RetryConfig configures the retry wrapper applied to every toolbox tool.
type RetryConfig struct {
	MaxRetries int           `yaml:"max_retries" env:"MAX_RETRIES"`
	Delay      time.Duration `yaml:"delay" env:"DELAY"`
}

// RegistrarConfig configures listener fan-out.
type RegistrarConfig struct {
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	Workers int  `yaml:"workers" env:"WORKERS"`
	// AuditPath is a file that receives a YAML audit trail. Empty disables the trail.
	AuditPath string `yaml:"audit_path" env:"AUDIT_PATH"`
}

// ToolboxConfig selects the built-in tools.
type ToolboxConfig struct {
	Wikipedia        bool   `yaml:"wikipedia" env:"WIKIPEDIA"`
	WebSearch        bool   `yaml:"web_search" env:"WEB_SEARCH"`
	WebSearchResults int    `yaml:"web_search_results" env:"WEB_SEARCH_RESULTS"`
	UserAgent        string `yaml:"user_agent" env:"USER_AGENT"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level       string `yaml:"level" env:"LEVEL"`
	Development bool   `yaml:"development" env:"DEVELOPMENT"`
}

// MetricsConfig configures prometheus metrics.
type MetricsConfig struct {
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "ollama",
			Model:    "llama3.2",
		},
		Agent: AgentConfig{
			MaxTurns:             10,
			MaxSimultaneousTools: 4,
		},
		Retry: RetryConfig{
			MaxRetries: 2,
			Delay:      500 * time.Millisecond,
		},
		Registrar: RegistrarConfig{
			Enabled: true,
			Workers: 4,
		},
		Toolbox: ToolboxConfig{
			Wikipedia:        true,
			WebSearch:        true,
			WebSearchResults: 5,
			UserAgent:        "arkaine/0.1 (+https://github.com/rickchristie/arkaine)",
		},
		Log: LogConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Namespace: "arkaine",
		},
	}
}

var knownProviders = map[string]bool{"ollama": true, "openai": true, "github": true}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error

	if !knownProviders[c.LLM.Provider] {
		errs = append(errs, fmt.Errorf("llm.provider: unknown provider %q", c.LLM.Provider))
	}
	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model: must not be empty"))
	}
	if t := c.LLM.Temperature; t != nil && (*t < 0 || *t > 2) {
		errs = append(errs, fmt.Errorf("llm.temperature: must be within [0, 2], got %v", *t))
	}
	if c.Agent.MaxTurns < 1 {
		errs = append(errs, fmt.Errorf("agent.max_turns: must be at least 1, got %d", c.Agent.MaxTurns))
	}
	if c.Agent.MaxSimultaneousTools < 1 {
		errs = append(errs, fmt.Errorf("agent.max_simultaneous_tools: must be at least 1, got %d", c.Agent.MaxSimultaneousTools))
	}
	if c.Retry.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("retry.max_retries: must not be negative, got %d", c.Retry.MaxRetries))
	}
	if c.Retry.Delay < 0 {
		errs = append(errs, fmt.Errorf("retry.delay: must not be negative, got %s", c.Retry.Delay))
	}
	if c.Registrar.Workers < 1 {
		errs = append(errs, fmt.Errorf("registrar.workers: must be at least 1, got %d", c.Registrar.Workers))
	}
	if c.Toolbox.WebSearch && c.Toolbox.WebSearchResults < 1 {
		errs = append(errs, fmt.Errorf("toolbox.web_search_results: must be at least 1, got %d", c.Toolbox.WebSearchResults))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}

// Build creates the zap logger described by c.
func (c LogConfig) Build() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(c.Level))
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
