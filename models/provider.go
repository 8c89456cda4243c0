package models

import (
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// Provider names accepted by New.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderGitHub = "github"
)

// ErrUnknownProvider is returned by New for a provider it does not know.
var ErrUnknownProvider = errors.New("unknown model provider")

// Options selects and configures a provider for New.
type Options struct {
	Provider string
	Model    string
	// BaseURL overrides the provider endpoint. Empty keeps the provider default.
	BaseURL string
	APIKey  string
	// Temperature is passed on every call when non-nil.
	Temperature *float64
	Logger      *zap.Logger
}

// New creates a Model for the configured provider.
//
//	model, err := models.New(models.Options{Provider: "ollama", Model: "llama3.2"})
func New(opts Options) (*LCGWrapper, error) {
	var (
		wrapper *LCGWrapper
		err     error
	)
	switch opts.Provider {
	case ProviderOllama:
		wrapper, err = NewOllama(opts.Model, opts.BaseURL)
	case ProviderOpenAI:
		wrapper, err = NewOpenAI(opts.Model, opts.APIKey, opts.BaseURL)
	case ProviderGitHub:
		wrapper, err = NewGitHub(opts.Model, opts.APIKey)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, opts.Provider)
	}
	if err != nil {
		return nil, err
	}

	if opts.Temperature != nil {
		wrapper.WithCallOptions(llms.WithTemperature(*opts.Temperature))
	}
	return wrapper.WithLogger(opts.Logger), nil
}

// NewOllama creates a Model backed by a local Ollama server. An empty serverURL uses the
// client default (http://localhost:11434).
func NewOllama(model, serverURL string) (*LCGWrapper, error) {
	opts := []ollama.Option{ollama.WithModel(model)}
	if serverURL != "" {
		opts = append(opts, ollama.WithServerURL(serverURL))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}
	return NewLCGWrapper(llm).WithModelName(model), nil
}

// NewOpenAI creates a Model backed by the OpenAI API or any OpenAI-compatible endpoint
// (baseURL), such as xAI or a local vLLM server.
func NewOpenAI(model, token, baseURL string) (*LCGWrapper, error) {
	if token == "" {
		return nil, fmt.Errorf("openai: %w", ErrMissingToken)
	}
	opts := []openai.Option{
		openai.WithModel(model),
		openai.WithToken(token),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}
	return NewLCGWrapper(llm).WithModelName(model), nil
}
