package models

import (
	"context"
	"fmt"
	"time"

	"github.com/rickchristie/arkaine"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// LCGWrapper wraps an llms.Model and implements arkaine.Model.
// It converts the run's history to langchaingo messages and normalizes token usage across
// providers.
//
// Example usage:
//
//	llm, _ := openai.New(openai.WithToken(apiKey))
//	model := models.NewLCGWrapper(llm).WithModelName("gpt-4.1-mini")
//
//	reply, err := model.Complete(ctx, messages)
type LCGWrapper struct {
	model     llms.Model
	modelName string
	options   []llms.CallOption
	logger    *zap.Logger
}

// NewLCGWrapper creates a new LCGWrapper wrapping the given llms.Model.
func NewLCGWrapper(model llms.Model) *LCGWrapper {
	return &LCGWrapper{
		model:  model,
		logger: zap.NewNop(),
	}
}

// WithModelName sets the model name reported in logs.
func (m *LCGWrapper) WithModelName(name string) *LCGWrapper {
	m.modelName = name
	return m
}

// WithCallOptions sets options passed on every call, e.g. llms.WithTemperature(0).
func (m *LCGWrapper) WithCallOptions(opts ...llms.CallOption) *LCGWrapper {
	m.options = opts
	return m
}

// WithLogger sets the logger that records every call at debug level.
func (m *LCGWrapper) WithLogger(logger *zap.Logger) *LCGWrapper {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// ModelName returns the configured model name.
func (m *LCGWrapper) ModelName() string {
	return m.modelName
}

// Unwrap returns the underlying llms.Model.
func (m *LCGWrapper) Unwrap() llms.Model {
	return m.model
}

// Response is the outcome of one Generate call.
type Response struct {
	Content    string
	StopReason string
	Usage      Usage
	Duration   time.Duration
}

// Usage holds token counts normalized across providers. Zero means the provider did not
// report the count.
type Usage struct {
	InputTokens       int
	OutputTokens      int
	TotalTokens       int
	CachedInputTokens int
	ReasoningTokens   int
}

// Complete implements arkaine.Model.
func (m *LCGWrapper) Complete(ctx context.Context, messages []arkaine.Message) (string, error) {
	resp, err := m.Generate(ctx, messages)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// Generate calls the model and returns the first choice with its token usage.
// A response without choices fails with arkaine.ErrEmptyResponse.
func (m *LCGWrapper) Generate(ctx context.Context, messages []arkaine.Message) (*Response, error) {
	startTime := time.Now()
	lcgResponse, err := m.model.GenerateContent(ctx, ToMessageContent(messages), m.options...)
	duration := time.Since(startTime)

	if err != nil {
		m.logger.Debug("model call failed",
			zap.String("model", m.modelName),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}
	if lcgResponse == nil || len(lcgResponse.Choices) == 0 {
		return nil, fmt.Errorf("%w (model %q)", arkaine.ErrEmptyResponse, m.modelName)
	}

	resp := convertLCGResponse(lcgResponse, duration)
	m.logger.Debug("model call completed",
		zap.String("model", m.modelName),
		zap.Duration("duration", duration),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
	)
	return resp, nil
}

// ToMessageContent converts history to langchaingo text messages.
func ToMessageContent(messages []arkaine.Message) []llms.MessageContent {
	out := make([]llms.MessageContent, len(messages))
	for i, msg := range messages {
		out[i] = llms.TextParts(msg.Role, msg.Content)
	}
	return out
}

// convertLCGResponse converts the first choice of an llms.ContentResponse, normalizing
// tokens.
func convertLCGResponse(lcgResponse *llms.ContentResponse, duration time.Duration) *Response {
	choice := lcgResponse.Choices[0]
	resp := &Response{
		Content:    choice.Content,
		StopReason: choice.StopReason,
		Duration:   duration,
	}

	if info := choice.GenerationInfo; info != nil {
		resp.Usage.InputTokens = extractInputTokens(info)
		resp.Usage.OutputTokens = extractOutputTokens(info)
		resp.Usage.TotalTokens = extractTotalTokens(info, resp.Usage.InputTokens, resp.Usage.OutputTokens)
		resp.Usage.CachedInputTokens = extractCachedInputTokens(info)
		resp.Usage.ReasoningTokens = extractReasoningTokens(info)
	}
	return resp
}

// firstInt returns the first positive value found under keys.
func firstInt(info map[string]any, keys ...string) int {
	for _, k := range keys {
		if v := getIntFromMap(info, k); v > 0 {
			return v
		}
	}
	return 0
}

// extractInputTokens reads the prompt token count. OpenAI, Ollama and Google compat use
// PromptTokens, Anthropic uses InputTokens, Bedrock uses input_tokens.
func extractInputTokens(info map[string]any) int {
	return firstInt(info, "PromptTokens", "InputTokens", "input_tokens")
}

func extractOutputTokens(info map[string]any) int {
	return firstInt(info, "CompletionTokens", "OutputTokens", "output_tokens")
}

// extractTotalTokens reads the total or computes it.
func extractTotalTokens(info map[string]any, input, output int) int {
	if v := firstInt(info, "TotalTokens", "total_tokens"); v > 0 {
		return v
	}
	return input + output
}

func extractCachedInputTokens(info map[string]any) int {
	return firstInt(info, "PromptCachedTokens", "CacheReadInputTokens", "CachedTokens")
}

func extractReasoningTokens(info map[string]any) int {
	return firstInt(info, "ReasoningTokens", "CompletionReasoningTokens", "ThinkingTokens")
}

// getIntFromMap extracts an int value from a map, handling various numeric types.
func getIntFromMap(m map[string]any, key string) int {
	v, ok := m[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	default:
		return 0
	}
}

// Compile-time check that LCGWrapper implements arkaine.Model.
var _ arkaine.Model = (*LCGWrapper)(nil)
