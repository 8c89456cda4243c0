package models

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tmc/langchaingo/llms/openai"
)

const (
	// GitHubModelsBaseURL is the base URL for the GitHub Models API.
	// The OpenAI-compatible chat completions endpoint is at
	// {baseURL}/chat/completions.
	GitHubModelsBaseURL = "https://models.github.ai/inference"

	gitHubAPIVersion = "2022-11-28"
)

// ErrMissingToken is returned when a hosted provider is configured without credentials.
var ErrMissingToken = errors.New("api token is required")

// githubHeaderTransport injects GitHub-specific headers into every request.
type githubHeaderTransport struct {
	base http.RoundTripper
}

func (t *githubHeaderTransport) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("X-GitHub-Api-Version", gitHubAPIVersion)
	return t.base.RoundTrip(req)
}

// NewGitHub creates a Model backed by the GitHub Models API.
//
// The token must be a fine-grained GitHub Personal Access Token with the models:read
// permission. Model names use the publisher/model format, for example "openai/gpt-4.1".
// Additional openai.Option values are applied after the defaults and can override them.
//
//	model, err := models.NewGitHub("openai/gpt-4.1-mini", os.Getenv("GITHUB_TOKEN"))
func NewGitHub(model, token string, opts ...openai.Option) (*LCGWrapper, error) {
	if token == "" {
		return nil, fmt.Errorf("github models: %w: create a fine-grained PAT with models:read", ErrMissingToken)
	}

	baseOpts := []openai.Option{
		openai.WithBaseURL(GitHubModelsBaseURL),
		openai.WithToken(token),
		openai.WithModel(model),
		openai.WithHTTPClient(&githubHeaderTransport{base: http.DefaultTransport}),
	}

	llm, err := openai.New(append(baseOpts, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub Models client: %w", err)
	}
	return NewLCGWrapper(llm).WithModelName(model), nil
}
