// Package llm provides LLM client interfaces and implementations.
package llm

import (
	"context"
	"fmt"
)

// StreamCallback is called for each content chunk during streaming.
type StreamCallback func(token string, index int) error

// ChatMessage represents a chat message for the LLM.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest represents a completion request.
type CompletionRequest struct {
	Model       string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float64
}

// CompletionResponse represents a completion response.
type CompletionResponse struct {
	Content    string
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
	LatencyMs  int64
}

// Client is the streaming chat primitive the orchestrator depends on.
type Client interface {
	// CompleteStream sends a streaming completion request, invoking the
	// callback per content chunk, and returns the accumulated response.
	CompleteStream(ctx context.Context, req *CompletionRequest, callback StreamCallback) (*CompletionResponse, error)

	// Available probes whether the provider is reachable.
	Available(ctx context.Context) error

	// Name returns the provider name.
	Name() string

	// Models returns the models this provider serves.
	Models() []string
}

// Provider is the type of LLM provider.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// Options carries provider construction knobs from config.
type Options struct {
	APIKey  string
	BaseURL string
}

// NewClient creates a new LLM client based on provider.
func NewClient(provider Provider, opts Options) (Client, error) {
	switch provider {
	case ProviderAnthropic:
		return NewAnthropicClient(opts.APIKey)
	case ProviderOpenAI:
		return NewOpenAIClient(opts.APIKey, opts.BaseURL)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", provider)
	}
}
