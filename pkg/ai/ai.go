// Package ai defines the model-client abstraction the query engine talks to.
// Implementations live in the subpackages openai and ollama; the engine only
// sees this interface so backends are swappable per deployment.
package ai

import (
	"context"
	"sync"
)

// GenerateOptions holds configuration for generation requests.
type GenerateOptions struct {
	Model         string   // Model identifier to use for generation
	SystemPrompts []string // System prompts prepended to the request
	Temperature   float64  // Sampling temperature (0.0-2.0)
	MaxTokens     int      // Upper bound on generated tokens, 0 for provider default
}

// GenerateOption is a functional option for configuring generation requests.
type GenerateOption func(*GenerateOptions)

// WithModel returns a GenerateOption that sets the model to use for generation.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithSystemPrompts returns a GenerateOption that sets the system prompts
// to prepend to the generation request.
func WithSystemPrompts(prompts ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompts = prompts
	}
}

// WithTemperature returns a GenerateOption that sets the sampling temperature.
// Higher values (e.g., 1.0) produce more random outputs, while lower values
// (e.g., 0.2) make outputs more focused and deterministic.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// WithMaxTokens returns a GenerateOption that caps the number of tokens the
// model may generate for this request.
func WithMaxTokens(maxTokens int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = maxTokens
	}
}

// ModelMetrics contains accumulated performance metrics from model calls.
type ModelMetrics struct {
	InputTokens    int     `json:"input_tokens"`
	OutputTokens   int     `json:"output_tokens"`
	TotalTokens    int     `json:"total_tokens"`
	DurationMs     int64   `json:"duration_ms"`
	TokenPerSecond float32 `json:"tokens_per_second"`
}

// Client is the set of model operations the engine needs: plain completions
// for answer synthesis, schema-constrained completions for structured output,
// and embeddings for retrieval.
type Client interface {
	GenerateCompletion(
		ctx context.Context,
		prompt string,
		opts ...GenerateOption,
	) (string, error)
	GenerateCompletionWithFormat(
		ctx context.Context,
		name string,
		description string,
		prompt string,
		out any,
		opts ...GenerateOption,
	) error

	GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error)

	ResetMetrics()
	GetMetrics() ModelMetrics
}

// MetricsAccumulator is the shared metrics store embedded by the client
// implementations. The zero value is ready to use.
type MetricsAccumulator struct {
	mu      sync.Mutex
	metrics ModelMetrics
}

// Add folds one request's metrics into the accumulated totals.
func (a *MetricsAccumulator) Add(m ModelMetrics) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.metrics.InputTokens += m.InputTokens
	a.metrics.OutputTokens += m.OutputTokens
	a.metrics.TotalTokens += m.TotalTokens
	a.metrics.DurationMs += m.DurationMs

	if a.metrics.DurationMs > 0 {
		a.metrics.TokenPerSecond = float32(float64(a.metrics.TotalTokens) * 1000.0 / float64(a.metrics.DurationMs))
	}
}

// ResetMetrics clears all accumulated token and timing metrics to zero.
func (a *MetricsAccumulator) ResetMetrics() {
	a.mu.Lock()
	a.metrics = ModelMetrics{}
	a.mu.Unlock()
}

// GetMetrics returns the accumulated metrics since the last reset.
func (a *MetricsAccumulator) GetMetrics() ModelMetrics {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.metrics
}
