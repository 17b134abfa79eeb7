// Package openai implements ai.Client against any OpenAI-compatible API,
// including hosted inference providers that speak the same wire format.
package openai

import (
	"github.com/prolong-bio/prolong/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"
)

// Client talks to OpenAI-compatible endpoints. Chat and embedding traffic can
// go to different providers, so each gets its own configured client.
//
// A Client should be created using NewClient.
type Client struct {
	chatModel      string
	embeddingModel string

	chatURL      string
	chatKey      string
	embeddingURL string
	embeddingKey string

	reqLock    *semaphore.Weighted
	timeoutMin int

	ai.MetricsAccumulator

	ChatClient      *openai.Client
	EmbeddingClient *openai.Client
}

// NewClientParams defines the configuration for creating a Client.
//
// ChatModel is used for completions, EmbeddingModel for embeddings. The URL
// and Key pairs configure the respective API endpoints; an empty URL means
// the provider default. MaxConcurrentRequests caps in-flight requests across
// both endpoints, TimeoutMinutes bounds a single request.
type NewClientParams struct {
	ChatModel      string
	EmbeddingModel string

	ChatURL      string
	ChatKey      string
	EmbeddingURL string
	EmbeddingKey string

	MaxConcurrentRequests int64
	TimeoutMinutes        int
}

// NewClient creates a Client configured with the provided parameters.
func NewClient(params NewClientParams) *Client {
	maxConcurrent := params.MaxConcurrentRequests
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	timeoutMin := params.TimeoutMinutes
	if timeoutMin <= 0 {
		timeoutMin = 2
	}

	return &Client{
		chatModel:      params.ChatModel,
		embeddingModel: params.EmbeddingModel,

		chatURL:      params.ChatURL,
		chatKey:      params.ChatKey,
		embeddingURL: params.EmbeddingURL,
		embeddingKey: params.EmbeddingKey,

		reqLock:    semaphore.NewWeighted(maxConcurrent),
		timeoutMin: timeoutMin,

		ChatClient:      newOpenaiClient(params.ChatURL, params.ChatKey),
		EmbeddingClient: newOpenaiClient(params.EmbeddingURL, params.EmbeddingKey),
	}
}

func newOpenaiClient(baseURL, apiKey string) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)
	return &client
}
