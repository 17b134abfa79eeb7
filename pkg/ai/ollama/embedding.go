package ollama

import (
	"context"
	"strings"
	"time"

	"github.com/prolong-bio/prolong/internal/util"
	"github.com/prolong-bio/prolong/pkg/ai"

	"github.com/ollama/ollama/api"
)

const defaultDimensions = 384

// GenerateEmbedding creates a vector embedding for the given input text using
// the configured embedding model on Ollama. Empty input yields a zero vector
// of the configured width without a model call.
func (c *Client) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	dim := int(util.GetEnvNumeric("AI_EMBED_DIM", defaultDimensions))
	if len(strings.TrimSpace(string(input))) == 0 {
		return make([]float32, dim), nil
	}

	rCtx, cancel := context.WithTimeout(ctx, time.Minute*time.Duration(c.timeoutMin))
	defer cancel()

	if err := c.reqLock.Acquire(rCtx, 1); err != nil {
		return nil, err
	}
	defer c.reqLock.Release(1)

	req := &api.EmbedRequest{
		Model: c.embeddingModel,
		Input: string(input),
	}
	res, err := c.Client.Embed(rCtx, req)
	if err != nil {
		return nil, err
	}

	c.Add(ai.ModelMetrics{
		InputTokens: res.PromptEvalCount,
		TotalTokens: res.PromptEvalCount,
		DurationMs:  res.TotalDuration.Milliseconds(),
	})

	out := make([]float32, 0, dim)
	for _, v := range res.Embeddings {
		for _, val := range v {
			if len(out) >= dim {
				break
			}
			out = append(out, float32(val))
		}
	}
	return out, nil
}
