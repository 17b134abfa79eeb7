package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/prolong-bio/prolong/internal/util"
	"github.com/prolong-bio/prolong/pkg/ai"
	"github.com/prolong-bio/prolong/pkg/store"
)

// FunctionPrediction is the structured output of protein-function prediction.
type FunctionPrediction struct {
	Symbol            string   `json:"symbol"`
	PredictedFunction string   `json:"predicted_function" jsonschema_description:"Concise description of the protein's biological function"`
	AgingRole         string   `json:"aging_role" jsonschema_description:"How the protein relates to aging processes and longevity"`
	Confidence        string   `json:"confidence" jsonschema:"enum=high,enum=moderate,enum=low"`
	KeyMechanisms     []string `json:"key_mechanisms" jsonschema_description:"Specific molecular mechanisms involved"`
}

// PredictFunction generates a structured function and aging-role prediction
// for a known protein, grounded in retrieved literature when any exists.
func (e *Engine) PredictFunction(ctx context.Context, symbol string) (FunctionPrediction, error) {
	protein, ok := e.vocab.Proteins.GetBySymbol(symbol)
	if !ok {
		return FunctionPrediction{}, fmt.Errorf("unknown protein: %s", strings.ToUpper(strings.TrimSpace(symbol)))
	}

	contextBlock, err := e.proteinContext(ctx, protein.Symbol, protein.Name)
	if err != nil {
		return FunctionPrediction{}, err
	}

	prompt := ai.BuildPredictFunctionPrompt(protein.Symbol, protein.Name, contextBlock)

	genCtx, cancel := context.WithTimeout(ctx, e.cfg.SynthesisTimeout)
	defer cancel()

	var out FunctionPrediction
	err = util.RetryErrWithContext(genCtx, e.cfg.MaxRetries, func(ctx context.Context) error {
		return e.aiClient.GenerateCompletionWithFormat(ctx,
			"function_prediction",
			"Predicted biological function and aging role of a protein",
			prompt,
			&out,
			ai.WithSystemPrompts(ai.PredictFunctionSystemPrompt),
		)
	})
	if err != nil {
		return FunctionPrediction{}, &SynthesisError{Err: err}
	}
	out.Symbol = protein.Symbol
	return out, nil
}

// proteinContext retrieves literature passages about the protein and formats
// them as a numbered context block. No passages is not an error; prediction
// then runs without grounding context.
func (e *Engine) proteinContext(ctx context.Context, symbol, name string) (string, error) {
	seed := fmt.Sprintf("%s %s biological function role in aging", symbol, name)

	embedCtx, cancel := context.WithTimeout(ctx, e.cfg.EmbedTimeout)
	defer cancel()
	embedding, err := util.RetryWithBackoff(embedCtx, e.cfg.MaxRetries, e.cfg.RetryBaseDelay,
		func(ctx context.Context) ([]float32, error) {
			return e.aiClient.GenerateEmbedding(ctx, []byte(seed))
		})
	if err != nil {
		return "", &RetrievalError{Stage: "embedding", Err: err}
	}

	searchCtx, cancel := context.WithTimeout(ctx, e.cfg.SearchTimeout)
	defer cancel()
	passages, err := e.store.Search(searchCtx, embedding, e.cfg.ContextChunks, store.Filters{Protein: symbol})
	if err != nil {
		return "", &RetrievalError{Stage: "search", Err: err}
	}

	var b strings.Builder
	for i, p := range passages {
		pmcid := p.PMCID
		if pmcid == "" {
			pmcid = "Unknown"
		}
		fmt.Fprintf(&b, "[%d] (PMCID: %s)\n%s\n\n", i+1, pmcid, p.Text)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
