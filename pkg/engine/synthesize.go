package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/prolong-bio/prolong/internal/util"
	"github.com/prolong-bio/prolong/pkg/ai"
	"github.com/prolong-bio/prolong/pkg/common"
	"github.com/prolong-bio/prolong/pkg/logger"

	"github.com/pkoukk/tiktoken-go"
)

const maxCitationTitleLen = 100

// synthesize generates the answer from the prepared context block. The
// returned error is always a *SynthesisError; callers degrade instead of
// failing.
func (e *Engine) synthesize(
	ctx context.Context,
	q common.Query,
	contextBlock string,
	citations []common.Citation,
) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.SynthesisTimeout)
	defer cancel()

	prompt := ai.BuildSynthesisPrompt(q.Text, contextBlock, formatCitationRefs(citations))

	answer, err := util.RetryWithBackoff(ctx, e.cfg.MaxRetries, e.cfg.RetryBaseDelay, func(ctx context.Context) (string, error) {
		return e.aiClient.GenerateCompletion(ctx, prompt,
			ai.WithSystemPrompts(ai.SynthesisSystemPrompt),
			ai.WithTemperature(0.2),
			ai.WithMaxTokens(e.cfg.SynthesisMaxTokens),
		)
	})
	if err != nil {
		return "", &SynthesisError{Err: err}
	}
	return strings.TrimSpace(answer), nil
}

// selectContext picks the passages presented to the model and renders them
// as the numbered context block. Passage numbering matches the citation
// numbering the prompt hands the model. Passages that would blow the token
// budget are dropped, never truncated mid-sentence. The returned slice is
// exactly what the block contains; citations are built from it so every
// cited paper was actually shown to the model.
func (e *Engine) selectContext(ranked []common.RankedPassage) ([]common.RankedPassage, string, error) {
	enc, err := tiktoken.GetEncoding("o200k_base")
	if err != nil {
		return nil, "", err
	}

	limit := e.cfg.ContextChunks
	if limit > len(ranked) {
		limit = len(ranked)
	}

	var (
		b      strings.Builder
		tokens int
	)
	included := make([]common.RankedPassage, 0, limit)
	for i := 0; i < limit; i++ {
		p := ranked[i]
		pmcid := p.PMCID
		if pmcid == "" {
			pmcid = "Unknown"
		}
		part := fmt.Sprintf("[%d] (PMCID: %s)\n%s\n\n", i+1, pmcid, p.Text)

		cost := len(enc.Encode(part, nil, nil))
		if tokens+cost > e.cfg.ContextTokenBudget {
			logger.Debug("context token budget reached", "included_chunks", i, "budget", e.cfg.ContextTokenBudget)
			break
		}
		tokens += cost
		included = append(included, p)
		b.WriteString(part)
	}
	return included, strings.TrimRight(b.String(), "\n"), nil
}

func formatCitationRefs(citations []common.Citation) string {
	refs := make([]string, 0, len(citations))
	for i, c := range citations {
		title := c.Title
		if len(title) > maxCitationTitleLen {
			title = title[:maxCitationTitleLen] + "..."
		}
		refs = append(refs, fmt.Sprintf("[%d] %s (%d) - %s", i+1, title, c.Year, c.ID))
	}
	return strings.Join(refs, "\n")
}
