// Package citation assembles the citation list for a response from the
// passages that backed it.
package citation

import (
	"github.com/prolong-bio/prolong/pkg/common"
	"github.com/prolong-bio/prolong/pkg/logger"
)

// Build derives the citation list from ranked passages. The preferred
// identifier is the PMID, falling back to the PMCID when a passage has no
// PMID. Citations are deduplicated by that identifier and ordered by the
// first appearance of their paper in the passage list, so the numbering a
// synthesized answer refers to stays stable. Passages with neither
// identifier cannot be cited and are skipped with a warning.
func Build(passages []common.RankedPassage) []common.Citation {
	citations := make([]common.Citation, 0, len(passages))
	seen := make(map[string]struct{}, len(passages))

	for _, p := range passages {
		id := p.PMID
		if id == "" {
			id = p.PMCID
		}
		if id == "" {
			logger.Warn("passage has no citable identifier, skipping", "passage_id", p.ID, "title", p.Title)
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		citations = append(citations, common.Citation{
			ID:    id,
			PMID:  p.PMID,
			PMCID: p.PMCID,
			Title: p.Title,
			Year:  p.Year,
		})
	}
	return citations
}
