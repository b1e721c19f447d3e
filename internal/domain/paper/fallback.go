package paper

import (
	"fmt"
	"strings"

	"github.com/covergen/covergen-api/internal/pkg/arxiv"
)

// templateSummary builds a summary from the paper metadata alone. Used when
// the language model is unavailable so the user still gets a usable result.
func templateSummary(p *arxiv.Paper) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "\"%s\"", p.Title)
	if len(p.Authors) > 0 {
		authors := p.Authors
		suffix := ""
		if len(authors) > 3 {
			authors = authors[:3]
			suffix = " et al."
		}
		fmt.Fprintf(&sb, " by %s%s", strings.Join(authors, ", "), suffix)
	}
	sb.WriteString(".")

	if p.Published != "" {
		fmt.Fprintf(&sb, " Published %s.", p.Published)
	}
	if p.Abstract != "" {
		fmt.Fprintf(&sb, "\n\n%s", p.Abstract)
	}
	if p.PageCount > 0 {
		fmt.Fprintf(&sb, "\n\nThe full paper spans %d pages.", p.PageCount)
	}
	return sb.String()
}

// keywordCandidates are common research topics matched against the abstract.
var keywordCandidates = []string{
	"machine learning", "deep learning", "neural network", "transformer",
	"reinforcement learning", "natural language processing", "computer vision",
	"large language model", "diffusion", "optimization", "benchmark",
	"dataset", "graph", "attention", "generative", "robustness",
}

// extractKeywords does a simple substring scan over the abstract. It is
// deliberately cheap: keywords decorate the result card, nothing depends on
// them.
func extractKeywords(abstract string) []string {
	lower := strings.ToLower(abstract)
	keywords := []string{}
	for _, candidate := range keywordCandidates {
		if strings.Contains(lower, candidate) {
			keywords = append(keywords, candidate)
		}
		if len(keywords) == 5 {
			break
		}
	}
	return keywords
}
