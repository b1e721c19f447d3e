package paper

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/covergen/covergen-api/internal/domain/credit"
	"github.com/covergen/covergen-api/internal/pkg/arxiv"
)

// PaperParser fetches and extracts an arXiv paper.
type PaperParser interface {
	Parse(ctx context.Context, arxivID string) (*arxiv.Paper, error)
}

// CreditLedger is the slice of the credit service the analyzer needs.
type CreditLedger interface {
	Deduct(ctx context.Context, userID uuid.UUID, amount int, actionType string, meta credit.Meta) error
	Refund(ctx context.Context, userID uuid.UUID, amount int, actionType string, meta credit.Meta) error
}

type Service interface {
	Analyze(ctx context.Context, userID uuid.UUID, req AnalyzeRequest) (*Result, error)
}

type service struct {
	credits    CreditLedger
	parser     PaperParser
	summarizer Summarizer
	cache      *Cache
}

func NewService(credits CreditLedger, parser PaperParser, summarizer Summarizer, cache *Cache) Service {
	return &service{
		credits:    credits,
		parser:     parser,
		summarizer: summarizer,
		cache:      cache,
	}
}

// Analyze debits the analysis cost, fetches the paper and summarizes it.
// Parsing failures refund the debit. Summarization failures do not: the
// templated fallback still yields a result, with Source marking how it was
// produced.
func (s *service) Analyze(ctx context.Context, userID uuid.UUID, req AnalyzeRequest) (*Result, error) {
	switch AnalysisType(req.AnalysisType) {
	case AnalysisSummary:
	case AnalysisImages, AnalysisFull:
		// Rejected before any debit so nobody pays for a feature that does
		// not exist yet.
		return nil, fmt.Errorf("%w: %s", ErrTypeNotAvailable, req.AnalysisType)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, req.AnalysisType)
	}

	arxivID, err := arxiv.ExtractID(req.PaperURL)
	if err != nil {
		return nil, err
	}

	meta := credit.Meta{Reference: arxivID, Description: req.PaperURL}
	if err := s.credits.Deduct(ctx, userID, credit.CostAnalyzePaper, credit.ActionAnalyzePaper, meta); err != nil {
		return nil, err
	}

	parsed := s.cache.Get(ctx, arxivID)
	if parsed == nil {
		parsed, err = s.parser.Parse(ctx, arxivID)
		if err != nil {
			s.credits.Refund(ctx, userID, credit.CostAnalyzePaper, credit.ActionAnalyzePaper, meta)
			return nil, fmt.Errorf("%w: %v", ErrParsingUnavailable, err)
		}
		s.cache.Set(ctx, parsed)
	}

	result := &Result{
		ArxivID:     parsed.ArxivID,
		Title:       parsed.Title,
		Authors:     parsed.Authors,
		Abstract:    parsed.Abstract,
		Keywords:    extractKeywords(parsed.Abstract),
		PageCount:   parsed.PageCount,
		CreditsUsed: credit.CostAnalyzePaper,
	}

	summary, err := s.summarizer.Summarize(ctx, parsed)
	if err != nil {
		log.Warn().Err(err).Str("arxiv_id", arxivID).Msg("model summary failed, using template")
		result.Summary = templateSummary(parsed)
		result.Source = SourceTemplate
		return result, nil
	}

	result.Summary = summary
	result.Source = SourceAI
	return result, nil
}
