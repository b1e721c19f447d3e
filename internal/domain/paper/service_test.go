package paper_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/covergen/covergen-api/internal/domain/credit"
	"github.com/covergen/covergen-api/internal/domain/paper"
	"github.com/covergen/covergen-api/internal/pkg/arxiv"
)

type fakeLedger struct {
	balance int
	deducts int
	refunds int
}

func (f *fakeLedger) Deduct(ctx context.Context, userID uuid.UUID, amount int, actionType string, meta credit.Meta) error {
	if f.balance < amount {
		return credit.ErrInsufficientCredits
	}
	f.balance -= amount
	f.deducts++
	return nil
}

func (f *fakeLedger) Refund(ctx context.Context, userID uuid.UUID, amount int, actionType string, meta credit.Meta) error {
	f.balance += amount
	f.refunds++
	return nil
}

type fakeParser struct {
	paper *arxiv.Paper
	err   error
	calls int
}

func (f *fakeParser) Parse(ctx context.Context, arxivID string) (*arxiv.Paper, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.paper, nil
}

type fakeSummarizer struct {
	summary string
	err     error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, p *arxiv.Paper) (string, error) {
	return f.summary, f.err
}

func testPaper() *arxiv.Paper {
	return &arxiv.Paper{
		ArxivID:  "2401.12345",
		Title:    "Attention Is Not All You Need",
		Authors:  []string{"A. Researcher", "B. Scientist"},
		Abstract: "We study transformer models and deep learning benchmarks.",
		PDFURL:   "https://arxiv.org/pdf/2401.12345",
	}
}

func newTestService(ledger *fakeLedger, parser *fakeParser, sum *fakeSummarizer) paper.Service {
	return paper.NewService(ledger, parser, sum, paper.NewCache(nil))
}

func TestAnalyzeSummaryFromModel(t *testing.T) {
	ledger := &fakeLedger{balance: 10}
	svc := newTestService(ledger, &fakeParser{paper: testPaper()}, &fakeSummarizer{summary: "A thorough model summary."})

	result, err := svc.Analyze(context.Background(), uuid.New(), paper.AnalyzeRequest{
		PaperURL:     "https://arxiv.org/abs/2401.12345",
		AnalysisType: "summary",
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if result.Source != paper.SourceAI {
		t.Fatalf("expected source ai, got %s", result.Source)
	}
	if result.Summary != "A thorough model summary." {
		t.Fatalf("unexpected summary: %s", result.Summary)
	}
	if result.CreditsUsed != credit.CostAnalyzePaper || ledger.balance != 5 {
		t.Fatalf("unexpected ledger state: %+v, credits_used=%d", ledger, result.CreditsUsed)
	}
	if len(result.Keywords) == 0 {
		t.Fatal("expected keywords extracted from abstract")
	}
}

func TestAnalyzeFallsBackToTemplate(t *testing.T) {
	ledger := &fakeLedger{balance: 10}
	svc := newTestService(ledger, &fakeParser{paper: testPaper()}, &fakeSummarizer{err: errors.New("model timeout")})

	result, err := svc.Analyze(context.Background(), uuid.New(), paper.AnalyzeRequest{
		PaperURL:     "https://arxiv.org/abs/2401.12345",
		AnalysisType: "summary",
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if result.Source != paper.SourceTemplate {
		t.Fatalf("expected source template, got %s", result.Source)
	}
	if !strings.Contains(result.Summary, "Attention Is Not All You Need") {
		t.Fatalf("template summary missing title: %s", result.Summary)
	}
	// The fallback still costs credits: the paper was fetched and a result
	// was delivered.
	if ledger.balance != 5 || ledger.refunds != 0 {
		t.Fatalf("unexpected ledger state: %+v", ledger)
	}
}

func TestAnalyzeRefundsWhenParsingFails(t *testing.T) {
	ledger := &fakeLedger{balance: 10}
	svc := newTestService(ledger, &fakeParser{err: arxiv.ErrUnavailable}, &fakeSummarizer{summary: "unused"})

	_, err := svc.Analyze(context.Background(), uuid.New(), paper.AnalyzeRequest{
		PaperURL:     "https://arxiv.org/abs/2401.12345",
		AnalysisType: "summary",
	})
	if !errors.Is(err, paper.ErrParsingUnavailable) {
		t.Fatalf("expected ErrParsingUnavailable, got %v", err)
	}
	if ledger.balance != 10 || ledger.refunds != 1 {
		t.Fatalf("debit not compensated: %+v", ledger)
	}
}

func TestAnalyzeRejectsUnavailableTypes(t *testing.T) {
	ledger := &fakeLedger{balance: 10}
	svc := newTestService(ledger, &fakeParser{paper: testPaper()}, &fakeSummarizer{summary: "unused"})

	for _, typ := range []string{"images", "full"} {
		_, err := svc.Analyze(context.Background(), uuid.New(), paper.AnalyzeRequest{
			PaperURL:     "https://arxiv.org/abs/2401.12345",
			AnalysisType: typ,
		})
		if !errors.Is(err, paper.ErrTypeNotAvailable) {
			t.Fatalf("type %s: expected ErrTypeNotAvailable, got %v", typ, err)
		}
	}
	if ledger.deducts != 0 {
		t.Fatalf("unavailable types must not cost credits: %+v", ledger)
	}
}

func TestAnalyzeRejectsUnknownType(t *testing.T) {
	svc := newTestService(&fakeLedger{balance: 10}, &fakeParser{paper: testPaper()}, &fakeSummarizer{})

	_, err := svc.Analyze(context.Background(), uuid.New(), paper.AnalyzeRequest{
		PaperURL:     "https://arxiv.org/abs/2401.12345",
		AnalysisType: "poetry",
	})
	if !errors.Is(err, paper.ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestAnalyzeRejectsBadURL(t *testing.T) {
	ledger := &fakeLedger{balance: 10}
	svc := newTestService(ledger, &fakeParser{paper: testPaper()}, &fakeSummarizer{})

	_, err := svc.Analyze(context.Background(), uuid.New(), paper.AnalyzeRequest{
		PaperURL:     "https://example.com/paper.pdf",
		AnalysisType: "summary",
	})
	if !errors.Is(err, arxiv.ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL, got %v", err)
	}
	if ledger.deducts != 0 {
		t.Fatalf("invalid URLs must not cost credits: %+v", ledger)
	}
}

func TestAnalyzeInsufficientCredits(t *testing.T) {
	parser := &fakeParser{paper: testPaper()}
	svc := newTestService(&fakeLedger{balance: 2}, parser, &fakeSummarizer{summary: "unused"})

	_, err := svc.Analyze(context.Background(), uuid.New(), paper.AnalyzeRequest{
		PaperURL:     "https://arxiv.org/abs/2401.12345",
		AnalysisType: "summary",
	})
	if !errors.Is(err, credit.ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	if parser.calls != 0 {
		t.Fatal("parser should not run without a successful debit")
	}
}
