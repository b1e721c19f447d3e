package paper_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/covergen/covergen-api/internal/domain/credit"
	"github.com/covergen/covergen-api/internal/domain/paper"
	"github.com/covergen/covergen-api/internal/middleware"
)

type stubService struct {
	result *paper.Result
	err    error
}

func (s *stubService) Analyze(ctx context.Context, userID uuid.UUID, req paper.AnalyzeRequest) (*paper.Result, error) {
	return s.result, s.err
}

func doAnalyze(t *testing.T, svc paper.Service, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := paper.NewHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body))
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, uuid.New())
	req = req.WithContext(ctx)

	w := httptest.NewRecorder()
	h.Analyze(w, req)
	return w
}

const validBody = `{"paper_url":"https://arxiv.org/abs/2401.12345","analysis_type":"summary"}`

func TestAnalyzeHandlerSuccess(t *testing.T) {
	svc := &stubService{result: &paper.Result{
		ArxivID:     "2401.12345",
		Title:       "A Paper",
		Summary:     "A summary.",
		Source:      paper.SourceAI,
		CreditsUsed: credit.CostAnalyzePaper,
	}}

	w := doAnalyze(t, svc, validBody)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool         `json:"success"`
		Data    paper.Result `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Data.Source != paper.SourceAI {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAnalyzeHandlerStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"insufficient credits", credit.ErrInsufficientCredits, http.StatusPaymentRequired},
		{"type not available", paper.ErrTypeNotAvailable, http.StatusNotImplemented},
		{"unsupported type", paper.ErrUnsupportedType, http.StatusBadRequest},
		{"parsing down", paper.ErrParsingUnavailable, http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doAnalyze(t, &stubService{err: tc.err}, validBody)
			if w.Code != tc.code {
				t.Fatalf("expected %d, got %d: %s", tc.code, w.Code, w.Body.String())
			}
		})
	}
}

func TestAnalyzeHandlerValidation(t *testing.T) {
	w := doAnalyze(t, &stubService{}, `{"paper_url":"","analysis_type":"poetry"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAnalyzeHandlerBadJSON(t *testing.T) {
	w := doAnalyze(t, &stubService{}, `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
