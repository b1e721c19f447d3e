package validator

import "testing"

type analyzeInput struct {
	PaperURL     string `json:"paper_url" validate:"required,arxiv_url"`
	AnalysisType string `json:"analysis_type" validate:"required,analysis_type"`
}

func TestValidateAnalyzeInput(t *testing.T) {
	valid := analyzeInput{
		PaperURL:     "https://arxiv.org/abs/2401.12345",
		AnalysisType: "summary",
	}
	if errs := Validate(valid); errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	errs := Validate(analyzeInput{})
	if errs == nil {
		t.Fatal("expected errors")
	}
	if _, ok := errs["paper_url"]; !ok {
		t.Fatalf("expected paper_url key, got %v", errs)
	}
	if _, ok := errs["analysis_type"]; !ok {
		t.Fatalf("expected analysis_type key, got %v", errs)
	}
}

func TestValidateCustomRules(t *testing.T) {
	bad := analyzeInput{
		PaperURL:     "https://example.com/paper",
		AnalysisType: "poetry",
	}
	errs := Validate(bad)
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", errs)
	}
}
