package paper

type AnalyzeRequest struct {
	PaperURL     string `json:"paper_url" validate:"required,arxiv_url"`
	AnalysisType string `json:"analysis_type" validate:"required,analysis_type"`
}
