package paper

// AnalysisType selects the depth of paper analysis.
type AnalysisType string

const (
	AnalysisSummary AnalysisType = "summary"
	AnalysisImages  AnalysisType = "images"
	AnalysisFull    AnalysisType = "full"
)

// Source records how the summary was produced.
const (
	SourceAI       = "ai"
	SourceTemplate = "template"
)

// Result is the outcome of a paper analysis.
type Result struct {
	ArxivID     string   `json:"arxiv_id"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Abstract    string   `json:"abstract"`
	Summary     string   `json:"summary"`
	Keywords    []string `json:"keywords"`
	PageCount   int      `json:"page_count,omitempty"`
	Source      string   `json:"source"`
	CreditsUsed int      `json:"credits_used"`
}
