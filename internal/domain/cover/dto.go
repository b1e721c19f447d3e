package cover

// ExportRequest carries the client-rendered cover as a base64 PNG, either
// raw or as a data URL.
type ExportRequest struct {
	ImageData string `json:"image_data" validate:"required"`
	Title     string `json:"title" validate:"omitempty,max=200"`
}

type ExportResult struct {
	URL         string `json:"url"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	CreditsUsed int    `json:"credits_used"`
}
