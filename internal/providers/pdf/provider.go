package pdf

import "context"

// Provider renders a transparency report into a PDF document.
type Provider interface {
	RenderReport(ctx context.Context, data ReportData) ([]byte, error)
}

// ReportData is everything the document shows, already resolved; rendering
// does no lookups of its own.
type ReportData struct {
	GeneratedOn  string
	ProductName  string
	Category     string
	Manufacturer string
	SubmittedBy  string
	Company      string
	Description  string
	Ingredients  string

	TransparencyScore  *float64
	HealthScore        *float64
	EnvironmentalScore *float64
	SocialScore        *float64

	Questions []QA
}

// QA is one question with its answer and any follow-ups underneath it.
type QA struct {
	Text      string
	Answer    string
	Answered  bool
	FollowUps []QA
}
