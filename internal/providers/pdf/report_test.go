package pdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestRenderReport(t *testing.T) {
	provider := New()

	data := ReportData{
		GeneratedOn:        "June 1, 2025",
		ProductName:        "Herbal Tea",
		Category:           "beverages",
		Manufacturer:       "Acme",
		SubmittedBy:        "Jamie",
		Company:            "Acme Ltd",
		Description:        "A calming herbal blend.",
		Ingredients:        "chamomile, mint",
		TransparencyScore:  floatPtr(0.82),
		HealthScore:        floatPtr(0.7),
		EnvironmentalScore: floatPtr(0.6),
		SocialScore:        floatPtr(0.5),
		Questions: []QA{
			{
				Text:     "Where are the ingredients sourced?",
				Answer:   "organic farms",
				Answered: true,
				FollowUps: []QA{
					{Text: "Which farms exactly?"},
				},
			},
			{Text: "Is the packaging recyclable?"},
		},
	}

	document, err := provider.RenderReport(context.Background(), data)
	require.NoError(t, err)
	require.NotEmpty(t, document)
	assert.Equal(t, "%PDF", string(document[:4]))
}

func TestRenderReport_WithoutScores(t *testing.T) {
	provider := New()

	document, err := provider.RenderReport(context.Background(), ReportData{
		GeneratedOn:  "June 1, 2025",
		ProductName:  "Herbal Tea",
		Category:     "beverages",
		Manufacturer: "Acme",
	})
	require.NoError(t, err)
	require.NotEmpty(t, document)
}
