package pdf

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var recommendations = []string{
	"Review and improve ingredient transparency",
	"Provide more detailed supply chain information",
	"Consider environmental impact in production processes",
	"Ensure fair labor practices throughout the supply chain",
	"Regularly update transparency information",
}

type ReportProvider struct{}

func New() Provider {
	return &ReportProvider{}
}

func (p *ReportProvider) RenderReport(ctx context.Context, data ReportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(12, "Product Transparency Report", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)
	m.AddRow(10,
		text.NewCol(12, "Generated on: "+data.GeneratedOn, props.Text{
			Size:  10,
			Align: align.Center,
		}),
	)

	addSectionTitle(m, "Product Information")
	m.AddRow(28,
		col.New(12).Add(
			text.New("Name: "+data.ProductName, props.Text{Top: 0, Size: 10}),
			text.New("Category: "+data.Category, props.Text{Top: 5, Size: 10}),
			text.New("Manufacturer: "+data.Manufacturer, props.Text{Top: 10, Size: 10}),
			text.New("Submitted by: "+data.SubmittedBy, props.Text{Top: 15, Size: 10}),
			text.New("Company: "+orNA(data.Company), props.Text{Top: 20, Size: 10}),
		),
	)
	if data.Description != "" {
		m.AddRow(10,
			text.NewCol(12, "Description: "+data.Description, props.Text{Size: 10}),
		)
	}
	if data.Ingredients != "" {
		m.AddRow(10,
			text.NewCol(12, "Ingredients: "+data.Ingredients, props.Text{Size: 10}),
		)
	}

	addScores(m, data)
	addAssessment(m, data.Questions)
	addRecommendations(m)

	m.AddRow(10,
		text.NewCol(12, "This report was generated by Altibbe | Hedamo Product Transparency Platform", props.Text{
			Size:  8,
			Style: fontstyle.Italic,
			Align: align.Center,
		}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func addSectionTitle(m core.Maroto, title string) {
	m.AddRow(12,
		text.NewCol(12, title, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Top:   3,
		}),
	)
}

// addScores omits the whole section when scoring failed, the way the
// original report does; no empty placeholders.
func addScores(m core.Maroto, data ReportData) {
	if data.TransparencyScore == nil {
		return
	}

	addSectionTitle(m, "Transparency Scores")

	lines := []struct {
		label string
		value *float64
	}{
		{"Overall Transparency Score", data.TransparencyScore},
		{"Health Impact Score", data.HealthScore},
		{"Environmental Impact Score", data.EnvironmentalScore},
		{"Social Impact Score", data.SocialScore},
	}
	for _, line := range lines {
		if line.value == nil {
			continue
		}
		m.AddRow(7,
			text.NewCol(12, fmt.Sprintf("%s: %.1f%%", line.label, *line.value*100), props.Text{Size: 10}),
		)
	}
}

func addAssessment(m core.Maroto, questions []QA) {
	addSectionTitle(m, "Transparency Assessment")

	for i, q := range questions {
		m.AddRow(9,
			text.NewCol(12, fmt.Sprintf("%d. %s", i+1, q.Text), props.Text{
				Size:  11,
				Style: fontstyle.Bold,
			}),
		)
		m.AddRow(8,
			text.NewCol(12, answerLine("Answer: ", q), props.Text{
				Size:  10,
				Style: answerStyle(q),
			}),
		)

		for j, f := range q.FollowUps {
			m.AddRow(8,
				text.NewCol(12, fmt.Sprintf("    %d.%d %s", i+1, j+1, f.Text), props.Text{
					Size:  10,
					Style: fontstyle.Bold,
				}),
			)
			m.AddRow(7,
				text.NewCol(12, answerLine("    Answer: ", f), props.Text{
					Size:  9,
					Style: answerStyle(f),
				}),
			)
		}
	}
}

func addRecommendations(m core.Maroto) {
	addSectionTitle(m, "Recommendations")
	m.AddRow(8,
		text.NewCol(12, "Based on the transparency assessment, consider the following:", props.Text{Size: 10}),
	)
	for _, rec := range recommendations {
		m.AddRow(7,
			text.NewCol(12, "- "+rec, props.Text{Size: 10}),
		)
	}
}

func answerLine(prefix string, q QA) string {
	if !q.Answered {
		return prefix + "Not provided"
	}
	return prefix + q.Answer
}

func answerStyle(q QA) fontstyle.Type {
	if !q.Answered {
		return fontstyle.Italic
	}
	return fontstyle.Normal
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
