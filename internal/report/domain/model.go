package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Report records one generated transparency report. Rows are immutable;
// regenerating produces a new row and a new artifact.
type Report struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	ProductID   snowflake.ID `json:"productId" gorm:"column:product_id;not null;index"`
	GeneratedBy snowflake.ID `json:"generatedBy" gorm:"column:generated_by;not null;index"`
	ReportURL   string       `json:"reportUrl" gorm:"column:report_url;type:text;not null"`
	Score       *float64     `json:"score,omitempty"`
	Summary     string       `json:"summary" gorm:"type:text;not null"`
	CreatedAt   time.Time    `json:"createdAt" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Report) TableName() string { return "reports" }

// ProductRef is the slim product view attached to user-level report lists.
type ProductRef struct {
	ID           snowflake.ID `json:"id"`
	Name         string       `json:"name"`
	Category     string       `json:"category"`
	Manufacturer string       `json:"manufacturer"`
}
