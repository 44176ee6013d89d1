package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Product struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	SubmittedBy  snowflake.ID `json:"submittedBy" gorm:"column:submitted_by;not null;index"`
	Name         string       `json:"name" gorm:"type:text;not null"`
	Category     string       `json:"category" gorm:"type:text;not null;index"`
	Manufacturer string       `json:"manufacturer" gorm:"type:text;not null"`
	Description  *string      `json:"description,omitempty" gorm:"type:text"`
	Ingredients  *string      `json:"ingredients,omitempty" gorm:"type:text"`
	Barcode      *string      `json:"barcode,omitempty" gorm:"type:text"`
	ImageURL     *string      `json:"imageUrl,omitempty" gorm:"column:image_url;type:text"`
	Status       Status       `json:"status" gorm:"type:text;not null;default:DRAFT;index"`

	// Score fractions in [0,1], absent until a report has been generated.
	TransparencyScore  *float64 `json:"transparencyScore,omitempty"`
	HealthScore        *float64 `json:"healthScore,omitempty"`
	EnvironmentalScore *float64 `json:"environmentalScore,omitempty"`
	SocialScore        *float64 `json:"socialScore,omitempty"`

	CreatedAt time.Time `json:"createdAt" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }

// Scores groups the four assessment dimensions as persisted on a product.
type Scores struct {
	Transparency  *float64
	Health        *float64
	Environmental *float64
	Social        *float64
}
