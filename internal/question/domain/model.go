package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// QuestionType is the input kind a question expects.
type QuestionType string

const (
	TypeText    QuestionType = "TEXT"
	TypeChoice  QuestionType = "CHOICE"
	TypeBoolean QuestionType = "BOOLEAN"
	TypeNumber  QuestionType = "NUMBER"
)

func (t QuestionType) Valid() bool {
	switch t {
	case TypeText, TypeChoice, TypeBoolean, TypeNumber:
		return true
	}
	return false
}

type Question struct {
	ID         snowflake.ID  `json:"id" gorm:"primaryKey"`
	ProductID  snowflake.ID  `json:"productId" gorm:"column:product_id;not null;index"`
	ParentID   *snowflake.ID `json:"parentId,omitempty" gorm:"column:parent_id;index"`
	Text       string        `json:"text" gorm:"type:text;not null"`
	Type       QuestionType  `json:"type" gorm:"type:text;not null;default:TEXT"`
	Category   string        `json:"category" gorm:"type:text;not null;default:general"`
	IsRequired bool          `json:"isRequired" gorm:"column:is_required;not null;default:false"`
	// Position within the questionnaire; "order" is reserved in SQL.
	Order     int            `json:"order" gorm:"column:sort_order;not null;default:0"`
	Options   datatypes.JSON `json:"options,omitempty" gorm:"type:jsonb"`
	CreatedAt time.Time      `json:"createdAt" gorm:"not null;default:CURRENT_TIMESTAMP"`

	Answers   []Answer   `json:"answers" gorm:"foreignKey:QuestionID"`
	FollowUps []Question `json:"followUps,omitempty" gorm:"foreignKey:ParentID"`
}

func (Question) TableName() string { return "questions" }

// Answer holds a single response. One answer per (question, product) pair,
// enforced by the unique index; repeated submissions overwrite the value.
type Answer struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	QuestionID snowflake.ID `json:"questionId" gorm:"column:question_id;not null;uniqueIndex:ux_answers_question_product,priority:1"`
	ProductID  snowflake.ID `json:"productId" gorm:"column:product_id;not null;uniqueIndex:ux_answers_question_product,priority:2;index"`
	Value      string       `json:"value" gorm:"type:text;not null"`
	CreatedAt  time.Time    `json:"createdAt" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time    `json:"updatedAt" gorm:"not null;default:CURRENT_TIMESTAMP"`

	Question *Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
}

func (Answer) TableName() string { return "answers" }
