package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	CreateBatch(ctx context.Context, db *gorm.DB, questions []Question) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Question, error)

	// ListByProduct returns top-level questions in order with answers and
	// ordered follow-ups (and their answers) preloaded.
	ListByProduct(ctx context.Context, db *gorm.DB, productID snowflake.ID) ([]Question, error)

	// ListAllByProduct returns every question for the product, follow-ups
	// included, answers preloaded, without nesting.
	ListAllByProduct(ctx context.Context, db *gorm.DB, productID snowflake.ID) ([]Question, error)

	MaxOrder(ctx context.Context, db *gorm.DB, productID snowflake.ID) (int, error)

	UpsertAnswer(ctx context.Context, db *gorm.DB, answer *Answer) error
	FindAnswer(ctx context.Context, db *gorm.DB, questionID, productID snowflake.ID) (*Answer, error)
	UpdateAnswer(ctx context.Context, db *gorm.DB, answer *Answer) error
	DeleteAnswer(ctx context.Context, db *gorm.DB, questionID, productID snowflake.ID) error
	ListAnswersByProduct(ctx context.Context, db *gorm.DB, productID snowflake.ID) ([]Answer, error)
}
