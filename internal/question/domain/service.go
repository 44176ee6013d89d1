package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// ListByProduct returns the questionnaire for a product owned by userID,
	// top-level questions in order with answers and follow-ups attached.
	ListByProduct(ctx context.Context, userID, productID snowflake.ID) ([]Question, error)

	// SubmitAnswer upserts the answer for a question and, best-effort,
	// generates follow-up questions from it.
	SubmitAnswer(ctx context.Context, userID, questionID snowflake.ID, value string) (*Answer, error)

	UpdateAnswer(ctx context.Context, userID, questionID snowflake.ID, value string) (*Answer, error)
	DeleteAnswer(ctx context.Context, userID, questionID snowflake.ID) error

	// ListAnswers returns every answer for a product, question attached,
	// in questionnaire order.
	ListAnswers(ctx context.Context, userID, productID snowflake.ID) ([]Answer, error)

	// GenerateAdditional asks the assessment service for more questions given
	// everything asked and answered so far. Unlike the implicit generation
	// paths, a failing assessment call is returned to the caller here.
	GenerateAdditional(ctx context.Context, userID, productID snowflake.ID) (int, error)
}

var (
	ErrInvalidValue   = errors.New("invalid_value")
	ErrNotFound       = errors.New("not_found")
	ErrAnswerNotFound = errors.New("answer_not_found")
	ErrGeneration     = errors.New("generation_failed")
)
