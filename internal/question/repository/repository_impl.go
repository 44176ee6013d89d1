package repository

import (
	"context"
	"errors"

	"github.com/altibbe/hedamo/internal/question/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) CreateBatch(ctx context.Context, db *gorm.DB, questions []domain.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&questions).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Question, error) {
	var q domain.Question
	err := db.WithContext(ctx).Where("id = ?", id).First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *repo) ListByProduct(ctx context.Context, db *gorm.DB, productID snowflake.ID) ([]domain.Question, error) {
	var items []domain.Question
	err := db.WithContext(ctx).
		Where("product_id = ? AND parent_id IS NULL", productID).
		Preload("Answers").
		Preload("FollowUps", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sort_order ASC")
		}).
		Preload("FollowUps.Answers").
		Order("sort_order ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListAllByProduct(ctx context.Context, db *gorm.DB, productID snowflake.ID) ([]domain.Question, error) {
	var items []domain.Question
	err := db.WithContext(ctx).
		Where("product_id = ?", productID).
		Preload("Answers").
		Order("sort_order ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) MaxOrder(ctx context.Context, db *gorm.DB, productID snowflake.ID) (int, error) {
	var max *int
	err := db.WithContext(ctx).
		Model(&domain.Question{}).
		Where("product_id = ?", productID).
		Select("MAX(sort_order)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// UpsertAnswer inserts the answer or, when the (question, product) pair
// already holds one, overwrites its value.
func (r *repo) UpsertAnswer(ctx context.Context, db *gorm.DB, answer *domain.Answer) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "question_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(answer).Error
}

func (r *repo) FindAnswer(ctx context.Context, db *gorm.DB, questionID, productID snowflake.ID) (*domain.Answer, error) {
	var a domain.Answer
	err := db.WithContext(ctx).
		Where("question_id = ? AND product_id = ?", questionID, productID).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repo) UpdateAnswer(ctx context.Context, db *gorm.DB, answer *domain.Answer) error {
	if answer == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Save(answer).Error
}

func (r *repo) DeleteAnswer(ctx context.Context, db *gorm.DB, questionID, productID snowflake.ID) error {
	return db.WithContext(ctx).
		Where("question_id = ? AND product_id = ?", questionID, productID).
		Delete(&domain.Answer{}).Error
}

func (r *repo) ListAnswersByProduct(ctx context.Context, db *gorm.DB, productID snowflake.ID) ([]domain.Answer, error) {
	var items []domain.Answer
	err := db.WithContext(ctx).
		Joins("JOIN questions ON questions.id = answers.question_id").
		Where("answers.product_id = ?", productID).
		Preload("Question").
		Order("questions.sort_order ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
