package repository

import (
	"context"
	"errors"
	"time"

	questiondomain "github.com/altibbe/hedamo/internal/question/domain"
	"github.com/altibbe/hedamo/internal/product/domain"
	reportdomain "github.com/altibbe/hedamo/internal/report/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).
		Where("id = ? AND submitted_by = ?", id, userID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, userID snowflake.ID, filter domain.ListRequest) ([]domain.Product, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("submitted_by = ?", userID)

	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		stmt = stmt.Where("category = ?", filter.Category)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Product
	err := filter.Apply(stmt.Order("updated_at DESC")).Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) CountRelated(ctx context.Context, db *gorm.DB, productID snowflake.ID) (domain.Counts, error) {
	var counts domain.Counts

	err := db.WithContext(ctx).
		Model(&questiondomain.Question{}).
		Where("product_id = ?", productID).
		Count(&counts.Questions).Error
	if err != nil {
		return counts, err
	}

	err = db.WithContext(ctx).
		Model(&questiondomain.Answer{}).
		Where("product_id = ?", productID).
		Count(&counts.Answers).Error
	if err != nil {
		return counts, err
	}

	err = db.WithContext(ctx).
		Model(&reportdomain.Report{}).
		Where("product_id = ?", productID).
		Count(&counts.Reports).Error
	return counts, err
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	if product == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Save(product).Error
}

func (r *repo) UpdateScores(ctx context.Context, db *gorm.DB, id snowflake.ID, scores domain.Scores, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"transparency_score":  scores.Transparency,
			"health_score":        scores.Health,
			"environmental_score": scores.Environmental,
			"social_score":        scores.Social,
			"updated_at":          at,
		}).Error
}

// Delete removes the product and everything hanging off it. Kept in one
// transaction so a partial cascade never survives.
func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&questiondomain.Answer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&questiondomain.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&reportdomain.Report{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Product{}).Error
	})
}
