package repository

import (
	"context"
	"errors"

	"github.com/altibbe/hedamo/internal/report/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, report *domain.Report) error {
	return db.WithContext(ctx).Create(report).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*domain.Report, error) {
	var rep domain.Report
	err := db.WithContext(ctx).
		Where("id = ? AND generated_by = ?", id, userID).
		First(&rep).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *repo) ListByProduct(ctx context.Context, db *gorm.DB, productID snowflake.ID) ([]domain.Report, error) {
	var items []domain.Report
	err := db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, offset, limit int) ([]domain.Report, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Report{}).
		Where("generated_by = ?", userID)

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Report
	err := stmt.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) LatestByProduct(ctx context.Context, db *gorm.DB, productID snowflake.ID) (*domain.Report, error) {
	var rep domain.Report
	err := db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		First(&rep).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}
