package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, report *Report) error
	FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*Report, error)
	ListByProduct(ctx context.Context, db *gorm.DB, productID snowflake.ID) ([]Report, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, offset, limit int) ([]Report, int64, error)
	LatestByProduct(ctx context.Context, db *gorm.DB, productID snowflake.ID) (*Report, error)
}
