package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*Product, error)
	List(ctx context.Context, db *gorm.DB, userID snowflake.ID, filter ListRequest) ([]Product, int64, error)
	CountRelated(ctx context.Context, db *gorm.DB, productID snowflake.ID) (Counts, error)
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	UpdateScores(ctx context.Context, db *gorm.DB, id snowflake.ID, scores Scores, at time.Time) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
