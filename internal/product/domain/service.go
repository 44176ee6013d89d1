package domain

import (
	"context"
	"errors"

	"github.com/altibbe/hedamo/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	questiondomain "github.com/altibbe/hedamo/internal/question/domain"
	reportdomain "github.com/altibbe/hedamo/internal/report/domain"
)

type Service interface {
	Create(ctx context.Context, userID snowflake.ID, req CreateRequest) (*Product, error)
	List(ctx context.Context, userID snowflake.ID, req ListRequest) (*ListResult, error)
	Get(ctx context.Context, userID, id snowflake.ID) (*Detail, error)
	Update(ctx context.Context, userID, id snowflake.ID, req UpdateRequest) (*Product, error)
	SetImage(ctx context.Context, userID, id snowflake.ID, imageURL string) (*Product, error)
	Delete(ctx context.Context, userID, id snowflake.ID) error
	Submit(ctx context.Context, userID, id snowflake.ID) (*Product, error)
}

type CreateRequest struct {
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Manufacturer string  `json:"manufacturer"`
	Description  *string `json:"description"`
	Ingredients  *string `json:"ingredients"`
	Barcode      *string `json:"barcode"`
}

type UpdateRequest struct {
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Manufacturer string  `json:"manufacturer"`
	Description  *string `json:"description"`
	Ingredients  *string `json:"ingredients"`
	Barcode      *string `json:"barcode"`
}

type ListRequest struct {
	pagination.Pagination
	Status   string `form:"status"`
	Category string `form:"category"`
}

// Counts summarises related records for list views.
type Counts struct {
	Questions int64 `json:"questions"`
	Answers   int64 `json:"answers"`
	Reports   int64 `json:"reports"`
}

type Summary struct {
	Product
	Counts Counts `json:"counts"`
}

type ListResult struct {
	Products   []Summary           `json:"products"`
	Pagination pagination.PageInfo `json:"pagination"`
}

// Detail is the single-product view: the questionnaire with answers and
// follow-ups in order, plus the most recent report when one exists.
type Detail struct {
	Product
	Questions    []questiondomain.Question `json:"questions"`
	LatestReport *reportdomain.Report      `json:"latestReport,omitempty"`
}

var (
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidCategory     = errors.New("invalid_category")
	ErrInvalidManufacturer = errors.New("invalid_manufacturer")
	ErrNotFound            = errors.New("not_found")
	ErrInvalidTransition   = errors.New("invalid_status_transition")
	ErrUnansweredQuestions = errors.New("unanswered_required_questions")
)
