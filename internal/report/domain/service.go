package domain

import (
	"context"
	"errors"

	"github.com/altibbe/hedamo/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Generate runs the full pipeline for a product owned by userID: request
	// scores, persist them onto the product, render the PDF artifact, then
	// record the report. A failing score call leaves the scores absent but
	// does not stop the report.
	Generate(ctx context.Context, userID, productID snowflake.ID) (*Generated, error)

	ListByProduct(ctx context.Context, userID, productID snowflake.ID) ([]Report, error)
	ListByUser(ctx context.Context, userID snowflake.ID, page pagination.Pagination) (*ListResult, error)

	// Download resolves a report to its on-disk artifact and the filename to
	// serve it under.
	Download(ctx context.Context, userID, reportID snowflake.ID) (*Artifact, error)
}

type Generated struct {
	Report      Report `json:"report"`
	DownloadURL string `json:"downloadUrl"`
}

type UserReport struct {
	Report
	Product ProductRef `json:"product"`
}

type ListResult struct {
	Reports    []UserReport        `json:"reports"`
	Pagination pagination.PageInfo `json:"pagination"`
}

type Artifact struct {
	Path     string
	Filename string
}

var (
	ErrNotFound     = errors.New("not_found")
	ErrFileNotFound = errors.New("file_not_found")
)
