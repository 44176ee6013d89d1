package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/altibbe/hedamo/internal/assessment"
	authdomain "github.com/altibbe/hedamo/internal/auth/domain"
	authrepo "github.com/altibbe/hedamo/internal/auth/repository"
	"github.com/altibbe/hedamo/internal/clock"
	"github.com/altibbe/hedamo/internal/config"
	productdomain "github.com/altibbe/hedamo/internal/product/domain"
	productrepo "github.com/altibbe/hedamo/internal/product/repository"
	"github.com/altibbe/hedamo/internal/providers/pdf"
	questiondomain "github.com/altibbe/hedamo/internal/question/domain"
	questionrepo "github.com/altibbe/hedamo/internal/question/repository"
	"github.com/altibbe/hedamo/internal/report/domain"
	reportrepo "github.com/altibbe/hedamo/internal/report/repository"
	"github.com/altibbe/hedamo/internal/storage"
	"github.com/altibbe/hedamo/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type scoringStub struct {
	scores   *assessment.Scores
	scoreErr error
}

func (s *scoringStub) GenerateQuestions(ctx context.Context, req assessment.GenerateRequest) ([]assessment.GeneratedQuestion, error) {
	return nil, errors.New("not implemented")
}

func (s *scoringStub) TransparencyScore(ctx context.Context, req assessment.ScoreRequest) (*assessment.Scores, error) {
	if s.scoreErr != nil {
		return nil, s.scoreErr
	}
	return s.scores, nil
}

func (s *scoringStub) Health(ctx context.Context) (map[string]any, error) {
	return map[string]any{"status": "healthy"}, nil
}

type pdfStub struct {
	renderErr error
	rendered  []pdf.ReportData
}

func (p *pdfStub) RenderReport(ctx context.Context, data pdf.ReportData) ([]byte, error) {
	p.rendered = append(p.rendered, data)
	if p.renderErr != nil {
		return nil, p.renderErr
	}
	return []byte("%PDF-1.4 stub"), nil
}

type fixture struct {
	svc   *Service
	db    *gorm.DB
	node  *snowflake.Node
	store *storage.Store
	pdf   *pdfStub
}

func newFixture(t *testing.T, scoring *scoringStub) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&authdomain.User{},
		&productdomain.Product{},
		&questiondomain.Question{},
		&questiondomain.Answer{},
		&domain.Report{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	store, err := storage.New(config.Config{UploadDir: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)

	renderer := &pdfStub{}
	svc := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		Repo:         reportrepo.Provide(),
		ProductRepo:  productrepo.Provide(),
		QuestionRepo: questionrepo.Provide(),
		UserRepo:     authrepo.Provide(),
		Assessment:   scoring,
		PDF:          renderer,
		Store:        store,
		Metrics:      nil,
	}).(*Service)
	return &fixture{svc: svc, db: db, node: node, store: store, pdf: renderer}
}

func (f *fixture) seed(t *testing.T, userID snowflake.ID) *productdomain.Product {
	t.Helper()
	company := "Acme Ltd"
	require.NoError(t, f.db.Create(&authdomain.User{
		ID:           userID,
		Email:        fmt.Sprintf("user%d@example.com", userID),
		PasswordHash: "x",
		Name:         "Jamie",
		Company:      &company,
	}).Error)

	p := &productdomain.Product{
		ID:           f.node.Generate(),
		SubmittedBy:  userID,
		Name:         "Herbal Tea",
		Category:     "beverages",
		Manufacturer: "Acme",
		Status:       productdomain.StatusSubmitted,
	}
	require.NoError(t, f.db.Create(p).Error)

	q := &questiondomain.Question{
		ID:        f.node.Generate(),
		ProductID: p.ID,
		Text:      "Where are the ingredients sourced?",
		Type:      questiondomain.TypeText,
		Category:  "sourcing",
		Order:     1,
	}
	require.NoError(t, f.db.Create(q).Error)
	require.NoError(t, f.db.Create(&questiondomain.Answer{
		ID:         f.node.Generate(),
		QuestionID: q.ID,
		ProductID:  p.ID,
		Value:      "organic farms",
	}).Error)
	return p
}

func floatPtr(v float64) *float64 { return &v }

func TestGenerate_PersistsReportAndScores(t *testing.T) {
	scoring := &scoringStub{scores: &assessment.Scores{
		Transparency:  floatPtr(0.82),
		Health:        floatPtr(0.7),
		Environmental: floatPtr(0.6),
		Social:        floatPtr(0.5),
	}}
	f := newFixture(t, scoring)
	ctx := context.Background()
	p := f.seed(t, 1)

	generated, err := f.svc.Generate(ctx, 1, p.ID)
	require.NoError(t, err)
	require.NotNil(t, generated.Report.Score)
	assert.InDelta(t, 0.82, *generated.Report.Score, 1e-9)
	assert.True(t, strings.HasPrefix(generated.DownloadURL, "/uploads/"))

	path, err := f.store.Resolve(generated.DownloadURL)
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err)

	var stored productdomain.Product
	require.NoError(t, f.db.First(&stored, "id = ?", p.ID).Error)
	require.NotNil(t, stored.TransparencyScore)
	assert.InDelta(t, 0.82, *stored.TransparencyScore, 1e-9)

	require.Len(t, f.pdf.rendered, 1)
	data := f.pdf.rendered[0]
	assert.Equal(t, "Herbal Tea", data.ProductName)
	assert.Equal(t, "Jamie", data.SubmittedBy)
	assert.Equal(t, "Acme Ltd", data.Company)
	require.Len(t, data.Questions, 1)
	assert.True(t, data.Questions[0].Answered)
	assert.Equal(t, "organic farms", data.Questions[0].Answer)
}

func TestGenerate_ScoringFailureStillProducesReport(t *testing.T) {
	f := newFixture(t, &scoringStub{scoreErr: errors.New("connection refused")})
	ctx := context.Background()
	p := f.seed(t, 1)

	generated, err := f.svc.Generate(ctx, 1, p.ID)
	require.NoError(t, err)
	assert.Nil(t, generated.Report.Score)

	var stored productdomain.Product
	require.NoError(t, f.db.First(&stored, "id = ?", p.ID).Error)
	assert.Nil(t, stored.TransparencyScore)
	assert.Nil(t, stored.HealthScore)
}

func TestGenerate_RenderFailureLeavesNoRow(t *testing.T) {
	f := newFixture(t, &scoringStub{})
	f.pdf.renderErr = errors.New("render failed")
	ctx := context.Background()
	p := f.seed(t, 1)

	_, err := f.svc.Generate(ctx, 1, p.ID)
	require.Error(t, err)

	var count int64
	require.NoError(t, f.db.Model(&domain.Report{}).Where("product_id = ?", p.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGenerate_ArtifactWriteFailureLeavesNoRow(t *testing.T) {
	f := newFixture(t, &scoringStub{})
	ctx := context.Background()
	p := f.seed(t, 1)

	require.NoError(t, os.RemoveAll(f.store.Dir()))

	_, err := f.svc.Generate(ctx, 1, p.ID)
	require.Error(t, err)

	var count int64
	require.NoError(t, f.db.Model(&domain.Report{}).Where("product_id = ?", p.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGenerate_OtherUsersProductIsInvisible(t *testing.T) {
	f := newFixture(t, &scoringStub{})
	p := f.seed(t, 1)

	_, err := f.svc.Generate(context.Background(), 2, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListByUser_PaginatesWithProductRefs(t *testing.T) {
	f := newFixture(t, &scoringStub{})
	ctx := context.Background()
	p := f.seed(t, 1)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Generate(ctx, 1, p.ID)
		require.NoError(t, err)
	}

	result, err := f.svc.ListByUser(ctx, 1, pagination.Pagination{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, result.Reports, 2)
	assert.Equal(t, int64(3), result.Pagination.Total)
	assert.Equal(t, 2, result.Pagination.Pages)
	assert.Equal(t, "Herbal Tea", result.Reports[0].Product.Name)
}

func TestDownload(t *testing.T) {
	f := newFixture(t, &scoringStub{})
	ctx := context.Background()
	p := f.seed(t, 1)

	generated, err := f.svc.Generate(ctx, 1, p.ID)
	require.NoError(t, err)

	artifact, err := f.svc.Download(ctx, 1, generated.Report.ID)
	require.NoError(t, err)
	assert.Equal(t, "transparency-report-Herbal Tea.pdf", artifact.Filename)
	_, err = os.Stat(artifact.Path)
	require.NoError(t, err)

	_, err = f.svc.Download(ctx, 2, generated.Report.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDownload_MissingArtifact(t *testing.T) {
	f := newFixture(t, &scoringStub{})
	ctx := context.Background()
	p := f.seed(t, 1)

	generated, err := f.svc.Generate(ctx, 1, p.ID)
	require.NoError(t, err)

	path, err := f.store.Resolve(generated.DownloadURL)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	_, err = f.svc.Download(ctx, 1, generated.Report.ID)
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
}
