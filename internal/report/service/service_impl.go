package service

import (
	"context"
	"fmt"

	"github.com/altibbe/hedamo/internal/assessment"
	authdomain "github.com/altibbe/hedamo/internal/auth/domain"
	"github.com/altibbe/hedamo/internal/clock"
	obsmetrics "github.com/altibbe/hedamo/internal/observability/metrics"
	productdomain "github.com/altibbe/hedamo/internal/product/domain"
	"github.com/altibbe/hedamo/internal/providers/pdf"
	questiondomain "github.com/altibbe/hedamo/internal/question/domain"
	"github.com/altibbe/hedamo/internal/report/domain"
	"github.com/altibbe/hedamo/internal/storage"
	"github.com/altibbe/hedamo/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	ProductRepo  productdomain.Repository
	QuestionRepo questiondomain.Repository
	UserRepo     authdomain.Repository
	Assessment   assessment.Client
	PDF          pdf.Provider
	Store        *storage.Store
	Metrics      *obsmetrics.Metrics
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	productRepo  productdomain.Repository
	questionRepo questiondomain.Repository
	userRepo     authdomain.Repository
	assessment   assessment.Client
	pdf          pdf.Provider
	store        *storage.Store
	metrics      *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("report.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		productRepo:  p.ProductRepo,
		questionRepo: p.QuestionRepo,
		userRepo:     p.UserRepo,
		assessment:   p.Assessment,
		pdf:          p.PDF,
		store:        p.Store,
		metrics:      p.Metrics,
	}
}

func (s *Service) Generate(ctx context.Context, userID, productID snowflake.ID) (*domain.Generated, error) {
	product, err := s.productRepo.FindByID(ctx, s.db, userID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	questions, err := s.questionRepo.ListByProduct(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	flat, err := s.questionRepo.ListAllByProduct(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}

	scores := s.computeScores(ctx, product, flat)
	if err := s.productRepo.UpdateScores(ctx, s.db, productID, scores, s.clock.Now().UTC()); err != nil {
		return nil, err
	}

	owner, err := s.userRepo.FindByID(ctx, s.db, int64(product.SubmittedBy))
	if err != nil {
		return nil, err
	}

	data := s.reportData(product, owner, questions, scores)
	document, err := s.pdf.RenderReport(ctx, data)
	if err != nil {
		return nil, err
	}

	// The report row exists only once the artifact is on disk; a failed
	// write leaves no dangling record.
	url, err := s.store.SaveArtifact(ctx, fmt.Sprintf("transparency-report-%s", productID), document)
	if err != nil {
		return nil, err
	}

	report := &domain.Report{
		ID:          s.genID.Generate(),
		ProductID:   productID,
		GeneratedBy: userID,
		ReportURL:   url,
		Score:       scores.Transparency,
		Summary:     fmt.Sprintf("Transparency report for %s", product.Name),
		CreatedAt:   s.clock.Now().UTC(),
	}
	if err := s.repo.Create(ctx, s.db, report); err != nil {
		return nil, err
	}

	s.metrics.RecordReportGenerated(ctx)
	s.log.Info("report generated",
		zap.String("product_id", productID.String()),
		zap.String("report_id", report.ID.String()),
	)

	return &domain.Generated{
		Report:      *report,
		DownloadURL: url,
	}, nil
}

// computeScores asks the assessment service for the four dimensions. On
// failure the report proceeds without scores; the product keeps whatever
// null values come back.
func (s *Service) computeScores(ctx context.Context, product *productdomain.Product, questions []questiondomain.Question) productdomain.Scores {
	snapshots := make([]assessment.QuestionSnapshot, 0, len(questions))
	for _, q := range questions {
		answers := make([]assessment.AnswerValue, 0, len(q.Answers))
		for _, a := range q.Answers {
			answers = append(answers, assessment.AnswerValue{Value: a.Value})
		}
		snapshots = append(snapshots, assessment.QuestionSnapshot{
			Text:     q.Text,
			Category: q.Category,
			Answers:  answers,
		})
	}

	result, err := s.assessment.TransparencyScore(ctx, assessment.ScoreRequest{
		Product: assessment.ProductInfo{
			Name:         product.Name,
			Category:     product.Category,
			Manufacturer: product.Manufacturer,
			Description:  deref(product.Description),
			Ingredients:  deref(product.Ingredients),
		},
		Questions: snapshots,
	})
	if err != nil || result == nil {
		s.log.Warn("transparency scoring failed",
			zap.String("product_id", product.ID.String()),
			zap.Error(err),
		)
		return productdomain.Scores{}
	}

	return productdomain.Scores{
		Transparency:  result.Transparency,
		Health:        result.Health,
		Environmental: result.Environmental,
		Social:        result.Social,
	}
}

func (s *Service) reportData(product *productdomain.Product, owner *authdomain.User, questions []questiondomain.Question, scores productdomain.Scores) pdf.ReportData {
	data := pdf.ReportData{
		GeneratedOn:        s.clock.Now().UTC().Format("January 2, 2006"),
		ProductName:        product.Name,
		Category:           product.Category,
		Manufacturer:       product.Manufacturer,
		Description:        deref(product.Description),
		Ingredients:        deref(product.Ingredients),
		TransparencyScore:  scores.Transparency,
		HealthScore:        scores.Health,
		EnvironmentalScore: scores.Environmental,
		SocialScore:        scores.Social,
	}
	if owner != nil {
		data.SubmittedBy = owner.Name
		data.Company = deref(owner.Company)
	}

	data.Questions = make([]pdf.QA, 0, len(questions))
	for _, q := range questions {
		qa := toQA(q)
		qa.FollowUps = make([]pdf.QA, 0, len(q.FollowUps))
		for _, f := range q.FollowUps {
			qa.FollowUps = append(qa.FollowUps, toQA(f))
		}
		data.Questions = append(data.Questions, qa)
	}
	return data
}

func toQA(q questiondomain.Question) pdf.QA {
	qa := pdf.QA{Text: q.Text}
	if len(q.Answers) > 0 {
		qa.Answered = true
		qa.Answer = q.Answers[0].Value
	}
	return qa
}

func (s *Service) ListByProduct(ctx context.Context, userID, productID snowflake.ID) ([]domain.Report, error) {
	product, err := s.productRepo.FindByID(ctx, s.db, userID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return s.repo.ListByProduct(ctx, s.db, productID)
}

func (s *Service) ListByUser(ctx context.Context, userID snowflake.ID, page pagination.Pagination) (*domain.ListResult, error) {
	page.Normalize()

	reports, total, err := s.repo.ListByUser(ctx, s.db, userID, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}

	items := make([]domain.UserReport, 0, len(reports))
	for _, rep := range reports {
		item := domain.UserReport{Report: rep}
		product, err := s.productRepo.FindByID(ctx, s.db, userID, rep.ProductID)
		if err != nil {
			return nil, err
		}
		if product != nil {
			item.Product = domain.ProductRef{
				ID:           product.ID,
				Name:         product.Name,
				Category:     product.Category,
				Manufacturer: product.Manufacturer,
			}
		}
		items = append(items, item)
	}

	return &domain.ListResult{
		Reports:    items,
		Pagination: pagination.BuildPageInfo(page, total),
	}, nil
}

func (s *Service) Download(ctx context.Context, userID, reportID snowflake.ID) (*domain.Artifact, error) {
	report, err := s.repo.FindByID(ctx, s.db, userID, reportID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, domain.ErrNotFound
	}

	product, err := s.productRepo.FindByID(ctx, s.db, userID, report.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	path, err := s.store.Resolve(report.ReportURL)
	if err != nil {
		return nil, domain.ErrFileNotFound
	}

	return &domain.Artifact{
		Path:     path,
		Filename: fmt.Sprintf("transparency-report-%s.pdf", product.Name),
	}, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
