package service

import (
	"context"
	"strings"

	"github.com/altibbe/hedamo/internal/assessment"
	"github.com/altibbe/hedamo/internal/clock"
	"github.com/altibbe/hedamo/internal/product/domain"
	questiondomain "github.com/altibbe/hedamo/internal/question/domain"
	reportdomain "github.com/altibbe/hedamo/internal/report/domain"
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
	QuestionRepo questiondomain.Repository
	ReportRepo   reportdomain.Repository
	Assessment   assessment.Client
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	questionRepo questiondomain.Repository
	reportRepo   reportdomain.Repository
	assessment   assessment.Client
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("product.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		questionRepo: p.QuestionRepo,
		reportRepo:   p.ReportRepo,
		assessment:   p.Assessment,
	}
}

func (s *Service) Create(ctx context.Context, userID snowflake.ID, req domain.CreateRequest) (*domain.Product, error) {
	name := strings.TrimSpace(req.Name)
	if len(name) < 2 {
		return nil, domain.ErrInvalidName
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		return nil, domain.ErrInvalidCategory
	}
	manufacturer := strings.TrimSpace(req.Manufacturer)
	if manufacturer == "" {
		return nil, domain.ErrInvalidManufacturer
	}

	now := s.clock.Now().UTC()
	p := &domain.Product{
		ID:           s.genID.Generate(),
		SubmittedBy:  userID,
		Name:         name,
		Category:     category,
		Manufacturer: manufacturer,
		Description:  trimPtr(req.Description),
		Ingredients:  trimPtr(req.Ingredients),
		Barcode:      trimPtr(req.Barcode),
		Status:       domain.StatusDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, s.db, p); err != nil {
		return nil, err
	}

	// The product exists regardless of whether the assessment service is
	// reachable; the questionnaire can be generated again later.
	s.generateInitialQuestions(ctx, p)

	return p, nil
}

func (s *Service) generateInitialQuestions(ctx context.Context, p *domain.Product) {
	generated, err := s.assessment.GenerateQuestions(ctx, assessment.GenerateRequest{
		Product: productInfo(p),
		Type:    assessment.TypeInitial,
	})
	if err != nil {
		s.log.Warn("initial question generation failed",
			zap.String("product_id", p.ID.String()),
			zap.Error(err),
		)
		return
	}
	if len(generated) == 0 {
		return
	}

	now := s.clock.Now().UTC()
	questions := make([]questiondomain.Question, 0, len(generated))
	for i, g := range generated {
		questions = append(questions, questiondomain.Question{
			ID:         s.genID.Generate(),
			ProductID:  p.ID,
			Text:       g.Text,
			Type:       questionType(g.Type),
			Category:   questionCategory(g.Category, "general"),
			IsRequired: g.IsRequired,
			Order:      i + 1,
			CreatedAt:  now,
		})
	}
	if err := s.questionRepo.CreateBatch(ctx, s.db, questions); err != nil {
		s.log.Warn("persisting generated questions failed",
			zap.String("product_id", p.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) List(ctx context.Context, userID snowflake.ID, req domain.ListRequest) (*domain.ListResult, error) {
	req.Normalize()

	items, total, err := s.repo.List(ctx, s.db, userID, req)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.Summary, 0, len(items))
	for _, item := range items {
		counts, err := s.repo.CountRelated(ctx, s.db, item.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, domain.Summary{Product: item, Counts: counts})
	}

	return &domain.ListResult{
		Products:   summaries,
		Pagination: pagination.BuildPageInfo(req.Pagination, total),
	}, nil
}

func (s *Service) Get(ctx context.Context, userID, id snowflake.ID) (*domain.Detail, error) {
	p, err := s.repo.FindByID(ctx, s.db, userID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}

	questions, err := s.questionRepo.ListByProduct(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	latest, err := s.reportRepo.LatestByProduct(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	return &domain.Detail{
		Product:      *p,
		Questions:    questions,
		LatestReport: latest,
	}, nil
}

func (s *Service) Update(ctx context.Context, userID, id snowflake.ID, req domain.UpdateRequest) (*domain.Product, error) {
	name := strings.TrimSpace(req.Name)
	if len(name) < 2 {
		return nil, domain.ErrInvalidName
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		return nil, domain.ErrInvalidCategory
	}
	manufacturer := strings.TrimSpace(req.Manufacturer)
	if manufacturer == "" {
		return nil, domain.ErrInvalidManufacturer
	}

	p, err := s.repo.FindByID(ctx, s.db, userID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}

	p.Name = name
	p.Category = category
	p.Manufacturer = manufacturer
	p.Description = trimPtr(req.Description)
	p.Ingredients = trimPtr(req.Ingredients)
	p.Barcode = trimPtr(req.Barcode)
	p.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.Update(ctx, s.db, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) SetImage(ctx context.Context, userID, id snowflake.ID, imageURL string) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, s.db, userID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}

	p.ImageURL = &imageURL
	p.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.Update(ctx, s.db, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, userID, id snowflake.ID) error {
	p, err := s.repo.FindByID(ctx, s.db, userID, id)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, id)
}

// Submit moves a draft into review once every required question carries an
// answer. Re-submitting an already submitted product succeeds unchanged.
func (s *Service) Submit(ctx context.Context, userID, id snowflake.ID) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, s.db, userID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if !p.Status.CanTransition(domain.StatusSubmitted) {
		return nil, domain.ErrInvalidTransition
	}

	questions, err := s.questionRepo.ListAllByProduct(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	for _, q := range questions {
		if q.IsRequired && len(q.Answers) == 0 {
			return nil, domain.ErrUnansweredQuestions
		}
	}

	p.Status = domain.StatusSubmitted
	p.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.Update(ctx, s.db, p); err != nil {
		return nil, err
	}
	return p, nil
}

func productInfo(p *domain.Product) *assessment.ProductInfo {
	return &assessment.ProductInfo{
		Name:         p.Name,
		Category:     p.Category,
		Manufacturer: p.Manufacturer,
		Description:  ptrToString(p.Description),
		Ingredients:  ptrToString(p.Ingredients),
	}
}

func questionType(t string) questiondomain.QuestionType {
	qt := questiondomain.QuestionType(strings.ToUpper(strings.TrimSpace(t)))
	if !qt.Valid() {
		return questiondomain.TypeText
	}
	return qt
}

func questionCategory(category, fallback string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return fallback
	}
	return category
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func ptrToString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
