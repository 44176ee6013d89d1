package service

import (
	"context"
	"strings"

	"github.com/altibbe/hedamo/internal/assessment"
	"github.com/altibbe/hedamo/internal/clock"
	productdomain "github.com/altibbe/hedamo/internal/product/domain"
	"github.com/altibbe/hedamo/internal/question/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	ProductRepo productdomain.Repository
	Assessment  assessment.Client
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	productRepo productdomain.Repository
	assessment  assessment.Client
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("question.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		productRepo: p.ProductRepo,
		assessment:  p.Assessment,
	}
}

func (s *Service) ListByProduct(ctx context.Context, userID, productID snowflake.ID) ([]domain.Question, error) {
	if _, err := s.ownedProduct(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.repo.ListByProduct(ctx, s.db, productID)
}

func (s *Service) SubmitAnswer(ctx context.Context, userID, questionID snowflake.ID, value string) (*domain.Answer, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, domain.ErrInvalidValue
	}

	question, product, err := s.ownedQuestion(ctx, userID, questionID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	answer := &domain.Answer{
		ID:         s.genID.Generate(),
		QuestionID: question.ID,
		ProductID:  product.ID,
		Value:      value,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.UpsertAnswer(ctx, s.db, answer); err != nil {
		return nil, err
	}

	// An unreachable assessment service must not cost the caller their
	// answer; follow-ups are an enrichment.
	s.generateFollowUps(ctx, product, question, value)

	stored, err := s.repo.FindAnswer(ctx, s.db, question.ID, product.ID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return answer, nil
	}
	return stored, nil
}

func (s *Service) generateFollowUps(ctx context.Context, product *productdomain.Product, question *domain.Question, value string) {
	generated, err := s.assessment.GenerateQuestions(ctx, assessment.GenerateRequest{
		Context: &assessment.AnswerContext{
			Product:  productInfo(product),
			Question: question.Text,
			Answer:   value,
			Category: question.Category,
		},
		Type: assessment.TypeFollowup,
	})
	if err != nil {
		s.log.Warn("follow-up generation failed",
			zap.String("question_id", question.ID.String()),
			zap.Error(err),
		)
		return
	}
	if len(generated) == 0 {
		return
	}

	now := s.clock.Now().UTC()
	parentID := question.ID
	followUps := make([]domain.Question, 0, len(generated))
	for i, g := range generated {
		followUps = append(followUps, domain.Question{
			ID:         s.genID.Generate(),
			ProductID:  product.ID,
			ParentID:   &parentID,
			Text:       g.Text,
			Type:       questionType(g.Type),
			Category:   questionCategory(g.Category, "followup"),
			IsRequired: g.IsRequired,
			Order:      i + 1,
			CreatedAt:  now,
		})
	}
	if err := s.repo.CreateBatch(ctx, s.db, followUps); err != nil {
		s.log.Warn("persisting follow-up questions failed",
			zap.String("question_id", question.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) UpdateAnswer(ctx context.Context, userID, questionID snowflake.ID, value string) (*domain.Answer, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, domain.ErrInvalidValue
	}

	question, product, err := s.ownedQuestion(ctx, userID, questionID)
	if err != nil {
		return nil, err
	}

	answer, err := s.repo.FindAnswer(ctx, s.db, question.ID, product.ID)
	if err != nil {
		return nil, err
	}
	if answer == nil {
		return nil, domain.ErrAnswerNotFound
	}

	answer.Value = value
	answer.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.UpdateAnswer(ctx, s.db, answer); err != nil {
		return nil, err
	}
	return answer, nil
}

func (s *Service) DeleteAnswer(ctx context.Context, userID, questionID snowflake.ID) error {
	question, product, err := s.ownedQuestion(ctx, userID, questionID)
	if err != nil {
		return err
	}

	answer, err := s.repo.FindAnswer(ctx, s.db, question.ID, product.ID)
	if err != nil {
		return err
	}
	if answer == nil {
		return domain.ErrAnswerNotFound
	}
	return s.repo.DeleteAnswer(ctx, s.db, question.ID, product.ID)
}

func (s *Service) ListAnswers(ctx context.Context, userID, productID snowflake.ID) ([]domain.Answer, error) {
	if _, err := s.ownedProduct(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.repo.ListAnswersByProduct(ctx, s.db, productID)
}

// GenerateAdditional extends the questionnaire below everything already
// asked. The assessment call is the whole point of this operation, so its
// failure is the caller's failure too.
func (s *Service) GenerateAdditional(ctx context.Context, userID, productID snowflake.ID) (int, error) {
	product, err := s.ownedProduct(ctx, userID, productID)
	if err != nil {
		return 0, err
	}

	existing, err := s.repo.ListAllByProduct(ctx, s.db, productID)
	if err != nil {
		return 0, err
	}

	snapshots := make([]assessment.QuestionSnapshot, 0, len(existing))
	for _, q := range existing {
		snapshots = append(snapshots, questionSnapshot(q))
	}

	info := productInfo(product)
	generated, err := s.assessment.GenerateQuestions(ctx, assessment.GenerateRequest{
		Product:           &info,
		ExistingQuestions: snapshots,
		Type:              assessment.TypeAdditional,
	})
	if err != nil {
		return 0, domain.ErrGeneration
	}
	if len(generated) == 0 {
		return 0, nil
	}

	maxOrder, err := s.repo.MaxOrder(ctx, s.db, productID)
	if err != nil {
		return 0, err
	}

	now := s.clock.Now().UTC()
	questions := make([]domain.Question, 0, len(generated))
	for i, g := range generated {
		questions = append(questions, domain.Question{
			ID:         s.genID.Generate(),
			ProductID:  productID,
			Text:       g.Text,
			Type:       questionType(g.Type),
			Category:   questionCategory(g.Category, "general"),
			IsRequired: g.IsRequired,
			Order:      maxOrder + i + 1,
			CreatedAt:  now,
		})
	}
	if err := s.repo.CreateBatch(ctx, s.db, questions); err != nil {
		return 0, err
	}
	return len(questions), nil
}

func (s *Service) ownedProduct(ctx context.Context, userID, productID snowflake.ID) (*productdomain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, s.db, userID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, productdomain.ErrNotFound
	}
	return product, nil
}

// ownedQuestion resolves a question and checks the product behind it belongs
// to userID. A question on someone else's product is indistinguishable from
// a missing one.
func (s *Service) ownedQuestion(ctx context.Context, userID, questionID snowflake.ID) (*domain.Question, *productdomain.Product, error) {
	question, err := s.repo.FindByID(ctx, s.db, questionID)
	if err != nil {
		return nil, nil, err
	}
	if question == nil {
		return nil, nil, domain.ErrNotFound
	}

	product, err := s.productRepo.FindByID(ctx, s.db, userID, question.ProductID)
	if err != nil {
		return nil, nil, err
	}
	if product == nil {
		return nil, nil, domain.ErrNotFound
	}
	return question, product, nil
}

func productInfo(p *productdomain.Product) assessment.ProductInfo {
	return assessment.ProductInfo{
		Name:         p.Name,
		Category:     p.Category,
		Manufacturer: p.Manufacturer,
		Description:  ptrToString(p.Description),
		Ingredients:  ptrToString(p.Ingredients),
	}
}

func questionSnapshot(q domain.Question) assessment.QuestionSnapshot {
	answers := make([]assessment.AnswerValue, 0, len(q.Answers))
	for _, a := range q.Answers {
		answers = append(answers, assessment.AnswerValue{Value: a.Value})
	}
	return assessment.QuestionSnapshot{
		Text:     q.Text,
		Category: q.Category,
		Answers:  answers,
	}
}

func questionType(t string) domain.QuestionType {
	qt := domain.QuestionType(strings.ToUpper(strings.TrimSpace(t)))
	if !qt.Valid() {
		return domain.TypeText
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

func ptrToString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
