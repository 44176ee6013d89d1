package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/altibbe/hedamo/internal/assessment"
	authdomain "github.com/altibbe/hedamo/internal/auth/domain"
	"github.com/altibbe/hedamo/internal/config"
	"github.com/altibbe/hedamo/internal/observability"
	productdomain "github.com/altibbe/hedamo/internal/product/domain"
	questiondomain "github.com/altibbe/hedamo/internal/question/domain"
	"github.com/altibbe/hedamo/internal/ratelimit"
	reportdomain "github.com/altibbe/hedamo/internal/report/domain"
	"github.com/altibbe/hedamo/internal/storage"
	"github.com/altibbe/hedamo/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testToken = "good-token"

type fakeAuthService struct {
	registerErr error
	loginErr    error
}

func (f *fakeAuthService) Register(ctx context.Context, req authdomain.RegisterRequest) (*authdomain.AuthResult, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &authdomain.AuthResult{
		Token: testToken,
		User:  authdomain.UserView{ID: "1", Email: req.Email, Name: req.Name},
	}, nil
}

func (f *fakeAuthService) Login(ctx context.Context, req authdomain.LoginRequest) (*authdomain.AuthResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &authdomain.AuthResult{
		Token: testToken,
		User:  authdomain.UserView{ID: "1", Email: req.Email},
	}, nil
}

func (f *fakeAuthService) Authenticate(ctx context.Context, token string) (*authdomain.Identity, error) {
	if token != testToken {
		return nil, authdomain.ErrInvalidToken
	}
	return &authdomain.Identity{UserID: "1", Email: "jamie@example.com"}, nil
}

func (f *fakeAuthService) CurrentUser(ctx context.Context, userID string) (*authdomain.UserView, error) {
	return &authdomain.UserView{ID: userID, Email: "jamie@example.com", Name: "Jamie"}, nil
}

type fakeProductService struct {
	createErr   error
	submitErr   error
	submitCalls int
}

func (f *fakeProductService) Create(ctx context.Context, userID snowflake.ID, req productdomain.CreateRequest) (*productdomain.Product, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &productdomain.Product{ID: 42, SubmittedBy: userID, Name: req.Name, Status: productdomain.StatusDraft}, nil
}

func (f *fakeProductService) List(ctx context.Context, userID snowflake.ID, req productdomain.ListRequest) (*productdomain.ListResult, error) {
	return &productdomain.ListResult{Products: []productdomain.Summary{}}, nil
}

func (f *fakeProductService) Get(ctx context.Context, userID, id snowflake.ID) (*productdomain.Detail, error) {
	return nil, productdomain.ErrNotFound
}

func (f *fakeProductService) Update(ctx context.Context, userID, id snowflake.ID, req productdomain.UpdateRequest) (*productdomain.Product, error) {
	return nil, productdomain.ErrNotFound
}

func (f *fakeProductService) SetImage(ctx context.Context, userID, id snowflake.ID, imageURL string) (*productdomain.Product, error) {
	return nil, productdomain.ErrNotFound
}

func (f *fakeProductService) Delete(ctx context.Context, userID, id snowflake.ID) error {
	return productdomain.ErrNotFound
}

func (f *fakeProductService) Submit(ctx context.Context, userID, id snowflake.ID) (*productdomain.Product, error) {
	f.submitCalls++
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &productdomain.Product{ID: id, SubmittedBy: userID, Status: productdomain.StatusSubmitted}, nil
}

type fakeQuestionService struct {
	generateErr error
}

func (f *fakeQuestionService) ListByProduct(ctx context.Context, userID, productID snowflake.ID) ([]questiondomain.Question, error) {
	return []questiondomain.Question{}, nil
}

func (f *fakeQuestionService) SubmitAnswer(ctx context.Context, userID, questionID snowflake.ID, value string) (*questiondomain.Answer, error) {
	return &questiondomain.Answer{ID: 7, QuestionID: questionID, Value: value}, nil
}

func (f *fakeQuestionService) UpdateAnswer(ctx context.Context, userID, questionID snowflake.ID, value string) (*questiondomain.Answer, error) {
	return nil, questiondomain.ErrAnswerNotFound
}

func (f *fakeQuestionService) DeleteAnswer(ctx context.Context, userID, questionID snowflake.ID) error {
	return questiondomain.ErrAnswerNotFound
}

func (f *fakeQuestionService) ListAnswers(ctx context.Context, userID, productID snowflake.ID) ([]questiondomain.Answer, error) {
	return []questiondomain.Answer{}, nil
}

func (f *fakeQuestionService) GenerateAdditional(ctx context.Context, userID, productID snowflake.ID) (int, error) {
	if f.generateErr != nil {
		return 0, f.generateErr
	}
	return 3, nil
}

type fakeReportService struct{}

func (f *fakeReportService) Generate(ctx context.Context, userID, productID snowflake.ID) (*reportdomain.Generated, error) {
	return nil, reportdomain.ErrNotFound
}

func (f *fakeReportService) ListByProduct(ctx context.Context, userID, productID snowflake.ID) ([]reportdomain.Report, error) {
	return []reportdomain.Report{}, nil
}

func (f *fakeReportService) ListByUser(ctx context.Context, userID snowflake.ID, page pagination.Pagination) (*reportdomain.ListResult, error) {
	return &reportdomain.ListResult{Reports: []reportdomain.UserReport{}}, nil
}

func (f *fakeReportService) Download(ctx context.Context, userID, reportID snowflake.ID) (*reportdomain.Artifact, error) {
	return nil, reportdomain.ErrNotFound
}

type fakeAssessment struct {
	healthErr error
}

func (f *fakeAssessment) GenerateQuestions(ctx context.Context, req assessment.GenerateRequest) ([]assessment.GeneratedQuestion, error) {
	return []assessment.GeneratedQuestion{{Text: "Generated"}}, nil
}

func (f *fakeAssessment) TransparencyScore(ctx context.Context, req assessment.ScoreRequest) (*assessment.Scores, error) {
	return &assessment.Scores{}, nil
}

func (f *fakeAssessment) Health(ctx context.Context) (map[string]any, error) {
	if f.healthErr != nil {
		return nil, f.healthErr
	}
	return map[string]any{"status": "healthy"}, nil
}

type fakeLimiter struct {
	denyAfter  int
	retryAfter time.Duration
	seen       int
}

func (f *fakeLimiter) Allow(ctx context.Context, key string) (*ratelimit.Result, error) {
	f.seen++
	if f.denyAfter > 0 && f.seen > f.denyAfter {
		return &ratelimit.Result{Allowed: false, RetryAfter: f.retryAfter}, nil
	}
	return &ratelimit.Result{Allowed: true, Remaining: 1}, nil
}

type testServer struct {
	engine   *gin.Engine
	auth     *fakeAuthService
	product  *fakeProductService
	question *fakeQuestionService
	ai       *fakeAssessment
	limiter  *fakeLimiter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := storage.New(config.Config{UploadDir: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)

	ts := &testServer{
		auth:     &fakeAuthService{},
		product:  &fakeProductService{},
		question: &fakeQuestionService{},
		ai:       &fakeAssessment{},
		limiter:  &fakeLimiter{},
	}

	srv := NewServer(Params{
		Gin:         NewEngine(observability.Config{}),
		Cfg:         config.Config{},
		Log:         zap.NewNop(),
		AuthSvc:     ts.auth,
		ProductSvc:  ts.product,
		QuestionSvc: ts.question,
		ReportSvc:   &fakeReportService{},
		Assessment:  ts.ai,
		Store:       store,
		Limiter:     ts.limiter,
		Metrics:     nil,
	})
	ts.engine = srv.Engine()
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload
}

func TestProtectedRouteRequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/products", "", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	payload := decode(t, w)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "Unauthorized", payload["message"])
}

func TestRateLimitResponse(t *testing.T) {
	ts := newTestServer(t)
	ts.limiter.denyAfter = 1
	ts.limiter.retryAfter = 7 * time.Second

	w := ts.do(t, http.MethodGet, "/api/v1/products", "", true)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/products", "", true)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "7", w.Header().Get("Retry-After"))

	payload := decode(t, w)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "Too many requests. Please try again later.", payload["message"])
	assert.Equal(t, float64(7), payload["retryAfter"])
}

type brokenLimiter struct{}

func (b *brokenLimiter) Allow(ctx context.Context, key string) (*ratelimit.Result, error) {
	return nil, errors.New("redis unreachable")
}

func TestRateLimitOnLimiterFailure(t *testing.T) {
	ts := newTestServer(t)

	store, err := storage.New(config.Config{UploadDir: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)
	srv := NewServer(Params{
		Gin:         NewEngine(observability.Config{}),
		Cfg:         config.Config{},
		Log:         zap.NewNop(),
		AuthSvc:     ts.auth,
		ProductSvc:  ts.product,
		QuestionSvc: ts.question,
		ReportSvc:   &fakeReportService{},
		Assessment:  ts.ai,
		Store:       store,
		Limiter:     &brokenLimiter{},
		Metrics:     nil,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestCreateProduct(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/products",
		`{"name":"Herbal Tea","category":"beverages","manufacturer":"Acme"}`, true)
	require.Equal(t, http.StatusCreated, w.Code)

	payload := decode(t, w)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "Product created successfully", payload["message"])
}

func TestCreateProduct_ValidationMessage(t *testing.T) {
	ts := newTestServer(t)
	ts.product.createErr = productdomain.ErrInvalidName

	w := ts.do(t, http.MethodPost, "/api/v1/products",
		`{"name":"x","category":"beverages","manufacturer":"Acme"}`, true)
	require.Equal(t, http.StatusBadRequest, w.Code)

	payload := decode(t, w)
	assert.Equal(t, "Product name must be at least 2 characters long", payload["message"])
}

func TestSubmitProduct_UnansweredGuard(t *testing.T) {
	ts := newTestServer(t)
	ts.product.submitErr = productdomain.ErrUnansweredQuestions

	w := ts.do(t, http.MethodPost, "/api/v1/products/42/submit", "", true)
	require.Equal(t, http.StatusBadRequest, w.Code)

	payload := decode(t, w)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "Please answer all required questions before submitting", payload["message"])
	assert.Equal(t, 1, ts.product.submitCalls)
}

func TestSubmitProduct_UnparsableIDIsNotFound(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/products/not-a-number/submit", "", true)
	require.Equal(t, http.StatusNotFound, w.Code)

	payload := decode(t, w)
	assert.Equal(t, "Product not found", payload["message"])
	assert.Zero(t, ts.product.submitCalls)
}

func TestGenerateAdditionalQuestions_UpstreamFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.question.generateErr = questiondomain.ErrGeneration

	w := ts.do(t, http.MethodPost, "/api/v1/questions/product/42/generate", "", true)
	require.Equal(t, http.StatusBadGateway, w.Code)

	payload := decode(t, w)
	assert.Equal(t, "Failed to generate additional questions", payload["message"])
}

func TestRegisterAndMe(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/auth/register",
		`{"email":"jamie@example.com","password":"hunter2hunter2","name":"Jamie"}`, false)
	require.Equal(t, http.StatusCreated, w.Code)

	payload := decode(t, w)
	assert.Equal(t, "User registered successfully", payload["message"])

	w = ts.do(t, http.MethodGet, "/api/v1/auth/me", "", true)
	require.Equal(t, http.StatusOK, w.Code)

	payload = decode(t, w)
	data := payload["data"].(map[string]any)
	user := data["user"].(map[string]any)
	assert.Equal(t, "jamie@example.com", user["email"])
}

func TestRegister_DuplicateUser(t *testing.T) {
	ts := newTestServer(t)
	ts.auth.registerErr = authdomain.ErrUserExists

	w := ts.do(t, http.MethodPost, "/api/v1/auth/register",
		`{"email":"jamie@example.com","password":"hunter2hunter2","name":"Jamie"}`, false)
	require.Equal(t, http.StatusConflict, w.Code)

	payload := decode(t, w)
	assert.Equal(t, "User already exists", payload["message"])
}

func TestAIHealth_Unavailable(t *testing.T) {
	ts := newTestServer(t)
	ts.ai.healthErr = errors.New("connection refused")

	w := ts.do(t, http.MethodGet, "/api/v1/ai/health", "", true)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	payload := decode(t, w)
	assert.Equal(t, "AI service is unavailable", payload["message"])
}

func TestHealthEndpointSkipsAdmission(t *testing.T) {
	ts := newTestServer(t)
	ts.limiter.denyAfter = 0

	w := ts.do(t, http.MethodGet, "/health", "", false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, ts.limiter.seen)
}
