package assessment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/altibbe/hedamo/internal/config"
	obsmetrics "github.com/altibbe/hedamo/internal/observability/metrics"
	"go.uber.org/zap"
)

// GenerationType selects the question-generation mode.
type GenerationType string

const (
	TypeInitial    GenerationType = "initial"
	TypeFollowup   GenerationType = "followup"
	TypeAdditional GenerationType = "additional"
)

// ProductInfo is the product snapshot sent to the assessment service.
type ProductInfo struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	Manufacturer string `json:"manufacturer"`
	Description  string `json:"description,omitempty"`
	Ingredients  string `json:"ingredients,omitempty"`
}

// AnswerContext describes the question/answer pair that triggers follow-up
// generation.
type AnswerContext struct {
	Product  ProductInfo `json:"product"`
	Question string      `json:"question"`
	Answer   string      `json:"answer"`
	Category string      `json:"category"`
}

// AnswerValue mirrors the flattened answer rows the scoring endpoint expects.
type AnswerValue struct {
	Value string `json:"value"`
}

// QuestionSnapshot is an existing question with its answers, used both as
// generation context and as scoring input.
type QuestionSnapshot struct {
	Text     string        `json:"text"`
	Category string        `json:"category"`
	Answers  []AnswerValue `json:"answers"`
}

// GenerateRequest is the body of POST /generate-questions.
type GenerateRequest struct {
	Product           *ProductInfo       `json:"product,omitempty"`
	Context           *AnswerContext     `json:"context,omitempty"`
	ExistingQuestions []QuestionSnapshot `json:"existingQuestions,omitempty"`
	Type              GenerationType     `json:"type"`
}

// GeneratedQuestion is one candidate question returned by the service.
type GeneratedQuestion struct {
	Text       string `json:"text"`
	Type       string `json:"type"`
	Category   string `json:"category"`
	IsRequired bool   `json:"isRequired"`
}

// ScoreRequest is the body of POST /transparency-score.
type ScoreRequest struct {
	Product   ProductInfo        `json:"product"`
	Questions []QuestionSnapshot `json:"questions"`
}

// Scores holds the four score fractions; absent values mean the service did
// not score that dimension.
type Scores struct {
	Transparency  *float64 `json:"transparency"`
	Health        *float64 `json:"health"`
	Environmental *float64 `json:"environmental"`
	Social        *float64 `json:"social"`
}

// Client talks to the external assessment service.
type Client interface {
	GenerateQuestions(ctx context.Context, req GenerateRequest) ([]GeneratedQuestion, error)
	TransparencyScore(ctx context.Context, req ScoreRequest) (*Scores, error)
	Health(ctx context.Context) (map[string]any, error)
}

type httpClient struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
	log     *zap.Logger
	metrics *obsmetrics.Metrics
}

// NewHTTPClient builds the production client. Every call is bounded by the
// configured timeout; the service has no latency guarantees of its own.
func NewHTTPClient(cfg config.Config, log *zap.Logger, metrics *obsmetrics.Metrics) Client {
	timeout := cfg.AssessmentTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &httpClient{
		baseURL: cfg.AssessmentURL,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
		log:     log.Named("assessment.client"),
		metrics: metrics,
	}
}

type generateResponse struct {
	Success   bool                `json:"success"`
	Questions []GeneratedQuestion `json:"questions"`
	Count     int                 `json:"count"`
	Message   string              `json:"message"`
}

func (c *httpClient) GenerateQuestions(ctx context.Context, req GenerateRequest) ([]GeneratedQuestion, error) {
	var resp generateResponse
	err := c.post(ctx, "/generate-questions", req, &resp)
	c.metrics.RecordAssessmentCall(ctx, "generate_questions", err == nil)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("assessment service rejected generation: %s", resp.Message)
	}
	return resp.Questions, nil
}

type scoreResponse struct {
	Success bool    `json:"success"`
	Scores  *Scores `json:"scores"`
	Message string  `json:"message"`
}

func (c *httpClient) TransparencyScore(ctx context.Context, req ScoreRequest) (*Scores, error) {
	var resp scoreResponse
	err := c.post(ctx, "/transparency-score", req, &resp)
	c.metrics.RecordAssessmentCall(ctx, "transparency_score", err == nil)
	if err != nil {
		return nil, err
	}
	if !resp.Success || resp.Scores == nil {
		return nil, fmt.Errorf("assessment service rejected scoring: %s", resp.Message)
	}
	return resp.Scores, nil
}

func (c *httpClient) Health(ctx context.Context) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}

	res, err := c.client.Do(httpReq)
	c.metrics.RecordAssessmentCall(ctx, "health", err == nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("assessment service health: status %d", res.StatusCode)
	}

	var payload map[string]any
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *httpClient) post(ctx context.Context, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	res, err := c.client.Do(httpReq)
	if err != nil {
		c.log.Warn("assessment call failed",
			zap.String("path", path),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return err
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		c.log.Warn("assessment call rejected",
			zap.String("path", path),
			zap.Int("status", res.StatusCode),
		)
		return fmt.Errorf("assessment service %s: status %d", path, res.StatusCode)
	}

	return json.Unmarshal(raw, out)
}
