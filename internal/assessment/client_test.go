package assessment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/altibbe/hedamo/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(config.Config{
		AssessmentURL:     srv.URL,
		AssessmentTimeout: 2 * time.Second,
	}, zap.NewNop(), nil)
}

func TestGenerateQuestions(t *testing.T) {
	var got GenerateRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/generate-questions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(generateResponse{
			Success: true,
			Questions: []GeneratedQuestion{
				{Text: "Where are the ingredients sourced?", Type: "TEXT", Category: "sourcing", IsRequired: true},
			},
			Count: 1,
		})
	}))

	questions, err := client.GenerateQuestions(context.Background(), GenerateRequest{
		Product: &ProductInfo{Name: "Herbal Tea", Category: "beverages", Manufacturer: "Acme"},
		Type:    TypeInitial,
	})
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Where are the ingredients sourced?", questions[0].Text)
	assert.True(t, questions[0].IsRequired)
	assert.Equal(t, TypeInitial, got.Type)
	require.NotNil(t, got.Product)
	assert.Equal(t, "Herbal Tea", got.Product.Name)
}

func TestGenerateQuestions_RejectedBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Success: false, Message: "model unavailable"})
	}))

	_, err := client.GenerateQuestions(context.Background(), GenerateRequest{Type: TypeInitial})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model unavailable")
}

func TestGenerateQuestions_HTTPError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))

	_, err := client.GenerateQuestions(context.Background(), GenerateRequest{Type: TypeInitial})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestTransparencyScore(t *testing.T) {
	transparency := 0.82
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transparency-score", r.URL.Path)
		json.NewEncoder(w).Encode(scoreResponse{
			Success: true,
			Scores:  &Scores{Transparency: &transparency},
		})
	}))

	scores, err := client.TransparencyScore(context.Background(), ScoreRequest{
		Product: ProductInfo{Name: "Herbal Tea"},
	})
	require.NoError(t, err)
	require.NotNil(t, scores.Transparency)
	assert.InDelta(t, 0.82, *scores.Transparency, 1e-9)
	assert.Nil(t, scores.Health)
}

func TestTransparencyScore_MissingScores(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(scoreResponse{Success: true})
	}))

	_, err := client.TransparencyScore(context.Background(), ScoreRequest{})
	require.Error(t, err)
}

func TestHealth(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"status": "healthy", "model": "ready"})
	}))

	payload, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", payload["status"])
}

func TestHealth_Unavailable(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := client.Health(context.Background())
	require.Error(t, err)
}
