package server

import (
	"net/http"

	"github.com/altibbe/hedamo/internal/assessment"
	"github.com/gin-gonic/gin"
)

// The /ai endpoints are a thin passthrough to the assessment service. These
// are the only routes where an assessment failure is the response, not a
// logged degradation.

func (s *Server) AIGenerateQuestions(c *gin.Context) {
	var req assessment.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if req.Product == nil && req.Context == nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if req.Type == "" {
		req.Type = assessment.TypeInitial
	}

	questions, err := s.assessment.GenerateQuestions(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, &UpstreamError{Message: "Failed to generate questions", Err: err})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"questions": questions,
			"count":     len(questions),
		},
	})
}

func (s *Server) AITransparencyScore(c *gin.Context) {
	var req assessment.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if req.Product.Name == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	scores, err := s.assessment.TransparencyScore(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, &UpstreamError{Message: "Failed to calculate transparency score", Err: err})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"scores": scores},
	})
}

func (s *Server) AIHealth(c *gin.Context) {
	health, err := s.assessment.Health(c.Request.Context())
	if err != nil {
		AbortWithError(c, &UpstreamError{
			Status:  http.StatusServiceUnavailable,
			Message: "AI service is unavailable",
			Err:     err,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    health,
	})
}
