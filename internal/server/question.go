package server

import (
	"net/http"

	productdomain "github.com/altibbe/hedamo/internal/product/domain"
	questiondomain "github.com/altibbe/hedamo/internal/question/domain"
	"github.com/gin-gonic/gin"
)

type answerRequest struct {
	Value string `json:"value"`
}

func (s *Server) ListQuestions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	productID, err := parseID(c.Param("productId"))
	if err != nil {
		AbortWithError(c, productdomain.ErrNotFound)
		return
	}

	questions, err := s.questionSvc.ListByProduct(c.Request.Context(), userID, productID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"questions": questions},
	})
}

func (s *Server) SubmitAnswer(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	questionID, err := parseID(c.Param("questionId"))
	if err != nil {
		AbortWithError(c, questiondomain.ErrNotFound)
		return
	}

	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, questiondomain.ErrInvalidValue)
		return
	}

	answer, err := s.questionSvc.SubmitAnswer(c.Request.Context(), userID, questionID, req.Value)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Answer submitted successfully",
		"data":    gin.H{"answer": answer},
	})
}

func (s *Server) UpdateAnswer(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	questionID, err := parseID(c.Param("questionId"))
	if err != nil {
		AbortWithError(c, questiondomain.ErrNotFound)
		return
	}

	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, questiondomain.ErrInvalidValue)
		return
	}

	answer, err := s.questionSvc.UpdateAnswer(c.Request.Context(), userID, questionID, req.Value)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Answer updated successfully",
		"data":    gin.H{"answer": answer},
	})
}

func (s *Server) DeleteAnswer(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	questionID, err := parseID(c.Param("questionId"))
	if err != nil {
		AbortWithError(c, questiondomain.ErrNotFound)
		return
	}

	if err := s.questionSvc.DeleteAnswer(c.Request.Context(), userID, questionID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Answer deleted successfully",
	})
}

func (s *Server) ListAnswers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	productID, err := parseID(c.Param("productId"))
	if err != nil {
		AbortWithError(c, productdomain.ErrNotFound)
		return
	}

	answers, err := s.questionSvc.ListAnswers(c.Request.Context(), userID, productID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"answers": answers},
	})
}

func (s *Server) GenerateAdditionalQuestions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	productID, err := parseID(c.Param("productId"))
	if err != nil {
		AbortWithError(c, productdomain.ErrNotFound)
		return
	}

	count, err := s.questionSvc.GenerateAdditional(c.Request.Context(), userID, productID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	message := "Additional questions generated successfully"
	if count == 0 {
		message = "No additional questions generated"
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"data":    gin.H{"questionsGenerated": count},
	})
}
