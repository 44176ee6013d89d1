package server

import (
	"errors"
	"fmt"
	"net/http"

	authdomain "github.com/altibbe/hedamo/internal/auth/domain"
	productdomain "github.com/altibbe/hedamo/internal/product/domain"
	questiondomain "github.com/altibbe/hedamo/internal/question/domain"
	reportdomain "github.com/altibbe/hedamo/internal/report/domain"
	"github.com/altibbe/hedamo/internal/storage"
	"github.com/gin-gonic/gin"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrNoFile         = errors.New("no_file")
)

// RateLimitError is produced by the admission middleware; it carries the
// seconds the caller should wait before retrying.
type RateLimitError struct {
	RetryAfter int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %ds", e.RetryAfter)
}

// UpstreamError wraps a failing assessment-service call on endpoints whose
// whole purpose is that call. Status defaults to 502.
type UpstreamError struct {
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ErrorHandlingMiddleware converts errors collected by handlers into the
// response envelope. Handlers abort with an error; nothing else writes
// failure bodies.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		var rle *RateLimitError
		if errors.As(lastErr.Err, &rle) {
			c.Header("Retry-After", fmt.Sprintf("%d", rle.RetryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":    false,
				"message":    "Too many requests. Please try again later.",
				"retryAfter": rle.RetryAfter,
			})
			return
		}

		status, message := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, gin.H{
			"success": false,
			"message": message,
		})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, string) {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		status := upstream.Status
		if status == 0 {
			status = http.StatusBadGateway
		}
		return status, upstream.Message
	}

	switch {
	case errors.Is(err, authdomain.ErrInvalidEmail):
		return http.StatusBadRequest, "Valid email is required"
	case errors.Is(err, authdomain.ErrInvalidPassword):
		return http.StatusBadRequest, "Password must be at least 8 characters long"
	case errors.Is(err, authdomain.ErrInvalidName):
		return http.StatusBadRequest, "Name is required"
	case errors.Is(err, authdomain.ErrUserExists):
		return http.StatusConflict, "User already exists"
	case errors.Is(err, authdomain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, authdomain.ErrInvalidToken), errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, authdomain.ErrNotFound):
		return http.StatusNotFound, "User not found"

	case errors.Is(err, productdomain.ErrInvalidName):
		return http.StatusBadRequest, "Product name must be at least 2 characters long"
	case errors.Is(err, productdomain.ErrInvalidCategory):
		return http.StatusBadRequest, "Category is required"
	case errors.Is(err, productdomain.ErrInvalidManufacturer):
		return http.StatusBadRequest, "Manufacturer is required"
	case errors.Is(err, productdomain.ErrUnansweredQuestions):
		return http.StatusBadRequest, "Please answer all required questions before submitting"
	case errors.Is(err, productdomain.ErrInvalidTransition):
		return http.StatusBadRequest, "Invalid status transition"
	case errors.Is(err, productdomain.ErrNotFound):
		return http.StatusNotFound, "Product not found"

	case errors.Is(err, questiondomain.ErrInvalidValue):
		return http.StatusBadRequest, "Answer value is required"
	case errors.Is(err, questiondomain.ErrNotFound):
		return http.StatusNotFound, "Question not found"
	case errors.Is(err, questiondomain.ErrAnswerNotFound):
		return http.StatusNotFound, "Answer not found"
	case errors.Is(err, questiondomain.ErrGeneration):
		return http.StatusBadGateway, "Failed to generate additional questions"

	case errors.Is(err, reportdomain.ErrNotFound):
		return http.StatusNotFound, "Report not found"
	case errors.Is(err, reportdomain.ErrFileNotFound):
		return http.StatusNotFound, "Report file not found"

	case errors.Is(err, storage.ErrUnsupportedType):
		return http.StatusBadRequest, "Only image files are allowed"
	case errors.Is(err, storage.ErrTooLarge):
		return http.StatusBadRequest, "File too large"
	case errors.Is(err, ErrNoFile):
		return http.StatusBadRequest, "No image file provided"

	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "Invalid request"
	}

	return http.StatusInternalServerError, "Internal server error"
}
