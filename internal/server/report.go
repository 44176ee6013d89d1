package server

import (
	"net/http"

	productdomain "github.com/altibbe/hedamo/internal/product/domain"
	reportdomain "github.com/altibbe/hedamo/internal/report/domain"
	"github.com/altibbe/hedamo/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

func (s *Server) GenerateReport(c *gin.Context) {
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

	generated, err := s.reportSvc.Generate(c.Request.Context(), userID, productID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Report generated successfully",
		"data": gin.H{
			"report":      generated.Report,
			"downloadUrl": generated.DownloadURL,
		},
	})
}

func (s *Server) ListProductReports(c *gin.Context) {
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

	reports, err := s.reportSvc.ListByProduct(c.Request.Context(), userID, productID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"reports": reports},
	})
}

func (s *Server) ListReports(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.reportSvc.ListByUser(c.Request.Context(), userID, page)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

func (s *Server) DownloadReport(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	reportID, err := parseID(c.Param("reportId"))
	if err != nil {
		AbortWithError(c, reportdomain.ErrNotFound)
		return
	}

	artifact, err := s.reportSvc.Download(c.Request.Context(), userID, reportID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.FileAttachment(artifact.Path, artifact.Filename)
}
