package api

import (
	"errors"
	"net/http"
	"resalelens/internal/entity"
	"resalelens/internal/service"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AnalyzeImage 执行一次完整的图片分析流程。
//
// This endpoint keeps the wire contract of the original public API: flat
// {"error": "..."} bodies and its own bearer check, independent of the
// /api group middleware.
func (h *HTTPHandler) AnalyzeImage(c *gin.Context) {
	user, ok := h.analyzeRequestUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req entity.AnalyzeImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing analysis_id or image_url"})
		return
	}

	req.AnalysisID = strings.TrimSpace(req.AnalysisID)
	req.ImageURL = strings.TrimSpace(req.ImageURL)
	if req.AnalysisID == "" || req.ImageURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing analysis_id or image_url"})
		return
	}

	resp, err := h.analysisService.Analyze(c.Request.Context(), user.ID, req)
	if err != nil {
		h.writeAnalyzeError(c, req.AnalysisID, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// analyzeRequestUser 解析 Bearer Token 并加载用户。
func (h *HTTPHandler) analyzeRequestUser(c *gin.Context) (*entity.DbUser, bool) {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, false
	}
	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return nil, false
	}

	claims, err := h.authManager.ParseToken(tokenString)
	if err != nil {
		return nil, false
	}

	user, err := h.repo.GetUserByID(c.Request.Context(), claims.UserID)
	if err != nil || !user.IsActive {
		return nil, false
	}
	return user, true
}

func (h *HTTPHandler) writeAnalyzeError(c *gin.Context, analysisID string, err error) {
	logger := logrus.WithFields(logrus.Fields{"analysis_id": analysisID})

	var provErr *service.ProviderError
	switch {
	case errors.Is(err, entity.ErrInsufficientCredits):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "Insufficient credits"})
	case errors.Is(err, entity.ErrCreditConflict):
		logger.WithError(err).Warn("credit_reservation_conflict")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	case errors.Is(err, service.ErrAnalysisNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
	case errors.Is(err, service.ErrAnalysisFinalized):
		c.JSON(http.StatusConflict, gin.H{"error": "Analysis already completed"})
	case errors.As(err, &provErr):
		logger.WithError(err).WithField("stage", provErr.Stage).Error("analysis_provider_failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AI analysis failed"})
	default:
		logger.WithError(err).Error("analysis_failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
