package api

import (
	"errors"
	"net/http"
	"resalelens/internal/entity"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CreateAnalysis 创建待处理的分析记录
func (h *HTTPHandler) CreateAnalysis(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	var req entity.AnalysisCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	imageURL := strings.TrimSpace(req.ImageURL)
	if imageURL == "" {
		MissingField(c, "image_url")
		return
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}

	analysis := &entity.DbAnalysis{
		ID:       id,
		UserID:   user.ID,
		ImageURL: imageURL,
		Status:   entity.AnalysisStatusPending,
	}

	if err := h.repo.CreateAnalysis(c.Request.Context(), analysis); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			BadRequest(c, ErrCodeInvalidRequest, "analysis id already exists")
			return
		}
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to create analysis")
		InternalError(c, "failed to create analysis")
		return
	}

	c.JSON(http.StatusCreated, analysis)
}

// ListAnalyses 分页查询当前用户的分析记录
func (h *HTTPHandler) ListAnalyses(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	var params entity.AnalysisQuery
	if err := c.ShouldBindQuery(&params); err != nil {
		InvalidPayload(c)
		return
	}
	params.UserID = user.ID

	analyses, meta, err := h.repo.ListAnalyses(c.Request.Context(), &params)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to list analyses")
		InternalError(c, "failed to list analyses")
		return
	}

	c.JSON(http.StatusOK, entity.AnalysisListResponse{
		Analyses: analyses,
		Meta:     meta,
	})
}

// GetAnalysis 查询单条分析记录
func (h *HTTPHandler) GetAnalysis(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		MissingField(c, "id")
		return
	}

	analysis, err := h.repo.GetAnalysis(c.Request.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeAnalysisNotFound, "analysis not found")
			return
		}
		logrus.WithError(err).WithField("analysis_id", id).Error("failed to load analysis")
		InternalError(c, "failed to load analysis")
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// DeleteAnalysis 删除分析记录
func (h *HTTPHandler) DeleteAnalysis(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		MissingField(c, "id")
		return
	}

	if err := h.repo.DeleteAnalysis(c.Request.Context(), id, user.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeAnalysisNotFound, "analysis not found")
			return
		}
		logrus.WithError(err).WithField("analysis_id", id).Error("failed to delete analysis")
		InternalError(c, "failed to delete analysis")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
