package api

import (
	"errors"
	"net/http"
	"resalelens/internal/entity"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// GetSubscription 查询当前用户的套餐与剩余额度
func (h *HTTPHandler) GetSubscription(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	sub, err := h.repo.GetSubscription(c.Request.Context(), user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeSubscriptionNotFound, "subscription not found")
			return
		}
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to load subscription")
		InternalError(c, "failed to load subscription")
		return
	}

	c.JSON(http.StatusOK, sub)
}

// ListPlans 返回套餐目录
func (h *HTTPHandler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"plans": entity.Plans})
}

type checkoutRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
}

// CreateCheckout 创建升级结算会话。支付网关尚未接入，仅校验套餐后返回
// 待跳转的占位信息。
func (h *HTTPHandler) CreateCheckout(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	planID := strings.ToLower(strings.TrimSpace(req.PlanID))
	var plan *entity.Plan
	for i := range entity.Plans {
		if entity.Plans[i].ID == planID {
			plan = &entity.Plans[i]
			break
		}
	}
	if plan == nil {
		NotFound(c, ErrCodePlanNotFound, "unknown plan")
		return
	}
	if plan.ID == entity.PlanFree {
		BadRequest(c, ErrCodeInvalidRequest, "free plan does not require checkout")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"plan_id": plan.ID,
		"status":  "pending_payment",
	})
}
