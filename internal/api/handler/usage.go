package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nekoi/rolechat_go_server/internal/api/middleware"
	"github.com/nekoi/rolechat_go_server/internal/model/dto"
	"github.com/nekoi/rolechat_go_server/internal/pkg/response"
	"github.com/nekoi/rolechat_go_server/internal/service"
)

type UsageHandler struct {
	usageService *service.UsageService
}

func NewUsageHandler(usageService *service.UsageService) *UsageHandler {
	return &UsageHandler{
		usageService: usageService,
	}
}

// RecordUsage 记录一轮聊天消耗并扣除积分
// POST /api/v1/usage
func (h *UsageHandler) RecordUsage(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.RecordUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.usageService.RecordUsage(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrInsufficientCredits) {
			response.CreditsError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "记录成功", resp)
}

// ListUsage 分页查询聊天消耗记录
// GET /api/v1/usage
func (h *UsageHandler) ListUsage(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	logs, total, err := h.usageService.GetUsageHistory(userID, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, logs)
}
