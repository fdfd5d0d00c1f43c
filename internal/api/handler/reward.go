package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/nekoi/rolechat_go_server/internal/api/middleware"
	"github.com/nekoi/rolechat_go_server/internal/model/dto"
	"github.com/nekoi/rolechat_go_server/internal/pkg/response"
	"github.com/nekoi/rolechat_go_server/internal/service"
)

type RewardHandler struct {
	rewardService *service.RewardService
}

func NewRewardHandler(rewardService *service.RewardService) *RewardHandler {
	return &RewardHandler{
		rewardService: rewardService,
	}
}

// ClaimDaily 领取每日奖励
// POST /api/v1/rewards/daily/claim
func (h *RewardHandler) ClaimDaily(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	resp, err := h.rewardService.ClaimDailyReward(userID)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyClaimed) {
			response.DuplicateError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "领取成功", resp)
}

// DailyStatus 查询每日奖励领取状态
// GET /api/v1/rewards/daily/status
func (h *RewardHandler) DailyStatus(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	status, err := h.rewardService.GetDailyRewardStatus(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, status)
}

// ClaimFirstChat 领取首次聊天奖励
// POST /api/v1/rewards/first-chat/claim
func (h *RewardHandler) ClaimFirstChat(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	resp, err := h.rewardService.ClaimFirstChatReward(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	// 已领取过时返回 claimed 状态而不是报错
	if resp == nil {
		response.Success(c, &dto.FirstChatRewardStatus{Claimed: true})
		return
	}

	response.SuccessWithMessage(c, "领取成功", resp)
}

// FirstChatStatus 查询首次聊天奖励领取状态
// GET /api/v1/rewards/first-chat/status
func (h *RewardHandler) FirstChatStatus(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	status, err := h.rewardService.GetFirstChatRewardStatus(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, status)
}
