package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/nekoi/rolechat_go_server/internal/api/middleware"
	"github.com/nekoi/rolechat_go_server/internal/model"
	"github.com/nekoi/rolechat_go_server/internal/model/dto"
	"github.com/nekoi/rolechat_go_server/internal/pkg/response"
	"github.com/nekoi/rolechat_go_server/internal/service"
)

type CreditHandler struct {
	creditService *service.CreditService
	planService   *service.PlanService
}

func NewCreditHandler(creditService *service.CreditService, planService *service.PlanService) *CreditHandler {
	return &CreditHandler{
		creditService: creditService,
		planService:   planService,
	}
}

// GetBalance 查询当前余额
// GET /api/v1/credits/balance
func (h *CreditHandler) GetBalance(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	balance, err := h.creditService.GetBalance(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	tier := model.TierFree
	if plan, err := h.planService.GetActivePlan(userID); err == nil && plan != nil {
		tier = plan.Tier
	}

	response.Success(c, &dto.BalanceInfo{
		Balance:  balance,
		PlanTier: tier,
	})
}

// ListTransactions 分页查询积分流水
// GET /api/v1/credits/transactions
func (h *CreditHandler) ListTransactions(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	items, total, err := h.creditService.GetHistory(userID, &req)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, req.Page, req.PageSize, items)
}
