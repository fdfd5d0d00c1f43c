package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/nekoi/rolechat_go_server/internal/pkg/response"
	"github.com/nekoi/rolechat_go_server/internal/service"
)

// CreditCheck 余额预检中间件。只做提前拦截，
// 权威校验在账本事务内，被并发打穿时由账本兜底
func CreditCheck(creditService *service.CreditService, minCredits int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		enough, err := creditService.HasEnoughCredits(userID, minCredits)
		if err != nil {
			response.ServerError(c, "积分检查失败")
			c.Abort()
			return
		}

		if !enough {
			response.CreditsError(c, "积分不足，请充值或领取每日奖励")
			c.Abort()
			return
		}

		c.Next()
	}
}
