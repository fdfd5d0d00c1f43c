package api

import (
	"github.com/gin-gonic/gin"

	"github.com/nekoi/rolechat_go_server/config"
	"github.com/nekoi/rolechat_go_server/internal/api/handler"
	"github.com/nekoi/rolechat_go_server/internal/api/middleware"
	"github.com/nekoi/rolechat_go_server/internal/service"
)

type Router struct {
	authHandler      *handler.AuthHandler
	userHandler      *handler.UserHandler
	creditHandler    *handler.CreditHandler
	rewardHandler    *handler.RewardHandler
	usageHandler     *handler.UsageHandler
	websocketHandler *handler.WebSocketHandler
	creditService    *service.CreditService
	cfg              *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	creditHandler *handler.CreditHandler,
	rewardHandler *handler.RewardHandler,
	usageHandler *handler.UsageHandler,
	websocketHandler *handler.WebSocketHandler,
	creditService *service.CreditService,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:      authHandler,
		userHandler:      userHandler,
		creditHandler:    creditHandler,
		rewardHandler:    rewardHandler,
		usageHandler:     usageHandler,
		websocketHandler: websocketHandler,
		creditService:    creditService,
		cfg:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/verify-email", r.authHandler.VerifyEmail)
			auth.GET("/github", r.authHandler.GithubAuth)
			auth.GET("/github/callback", r.authHandler.GithubCallback)
		}

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			// 用户
			user := authenticated.Group("/user")
			{
				user.GET("/profile", r.userHandler.GetProfile)
				user.PUT("/profile", r.userHandler.UpdateProfile)
			}

			// 积分
			credits := authenticated.Group("/credits")
			{
				credits.GET("/balance", r.creditHandler.GetBalance)
				credits.GET("/transactions", r.creditHandler.ListTransactions)
			}

			// 奖励
			rewards := authenticated.Group("/rewards")
			{
				rewards.POST("/daily/claim", r.rewardHandler.ClaimDaily)
				rewards.GET("/daily/status", r.rewardHandler.DailyStatus)
				rewards.POST("/first-chat/claim", r.rewardHandler.ClaimFirstChat)
				rewards.GET("/first-chat/status", r.rewardHandler.FirstChatStatus)
			}

			// 聊天计量，入口处先做余额预检
			authenticated.POST("/usage", middleware.CreditCheck(r.creditService, 1), r.usageHandler.RecordUsage)
			authenticated.GET("/usage", r.usageHandler.ListUsage)
		}
	}

	return engine
}
