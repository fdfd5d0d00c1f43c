package main

import (
	"context"
	"fmt"
	"log"

	"github.com/nekoi/rolechat_go_server/config"
	"github.com/nekoi/rolechat_go_server/internal/api"
	"github.com/nekoi/rolechat_go_server/internal/api/handler"
	"github.com/nekoi/rolechat_go_server/internal/database"
	"github.com/nekoi/rolechat_go_server/internal/pkg/cron"
	"github.com/nekoi/rolechat_go_server/internal/pkg/email"
	"github.com/nekoi/rolechat_go_server/internal/pkg/oauth"
	"github.com/nekoi/rolechat_go_server/internal/pkg/pubsub"
	"github.com/nekoi/rolechat_go_server/internal/pkg/ws"
	"github.com/nekoi/rolechat_go_server/internal/repository"
	"github.com/nekoi/rolechat_go_server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化 WebSocket Hub
	wsHub := ws.NewHub()

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	planRepo := repository.NewPlanRepository(db)
	userPlanRepo := repository.NewUserPlanRepository(db)
	usageRepo := repository.NewUsageLogRepository(db)

	// 初始化 Service
	creditService := service.NewCreditService(db, userRepo, txRepo)
	planService := service.NewPlanService(planRepo, userPlanRepo)
	publisher := pubsub.NewPublisher(rdb)
	rewardService := service.NewRewardService(db, creditService, planService, userRepo, txRepo, userPlanRepo, publisher)
	usageService := service.NewUsageService(db, usageRepo, creditService, publisher)
	emailService := email.NewService(&cfg.Email)
	authService := service.NewAuthService(userRepo, rewardService, emailService, cfg)
	userService := service.NewUserService(userRepo, creditService, planService, cfg)

	// 初始化 Handler
	stateStore := oauth.NewStateStore(rdb)
	authHandler := handler.NewAuthHandler(authService, stateStore)
	userHandler := handler.NewUserHandler(userService)
	creditHandler := handler.NewCreditHandler(creditService, planService)
	rewardHandler := handler.NewRewardHandler(rewardService)
	usageHandler := handler.NewUsageHandler(usageService)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret, cfg.CORS)

	// 订阅积分事件并推送给在线用户
	subscriber := pubsub.NewSubscriber(rdb)
	go func() {
		err := subscriber.Subscribe(context.Background(), func(event *pubsub.CreditEvent) {
			msg := &ws.Message{Type: event.Type, Data: event}
			if err := wsHub.SendToUser(event.UserID, msg); err != nil {
				log.Printf("Failed to push credit event to user %d: %v", event.UserID, err)
			}
		})
		if err != nil {
			log.Printf("Credit event subscriber stopped: %v", err)
		}
	}()

	// 套餐到期巡检
	cronService := cron.NewService(planService)
	cronService.Start()
	log.Println("Plan expiry cron started")

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		userHandler,
		creditHandler,
		rewardHandler,
		usageHandler,
		websocketHandler,
		creditService,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
