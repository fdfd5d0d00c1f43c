package main

import (
	"log"

	"github.com/nekoi/rolechat_go_server/config"
	"github.com/nekoi/rolechat_go_server/internal/database"
	"github.com/nekoi/rolechat_go_server/internal/model"
	"github.com/nekoi/rolechat_go_server/internal/repository"
)

// 把 config.yaml 里的套餐种子数据写入数据库。
// 幂等，按 tier 更新已有记录，可以重复执行
func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	if len(cfg.Plans) == 0 {
		log.Fatal("No plans configured, nothing to seed")
	}

	planRepo := repository.NewPlanRepository(db)
	for _, pc := range cfg.Plans {
		plan := &model.Plan{
			Tier:                  pc.Tier,
			DailyRewardAmount:     pc.DailyRewardAmount,
			InitialGrantAmount:    pc.InitialGrantAmount,
			FirstChatRewardAmount: pc.FirstChatRewardAmount,
			Price:                 pc.Price,
		}
		if err := planRepo.Upsert(plan); err != nil {
			log.Fatalf("Failed to seed plan %s: %v", pc.Tier, err)
		}
		log.Printf("Seeded plan %s (daily=%d initial=%d first_chat=%d)",
			pc.Tier, pc.DailyRewardAmount, pc.InitialGrantAmount, pc.FirstChatRewardAmount)
	}

	log.Println("Plan seeding complete")
}
