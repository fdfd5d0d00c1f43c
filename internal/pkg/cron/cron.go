package cron

import (
	"log"
	"time"

	"github.com/nekoi/rolechat_go_server/internal/service"
)

// Service 进程内定时任务：每日 UTC 零点把周期已过的订阅批量置为过期。
// 奖励领取本身不需要定时器，资格由查询当日流水推导
type Service struct {
	planService *service.PlanService
	stopChan    chan struct{}
}

func NewService(planService *service.PlanService) *Service {
	return &Service{
		planService: planService,
		stopChan:    make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runPlanExpiry()
	log.Println("Cron service started (plan expiry sweep)")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

// runPlanExpiry 每日订阅过期扫描
func (s *Service) runPlanExpiry() {
	now := time.Now().UTC()
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	timer := time.NewTimer(nextMidnight.Sub(now))

	for {
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.expireLapsedPlans()
			timer.Reset(24 * time.Hour)
		}
	}
}

// expireLapsedPlans 把周期已过但状态未更新的订阅置为 expired
func (s *Service) expireLapsedPlans() {
	log.Println("Starting plan expiry sweep...")
	count, err := s.planService.ExpireLapsed()
	if err != nil {
		log.Printf("Failed to expire lapsed plans: %v", err)
		return
	}
	log.Printf("Plan expiry sweep completed, expired=%d", count)
}

// RunNow 立即执行订阅过期扫描（用于测试或手动触发）
func (s *Service) RunNow() (int64, error) {
	log.Println("Manual plan expiry sweep triggered...")
	return s.planService.ExpireLapsed()
}
