package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/nekoi/rolechat_go_server/internal/model"
	"github.com/nekoi/rolechat_go_server/internal/repository"
)

var (
	ErrPlanNotFound     = errors.New("套餐不存在")
	ErrInvalidPlanState = errors.New("订阅状态不允许该操作")
)

// PlanService 订阅解析。奖励数额一律通过这里取套餐参考数据，
// 不在调用方写死
type PlanService struct {
	planRepo     *repository.PlanRepository
	userPlanRepo *repository.UserPlanRepository
}

func NewPlanService(planRepo *repository.PlanRepository, userPlanRepo *repository.UserPlanRepository) *PlanService {
	return &PlanService{
		planRepo:     planRepo,
		userPlanRepo: userPlanRepo,
	}
}

// GetActivePlan 用户当前生效的套餐，没有则返回 nil。
// current_period_end 已过的订阅即使 status 还是 active 也不算生效
func (s *PlanService) GetActivePlan(userID int64) (*model.Plan, error) {
	up, err := s.userPlanRepo.GetCurrent(userID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	plan, err := s.planRepo.GetByID(up.PlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// GetPlanByTier 按档位取套餐参考数据
func (s *PlanService) GetPlanByTier(tier string) (*model.Plan, error) {
	plan, err := s.planRepo.GetByTier(tier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// Activate 将 pending 订阅置为 active
func (s *PlanService) Activate(userPlanID int64) error {
	up, err := s.userPlanRepo.GetByID(userPlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPlanNotFound
		}
		return err
	}
	if up.Status != model.UserPlanStatusPending {
		return ErrInvalidPlanState
	}
	return s.userPlanRepo.UpdateStatus(userPlanID, model.UserPlanStatusActive)
}

// Cancel 取消 active 订阅（终态）
func (s *PlanService) Cancel(userPlanID int64) error {
	up, err := s.userPlanRepo.GetByID(userPlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPlanNotFound
		}
		return err
	}
	if up.Status != model.UserPlanStatusActive {
		return ErrInvalidPlanState
	}
	return s.userPlanRepo.UpdateStatus(userPlanID, model.UserPlanStatusCanceled)
}

// ExpireLapsed 把周期已过但状态未更新的订阅批量置为 expired，
// 由 cron 每日触发
func (s *PlanService) ExpireLapsed() (int64, error) {
	return s.userPlanRepo.ExpireLapsed(time.Now().UTC())
}
