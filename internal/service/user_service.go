package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/nekoi/rolechat_go_server/config"
	"github.com/nekoi/rolechat_go_server/internal/model"
	"github.com/nekoi/rolechat_go_server/internal/model/dto"
	"github.com/nekoi/rolechat_go_server/internal/repository"
)

type UserService struct {
	userRepo      *repository.UserRepository
	creditService *CreditService
	planService   *PlanService
	cfg           *config.Config
}

func NewUserService(userRepo *repository.UserRepository, creditService *CreditService, planService *PlanService, cfg *config.Config) *UserService {
	return &UserService{
		userRepo:      userRepo,
		creditService: creditService,
		planService:   planService,
		cfg:           cfg,
	}
}

// GetProfile 获取用户详情，附带余额和套餐档位
func (s *UserService) GetProfile(userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return s.buildProfile(user)
}

// UpdateProfile 更新用户信息
func (s *UserService) UpdateProfile(userID int64, req *dto.UpdateProfileRequest) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// 检查用户名是否已被占用
	if req.Username != nil && *req.Username != user.Username {
		exists, err := s.userRepo.ExistsByUsername(*req.Username)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrUsernameExists
		}
		user.Username = *req.Username
	}

	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	return s.buildProfile(user)
}

func (s *UserService) buildProfile(user *model.User) (*dto.UserInfo, error) {
	info := buildUserInfo(user)
	info.CreatedAt = user.CreatedAt.Format(time.RFC3339)

	balance, err := s.creditService.GetBalance(user.ID)
	if err != nil {
		return nil, err
	}
	info.Balance = &balance

	// 没有生效订阅的用户按 FREE 展示
	info.PlanTier = model.TierFree
	plan, err := s.planService.GetActivePlan(user.ID)
	if err != nil {
		return nil, err
	}
	if plan != nil {
		info.PlanTier = plan.Tier
	}

	return info, nil
}
