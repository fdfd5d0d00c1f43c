package service

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/nekoi/rolechat_go_server/internal/model"
	"github.com/nekoi/rolechat_go_server/internal/model/dto"
	"github.com/nekoi/rolechat_go_server/internal/pkg/pubsub"
	"github.com/nekoi/rolechat_go_server/internal/repository"
)

var (
	ErrAlreadyClaimed = errors.New("今日奖励已领取")
)

// FREE 套餐周期终点取一个远未来时间，免费套餐不过期
const freePlanPeriodYears = 100

// RewardService 奖励发放。"今天是否已领取"不存独立标记，
// 而是查当日（UTC）是否已有对应子类型的 SYSTEM_REWARD 流水；
// 查重和落账在同一把用户行锁下完成，并发重复领取只会成功一次
type RewardService struct {
	db            *gorm.DB
	creditService *CreditService
	planService   *PlanService
	userRepo      *repository.UserRepository
	txRepo        *repository.TransactionRepository
	userPlanRepo  *repository.UserPlanRepository
	publisher     *pubsub.Publisher
}

func NewRewardService(
	db *gorm.DB,
	creditService *CreditService,
	planService *PlanService,
	userRepo *repository.UserRepository,
	txRepo *repository.TransactionRepository,
	userPlanRepo *repository.UserPlanRepository,
	publisher *pubsub.Publisher,
) *RewardService {
	return &RewardService{
		db:            db,
		creditService: creditService,
		planService:   planService,
		userRepo:      userRepo,
		txRepo:        txRepo,
		userPlanRepo:  userPlanRepo,
		publisher:     publisher,
	}
}

// ClaimDailyReward 领取每日奖励，数额由当前套餐决定。
// 当日（UTC）已领取时返回 ErrAlreadyClaimed
func (s *RewardService) ClaimDailyReward(userID int64) (*dto.ClaimRewardResponse, error) {
	plan, err := s.resolveRewardPlan(userID)
	if err != nil {
		return nil, err
	}

	ct, err := s.claim(userID, model.RewardKindDaily, plan.DailyRewardAmount, plan.ID)
	if err != nil {
		return nil, err
	}
	s.publishRewardGranted(ct)
	return &dto.ClaimRewardResponse{
		Credits:    ct.Amount,
		NewBalance: ct.BalanceAfter,
	}, nil
}

// GetDailyRewardStatus 每日奖励领取状态，下次可领取时间是下一个 UTC 零点
func (s *RewardService) GetDailyRewardStatus(userID int64) (*dto.DailyRewardStatus, error) {
	start, end := dayBoundsUTC(time.Now())
	claimed, err := s.txRepo.RewardExistsBetween(userID, model.RewardKindDaily, start, end)
	if err != nil {
		return nil, err
	}
	return &dto.DailyRewardStatus{
		Claimed:    claimed,
		CanClaimAt: end.Format(time.RFC3339),
	}, nil
}

// ClaimFirstChatReward 领取当日首次聊天奖励。
// 客户端会在聊天时隐式触发，重复调用是常态，
// 已领取时返回 (nil, nil) 而不是错误
func (s *RewardService) ClaimFirstChatReward(userID int64) (*dto.ClaimRewardResponse, error) {
	plan, err := s.resolveRewardPlan(userID)
	if err != nil {
		return nil, err
	}

	ct, err := s.claim(userID, model.RewardKindFirstChat, plan.FirstChatRewardAmount, plan.ID)
	if err != nil {
		if errors.Is(err, ErrAlreadyClaimed) {
			return nil, nil
		}
		return nil, err
	}
	s.publishRewardGranted(ct)
	return &dto.ClaimRewardResponse{
		Credits:    ct.Amount,
		NewBalance: ct.BalanceAfter,
	}, nil
}

// GetFirstChatRewardStatus 首聊奖励领取状态
func (s *RewardService) GetFirstChatRewardStatus(userID int64) (*dto.FirstChatRewardStatus, error) {
	start, end := dayBoundsUTC(time.Now())
	claimed, err := s.txRepo.RewardExistsBetween(userID, model.RewardKindFirstChat, start, end)
	if err != nil {
		return nil, err
	}
	return &dto.FirstChatRewardStatus{Claimed: claimed}, nil
}

// GrantInitialCredits 开户发放初始积分：没有生效订阅时补一条 FREE 订阅，
// 再记一笔 GRANT_INITIAL。FREE 套餐缺失属于种子数据故障，
// 返回 ErrPlanNotFound。重复调用是幂等的
func (s *RewardService) GrantInitialCredits(userID int64) error {
	freePlan, err := s.planService.GetPlanByTier(model.TierFree)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			// 参考数据缺失，部署/种子问题而非业务问题
			log.Printf("CRITICAL: free plan missing, cannot grant initial credits (user %d)", userID)
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		// 行锁串行化同一用户的开户发放
		if _, err := s.userRepo.WithTx(tx).GetByIDForUpdate(userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		granted, err := s.txRepo.WithTx(tx).ExistsByType(userID, model.TxTypeGrantInitial)
		if err != nil {
			return err
		}
		if granted {
			return nil
		}

		now := time.Now().UTC()
		if _, err := s.userPlanRepo.WithTx(tx).GetCurrent(userID, now); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			up := &model.UserPlan{
				UserID:           userID,
				PlanID:           freePlan.ID,
				Status:           model.UserPlanStatusActive,
				CurrentPeriodEnd: now.AddDate(freePlanPeriodYears, 0, 0),
			}
			if err := s.userPlanRepo.WithTx(tx).Create(up); err != nil {
				return err
			}
		}

		_, err = s.creditService.recordTx(tx, userID, model.TxTypeGrantInitial,
			freePlan.InitialGrantAmount, "initial", nil, &freePlan.ID)
		return err
	})
}

// publishRewardGranted 奖励到账推送，失败只记日志
func (s *RewardService) publishRewardGranted(ct *model.CreditTransaction) {
	if s.publisher == nil {
		return
	}
	event := &pubsub.CreditEvent{
		Type:       pubsub.EventRewardGranted,
		UserID:     ct.UserID,
		TxType:     ct.Type,
		Amount:     ct.Amount,
		NewBalance: ct.BalanceAfter,
		Notes:      ct.Notes,
	}
	if err := s.publisher.PublishCreditEvent(context.Background(), event); err != nil {
		log.Printf("Failed to publish reward event for user %d: %v", ct.UserID, err)
	}
}

// claim 在一个事务内完成 加锁-查重-落账
func (s *RewardService) claim(userID int64, kind string, amount, planID int64) (*model.CreditTransaction, error) {
	var created *model.CreditTransaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.userRepo.WithTx(tx).GetByIDForUpdate(userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		start, end := dayBoundsUTC(time.Now())
		claimed, err := s.txRepo.WithTx(tx).RewardExistsBetween(userID, kind, start, end)
		if err != nil {
			return err
		}
		if claimed {
			return ErrAlreadyClaimed
		}

		ct, err := s.creditService.recordTx(tx, userID, model.TxTypeSystemReward, amount, kind, nil, &planID)
		if err != nil {
			return err
		}
		created = ct
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// resolveRewardPlan 奖励按当前套餐计算，没有生效订阅的用户按 FREE 档
func (s *RewardService) resolveRewardPlan(userID int64) (*model.Plan, error) {
	plan, err := s.planService.GetActivePlan(userID)
	if err != nil {
		return nil, err
	}
	if plan != nil {
		return plan, nil
	}
	return s.planService.GetPlanByTier(model.TierFree)
}

// dayBoundsUTC 自然日边界统一按 UTC 计算，与请求方时区无关
func dayBoundsUTC(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}
