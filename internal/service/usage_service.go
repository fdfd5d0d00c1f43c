package service

import (
	"context"
	"log"

	"gorm.io/gorm"

	"github.com/nekoi/rolechat_go_server/internal/model"
	"github.com/nekoi/rolechat_go_server/internal/model/dto"
	"github.com/nekoi/rolechat_go_server/internal/pkg/pubsub"
	"github.com/nekoi/rolechat_go_server/internal/repository"
)

// UsageService 聊天计量。每轮交互写一条用量记录，
// 并在同一事务内记一笔 CONSUMPTION 扣减，余额不足则整体回滚
type UsageService struct {
	db            *gorm.DB
	usageRepo     *repository.UsageLogRepository
	creditService *CreditService
	publisher     *pubsub.Publisher
}

func NewUsageService(db *gorm.DB, usageRepo *repository.UsageLogRepository, creditService *CreditService, publisher *pubsub.Publisher) *UsageService {
	return &UsageService{
		db:            db,
		usageRepo:     usageRepo,
		creditService: creditService,
		publisher:     publisher,
	}
}

// RecordUsage 记录一次聊天用量并扣减积分
func (s *UsageService) RecordUsage(ctx context.Context, userID int64, req *dto.RecordUsageRequest) (*dto.RecordUsageResponse, error) {
	var usageLog *model.UsageLog
	var ct *model.CreditTransaction

	err := s.db.Transaction(func(tx *gorm.DB) error {
		usageLog = &model.UsageLog{
			UserID:      userID,
			CharacterID: req.CharacterID,
			ModelName:   req.ModelName,
			CreditsCost: req.CreditsCost,
		}
		if err := s.usageRepo.WithTx(tx).Create(usageLog); err != nil {
			return err
		}

		var err error
		ct, err = s.creditService.recordTx(tx, userID, model.TxTypeConsumption,
			-req.CreditsCost, "chat", &usageLog.ID, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	// 余额变动推送失败不影响主流程
	if s.publisher != nil {
		event := &pubsub.CreditEvent{
			Type:       pubsub.EventBalanceChanged,
			UserID:     userID,
			TxType:     ct.Type,
			Amount:     ct.Amount,
			NewBalance: ct.BalanceAfter,
		}
		if err := s.publisher.PublishCreditEvent(ctx, event); err != nil {
			log.Printf("Failed to publish credit event for user %d: %v", userID, err)
		}
	}

	return &dto.RecordUsageResponse{
		UsageLogID: usageLog.ID,
		NewBalance: ct.BalanceAfter,
	}, nil
}

// GetUsageHistory 用量记录分页查询
func (s *UsageService) GetUsageHistory(userID int64, page, pageSize int) ([]*model.UsageLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return s.usageRepo.ListByUser(userID, page, pageSize)
}
