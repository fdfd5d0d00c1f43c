package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/nekoi/rolechat_go_server/internal/model"
	"github.com/nekoi/rolechat_go_server/internal/model/dto"
	"github.com/nekoi/rolechat_go_server/internal/repository"
)

var (
	ErrInsufficientCredits = errors.New("积分不足")
	ErrUserNotFound        = errors.New("用户不存在")
)

// CreditService 积分账本。余额唯一来源是只追加的流水表，
// 每次写入都在同一事务内完成 读余额-校验-落库，
// 通过用户行锁把同一用户的并发写串行化，保证余额不会被扣成负数
type CreditService struct {
	db       *gorm.DB
	userRepo *repository.UserRepository
	txRepo   *repository.TransactionRepository
}

func NewCreditService(db *gorm.DB, userRepo *repository.UserRepository, txRepo *repository.TransactionRepository) *CreditService {
	return &CreditService{
		db:       db,
		userRepo: userRepo,
		txRepo:   txRepo,
	}
}

// Record 记录一笔积分流水并返回新余额。
// amount 为负且余额不足时返回 ErrInsufficientCredits，事务回滚
func (s *CreditService) Record(userID int64, txType string, amount int64, notes string, usageLogID, planID *int64) (*model.CreditTransaction, error) {
	var created *model.CreditTransaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		ct, err := s.recordTx(tx, userID, txType, amount, notes, usageLogID, planID)
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

// recordTx 在既有事务内追加流水。先对用户行加锁，
// 同一用户的所有账本写入（包括奖励领取的查重）都被这把锁串行化
func (s *CreditService) recordTx(tx *gorm.DB, userID int64, txType string, amount int64, notes string, usageLogID, planID *int64) (*model.CreditTransaction, error) {
	if _, err := s.userRepo.WithTx(tx).GetByIDForUpdate(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	balance, err := s.txRepo.WithTx(tx).LatestBalance(userID)
	if err != nil {
		return nil, err
	}

	if amount < 0 && balance+amount < 0 {
		return nil, ErrInsufficientCredits
	}

	ct := &model.CreditTransaction{
		UserID:            userID,
		Type:              txType,
		Amount:            amount,
		BalanceAfter:      balance + amount,
		Notes:             notes,
		RelatedUsageLogID: usageLogID,
		RelatedPlanID:     planID,
	}
	if err := s.txRepo.WithTx(tx).Create(ct); err != nil {
		return nil, err
	}
	return ct, nil
}

// GetBalance 当前余额。每次都从存储重新读取，不做进程内缓存。
// 无流水返回 0，但用户必须存在
func (s *CreditService) GetBalance(userID int64) (int64, error) {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return s.txRepo.LatestBalance(userID)
}

// HasEnoughCredits 余额预检。仅供提前拦截用，
// 权威校验在 Record 的事务内完成
func (s *CreditService) HasEnoughCredits(userID, amount int64) (bool, error) {
	balance, err := s.GetBalance(userID)
	if err != nil {
		return false, err
	}
	return balance >= amount, nil
}

// GetHistory 流水分页查询，按时间倒序（同时刻按插入顺序倒序）
func (s *CreditService) GetHistory(userID int64, req *dto.TransactionListRequest) ([]*dto.TransactionItem, int64, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	txs, total, err := s.txRepo.List(userID, page, pageSize, req.Type)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.TransactionItem, 0, len(txs))
	for _, t := range txs {
		items = append(items, &dto.TransactionItem{
			ID:           t.ID,
			Type:         t.Type,
			Amount:       t.Amount,
			BalanceAfter: t.BalanceAfter,
			Notes:        t.Notes,
			CreatedAt:    t.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return items, total, nil
}
