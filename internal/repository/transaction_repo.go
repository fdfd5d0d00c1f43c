package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/nekoi/rolechat_go_server/internal/model"
)

// TransactionRepository 积分流水存储，只追加。
// 所有写入都应在持有用户行锁的事务内进行（见 service.CreditService）
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// WithTx 返回绑定到事务的副本
func (r *TransactionRepository) WithTx(tx *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: tx}
}

func (r *TransactionRepository) Create(tx *model.CreditTransaction) error {
	return r.db.Create(tx).Error
}

// LatestBalance 最新一条流水的 balance_after，没有流水时为 0
func (r *TransactionRepository) LatestBalance(userID int64) (int64, error) {
	var latest model.CreditTransaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&latest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return latest.BalanceAfter, nil
}

// SumAmounts 全量求和，审计用，结果应恒等于 LatestBalance
func (r *TransactionRepository) SumAmounts(userID int64) (int64, error) {
	var sum *int64
	err := r.db.Model(&model.CreditTransaction{}).
		Where("user_id = ?", userID).
		Select("SUM(amount)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

// List 按时间倒序分页，可按类型过滤
func (r *TransactionRepository) List(userID int64, page, pageSize int, txType string) ([]*model.CreditTransaction, int64, error) {
	var total int64
	var items []*model.CreditTransaction

	query := r.db.Model(&model.CreditTransaction{}).Where("user_id = ?", userID)
	if txType != "" {
		query = query.Where("type = ?", txType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC, id DESC").
		Offset(offset).Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

// RewardExistsBetween 指定子类型的 SYSTEM_REWARD 在 [from, to) 内是否已存在
func (r *TransactionRepository) RewardExistsBetween(userID int64, kind string, from, to time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&model.CreditTransaction{}).
		Where("user_id = ? AND type = ? AND notes = ?", userID, model.TxTypeSystemReward, kind).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count > 0, err
}

// ExistsByType 用户是否已存在指定类型的流水
func (r *TransactionRepository) ExistsByType(userID int64, txType string) (bool, error) {
	var count int64
	err := r.db.Model(&model.CreditTransaction{}).
		Where("user_id = ? AND type = ?", userID, txType).
		Count(&count).Error
	return count > 0, err
}

// CountByUser 指定用户的流水总数
func (r *TransactionRepository) CountByUser(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.CreditTransaction{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
