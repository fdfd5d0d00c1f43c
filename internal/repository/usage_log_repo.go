package repository

import (
	"gorm.io/gorm"

	"github.com/nekoi/rolechat_go_server/internal/model"
)

type UsageLogRepository struct {
	db *gorm.DB
}

func NewUsageLogRepository(db *gorm.DB) *UsageLogRepository {
	return &UsageLogRepository{db: db}
}

// WithTx 返回绑定到事务的副本
func (r *UsageLogRepository) WithTx(tx *gorm.DB) *UsageLogRepository {
	return &UsageLogRepository{db: tx}
}

func (r *UsageLogRepository) Create(log *model.UsageLog) error {
	return r.db.Create(log).Error
}

func (r *UsageLogRepository) GetByID(id int64) (*model.UsageLog, error) {
	var log model.UsageLog
	err := r.db.Where("id = ?", id).First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *UsageLogRepository) ListByUser(userID int64, page, pageSize int) ([]*model.UsageLog, int64, error) {
	var total int64
	var logs []*model.UsageLog

	query := r.db.Model(&model.UsageLog{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&logs).Error
	return logs, total, err
}
