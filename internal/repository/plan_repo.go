package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/nekoi/rolechat_go_server/internal/model"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// WithTx 返回绑定到事务的副本
func (r *PlanRepository) WithTx(tx *gorm.DB) *PlanRepository {
	return &PlanRepository{db: tx}
}

func (r *PlanRepository) GetByID(id int64) (*model.Plan, error) {
	var plan model.Plan
	err := r.db.Where("id = ?", id).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *PlanRepository) GetByTier(tier string) (*model.Plan, error) {
	var plan model.Plan
	err := r.db.Where("tier = ?", tier).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *PlanRepository) ListAll() ([]*model.Plan, error) {
	var plans []*model.Plan
	err := r.db.Order("id ASC").Find(&plans).Error
	return plans, err
}

// Upsert 按 tier 写入种子数据
func (r *PlanRepository) Upsert(plan *model.Plan) error {
	var existing model.Plan
	err := r.db.Where("tier = ?", plan.Tier).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.Create(plan).Error
	}
	if err != nil {
		return err
	}
	plan.ID = existing.ID
	plan.CreatedAt = existing.CreatedAt
	return r.db.Save(plan).Error
}

type UserPlanRepository struct {
	db *gorm.DB
}

func NewUserPlanRepository(db *gorm.DB) *UserPlanRepository {
	return &UserPlanRepository{db: db}
}

// WithTx 返回绑定到事务的副本
func (r *UserPlanRepository) WithTx(tx *gorm.DB) *UserPlanRepository {
	return &UserPlanRepository{db: tx}
}

func (r *UserPlanRepository) Create(up *model.UserPlan) error {
	return r.db.Create(up).Error
}

func (r *UserPlanRepository) GetByID(id int64) (*model.UserPlan, error) {
	var up model.UserPlan
	err := r.db.Where("id = ?", id).First(&up).Error
	if err != nil {
		return nil, err
	}
	return &up, nil
}

// GetCurrent 用户当前生效的订阅。status 列可能滞后，
// 所以额外校验 current_period_end > now
func (r *UserPlanRepository) GetCurrent(userID int64, now time.Time) (*model.UserPlan, error) {
	var up model.UserPlan
	err := r.db.Where("user_id = ? AND status = ? AND current_period_end > ?",
		userID, model.UserPlanStatusActive, now).
		Order("current_period_end DESC").
		First(&up).Error
	if err != nil {
		return nil, err
	}
	return &up, nil
}

func (r *UserPlanRepository) UpdateStatus(id int64, status string) error {
	return r.db.Model(&model.UserPlan{}).Where("id = ?", id).
		Update("status", status).Error
}

// ExpireLapsed 将周期已过但状态还停留在 active 的订阅批量置为 expired
func (r *UserPlanRepository) ExpireLapsed(now time.Time) (int64, error) {
	result := r.db.Model(&model.UserPlan{}).
		Where("status = ? AND current_period_end <= ?", model.UserPlanStatusActive, now).
		Update("status", model.UserPlanStatusExpired)
	return result.RowsAffected, result.Error
}

func (r *UserPlanRepository) ListByUser(userID int64) ([]*model.UserPlan, error) {
	var plans []*model.UserPlan
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&plans).Error
	return plans, err
}
