package model

import (
	"time"
)

// 套餐档位
const (
	TierFree    = "free"
	TierPlus    = "plus"
	TierPremium = "premium"
)

// UserPlan 状态机：pending -> active -> expired / canceled（终态）
const (
	UserPlanStatusPending  = "pending"
	UserPlanStatusActive   = "active"
	UserPlanStatusExpired  = "expired"
	UserPlanStatusCanceled = "canceled"
)

// Plan 套餐参考数据，只读，由 cmd/seed 写入
type Plan struct {
	ID                    int64     `gorm:"primaryKey" json:"id"`
	Tier                  string    `gorm:"size:20;uniqueIndex;not null" json:"tier"`
	DailyRewardAmount     int64     `gorm:"not null" json:"daily_reward_amount"`
	InitialGrantAmount    int64     `gorm:"not null" json:"initial_grant_amount"`
	FirstChatRewardAmount int64     `gorm:"not null" json:"first_chat_reward_amount"`
	Price                 float64   `gorm:"type:decimal(10,2)" json:"price"`
	CreatedAt             time.Time `json:"created_at"`
}

func (Plan) TableName() string {
	return "plans"
}

// UserPlan 用户订阅记录，同一用户可以有多条历史记录，
// 任一时刻最多一条"当前生效"（status=active 且 current_period_end 在未来）
type UserPlan struct {
	ID               int64     `gorm:"primaryKey" json:"id"`
	UserID           int64     `gorm:"not null;index:idx_user_plans_current,priority:1" json:"user_id"`
	PlanID           int64     `gorm:"not null" json:"plan_id"`
	Status           string    `gorm:"size:20;default:pending;index:idx_user_plans_current,priority:2" json:"status"`
	CurrentPeriodEnd time.Time `gorm:"not null;index:idx_user_plans_current,priority:3" json:"current_period_end"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (UserPlan) TableName() string {
	return "user_plans"
}

// IsCurrent 判断订阅此刻是否生效。status 列可能未被及时更新，
// 因此必须同时校验 current_period_end
func (up *UserPlan) IsCurrent(now time.Time) bool {
	return up.Status == UserPlanStatusActive && up.CurrentPeriodEnd.After(now)
}
