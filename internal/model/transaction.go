package model

import (
	"time"
)

// 积分流水类型
const (
	TxTypeGrantInitial = "GRANT_INITIAL"
	TxTypeSystemReward = "SYSTEM_REWARD"
	TxTypeConsumption  = "CONSUMPTION"
	TxTypePurchase     = "PURCHASE"
	TxTypeRefund       = "REFUND"
)

// SYSTEM_REWARD 子类型，记录在 notes 字段
const (
	RewardKindDaily     = "daily"
	RewardKindFirstChat = "first_chat"
)

// CreditTransaction 积分流水，只追加，创建后不修改不删除。
// 余额完全由流水推导，amount 正数为入账、负数为扣减，
// balance_after 冗余记录该笔提交后的余额快照
type CreditTransaction struct {
	ID                int64     `gorm:"primaryKey" json:"id"`
	UserID            int64     `gorm:"not null;index:idx_credit_tx_user_time,priority:1" json:"user_id"`
	Type              string    `gorm:"size:20;not null;index" json:"type"`
	Amount            int64     `gorm:"not null" json:"amount"`
	BalanceAfter      int64     `gorm:"not null" json:"balance_after"`
	Notes             string    `gorm:"size:255" json:"notes,omitempty"`
	RelatedUsageLogID *int64    `json:"related_usage_log_id,omitempty"`
	RelatedPlanID     *int64    `json:"related_plan_id,omitempty"`
	CreatedAt         time.Time `gorm:"index:idx_credit_tx_user_time,priority:2" json:"created_at"`
}

func (CreditTransaction) TableName() string {
	return "credit_transactions"
}
