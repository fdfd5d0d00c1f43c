package model

import (
	"time"
)

// UsageLog 聊天用量记录，对应的 CONSUMPTION 流水通过
// related_usage_log_id 关联到这里
type UsageLog struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	UserID      int64     `gorm:"not null;index" json:"user_id"`
	CharacterID *int64    `json:"character_id,omitempty"`
	ModelName   string    `gorm:"size:50" json:"model_name"`
	CreditsCost int64     `gorm:"not null" json:"credits_cost"`
	CreatedAt   time.Time `json:"created_at"`
}

func (UsageLog) TableName() string {
	return "usage_logs"
}
