package dto

// RecordUsageRequest 聊天计量请求，由聊天服务在每轮交互后上报
type RecordUsageRequest struct {
	CharacterID *int64 `json:"character_id,omitempty"`
	ModelName   string `json:"model_name" binding:"required,max=50"`
	CreditsCost int64  `json:"credits_cost" binding:"required,min=1"`
}

// RecordUsageResponse 聊天计量响应
type RecordUsageResponse struct {
	UsageLogID int64 `json:"usage_log_id"`
	NewBalance int64 `json:"new_balance"`
}
