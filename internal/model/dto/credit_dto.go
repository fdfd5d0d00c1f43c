package dto

// BalanceInfo 余额信息
type BalanceInfo struct {
	Balance  int64  `json:"balance"`
	PlanTier string `json:"plan_tier"`
}

// TransactionListRequest 流水分页查询
type TransactionListRequest struct {
	Page     int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
	Type     string `form:"type" binding:"omitempty,oneof=GRANT_INITIAL SYSTEM_REWARD CONSUMPTION PURCHASE REFUND"`
}

// TransactionItem 单条流水（返回给前端）
type TransactionItem struct {
	ID           int64  `json:"id"`
	Type         string `json:"type"`
	Amount       int64  `json:"amount"`
	BalanceAfter int64  `json:"balance_after"`
	Notes        string `json:"notes,omitempty"`
	CreatedAt    string `json:"created_at"`
}
