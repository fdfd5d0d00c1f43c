package dto

// ClaimRewardResponse 领取奖励响应
type ClaimRewardResponse struct {
	Credits    int64 `json:"credits"`
	NewBalance int64 `json:"new_balance"`
}

// DailyRewardStatus 每日奖励状态
type DailyRewardStatus struct {
	Claimed    bool   `json:"claimed"`
	CanClaimAt string `json:"can_claim_at"`
}

// FirstChatRewardStatus 首聊奖励状态
type FirstChatRewardStatus struct {
	Claimed bool `json:"claimed"`
}
