package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/nekoi/rolechat_go_server/internal/model"
)

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	email := fmt.Sprintf("test_%d@example.com", time.Now().UnixNano())
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	user := &model.User{
		Username:      fmt.Sprintf("testuser_%d", time.Now().UnixNano()%100000000),
		Email:         &email,
		PasswordHash:  &passwordHash,
		EmailVerified: true,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithEmail 指定邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = &email
	}
}

// WithUsername 指定用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithGithubID 指定 GitHub ID
func WithGithubID(githubID string) func(*model.User) {
	return func(u *model.User) {
		u.GithubID = &githubID
	}
}

// TestPlan 创建测试套餐
func TestPlan(t *testing.T, db *gorm.DB, tier string, opts ...func(*model.Plan)) *model.Plan {
	t.Helper()

	plan := &model.Plan{
		Tier:                  tier,
		DailyRewardAmount:     50,
		InitialGrantAmount:    200,
		FirstChatRewardAmount: 10,
	}
	switch tier {
	case model.TierPlus:
		plan.DailyRewardAmount = 75
		plan.FirstChatRewardAmount = 15
	case model.TierPremium:
		plan.DailyRewardAmount = 100
		plan.FirstChatRewardAmount = 20
	}

	for _, opt := range opts {
		opt(plan)
	}

	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("Failed to create test plan: %v", err)
	}

	return plan
}

// WithDailyReward 指定每日奖励数额
func WithDailyReward(amount int64) func(*model.Plan) {
	return func(p *model.Plan) {
		p.DailyRewardAmount = amount
	}
}

// WithInitialGrant 指定初始积分数额
func WithInitialGrant(amount int64) func(*model.Plan) {
	return func(p *model.Plan) {
		p.InitialGrantAmount = amount
	}
}

// TestUserPlan 创建测试订阅记录
func TestUserPlan(t *testing.T, db *gorm.DB, userID, planID int64, status string, periodEnd time.Time) *model.UserPlan {
	t.Helper()

	up := &model.UserPlan{
		UserID:           userID,
		PlanID:           planID,
		Status:           status,
		CurrentPeriodEnd: periodEnd,
	}

	if err := db.Create(up).Error; err != nil {
		t.Fatalf("Failed to create test user plan: %v", err)
	}

	return up
}

// TestTransaction 直接插入一条流水（绕过账本服务，仅用于构造历史数据）
func TestTransaction(t *testing.T, db *gorm.DB, userID int64, txType string, amount, balanceAfter int64, notes string) *model.CreditTransaction {
	t.Helper()

	tx := &model.CreditTransaction{
		UserID:       userID,
		Type:         txType,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		Notes:        notes,
	}

	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	return tx
}
