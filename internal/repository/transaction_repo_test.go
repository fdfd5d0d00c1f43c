package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekoi/rolechat_go_server/internal/model"
	"github.com/nekoi/rolechat_go_server/internal/testutil"
)

func TestTransactionRepository_LatestBalance_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTransactionRepository(db)
	user := testutil.TestUser(t, db)

	balance, err := repo.LatestBalance(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestTransactionRepository_LatestBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTransactionRepository(db)
	user := testutil.TestUser(t, db)

	testutil.TestTransaction(t, db, user.ID, model.TxTypeGrantInitial, 200, 200, "initial")
	testutil.TestTransaction(t, db, user.ID, model.TxTypeConsumption, -30, 170, "chat")

	balance, err := repo.LatestBalance(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(170), balance)
}

func TestTransactionRepository_LatestBalance_SameTimestamp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTransactionRepository(db)
	user := testutil.TestUser(t, db)

	// 同一时刻的多条流水按插入顺序取最新
	now := time.Now().UTC().Truncate(time.Second)
	for i, tx := range []struct {
		amount, after int64
	}{{100, 100}, {-10, 90}, {-20, 70}} {
		ct := &model.CreditTransaction{
			UserID:       user.ID,
			Type:         model.TxTypeConsumption,
			Amount:       tx.amount,
			BalanceAfter: tx.after,
			CreatedAt:    now,
		}
		require.NoError(t, db.Create(ct).Error, "tx %d", i)
	}

	balance, err := repo.LatestBalance(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(70), balance)
}

func TestTransactionRepository_SumAmounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTransactionRepository(db)
	user := testutil.TestUser(t, db)

	sum, err := repo.SumAmounts(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), sum)

	testutil.TestTransaction(t, db, user.ID, model.TxTypeGrantInitial, 200, 200, "initial")
	testutil.TestTransaction(t, db, user.ID, model.TxTypeConsumption, -50, 150, "chat")

	sum, err = repo.SumAmounts(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(150), sum)
}

func TestTransactionRepository_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTransactionRepository(db)
	user := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)

	testutil.TestTransaction(t, db, user.ID, model.TxTypeGrantInitial, 200, 200, "initial")
	testutil.TestTransaction(t, db, user.ID, model.TxTypeSystemReward, 50, 250, "daily")
	testutil.TestTransaction(t, db, user.ID, model.TxTypeConsumption, -30, 220, "chat")
	testutil.TestTransaction(t, db, other.ID, model.TxTypeGrantInitial, 200, 200, "initial")

	// 只看自己的流水
	items, total, err := repo.List(user.ID, 1, 10, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 3)

	// 时间倒序（同时刻按 id 倒序）
	assert.Equal(t, model.TxTypeConsumption, items[0].Type)
	assert.Equal(t, model.TxTypeSystemReward, items[1].Type)
	assert.Equal(t, model.TxTypeGrantInitial, items[2].Type)

	// 类型过滤
	items, total, err = repo.List(user.ID, 1, 10, model.TxTypeSystemReward)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "daily", items[0].Notes)
}

func TestTransactionRepository_RewardExistsBetween(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTransactionRepository(db)
	user := testutil.TestUser(t, db)

	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	exists, err := repo.RewardExistsBetween(user.ID, model.RewardKindDaily, dayStart, dayEnd)
	require.NoError(t, err)
	assert.False(t, exists)

	testutil.TestTransaction(t, db, user.ID, model.TxTypeSystemReward, 50, 50, model.RewardKindDaily)

	exists, err = repo.RewardExistsBetween(user.ID, model.RewardKindDaily, dayStart, dayEnd)
	require.NoError(t, err)
	assert.True(t, exists)

	// 不同子类型互不影响
	exists, err = repo.RewardExistsBetween(user.ID, model.RewardKindFirstChat, dayStart, dayEnd)
	require.NoError(t, err)
	assert.False(t, exists)

	// 窗口外不算
	exists, err = repo.RewardExistsBetween(user.ID, model.RewardKindDaily,
		dayStart.Add(-24*time.Hour), dayStart)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTransactionRepository_ExistsByType(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTransactionRepository(db)
	user := testutil.TestUser(t, db)

	exists, err := repo.ExistsByType(user.ID, model.TxTypeGrantInitial)
	require.NoError(t, err)
	assert.False(t, exists)

	testutil.TestTransaction(t, db, user.ID, model.TxTypeGrantInitial, 200, 200, "initial")

	exists, err = repo.ExistsByType(user.ID, model.TxTypeGrantInitial)
	require.NoError(t, err)
	assert.True(t, exists)
}
