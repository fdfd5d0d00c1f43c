package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nekoi/rolechat_go_server/internal/model"
	"github.com/nekoi/rolechat_go_server/internal/repository"
	"github.com/nekoi/rolechat_go_server/internal/testutil"
)

func setupPlanService(t *testing.T) (*PlanService, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	planRepo := repository.NewPlanRepository(db)
	userPlanRepo := repository.NewUserPlanRepository(db)

	service := NewPlanService(planRepo, userPlanRepo)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return service, db, cleanup
}

func TestPlanService_GetActivePlan_None(t *testing.T) {
	service, db, cleanup := setupPlanService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)

	plan, err := service.GetActivePlan(user.ID)
	require.NoError(t, err)
	assert.Nil(t, plan)
}

func TestPlanService_GetActivePlan_Active(t *testing.T) {
	service, db, cleanup := setupPlanService(t)
	defer cleanup()

	plus := testutil.TestPlan(t, db, model.TierPlus)
	user := testutil.TestUser(t, db)
	testutil.TestUserPlan(t, db, user.ID, plus.ID, model.UserPlanStatusActive,
		time.Now().UTC().Add(30*24*time.Hour))

	plan, err := service.GetActivePlan(user.ID)
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.Equal(t, model.TierPlus, plan.Tier)
}

func TestPlanService_GetActivePlan_LapsedPeriod(t *testing.T) {
	service, db, cleanup := setupPlanService(t)
	defer cleanup()

	plus := testutil.TestPlan(t, db, model.TierPlus)
	user := testutil.TestUser(t, db)
	// status 还是 active 但周期已过
	testutil.TestUserPlan(t, db, user.ID, plus.ID, model.UserPlanStatusActive,
		time.Now().UTC().Add(-time.Minute))

	plan, err := service.GetActivePlan(user.ID)
	require.NoError(t, err)
	assert.Nil(t, plan)
}

func TestPlanService_GetActivePlan_IgnoresNonActive(t *testing.T) {
	service, db, cleanup := setupPlanService(t)
	defer cleanup()

	plus := testutil.TestPlan(t, db, model.TierPlus)
	user := testutil.TestUser(t, db)
	periodEnd := time.Now().UTC().Add(30 * 24 * time.Hour)
	testutil.TestUserPlan(t, db, user.ID, plus.ID, model.UserPlanStatusPending, periodEnd)
	testutil.TestUserPlan(t, db, user.ID, plus.ID, model.UserPlanStatusCanceled, periodEnd)

	plan, err := service.GetActivePlan(user.ID)
	require.NoError(t, err)
	assert.Nil(t, plan)
}

func TestPlanService_GetPlanByTier(t *testing.T) {
	service, db, cleanup := setupPlanService(t)
	defer cleanup()

	testutil.TestPlan(t, db, model.TierFree)

	plan, err := service.GetPlanByTier(model.TierFree)
	require.NoError(t, err)
	assert.Equal(t, int64(50), plan.DailyRewardAmount)

	_, err = service.GetPlanByTier(model.TierPremium)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestPlanService_Activate(t *testing.T) {
	service, db, cleanup := setupPlanService(t)
	defer cleanup()

	plus := testutil.TestPlan(t, db, model.TierPlus)
	user := testutil.TestUser(t, db)
	up := testutil.TestUserPlan(t, db, user.ID, plus.ID, model.UserPlanStatusPending,
		time.Now().UTC().Add(30*24*time.Hour))

	require.NoError(t, service.Activate(up.ID))

	plan, err := service.GetActivePlan(user.ID)
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.Equal(t, model.TierPlus, plan.Tier)

	// active 不能再次激活
	assert.ErrorIs(t, service.Activate(up.ID), ErrInvalidPlanState)
}

func TestPlanService_Cancel(t *testing.T) {
	service, db, cleanup := setupPlanService(t)
	defer cleanup()

	plus := testutil.TestPlan(t, db, model.TierPlus)
	user := testutil.TestUser(t, db)
	up := testutil.TestUserPlan(t, db, user.ID, plus.ID, model.UserPlanStatusActive,
		time.Now().UTC().Add(30*24*time.Hour))

	require.NoError(t, service.Cancel(up.ID))

	plan, err := service.GetActivePlan(user.ID)
	require.NoError(t, err)
	assert.Nil(t, plan)

	// canceled 是终态
	assert.ErrorIs(t, service.Cancel(up.ID), ErrInvalidPlanState)
	assert.ErrorIs(t, service.Activate(up.ID), ErrInvalidPlanState)
}

func TestPlanService_Cancel_PendingRejected(t *testing.T) {
	service, db, cleanup := setupPlanService(t)
	defer cleanup()

	plus := testutil.TestPlan(t, db, model.TierPlus)
	user := testutil.TestUser(t, db)
	up := testutil.TestUserPlan(t, db, user.ID, plus.ID, model.UserPlanStatusPending,
		time.Now().UTC().Add(30*24*time.Hour))

	assert.ErrorIs(t, service.Cancel(up.ID), ErrInvalidPlanState)
}

func TestPlanService_Activate_NotFound(t *testing.T) {
	service, _, cleanup := setupPlanService(t)
	defer cleanup()

	assert.ErrorIs(t, service.Activate(99999), ErrPlanNotFound)
	assert.ErrorIs(t, service.Cancel(99999), ErrPlanNotFound)
}

func TestPlanService_ExpireLapsed(t *testing.T) {
	service, db, cleanup := setupPlanService(t)
	defer cleanup()

	plus := testutil.TestPlan(t, db, model.TierPlus)
	user1 := testutil.TestUser(t, db)
	user2 := testutil.TestUser(t, db)

	lapsed := testutil.TestUserPlan(t, db, user1.ID, plus.ID, model.UserPlanStatusActive,
		time.Now().UTC().Add(-time.Hour))
	current := testutil.TestUserPlan(t, db, user2.ID, plus.ID, model.UserPlanStatusActive,
		time.Now().UTC().Add(time.Hour))

	n, err := service.ExpireLapsed()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var up model.UserPlan
	require.NoError(t, db.First(&up, lapsed.ID).Error)
	assert.Equal(t, model.UserPlanStatusExpired, up.Status)

	var up2 model.UserPlan
	require.NoError(t, db.First(&up2, current.ID).Error)
	assert.Equal(t, model.UserPlanStatusActive, up2.Status)

	// 再跑一遍没有可清理的
	n, err = service.ExpireLapsed()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
