package services

import (
	"strings"
	"testing"

	"mission-rewards-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyCreatesPendingApplication(t *testing.T) {
	db := newTestDB(t)
	svc := NewBrandService(db, NewBudgetService(db))

	app, err := svc.Apply(ApplicationInput{
		Email:        "Owner@CoffeeShop.com",
		BusinessName: "  Corner Coffee  ",
		City:         "Lisbon",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationPending, app.Status)
	assert.Equal(t, "owner@coffeeshop.com", app.Email)
	assert.Equal(t, "Corner Coffee", app.BusinessName)
}

func TestApplyCollapsesDuplicatePending(t *testing.T) {
	db := newTestDB(t)
	svc := NewBrandService(db, NewBudgetService(db))

	first, err := svc.Apply(ApplicationInput{Email: "a@b.com", BusinessName: "A"})
	require.NoError(t, err)
	second, err := svc.Apply(ApplicationInput{Email: "a@b.com", BusinessName: "A again"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestApplyValidatesInput(t *testing.T) {
	db := newTestDB(t)
	svc := NewBrandService(db, NewBudgetService(db))

	_, err := svc.Apply(ApplicationInput{Email: "not-an-email", BusinessName: "X"})
	assert.True(t, IsKind(err, KindValidation))
	_, err = svc.Apply(ApplicationInput{Email: "a@b.com"})
	assert.True(t, IsKind(err, KindValidation))
}

func TestApproveApplicationProvisionsBrandAndOperator(t *testing.T) {
	db := newTestDB(t)
	svc := NewBrandService(db, NewBudgetService(db))
	admin := createTestUser(t, db)

	app, err := svc.Apply(ApplicationInput{Email: "owner@corner.com", BusinessName: "Corner Coffee"})
	require.NoError(t, err)

	brand, err := svc.ApproveApplication(admin.ID, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "Corner Coffee", brand.Name)
	assert.True(t, strings.HasPrefix(brand.Slug, "corner-coffee-"))

	var operator models.User
	require.NoError(t, db.First(&operator, "email = ?", "owner@corner.com").Error)
	assert.Equal(t, models.RoleBrand, operator.Role)
	require.NotNil(t, operator.BrandID)
	assert.Equal(t, brand.ID, *operator.BrandID)

	var reviewed models.BrandApplication
	require.NoError(t, db.First(&reviewed, "id = ?", app.ID).Error)
	assert.Equal(t, models.ApplicationApproved, reviewed.Status)
	require.NotNil(t, reviewed.BrandID)

	// Second review of the same application conflicts.
	_, err = svc.ApproveApplication(admin.ID, app.ID)
	assert.True(t, IsKind(err, KindStateConflict))
}

func TestRejectApplication(t *testing.T) {
	db := newTestDB(t)
	svc := NewBrandService(db, NewBudgetService(db))
	admin := createTestUser(t, db)

	app, err := svc.Apply(ApplicationInput{Email: "no@thanks.com", BusinessName: "Nope Inc"})
	require.NoError(t, err)

	rejected, err := svc.RejectApplication(admin.ID, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationRejected, rejected.Status)

	// No brand was provisioned.
	var count int64
	db.Model(&models.Brand{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreateMissionRequiresFundedBatch(t *testing.T) {
	db := newTestDB(t)
	svc := NewBrandService(db, NewBudgetService(db))
	brand := createTestBrand(t, db, 1000)
	mt := createTestMissionType(t, db, "FOLLOW", 50, 75)

	// 13 * 75 = 975 fits under 1000; 14 * 75 = 1050 does not.
	mission, err := svc.CreateMission(brand.ID, MissionInput{
		MissionTypeID: mt.ID,
		Title:         "Follow us",
		ActionURL:     "https://www.instagram.com/cornercoffee",
		QuantityTotal: 13,
	})
	require.NoError(t, err)
	assert.Equal(t, models.MissionPendingApproval, mission.Status)
	assert.Equal(t, 13, mission.QuantityRemaining)

	_, err = svc.CreateMission(brand.ID, MissionInput{
		MissionTypeID: mt.ID,
		Title:         "Too big",
		ActionURL:     "https://instagram.com/cornercoffee",
		QuantityTotal: 14,
	})
	require.Error(t, err)
	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, CodeBrandBudget, se.Code)
}

func TestCreateMissionWithoutBudget(t *testing.T) {
	db := newTestDB(t)
	svc := NewBrandService(db, NewBudgetService(db))
	brand := createTestBrand(t, db, 0)
	mt := createTestMissionType(t, db, "FOLLOW", 50, 75)

	_, err := svc.CreateMission(brand.ID, MissionInput{
		MissionTypeID: mt.ID,
		Title:         "Unfunded",
		ActionURL:     "https://instagram.com/x",
		QuantityTotal: 1,
	})
	assert.True(t, IsKind(err, KindInsufficientFunds))
}

func TestCreateMissionRejectsNonSocialURL(t *testing.T) {
	db := newTestDB(t)
	svc := NewBrandService(db, NewBudgetService(db))
	brand := createTestBrand(t, db, 10000)
	mt := createTestMissionType(t, db, "FOLLOW", 50, 75)

	for _, bad := range []string{
		"https://example.com/page",
		"http://instagram.com/insecure",
		"not a url",
		"",
	} {
		_, err := svc.CreateMission(brand.ID, MissionInput{
			MissionTypeID: mt.ID,
			Title:         "Bad link",
			ActionURL:     bad,
			QuantityTotal: 1,
		})
		assert.True(t, IsKind(err, KindValidation), "expected validation error for %q", bad)
	}

	for _, good := range []string{
		"https://instagram.com/brand",
		"https://www.tiktok.com/@brand",
		"https://facebook.com/brand",
		"https://fb.com/brand",
	} {
		_, err := svc.CreateMission(brand.ID, MissionInput{
			MissionTypeID: mt.ID,
			Title:         "Good link",
			ActionURL:     good,
			QuantityTotal: 1,
		})
		assert.NoError(t, err, "expected %q to be accepted", good)
	}
}

func TestUpdateMissionOnlyBeforeActivation(t *testing.T) {
	db := newTestDB(t)
	svc := NewBrandService(db, NewBudgetService(db))
	brand := createTestBrand(t, db, 10000)
	mt := createTestMissionType(t, db, "FOLLOW", 50, 75)

	mission, err := svc.CreateMission(brand.ID, MissionInput{
		MissionTypeID: mt.ID,
		Title:         "Draft",
		ActionURL:     "https://instagram.com/brand",
		QuantityTotal: 2,
	})
	require.NoError(t, err)

	newTitle := "Polished"
	updated, err := svc.UpdateMission(brand.ID, mission.ID, &newTitle, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Polished", updated.Title)

	_, err = svc.SetMissionStatus(mission.ID, models.MissionActive)
	require.NoError(t, err)

	_, err = svc.UpdateMission(brand.ID, mission.ID, &newTitle, nil, nil)
	assert.True(t, IsKind(err, KindStateConflict))
}

func TestSetMissionStatusRules(t *testing.T) {
	db := newTestDB(t)
	svc := NewBrandService(db, NewBudgetService(db))
	brand := createTestBrand(t, db, 10000)
	mt := createTestMissionType(t, db, "FOLLOW", 50, 75)
	mission := createTestMission(t, db, brand.ID, mt.ID, 1)

	_, err := svc.SetMissionStatus(mission.ID, models.MissionStatus("PENDING_APPROVAL"))
	assert.True(t, IsKind(err, KindValidation))

	// A sold-out mission cannot be reactivated.
	require.NoError(t, db.Model(&models.Mission{}).Where("id = ?", mission.ID).
		Update("quantity_remaining", 0).Error)
	_, err = svc.SetMissionStatus(mission.ID, models.MissionActive)
	assert.True(t, IsKind(err, KindStateConflict))
}

func TestGetStatsCountsAndFlagsLowBudget(t *testing.T) {
	db := newTestDB(t)
	budget := NewBudgetService(db)
	svc := NewBrandService(db, budget)
	wallet := NewWalletService(db)
	missionSvc := NewMissionService(db, wallet, budget)
	user := createTestUser(t, db)
	brand := createTestBrand(t, db, 6000)
	mt := createTestMissionType(t, db, "FOLLOW", 50, 75)
	mission := createTestMission(t, db, brand.ID, mt.ID, 5)

	_, err := missionSvc.SubmitAttempt(user.ID, mission.ID)
	require.NoError(t, err)

	stats, err := svc.GetStats(brand.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.MissionsByStatus[models.MissionActive])
	assert.Equal(t, int64(1), stats.AttemptsByStatus[models.AttemptPending])
	assert.Equal(t, int64(1), stats.EngagedUsers30d)
	require.NotNil(t, stats.Budget)
	assert.False(t, stats.LowBudget) // 6000 - 75 reserved is still above the floor

	// Drain the budget below the threshold and the flag flips.
	require.NoError(t, db.Model(&models.BrandBudget{}).
		Where("brand_id = ?", brand.ID).
		Update("spent_cents", 5500).Error)
	stats, err = svc.GetStats(brand.ID)
	require.NoError(t, err)
	assert.True(t, stats.LowBudget)
}

func TestUpdateBrandProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewBrandService(db, NewBudgetService(db))
	brand := createTestBrand(t, db, 0)

	desc := "Specialty roasts"
	logo := "https://cdn.example.com/logo.png"
	updated, err := svc.UpdateBrandProfile(brand.ID, &desc, nil, &logo, nil)
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)
	assert.Equal(t, logo, updated.LogoURL)
}
