package services

import (
	"fmt"
	"testing"

	"mission-rewards-system/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.WalletTransaction{},
		&models.UserDailyEarning{},
		&models.Brand{},
		&models.BrandApplication{},
		&models.BrandBudget{},
		&models.CentralPool{},
		&models.MissionType{},
		&models.Mission{},
		&models.MissionAttempt{},
		&models.GiftCard{},
		&models.GiftCardPurchase{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{
		ID:            uuid.NewString(),
		Email:         uuid.NewString() + "@test.local",
		Name:          "Test User",
		Role:          models.RoleUser,
		DailyCapCents: CapStarterCents,
		BadgeLevel:    models.BadgeStarter,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestBrand(t *testing.T, db *gorm.DB, depositCents int64) *models.Brand {
	t.Helper()
	brand := models.Brand{
		ID:   uuid.NewString(),
		Name: "Test Brand",
		Slug: "test-brand-" + uuid.NewString()[:8],
	}
	require.NoError(t, db.Create(&brand).Error)

	if depositCents > 0 {
		budgetService := NewBudgetService(db)
		_, err := budgetService.TopUp(brand.ID, depositCents)
		require.NoError(t, err)
	}
	return &brand
}

func createTestMissionType(t *testing.T, db *gorm.DB, code string, rewardCents, costCents int64) *models.MissionType {
	t.Helper()
	mt := models.MissionType{
		ID:              uuid.NewString(),
		Code:            code,
		Label:           code,
		UserRewardCents: rewardCents,
		BrandCostCents:  costCents,
		IsActive:        true,
	}
	require.NoError(t, db.Create(&mt).Error)
	return &mt
}

func createTestMission(t *testing.T, db *gorm.DB, brandID, missionTypeID string, quantity int) *models.Mission {
	t.Helper()
	mission := models.Mission{
		ID:                uuid.NewString(),
		BrandID:           brandID,
		MissionTypeID:     missionTypeID,
		Title:             "Follow us on Instagram",
		ActionURL:         "https://instagram.com/testbrand",
		Status:            models.MissionActive,
		QuantityTotal:     quantity,
		QuantityRemaining: quantity,
	}
	require.NoError(t, db.Create(&mission).Error)
	return &mission
}

// ledgerSums recomputes the two wallet pockets from the append-only ledger.
func ledgerSums(t *testing.T, db *gorm.DB, userID string) (available, pending int64) {
	t.Helper()
	var entries []models.WalletTransaction
	require.NoError(t, db.Where("user_id = ?", userID).Find(&entries).Error)
	for _, e := range entries {
		switch e.Type {
		case models.TxCredit:
			available += e.AmountCents
			// an unlock credit moves money out of pending; a plain credit does
			// not touch pending. Unlock credits carry an attempt reference.
			if e.AttemptID != nil {
				pending -= e.AmountCents
			}
		case models.TxDebit:
			available -= e.AmountCents
		case models.TxReserve:
			pending += e.AmountCents
		case models.TxRelease:
			pending -= e.AmountCents
		}
	}
	return available, pending
}
