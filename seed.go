package main

import (
	"errors"
	"log"

	"mission-rewards-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// runSeed loads the reference data a fresh deployment needs: the mission type
// catalog, a demo brand with budget, an admin user and the gift card catalog.
// Rows keyed by a natural unique column are skipped if they already exist, so
// the seed is safe to rerun.
func runSeed(db *gorm.DB) error {
	missionTypes := []models.MissionType{
		{Code: "LIKE", Label: "Like a post", UserRewardCents: 25, BrandCostCents: 40},
		{Code: "FOLLOW", Label: "Follow the account", UserRewardCents: 50, BrandCostCents: 75},
		{Code: "COMMENT", Label: "Comment on a post", UserRewardCents: 100, BrandCostCents: 140},
		{Code: "STORY", Label: "Share to your story", UserRewardCents: 200, BrandCostCents: 280},
	}
	for _, mt := range missionTypes {
		var existing models.MissionType
		err := db.Where("code = ?", mt.Code).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		mt.ID = uuid.NewString()
		mt.IsActive = true
		if err := db.Create(&mt).Error; err != nil {
			return err
		}
		log.Printf("[Seed] mission type %s (reward=%d cost=%d)", mt.Code, mt.UserRewardCents, mt.BrandCostCents)
	}

	var admin models.User
	err := db.Where("email = ?", "admin@missionrewards.local").First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		admin = models.User{
			ID:    uuid.NewString(),
			Email: "admin@missionrewards.local",
			Name:  "Platform Admin",
			Role:  models.RoleAdmin,
		}
		if err := db.Create(&admin).Error; err != nil {
			return err
		}
		log.Printf("[Seed] admin user %s", admin.ID)
	} else if err != nil {
		return err
	}

	var demoBrand models.Brand
	err = db.Where("slug = ?", "demo-coffee").First(&demoBrand).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		demoBrand = models.Brand{
			ID:          uuid.NewString(),
			Name:        "Demo Coffee Co",
			Slug:        "demo-coffee",
			Description: "Seed brand for local development",
			Website:     "https://demo-coffee.example.com",
		}
		if err := db.Create(&demoBrand).Error; err != nil {
			return err
		}
		budget := models.BrandBudget{
			ID:                  uuid.NewString(),
			BrandID:             demoBrand.ID,
			TotalDepositedCents: 100000, // $1,000
		}
		if err := db.Create(&budget).Error; err != nil {
			return err
		}
		pool := models.CentralPool{ID: models.CentralPoolID}
		if err := db.FirstOrCreate(&pool, "id = ?", models.CentralPoolID).Error; err != nil {
			return err
		}
		pool.TotalDepositedCents += budget.TotalDepositedCents
		if err := db.Save(&pool).Error; err != nil {
			return err
		}
		log.Printf("[Seed] demo brand %s with %d cents deposited", demoBrand.ID, budget.TotalDepositedCents)
	} else if err != nil {
		return err
	}

	giftCards := []models.GiftCard{
		{Brand: "Demo Coffee Co", ValueCents: 500},
		{Brand: "Demo Coffee Co", ValueCents: 1000},
		{Brand: "Streamflix", ValueCents: 1500},
		{Brand: "Streamflix", ValueCents: 3000},
	}
	for _, gc := range giftCards {
		var existing models.GiftCard
		err := db.Where("brand = ? AND value_cents = ?", gc.Brand, gc.ValueCents).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		gc.ID = uuid.NewString()
		if err := db.Create(&gc).Error; err != nil {
			return err
		}
		log.Printf("[Seed] gift card %s %d cents", gc.Brand, gc.ValueCents)
	}

	return nil
}
