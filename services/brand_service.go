package services

import (
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"mission-rewards-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Social platforms whose links missions may point at.
var allowedActionHosts = map[string]bool{
	"instagram.com": true,
	"tiktok.com":    true,
	"facebook.com":  true,
	"fb.com":        true,
}

// BrandService covers the advertiser lifecycle: intake applications, brand
// provisioning, mission authoring and the brand dashboard.
type BrandService struct {
	DB     *gorm.DB
	Budget *BudgetService
}

func NewBrandService(db *gorm.DB, budget *BudgetService) *BrandService {
	return &BrandService{DB: db, Budget: budget}
}

// ApplicationInput is the public intake form.
type ApplicationInput struct {
	Email        string `json:"email"`
	BusinessName string `json:"business_name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	City         string `json:"city"`
	Website      string `json:"website"`
	Instagram    string `json:"instagram"`
	Category     string `json:"category"`
	Notes        string `json:"notes"`
}

// MissionInput is the brand-authored part of a mission.
type MissionInput struct {
	MissionTypeID string `json:"mission_type_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	ActionURL     string `json:"action_url"`
	QuantityTotal int    `json:"quantity_total"`
}

// BrandStats is the dashboard summary.
type BrandStats struct {
	MissionsByStatus map[models.MissionStatus]int64 `json:"missions_by_status"`
	AttemptsByStatus map[models.AttemptStatus]int64 `json:"attempts_by_status"`
	EngagedUsers30d  int64                          `json:"engaged_users_30d"`
	Budget           *BudgetView                    `json:"budget,omitempty"`
	LowBudget        bool                           `json:"low_budget"`
}

// lowBudgetThresholdCents flags a brand whose available money is running out.
const lowBudgetThresholdCents int64 = 5000

// ---------- Applications ----------

// Apply files an intake application. Duplicate PENDING applications for the
// same email are collapsed into the existing one.
func (s *BrandService) Apply(input ApplicationInput) (*models.BrandApplication, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, Validation("a valid email is required")
	}
	if strings.TrimSpace(input.BusinessName) == "" {
		return nil, Validation("business_name is required")
	}

	var existing models.BrandApplication
	err := s.DB.Where("email = ? AND status = ?", email, models.ApplicationPending).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	app := models.BrandApplication{
		ID:           uuid.NewString(),
		Email:        email,
		BusinessName: strings.TrimSpace(input.BusinessName),
		Phone:        input.Phone,
		Address:      input.Address,
		City:         input.City,
		Website:      input.Website,
		Instagram:    input.Instagram,
		Category:     input.Category,
		Notes:        input.Notes,
		Status:       models.ApplicationPending,
	}
	if err := s.DB.Create(&app).Error; err != nil {
		return nil, err
	}
	log.Printf("[Brand] application %s filed by %s (%s)", app.ID, app.BusinessName, app.Email)
	return &app, nil
}

// ListApplications lists intake applications, optionally filtered by status.
func (s *BrandService) ListApplications(status models.ApplicationStatus) ([]models.BrandApplication, error) {
	q := s.DB.Order("created_at ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var apps []models.BrandApplication
	err := q.Find(&apps).Error
	return apps, err
}

// ApproveApplication provisions a Brand and its operator user in one
// transaction. The budget row is created lazily on the first top-up.
func (s *BrandService) ApproveApplication(reviewerID, applicationID string) (*models.Brand, error) {
	var brand *models.Brand
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var app models.BrandApplication
		if err := tx.First(&app, "id = ?", applicationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("application %s not found", applicationID)
			}
			return err
		}
		if app.Status != models.ApplicationPending {
			return StateConflict("application %s already reviewed: %s", applicationID, app.Status)
		}

		brandID := uuid.NewString()
		b := models.Brand{
			ID:          brandID,
			Name:        app.BusinessName,
			Slug:        slug.Make(app.BusinessName) + "-" + brandID[:8],
			Description: app.Notes,
			Website:     app.Website,
		}
		if err := tx.Create(&b).Error; err != nil {
			return err
		}

		operator := models.User{
			ID:      uuid.NewString(),
			Email:   app.Email,
			Name:    app.BusinessName,
			Role:    models.RoleBrand,
			BrandID: &brandID,
		}
		if err := tx.Create(&operator).Error; err != nil {
			return err
		}

		now := time.Now()
		app.Status = models.ApplicationApproved
		app.ReviewedAt = &now
		app.ReviewedByUserID = &reviewerID
		app.BrandID = &brandID
		if err := tx.Save(&app).Error; err != nil {
			return err
		}

		brand = &b
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Brand] application %s approved, brand %s (%s) provisioned",
		applicationID, brand.ID, brand.Slug)
	return brand, nil
}

// RejectApplication marks an application rejected. Nothing is provisioned.
func (s *BrandService) RejectApplication(reviewerID, applicationID string) (*models.BrandApplication, error) {
	var app models.BrandApplication
	if err := s.DB.First(&app, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("application %s not found", applicationID)
		}
		return nil, err
	}
	if app.Status != models.ApplicationPending {
		return nil, StateConflict("application %s already reviewed: %s", applicationID, app.Status)
	}

	now := time.Now()
	app.Status = models.ApplicationRejected
	app.ReviewedAt = &now
	app.ReviewedByUserID = &reviewerID
	if err := s.DB.Save(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// ---------- Brand profile ----------

// GetBrand returns the brand with its budget preloaded.
func (s *BrandService) GetBrand(brandID string) (*models.Brand, error) {
	var brand models.Brand
	if err := s.DB.Preload("Budget").First(&brand, "id = ?", brandID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("brand %s not found", brandID)
		}
		return nil, err
	}
	return &brand, nil
}

// UpdateBrandProfile updates the editable profile fields.
func (s *BrandService) UpdateBrandProfile(brandID string, description, website, logoURL, coverURL *string) (*models.Brand, error) {
	brand, err := s.GetBrand(brandID)
	if err != nil {
		return nil, err
	}
	if description != nil {
		brand.Description = *description
	}
	if website != nil {
		brand.Website = *website
	}
	if logoURL != nil {
		brand.LogoURL = *logoURL
	}
	if coverURL != nil {
		brand.CoverURL = *coverURL
	}
	if err := s.DB.Save(brand).Error; err != nil {
		return nil, err
	}
	return brand, nil
}

// ---------- Missions ----------

func validateActionURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return Validation("action_url must be a valid https URL")
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if !allowedActionHosts[host] {
		return Validation("action_url host %q is not a supported social platform", host)
	}
	return nil
}

// CreateMission authors a mission in PENDING_APPROVAL. The pre-flight check
// requires the brand's available budget to cover the whole batch so brands
// cannot author missions they cannot fund.
func (s *BrandService) CreateMission(brandID string, input MissionInput) (*models.Mission, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, Validation("title is required")
	}
	if input.QuantityTotal <= 0 {
		return nil, Validation("quantity_total must be positive, got %d", input.QuantityTotal)
	}
	if err := validateActionURL(input.ActionURL); err != nil {
		return nil, err
	}

	var mType models.MissionType
	if err := s.DB.First(&mType, "id = ? AND is_active = ?", input.MissionTypeID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("mission type %s not found", input.MissionTypeID)
		}
		return nil, err
	}

	budget, err := s.Budget.GetBudget(brandID)
	if err != nil {
		if IsKind(err, KindNotFound) {
			return nil, InsufficientFunds(CodeBrandBudget, "brand has no budget; top up first")
		}
		return nil, err
	}
	required := int64(input.QuantityTotal) * mType.BrandCostCents
	if budget.AvailableCents < required {
		return nil, InsufficientFunds(CodeBrandBudget,
			"batch needs %d cents but only %d available", required, budget.AvailableCents)
	}

	mission := models.Mission{
		ID:                uuid.NewString(),
		BrandID:           brandID,
		MissionTypeID:     mType.ID,
		Title:             strings.TrimSpace(input.Title),
		Description:       input.Description,
		ActionURL:         strings.TrimSpace(input.ActionURL),
		Status:            models.MissionPendingApproval,
		QuantityTotal:     input.QuantityTotal,
		QuantityRemaining: input.QuantityTotal,
	}
	if err := s.DB.Create(&mission).Error; err != nil {
		return nil, err
	}
	log.Printf("[Brand] mission %s (%s x%d) created by brand %s",
		mission.ID, mType.Code, mission.QuantityTotal, brandID)
	return &mission, nil
}

// UpdateMission edits the descriptive fields of a mission that has not gone
// live yet. Quantity and type are fixed after creation.
func (s *BrandService) UpdateMission(brandID, missionID string, title, description, actionURL *string) (*models.Mission, error) {
	var mission models.Mission
	if err := s.DB.First(&mission, "id = ? AND brand_id = ?", missionID, brandID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("mission %s not found for brand", missionID)
		}
		return nil, err
	}
	if mission.Status != models.MissionPendingApproval {
		return nil, StateConflict("mission %s is %s and can no longer be edited", missionID, mission.Status)
	}

	if title != nil && strings.TrimSpace(*title) != "" {
		mission.Title = strings.TrimSpace(*title)
	}
	if description != nil {
		mission.Description = *description
	}
	if actionURL != nil {
		if err := validateActionURL(*actionURL); err != nil {
			return nil, err
		}
		mission.ActionURL = strings.TrimSpace(*actionURL)
	}
	if err := s.DB.Save(&mission).Error; err != nil {
		return nil, err
	}
	return &mission, nil
}

// SetMissionStatus moves a mission between ACTIVE and PAUSED (admin action;
// the first activation is how PENDING_APPROVAL missions go live).
func (s *BrandService) SetMissionStatus(missionID string, status models.MissionStatus) (*models.Mission, error) {
	if status != models.MissionActive && status != models.MissionPaused {
		return nil, Validation("status must be ACTIVE or PAUSED, got %s", status)
	}
	var mission models.Mission
	if err := s.DB.First(&mission, "id = ?", missionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("mission %s not found", missionID)
		}
		return nil, err
	}
	if status == models.MissionActive && mission.QuantityRemaining <= 0 {
		return nil, StateConflict("mission %s has no remaining quantity to activate", missionID)
	}

	mission.Status = status
	if err := s.DB.Save(&mission).Error; err != nil {
		return nil, err
	}
	log.Printf("[Brand] mission %s set to %s", missionID, status)
	return &mission, nil
}

// ListMissions lists a brand's missions, newest first.
func (s *BrandService) ListMissions(brandID string) ([]models.Mission, error) {
	var missions []models.Mission
	err := s.DB.Preload("MissionType").
		Where("brand_id = ?", brandID).
		Order("created_at DESC").
		Find(&missions).Error
	return missions, err
}

// GetStats assembles the brand dashboard: mission and attempt counts by
// status, distinct engaged users over the last 30 days, and the budget view
// with a low-budget flag.
func (s *BrandService) GetStats(brandID string) (*BrandStats, error) {
	if _, err := s.GetBrand(brandID); err != nil {
		return nil, err
	}

	stats := &BrandStats{
		MissionsByStatus: map[models.MissionStatus]int64{},
		AttemptsByStatus: map[models.AttemptStatus]int64{},
	}

	type statusCount struct {
		Status string
		Total  int64
	}
	var mCounts []statusCount
	err := s.DB.Model(&models.Mission{}).
		Select("status, COUNT(*) AS total").
		Where("brand_id = ?", brandID).
		Group("status").
		Scan(&mCounts).Error
	if err != nil {
		return nil, err
	}
	for _, c := range mCounts {
		stats.MissionsByStatus[models.MissionStatus(c.Status)] = c.Total
	}

	var aCounts []statusCount
	err = s.DB.Model(&models.MissionAttempt{}).
		Select("mission_attempts.status AS status, COUNT(*) AS total").
		Joins("JOIN missions ON missions.id = mission_attempts.mission_id").
		Where("missions.brand_id = ?", brandID).
		Group("mission_attempts.status").
		Scan(&aCounts).Error
	if err != nil {
		return nil, err
	}
	for _, c := range aCounts {
		stats.AttemptsByStatus[models.AttemptStatus(c.Status)] = c.Total
	}

	since := time.Now().AddDate(0, 0, -30)
	err = s.DB.Model(&models.MissionAttempt{}).
		Joins("JOIN missions ON missions.id = mission_attempts.mission_id").
		Where("missions.brand_id = ? AND mission_attempts.created_at >= ?", brandID, since).
		Distinct("mission_attempts.user_id").
		Count(&stats.EngagedUsers30d).Error
	if err != nil {
		return nil, err
	}

	budget, err := s.Budget.GetBudget(brandID)
	if err == nil {
		stats.Budget = budget
		stats.LowBudget = budget.AvailableCents < lowBudgetThresholdCents
	} else if !IsKind(err, KindNotFound) {
		return nil, err
	} else {
		stats.LowBudget = true
	}
	return stats, nil
}
