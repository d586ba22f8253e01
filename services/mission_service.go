package services

import (
	"errors"
	"log"

	"mission-rewards-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MissionService is the user-facing side of missions: discovery feed and
// attempt submission. Review (approve/reject) lives in ReviewService.
type MissionService struct {
	DB     *gorm.DB
	Wallet *WalletService
	Budget *BudgetService
}

func NewMissionService(db *gorm.DB, wallet *WalletService, budget *BudgetService) *MissionService {
	return &MissionService{DB: db, Wallet: wallet, Budget: budget}
}

// MissionFeedItem is one mission in the discovery feed, annotated with the
// viewer's relationship to it.
type MissionFeedItem struct {
	Mission       models.Mission        `json:"mission"`
	RewardCents   int64                 `json:"reward_cents"`
	AttemptStatus *models.AttemptStatus `json:"attempt_status,omitempty"`
	AttemptID     *string               `json:"attempt_id,omitempty"`
}

// MissionFeed is the feed plus the viewer's cap state. When the cap is
// reached the list is empty and BlockedReason says why.
type MissionFeed struct {
	Missions      []MissionFeedItem `json:"missions"`
	Cap           *DailyCapState    `json:"cap"`
	BlockedReason string            `json:"blocked_reason,omitempty"`
}

// SubmitResult reports what happened to a submission. Duplicate is true when
// an identical PENDING attempt already existed and was returned unchanged.
type SubmitResult struct {
	Attempt      *models.MissionAttempt `json:"attempt"`
	Duplicate    bool                   `json:"duplicate"`
	PendingCents int64                  `json:"pending_cents"`
}

// FindActiveForUser builds the discovery feed: ACTIVE missions with stock,
// whose reward still fits under today's remaining allowance, annotated with
// the viewer's latest attempt per mission.
func (s *MissionService) FindActiveForUser(userID string) (*MissionFeed, error) {
	cap, err := s.Wallet.GetDailyCapState(userID)
	if err != nil {
		return nil, err
	}
	if cap.Reached {
		return &MissionFeed{
			Missions:      []MissionFeedItem{},
			Cap:           cap,
			BlockedReason: "DAILY_CAP_REACHED",
		}, nil
	}

	var missions []models.Mission
	err = s.DB.Preload("MissionType").Preload("Brand").
		Where("status = ? AND quantity_remaining > 0", models.MissionActive).
		Order("created_at DESC").
		Find(&missions).Error
	if err != nil {
		return nil, err
	}

	var attempts []models.MissionAttempt
	if err := s.DB.Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	latest := make(map[string]*models.MissionAttempt, len(attempts))
	for i := range attempts {
		latest[attempts[i].MissionID] = &attempts[i]
	}

	items := make([]MissionFeedItem, 0, len(missions))
	for _, m := range missions {
		if m.MissionType == nil || !m.MissionType.IsActive {
			continue
		}
		reward := m.MissionType.UserRewardCents
		if reward > cap.RemainingCents {
			continue
		}
		item := MissionFeedItem{Mission: m, RewardCents: reward}
		if a, ok := latest[m.ID]; ok {
			item.AttemptStatus = &a.Status
			item.AttemptID = &a.ID
		}
		items = append(items, item)
	}

	return &MissionFeed{Missions: items, Cap: cap}, nil
}

// SubmitAttempt records a user's claim of having completed a mission and
// reserves the money on both sides: the reward lands in the user's pending
// pocket and the brand cost is earmarked on the brand budget.
//
// A cheap cap estimate runs before the transaction to reject hopeless
// submissions early; approval re-checks the cap authoritatively.
func (s *MissionService) SubmitAttempt(userID, missionID string) (*SubmitResult, error) {
	cap, err := s.Wallet.GetDailyCapState(userID)
	if err != nil {
		return nil, err
	}
	if cap.Reached {
		return nil, InsufficientFunds(CodeDailyCap,
			"daily cap reached: earned %d of %d today", cap.EarnedCents, cap.CapCents)
	}

	var result SubmitResult
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// Lock the mission row first: it serializes concurrent submissions for
		// the same mission, so the duplicate check below cannot race.
		var mission models.Mission
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&mission, "id = ?", missionID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("mission %s not found", missionID)
		}
		if err != nil {
			return err
		}

		if mission.Status != models.MissionActive {
			return StateConflict("mission %s is %s, not ACTIVE", missionID, mission.Status)
		}
		if mission.QuantityRemaining <= 0 {
			return StateConflict("mission %s has no remaining quantity", missionID)
		}

		var mType models.MissionType
		if err := tx.First(&mType, "id = ?", mission.MissionTypeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Configuration("mission %s references missing mission type %s", missionID, mission.MissionTypeID)
			}
			return err
		}
		if !mType.IsActive {
			return StateConflict("mission type %s is inactive", mType.Code)
		}
		if mType.UserRewardCents <= 0 || mType.BrandCostCents < mType.UserRewardCents {
			return Configuration("mission type %s has invalid pricing (reward=%d cost=%d)",
				mType.Code, mType.UserRewardCents, mType.BrandCostCents)
		}
		if mType.UserRewardCents > cap.RemainingCents {
			return InsufficientFunds(CodeDailyCap,
				"reward %d exceeds remaining daily allowance %d", mType.UserRewardCents, cap.RemainingCents)
		}

		var existing models.MissionAttempt
		err = tx.Where("user_id = ? AND mission_id = ?", userID, missionID).
			Order("created_at DESC").
			First(&existing).Error
		if err == nil {
			switch existing.Status {
			case models.AttemptApproved:
				return StateConflict("mission %s already completed by user", missionID)
			case models.AttemptPending:
				user, err := s.Wallet.GetUserByID(userID)
				if err != nil {
					return err
				}
				result = SubmitResult{Attempt: &existing, Duplicate: true, PendingCents: user.PendingCents}
				return nil
			}
			// REJECTED: the user may try again, fall through.
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		attempt := models.MissionAttempt{
			ID:        uuid.NewString(),
			UserID:    userID,
			MissionID: missionID,
			Status:    models.AttemptPending,
		}
		if err := tx.Create(&attempt).Error; err != nil {
			return err
		}

		if err := s.Budget.ReserveTx(tx, mission.BrandID, mType.BrandCostCents); err != nil {
			return err
		}
		if err := s.Wallet.AddPendingTx(tx, userID, mType.UserRewardCents,
			"Mission reward pending: "+mission.Title, &missionID, &attempt.ID); err != nil {
			return err
		}

		user, err := s.Wallet.lockUserTx(tx, userID)
		if err != nil {
			return err
		}
		result = SubmitResult{Attempt: &attempt, PendingCents: user.PendingCents}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.Duplicate {
		log.Printf("[Mission] attempt %s submitted by user %s for mission %s",
			result.Attempt.ID, userID, missionID)
	}
	return &result, nil
}

// GetMyAttempts lists the user's attempts, newest first, with mission data.
func (s *MissionService) GetMyAttempts(userID string) ([]models.MissionAttempt, error) {
	var attempts []models.MissionAttempt
	err := s.DB.Preload("Mission").Preload("Mission.MissionType").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&attempts).Error
	return attempts, err
}

// ListMissionTypes returns the reference catalog.
func (s *MissionService) ListMissionTypes() ([]models.MissionType, error) {
	var types []models.MissionType
	err := s.DB.Where("is_active = ?", true).Order("user_reward_cents ASC").Find(&types).Error
	return types, err
}
