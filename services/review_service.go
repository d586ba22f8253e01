package services

import (
	"errors"
	"log"
	"time"

	"mission-rewards-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReviewService is the admin side of the attempt lifecycle. Approve and
// reject each run as one transaction covering the attempt row, the user's
// wallet and the brand budget, so an attempt can never settle on one side
// only.
type ReviewService struct {
	DB     *gorm.DB
	Wallet *WalletService
	Budget *BudgetService
}

func NewReviewService(db *gorm.DB, wallet *WalletService, budget *BudgetService) *ReviewService {
	return &ReviewService{DB: db, Wallet: wallet, Budget: budget}
}

// ApprovalResult reports the settled amounts after an approval.
type ApprovalResult struct {
	Attempt        *models.MissionAttempt `json:"attempt"`
	CreditedCents  int64                  `json:"credited_cents"`
	AvailableCents int64                  `json:"available_cents"`
	PendingCents   int64                  `json:"pending_cents"`
}

// ListAttempts lists attempts for review, optionally filtered by status,
// oldest first so reviewers work the queue in order.
func (s *ReviewService) ListAttempts(status models.AttemptStatus) ([]models.MissionAttempt, error) {
	q := s.DB.Preload("Mission").Preload("Mission.MissionType").Preload("User").
		Order("created_at ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var attempts []models.MissionAttempt
	err := q.Find(&attempts).Error
	return attempts, err
}

// lockAttemptTx reads the attempt FOR UPDATE so two reviewers cannot settle
// the same attempt twice.
func (s *ReviewService) lockAttemptTx(tx *gorm.DB, attemptID string) (*models.MissionAttempt, error) {
	var attempt models.MissionAttempt
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&attempt, "id = ?", attemptID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("attempt %s not found", attemptID)
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// ApproveAttempt settles a PENDING attempt: the user's pending reward becomes
// spendable (subject to the authoritative daily-cap check), the brand's
// reservation becomes spend, and the mission loses one unit of stock.
func (s *ReviewService) ApproveAttempt(reviewerID, attemptID string) (*ApprovalResult, error) {
	var result ApprovalResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		attempt, err := s.lockAttemptTx(tx, attemptID)
		if err != nil {
			return err
		}
		if attempt.Status != models.AttemptPending {
			return StateConflict("attempt %s already reviewed: %s", attemptID, attempt.Status)
		}

		var mission models.Mission
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&mission, "id = ?", attempt.MissionID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Configuration("attempt %s references missing mission %s", attemptID, attempt.MissionID)
			}
			return err
		}
		if mission.Status != models.MissionActive {
			return StateConflict("mission %s is %s, not ACTIVE", mission.ID, mission.Status)
		}
		if mission.QuantityRemaining <= 0 {
			return StateConflict("mission %s has no remaining quantity", mission.ID)
		}

		var mType models.MissionType
		if err := tx.First(&mType, "id = ?", mission.MissionTypeID).Error; err != nil {
			return Configuration("mission %s references missing mission type %s", mission.ID, mission.MissionTypeID)
		}

		now := time.Now()
		attempt.Status = models.AttemptApproved
		attempt.ReviewedAt = &now
		attempt.ReviewedByUserID = &reviewerID
		if err := tx.Save(attempt).Error; err != nil {
			return err
		}

		mission.QuantityRemaining--
		if err := tx.Save(&mission).Error; err != nil {
			return err
		}

		user, err := s.Wallet.UnlockPendingTx(tx, attempt.UserID, mType.UserRewardCents,
			"Mission reward: "+mission.Title, &mission.ID, &attempt.ID)
		if err != nil {
			return err
		}
		if err := s.Budget.CommitTx(tx, mission.BrandID, mType.BrandCostCents); err != nil {
			return err
		}

		result = ApprovalResult{
			Attempt:        attempt,
			CreditedCents:  mType.UserRewardCents,
			AvailableCents: user.AvailableCents,
			PendingCents:   user.PendingCents,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Review] attempt %s approved by %s, credited %d cents to user %s",
		attemptID, reviewerID, result.CreditedCents, result.Attempt.UserID)
	return &result, nil
}

// RejectAttempt voids a PENDING attempt: both reservations are released and
// nobody is paid. Mission stock is untouched.
func (s *ReviewService) RejectAttempt(reviewerID, attemptID string) (*models.MissionAttempt, error) {
	var reviewed *models.MissionAttempt
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		attempt, err := s.lockAttemptTx(tx, attemptID)
		if err != nil {
			return err
		}
		if attempt.Status != models.AttemptPending {
			return StateConflict("attempt %s already reviewed: %s", attemptID, attempt.Status)
		}

		var mission models.Mission
		if err := tx.First(&mission, "id = ?", attempt.MissionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Configuration("attempt %s references missing mission %s", attemptID, attempt.MissionID)
			}
			return err
		}
		var mType models.MissionType
		if err := tx.First(&mType, "id = ?", mission.MissionTypeID).Error; err != nil {
			return Configuration("mission %s references missing mission type %s", mission.ID, mission.MissionTypeID)
		}

		now := time.Now()
		attempt.Status = models.AttemptRejected
		attempt.ReviewedAt = &now
		attempt.ReviewedByUserID = &reviewerID
		if err := tx.Save(attempt).Error; err != nil {
			return err
		}

		if err := s.Wallet.ReleasePendingTx(tx, attempt.UserID, mType.UserRewardCents,
			"Mission attempt rejected: "+mission.Title, &mission.ID, &attempt.ID); err != nil {
			return err
		}
		if err := s.Budget.ReleaseTx(tx, mission.BrandID, mType.BrandCostCents); err != nil {
			return err
		}

		reviewed = attempt
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Review] attempt %s rejected by %s", attemptID, reviewerID)
	return reviewed, nil
}
