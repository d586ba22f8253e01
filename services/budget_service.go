package services

import (
	"errors"
	"log"

	"mission-rewards-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BudgetService owns the per-brand budget counters and their global mirror,
// the central pool. Counters only ever move through TopUp / ReserveTx /
// ReleaseTx / CommitTx; every brand-level move applies the same move to the
// pool so the pool stays a strict sum of the brand rows.
type BudgetService struct {
	DB *gorm.DB
}

func NewBudgetService(db *gorm.DB) *BudgetService {
	return &BudgetService{DB: db}
}

// BudgetView adds the derived available figure to the raw counters.
type BudgetView struct {
	BrandID                  string `json:"brand_id"`
	TotalDepositedCents      int64  `json:"total_deposited_cents"`
	ReservedForMissionsCents int64  `json:"reserved_for_missions_cents"`
	SpentCents               int64  `json:"spent_cents"`
	AvailableCents           int64  `json:"available_cents"`
}

// lockBudgetTx reads the brand's budget row FOR UPDATE. A missing row is a
// configuration problem: an admin has to top the brand up before its missions
// can move money.
func (s *BudgetService) lockBudgetTx(tx *gorm.DB, brandID string) (*models.BrandBudget, error) {
	var budget models.BrandBudget
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&budget, "brand_id = ?", brandID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Configuration("no budget configured for brand %s", brandID)
	}
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

// lockPoolTx reads (or lazily creates) the singleton pool row FOR UPDATE.
func (s *BudgetService) lockPoolTx(tx *gorm.DB) (*models.CentralPool, error) {
	var pool models.CentralPool
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&pool, "id = ?", models.CentralPoolID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		pool = models.CentralPool{ID: models.CentralPoolID}
		if err := tx.Create(&pool).Error; err != nil {
			return nil, err
		}
		return &pool, nil
	}
	if err != nil {
		return nil, err
	}
	return &pool, nil
}

// TopUp deposits marketing money on a brand, creating the budget row on first
// use, and mirrors the deposit on the pool.
func (s *BudgetService) TopUp(brandID string, amountCents int64) (*models.BrandBudget, error) {
	if err := assertAmount(amountCents); err != nil {
		return nil, err
	}

	var result *models.BrandBudget
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var brand models.Brand
		if err := tx.First(&brand, "id = ?", brandID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("brand %s not found", brandID)
			}
			return err
		}

		var budget models.BrandBudget
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&budget, "brand_id = ?", brandID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			budget = models.BrandBudget{
				ID:                  uuid.NewString(),
				BrandID:             brandID,
				TotalDepositedCents: amountCents,
			}
			if err := tx.Create(&budget).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			budget.TotalDepositedCents += amountCents
			if err := tx.Save(&budget).Error; err != nil {
				return err
			}
		}

		pool, err := s.lockPoolTx(tx)
		if err != nil {
			return err
		}
		pool.TotalDepositedCents += amountCents
		if err := tx.Save(pool).Error; err != nil {
			return err
		}

		result = &budget
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetBudget returns the counters plus derived available.
func (s *BudgetService) GetBudget(brandID string) (*BudgetView, error) {
	var budget models.BrandBudget
	if err := s.DB.First(&budget, "brand_id = ?", brandID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("no budget for brand %s", brandID)
		}
		return nil, err
	}
	return &BudgetView{
		BrandID:                  budget.BrandID,
		TotalDepositedCents:      budget.TotalDepositedCents,
		ReservedForMissionsCents: budget.ReservedForMissionsCents,
		SpentCents:               budget.SpentCents,
		AvailableCents:           budget.AvailableCents(),
	}, nil
}

// ReserveTx earmarks brand money for a submitted attempt.
func (s *BudgetService) ReserveTx(tx *gorm.DB, brandID string, amountCents int64) error {
	if err := assertAmount(amountCents); err != nil {
		return err
	}
	budget, err := s.lockBudgetTx(tx, brandID)
	if err != nil {
		return err
	}
	if budget.AvailableCents() < amountCents {
		return InsufficientFunds(CodeBrandBudget,
			"brand budget available %d short of %d", budget.AvailableCents(), amountCents)
	}
	budget.ReservedForMissionsCents += amountCents
	if err := tx.Save(budget).Error; err != nil {
		return err
	}

	pool, err := s.lockPoolTx(tx)
	if err != nil {
		return err
	}
	pool.ReservedLiabilityCents += amountCents
	return tx.Save(pool).Error
}

// ReleaseTx cancels a reservation (rejected attempt). Never drops below zero.
func (s *BudgetService) ReleaseTx(tx *gorm.DB, brandID string, amountCents int64) error {
	if err := assertAmount(amountCents); err != nil {
		return err
	}
	budget, err := s.lockBudgetTx(tx, brandID)
	if err != nil {
		return err
	}
	if budget.ReservedForMissionsCents < amountCents {
		return StateConflict("brand reservation %d short of release %d",
			budget.ReservedForMissionsCents, amountCents)
	}
	budget.ReservedForMissionsCents -= amountCents
	if err := tx.Save(budget).Error; err != nil {
		return err
	}

	pool, err := s.lockPoolTx(tx)
	if err != nil {
		return err
	}
	pool.ReservedLiabilityCents -= amountCents
	if pool.ReservedLiabilityCents < 0 {
		pool.ReservedLiabilityCents = 0
	}
	return tx.Save(pool).Error
}

// CommitTx settles a reservation into spend: reserved -= X, spent += X, so
// total exposure (reserved + spent) is unchanged.
func (s *BudgetService) CommitTx(tx *gorm.DB, brandID string, amountCents int64) error {
	if err := assertAmount(amountCents); err != nil {
		return err
	}
	budget, err := s.lockBudgetTx(tx, brandID)
	if err != nil {
		return err
	}
	if budget.ReservedForMissionsCents < amountCents {
		return StateConflict("brand reservation %d short of commit %d",
			budget.ReservedForMissionsCents, amountCents)
	}
	budget.ReservedForMissionsCents -= amountCents
	budget.SpentCents += amountCents
	if err := tx.Save(budget).Error; err != nil {
		return err
	}

	pool, err := s.lockPoolTx(tx)
	if err != nil {
		return err
	}
	pool.ReservedLiabilityCents -= amountCents
	if pool.ReservedLiabilityCents < 0 {
		pool.ReservedLiabilityCents = 0
	}
	pool.TotalSpentCents += amountCents
	return tx.Save(pool).Error
}

// PoolDrift is the reconciliation result: pool counters vs the sums of the
// per-brand budget rows. All deltas zero means the mirror is exact.
type PoolDrift struct {
	DepositedDeltaCents int64 `json:"deposited_delta_cents"`
	ReservedDeltaCents  int64 `json:"reserved_delta_cents"`
	SpentDeltaCents     int64 `json:"spent_delta_cents"`
}

func (d *PoolDrift) Clean() bool {
	return d.DepositedDeltaCents == 0 && d.ReservedDeltaCents == 0 && d.SpentDeltaCents == 0
}

// ReconcilePool recomputes the pool from per-brand sums and reports drift.
// It reads only; fixing drift is an operator decision.
func (s *BudgetService) ReconcilePool() (*PoolDrift, error) {
	type sums struct {
		Deposited int64
		Reserved  int64
		Spent     int64
	}
	var agg sums
	err := s.DB.Model(&models.BrandBudget{}).
		Select("COALESCE(SUM(total_deposited_cents),0) AS deposited, COALESCE(SUM(reserved_for_missions_cents),0) AS reserved, COALESCE(SUM(spent_cents),0) AS spent").
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}

	var pool models.CentralPool
	if err := s.DB.First(&pool, "id = ?", models.CentralPoolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			pool = models.CentralPool{ID: models.CentralPoolID}
		} else {
			return nil, err
		}
	}

	drift := &PoolDrift{
		DepositedDeltaCents: pool.TotalDepositedCents - agg.Deposited,
		ReservedDeltaCents:  pool.ReservedLiabilityCents - agg.Reserved,
		SpentDeltaCents:     pool.TotalSpentCents - agg.Spent,
	}
	if !drift.Clean() {
		log.Printf("[Reconcile] central pool drift: deposited=%+d reserved=%+d spent=%+d",
			drift.DepositedDeltaCents, drift.ReservedDeltaCents, drift.SpentDeltaCents)
	}
	return drift, nil
}
