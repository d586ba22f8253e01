package services

import (
	"errors"
	"time"

	"mission-rewards-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Badge caps (cents per local calendar day).
const (
	CapStarterCents int64 = 1000 // $10/day
	CapRegularCents int64 = 2000 // $20/day
	CapEliteCents   int64 = 5000 // $50/day
)

const dateKeyLayout = "2006-01-02"

// WalletService owns the ledger and the badge/daily-cap state.
//
// Every mutating method comes in two flavors: a standalone one that opens its
// own transaction, and a *Tx variant taking the caller's transaction handle so
// a higher-level flow (approve, gift-card purchase) can compose several
// ledger moves into one atomic scope. The *Tx variants never open a nested
// transaction.
type WalletService struct {
	DB *gorm.DB
}

func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{DB: db}
}

// DailyCapState is the user-facing view of today's earning allowance.
type DailyCapState struct {
	CapCents       int64             `json:"cap_cents"`
	EarnedCents    int64             `json:"earned_cents"`
	RemainingCents int64             `json:"remaining_cents"`
	Reached        bool              `json:"reached"`
	ResetsAtUTC    time.Time         `json:"resets_at_utc"`
	Badge          models.BadgeLevel `json:"badge"`
	StreakDays     int               `json:"streak_days"`
}

func badgeForStreak(streakDays int) (models.BadgeLevel, int64) {
	switch {
	case streakDays >= 30:
		return models.BadgeElite, CapEliteCents
	case streakDays >= 7:
		return models.BadgeRegular, CapRegularCents
	default:
		return models.BadgeStarter, CapStarterCents
	}
}

func dateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

func startOfNextLocalDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}

func assertAmount(amountCents int64) error {
	if amountCents <= 0 {
		return Validation("amountCents must be a positive integer, got %d", amountCents)
	}
	return nil
}

// GetUserByID is a plain read, no lock.
func (s *WalletService) GetUserByID(userID string) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("user %s not found", userID)
		}
		return nil, err
	}
	return &user, nil
}

// lockUserTx reads the user row FOR UPDATE so concurrent balance moves for the
// same user serialize at the database.
func (s *WalletService) lockUserTx(tx *gorm.DB, userID string) (*models.User, error) {
	var user models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("user %s not found", userID)
		}
		return nil, err
	}
	return &user, nil
}

func appendEntryTx(tx *gorm.DB, userID string, txType models.TransactionType, amountCents int64, note string, missionID, attemptID, giftCardID *string) error {
	entry := models.WalletTransaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        txType,
		AmountCents: amountCents,
		Note:        note,
		MissionID:   missionID,
		AttemptID:   attemptID,
		GiftCardID:  giftCardID,
	}
	return tx.Create(&entry).Error
}

// ---------- CREDIT ----------

// CreditByUserID opens its own transaction around CreditTx.
func (s *WalletService) CreditByUserID(userID string, amountCents int64, note string, missionID, attemptID *string) (*models.User, error) {
	var updated *models.User
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		u, err := s.CreditTx(tx, userID, amountCents, note, missionID, attemptID)
		if err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CreditTx adds spendable money, appends a CREDIT entry and bumps the daily
// earning / streak / badge state.
func (s *WalletService) CreditTx(tx *gorm.DB, userID string, amountCents int64, note string, missionID, attemptID *string) (*models.User, error) {
	if err := assertAmount(amountCents); err != nil {
		return nil, err
	}

	user, err := s.lockUserTx(tx, userID)
	if err != nil {
		return nil, err
	}

	user.AvailableCents += amountCents
	if err := s.bumpDailyEarningTx(tx, user, amountCents, time.Now()); err != nil {
		return nil, err
	}
	if err := tx.Save(user).Error; err != nil {
		return nil, err
	}

	if err := appendEntryTx(tx, userID, models.TxCredit, amountCents, note, missionID, attemptID, nil); err != nil {
		return nil, err
	}
	return user, nil
}

// ---------- DEBIT ----------

func (s *WalletService) DebitByUserID(userID string, amountCents int64, note string, giftCardID *string) (*models.User, error) {
	var updated *models.User
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		u, err := s.DebitTx(tx, userID, amountCents, note, giftCardID)
		if err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DebitTx spends available money; fails when the balance does not cover it.
func (s *WalletService) DebitTx(tx *gorm.DB, userID string, amountCents int64, note string, giftCardID *string) (*models.User, error) {
	if err := assertAmount(amountCents); err != nil {
		return nil, err
	}

	user, err := s.lockUserTx(tx, userID)
	if err != nil {
		return nil, err
	}
	if user.AvailableCents < amountCents {
		return nil, InsufficientFunds(CodeUserBalance,
			"available balance %d short of %d", user.AvailableCents, amountCents)
	}

	user.AvailableCents -= amountCents
	if err := tx.Save(user).Error; err != nil {
		return nil, err
	}
	if err := appendEntryTx(tx, userID, models.TxDebit, amountCents, note, nil, nil, giftCardID); err != nil {
		return nil, err
	}
	return user, nil
}

// ---------- PENDING (reservation pocket) ----------

// AddPendingTx earmarks a mission reward: not spendable until approval.
func (s *WalletService) AddPendingTx(tx *gorm.DB, userID string, amountCents int64, note string, missionID, attemptID *string) error {
	if err := assertAmount(amountCents); err != nil {
		return err
	}

	user, err := s.lockUserTx(tx, userID)
	if err != nil {
		return err
	}
	user.PendingCents += amountCents
	if err := tx.Save(user).Error; err != nil {
		return err
	}
	return appendEntryTx(tx, userID, models.TxReserve, amountCents, note, missionID, attemptID, nil)
}

// ReleasePendingTx cancels a reservation (mission rejected). No credit happens.
func (s *WalletService) ReleasePendingTx(tx *gorm.DB, userID string, amountCents int64, note string, missionID, attemptID *string) error {
	if err := assertAmount(amountCents); err != nil {
		return err
	}

	user, err := s.lockUserTx(tx, userID)
	if err != nil {
		return err
	}
	if user.PendingCents < amountCents {
		return StateConflict("pending balance %d short of release %d", user.PendingCents, amountCents)
	}
	user.PendingCents -= amountCents
	if err := tx.Save(user).Error; err != nil {
		return err
	}
	return appendEntryTx(tx, userID, models.TxRelease, amountCents, note, missionID, attemptID, nil)
}

// UnlockPendingTx settles a reservation into spendable balance.
//
// The daily cap is re-checked here, against the row state inside the caller's
// transaction. This is the authoritative check: other approvals may have
// consumed the allowance since the attempt was submitted, so the estimate done
// at submit time is not enough.
func (s *WalletService) UnlockPendingTx(tx *gorm.DB, userID string, amountCents int64, note string, missionID, attemptID *string) (*models.User, error) {
	if err := assertAmount(amountCents); err != nil {
		return nil, err
	}

	user, err := s.lockUserTx(tx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	earned, err := s.earnedTodayTx(tx, userID, now)
	if err != nil {
		return nil, err
	}
	cap := user.DailyCapCents
	if cap <= 0 {
		cap = CapStarterCents
	}
	if earned >= cap || earned+amountCents > cap {
		remaining := cap - earned
		if remaining < 0 {
			remaining = 0
		}
		return nil, InsufficientFunds(CodeDailyCap,
			"daily cap reached: earned %d of %d today, %d remaining", earned, cap, remaining)
	}

	if user.PendingCents < amountCents {
		return nil, StateConflict("pending balance %d short of unlock %d", user.PendingCents, amountCents)
	}

	user.PendingCents -= amountCents
	user.AvailableCents += amountCents
	if err := s.bumpDailyEarningTx(tx, user, amountCents, now); err != nil {
		return nil, err
	}
	if err := tx.Save(user).Error; err != nil {
		return nil, err
	}

	if err := appendEntryTx(tx, userID, models.TxCredit, amountCents, note, missionID, attemptID, nil); err != nil {
		return nil, err
	}
	return user, nil
}

// ---------- Daily earning / streak / badge ----------

func (s *WalletService) earnedTodayTx(tx *gorm.DB, userID string, now time.Time) (int64, error) {
	var row models.UserDailyEarning
	err := tx.Where("user_id = ? AND date_key = ?", userID, dateKey(now)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.EarnedCents, nil
}

// bumpDailyEarningTx upserts today's earning row and rolls the streak forward
// incrementally: same day leaves it alone, yesterday extends it, anything
// older resets it to 1. Badge tier and cap follow from the streak. The caller
// saves the user row.
func (s *WalletService) bumpDailyEarningTx(tx *gorm.DB, user *models.User, creditCents int64, now time.Time) error {
	today := dateKey(now)

	var row models.UserDailyEarning
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND date_key = ?", user.ID, today).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = models.UserDailyEarning{
			ID:          uuid.NewString(),
			UserID:      user.ID,
			DateKey:     today,
			EarnedCents: creditCents,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		row.EarnedCents += creditCents
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
	}

	yesterday := dateKey(now.AddDate(0, 0, -1))
	switch user.LastEarningDate {
	case today:
		// already counted
	case yesterday:
		user.StreakDays++
	default:
		user.StreakDays = 1
	}
	user.LastEarningDate = today

	badge, cap := badgeForStreak(user.StreakDays)
	user.BadgeLevel = badge
	user.DailyCapCents = cap

	xp := creditCents / 100
	if xp < 1 {
		xp = 1
	}
	user.XP += xp
	user.LastActiveAt = &now
	return nil
}

// GetDailyCapState reads today's allowance without mutating anything. This is
// the estimate used at submit time; approval re-checks inside its transaction.
func (s *WalletService) GetDailyCapState(userID string) (*DailyCapState, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	earned, err := s.earnedTodayTx(s.DB, userID, now)
	if err != nil {
		return nil, err
	}

	cap := user.DailyCapCents
	if cap <= 0 {
		cap = CapStarterCents
	}
	remaining := cap - earned
	if remaining < 0 {
		remaining = 0
	}

	return &DailyCapState{
		CapCents:       cap,
		EarnedCents:    earned,
		RemainingCents: remaining,
		Reached:        earned >= cap,
		ResetsAtUTC:    startOfNextLocalDay(now).UTC(),
		Badge:          user.BadgeLevel,
		StreakDays:     user.StreakDays,
	}, nil
}

// GetTransactions returns the most recent ledger entries, newest first.
func (s *WalletService) GetTransactions(userID string, limit int) ([]models.WalletTransaction, error) {
	if _, err := s.GetUserByID(userID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 200
	}
	var txs []models.WalletTransaction
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&txs).Error
	return txs, err
}
