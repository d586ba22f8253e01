package services

import (
	"testing"
	"time"

	"mission-rewards-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreditAddsBalanceAndLedgerEntry(t *testing.T) {
	db := newTestDB(t)
	wallet := NewWalletService(db)
	user := createTestUser(t, db)

	updated, err := wallet.CreditByUserID(user.ID, 250, "signup bonus", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(250), updated.AvailableCents)
	assert.Equal(t, int64(0), updated.PendingCents)

	txs, err := wallet.GetTransactions(user.ID, 10)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, models.TxCredit, txs[0].Type)
	assert.Equal(t, int64(250), txs[0].AmountCents)
}

func TestCreditRejectsNonPositiveAmount(t *testing.T) {
	db := newTestDB(t)
	wallet := NewWalletService(db)
	user := createTestUser(t, db)

	_, err := wallet.CreditByUserID(user.ID, 0, "zero", nil, nil)
	assert.True(t, IsKind(err, KindValidation))

	_, err = wallet.CreditByUserID(user.ID, -5, "negative", nil, nil)
	assert.True(t, IsKind(err, KindValidation))
}

func TestDebitFailsOnInsufficientBalance(t *testing.T) {
	db := newTestDB(t)
	wallet := NewWalletService(db)
	user := createTestUser(t, db)

	_, err := wallet.CreditByUserID(user.ID, 100, "topup", nil, nil)
	require.NoError(t, err)

	_, err = wallet.DebitByUserID(user.ID, 150, "too much", nil)
	require.Error(t, err)
	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, KindInsufficientFunds, se.Kind)
	assert.Equal(t, CodeUserBalance, se.Code)

	// Balance untouched, no DEBIT entry written.
	u, err := wallet.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), u.AvailableCents)
	txs, _ := wallet.GetTransactions(user.ID, 10)
	assert.Len(t, txs, 1)
}

func TestDebitSpendsAvailable(t *testing.T) {
	db := newTestDB(t)
	wallet := NewWalletService(db)
	user := createTestUser(t, db)

	_, err := wallet.CreditByUserID(user.ID, 500, "topup", nil, nil)
	require.NoError(t, err)
	updated, err := wallet.DebitByUserID(user.ID, 200, "spend", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(300), updated.AvailableCents)
}

func TestPendingLifecycle(t *testing.T) {
	db := newTestDB(t)
	wallet := NewWalletService(db)
	user := createTestUser(t, db)

	err := db.Transaction(func(tx *gorm.DB) error {
		return wallet.AddPendingTx(tx, user.ID, 75, "pending reward", nil, nil)
	})
	require.NoError(t, err)

	u, _ := wallet.GetUserByID(user.ID)
	assert.Equal(t, int64(75), u.PendingCents)
	assert.Equal(t, int64(0), u.AvailableCents)

	// Release puts nothing in available.
	err = db.Transaction(func(tx *gorm.DB) error {
		return wallet.ReleasePendingTx(tx, user.ID, 75, "rejected", nil, nil)
	})
	require.NoError(t, err)
	u, _ = wallet.GetUserByID(user.ID)
	assert.Equal(t, int64(0), u.PendingCents)
	assert.Equal(t, int64(0), u.AvailableCents)
}

func TestReleaseMoreThanPendingConflicts(t *testing.T) {
	db := newTestDB(t)
	wallet := NewWalletService(db)
	user := createTestUser(t, db)

	err := db.Transaction(func(tx *gorm.DB) error {
		return wallet.ReleasePendingTx(tx, user.ID, 10, "nothing pending", nil, nil)
	})
	assert.True(t, IsKind(err, KindStateConflict))
}

func TestUnlockMovesPendingToAvailableAndCountsTowardCap(t *testing.T) {
	db := newTestDB(t)
	wallet := NewWalletService(db)
	user := createTestUser(t, db)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := wallet.AddPendingTx(tx, user.ID, 300, "pending", nil, nil); err != nil {
			return err
		}
		_, err := wallet.UnlockPendingTx(tx, user.ID, 300, "approved", nil, nil)
		return err
	})
	require.NoError(t, err)

	u, _ := wallet.GetUserByID(user.ID)
	assert.Equal(t, int64(300), u.AvailableCents)
	assert.Equal(t, int64(0), u.PendingCents)

	state, err := wallet.GetDailyCapState(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(300), state.EarnedCents)
	assert.Equal(t, CapStarterCents-300, state.RemainingCents)
	assert.False(t, state.Reached)
}

func TestUnlockBlockedByDailyCap(t *testing.T) {
	db := newTestDB(t)
	wallet := NewWalletService(db)
	user := createTestUser(t, db)

	// Fill the starter cap exactly.
	_, err := wallet.CreditByUserID(user.ID, CapStarterCents, "max out", nil, nil)
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := wallet.AddPendingTx(tx, user.ID, 50, "pending", nil, nil); err != nil {
			return err
		}
		_, err := wallet.UnlockPendingTx(tx, user.ID, 50, "over cap", nil, nil)
		return err
	})
	require.Error(t, err)
	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, KindInsufficientFunds, se.Kind)
	assert.Equal(t, CodeDailyCap, se.Code)
}

func TestUnlockPartiallyOverCapIsRejectedWhole(t *testing.T) {
	db := newTestDB(t)
	wallet := NewWalletService(db)
	user := createTestUser(t, db)

	_, err := wallet.CreditByUserID(user.ID, CapStarterCents-20, "almost there", nil, nil)
	require.NoError(t, err)

	// 50 would cross the line; no partial credit happens.
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := wallet.AddPendingTx(tx, user.ID, 50, "pending", nil, nil); err != nil {
			return err
		}
		_, err := wallet.UnlockPendingTx(tx, user.ID, 50, "partial", nil, nil)
		return err
	})
	assert.True(t, IsKind(err, KindInsufficientFunds))

	state, _ := wallet.GetDailyCapState(user.ID)
	assert.Equal(t, CapStarterCents-20, state.EarnedCents)
}

func TestStreakExtendsFromYesterday(t *testing.T) {
	db := newTestDB(t)
	wallet := NewWalletService(db)
	user := createTestUser(t, db)

	// Simulate six consecutive prior days ending yesterday.
	user.StreakDays = 6
	user.LastEarningDate = dateKey(time.Now().AddDate(0, 0, -1))
	require.NoError(t, db.Save(user).Error)

	updated, err := wallet.CreditByUserID(user.ID, 100, "day seven", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.StreakDays)
	assert.Equal(t, models.BadgeRegular, updated.BadgeLevel)
	assert.Equal(t, CapRegularCents, updated.DailyCapCents)
}

func TestStreakResetsAfterGap(t *testing.T) {
	db := newTestDB(t)
	wallet := NewWalletService(db)
	user := createTestUser(t, db)

	user.StreakDays = 12
	user.BadgeLevel = models.BadgeRegular
	user.DailyCapCents = CapRegularCents
	user.LastEarningDate = dateKey(time.Now().AddDate(0, 0, -3))
	require.NoError(t, db.Save(user).Error)

	updated, err := wallet.CreditByUserID(user.ID, 100, "back after a gap", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.StreakDays)
	assert.Equal(t, models.BadgeStarter, updated.BadgeLevel)
	assert.Equal(t, CapStarterCents, updated.DailyCapCents)
}

func TestStreakSameDayDoesNotDoubleCount(t *testing.T) {
	db := newTestDB(t)
	wallet := NewWalletService(db)
	user := createTestUser(t, db)

	_, err := wallet.CreditByUserID(user.ID, 100, "first", nil, nil)
	require.NoError(t, err)
	updated, err := wallet.CreditByUserID(user.ID, 100, "second same day", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.StreakDays)
}

func TestEliteBadgeAtThirtyDays(t *testing.T) {
	db := newTestDB(t)
	wallet := NewWalletService(db)
	user := createTestUser(t, db)

	user.StreakDays = 29
	user.LastEarningDate = dateKey(time.Now().AddDate(0, 0, -1))
	require.NoError(t, db.Save(user).Error)

	updated, err := wallet.CreditByUserID(user.ID, 100, "day thirty", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 30, updated.StreakDays)
	assert.Equal(t, models.BadgeElite, updated.BadgeLevel)
	assert.Equal(t, CapEliteCents, updated.DailyCapCents)
}

func TestXPFloorIsOne(t *testing.T) {
	db := newTestDB(t)
	wallet := NewWalletService(db)
	user := createTestUser(t, db)

	updated, err := wallet.CreditByUserID(user.ID, 25, "small credit", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.XP)

	updated, err = wallet.CreditByUserID(user.ID, 250, "bigger credit", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated.XP)
}

func TestLedgerMatchesCachedBalances(t *testing.T) {
	db := newTestDB(t)
	wallet := NewWalletService(db)
	user := createTestUser(t, db)

	_, err := wallet.CreditByUserID(user.ID, 400, "credit", nil, nil)
	require.NoError(t, err)
	_, err = wallet.DebitByUserID(user.ID, 150, "debit", nil)
	require.NoError(t, err)
	err = db.Transaction(func(tx *gorm.DB) error {
		return wallet.AddPendingTx(tx, user.ID, 120, "pending", nil, nil)
	})
	require.NoError(t, err)

	u, _ := wallet.GetUserByID(user.ID)
	available, pending := ledgerSums(t, db, user.ID)
	assert.Equal(t, u.AvailableCents, available)
	assert.Equal(t, u.PendingCents, pending)
}

func TestGetTransactionsNewestFirstAndCapped(t *testing.T) {
	db := newTestDB(t)
	wallet := NewWalletService(db)
	user := createTestUser(t, db)

	for i := 0; i < 5; i++ {
		_, err := wallet.CreditByUserID(user.ID, 10+int64(i), "credit", nil, nil)
		require.NoError(t, err)
	}

	txs, err := wallet.GetTransactions(user.ID, 3)
	require.NoError(t, err)
	assert.Len(t, txs, 3)
}

func TestGetDailyCapStateUnknownUser(t *testing.T) {
	db := newTestDB(t)
	wallet := NewWalletService(db)

	_, err := wallet.GetDailyCapState("no-such-user")
	assert.True(t, IsKind(err, KindNotFound))
}
