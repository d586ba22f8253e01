package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"mission-rewards-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GiftCardService is the spend side of the wallet: catalog, purchase and
// redemption. Purchases debit the user's available balance; brand budgets and
// the central pool are not involved, that money already left the pool when
// the reward was approved.
type GiftCardService struct {
	DB     *gorm.DB
	Wallet *WalletService
}

func NewGiftCardService(db *gorm.DB, wallet *WalletService) *GiftCardService {
	return &GiftCardService{DB: db, Wallet: wallet}
}

// PurchaseResult pairs the purchase with the balance it left behind.
// Replayed is true when an idempotency key matched an earlier purchase.
type PurchaseResult struct {
	Purchase       *models.GiftCardPurchase `json:"purchase"`
	Replayed       bool                     `json:"replayed"`
	AvailableCents int64                    `json:"available_cents"`
}

// List returns the catalog, cheapest first.
func (s *GiftCardService) List() ([]models.GiftCard, error) {
	var cards []models.GiftCard
	err := s.DB.Order("value_cents ASC, brand ASC").Find(&cards).Error
	return cards, err
}

func newRedemptionCode() string {
	return "GC-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// PurchaseByUserID buys a gift card with available balance. When
// clientRequestID is set the purchase is idempotent: a replay with the same
// key returns the original purchase without a second debit.
func (s *GiftCardService) PurchaseByUserID(userID, giftCardID string, clientRequestID *string) (*PurchaseResult, error) {
	if clientRequestID != nil && *clientRequestID != "" {
		var prior models.GiftCardPurchase
		err := s.DB.Preload("GiftCard").
			Where("client_request_id = ?", *clientRequestID).
			First(&prior).Error
		if err == nil {
			if prior.UserID != userID || prior.GiftCardID != giftCardID {
				return nil, StateConflict("client_request_id already used for a different purchase")
			}
			user, err := s.Wallet.GetUserByID(userID)
			if err != nil {
				return nil, err
			}
			return &PurchaseResult{Purchase: &prior, Replayed: true, AvailableCents: user.AvailableCents}, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var result PurchaseResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var card models.GiftCard
		if err := tx.First(&card, "id = ?", giftCardID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("gift card %s not found", giftCardID)
			}
			return err
		}

		purchase := models.GiftCardPurchase{
			ID:          uuid.NewString(),
			UserID:      userID,
			GiftCardID:  card.ID,
			Code:        newRedemptionCode(),
			Status:      models.PurchaseActive,
			PurchasedAt: time.Now(),
		}
		if clientRequestID != nil && *clientRequestID != "" {
			purchase.ClientRequestID = clientRequestID
		}
		if err := tx.Create(&purchase).Error; err != nil {
			return err
		}

		user, err := s.Wallet.DebitTx(tx, userID, card.ValueCents,
			"Gift card purchase: "+card.Brand, &card.ID)
		if err != nil {
			return err
		}

		purchase.GiftCard = &card
		result = PurchaseResult{Purchase: &purchase, AvailableCents: user.AvailableCents}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[GiftCard] purchase %s (%s %d cents) by user %s",
		result.Purchase.ID, result.Purchase.GiftCard.Brand, result.Purchase.GiftCard.ValueCents, userID)
	return &result, nil
}

// GetMyPurchases lists the user's purchases, newest first.
func (s *GiftCardService) GetMyPurchases(userID string) ([]models.GiftCardPurchase, error) {
	var purchases []models.GiftCardPurchase
	err := s.DB.Preload("GiftCard").
		Where("user_id = ?", userID).
		Order("purchased_at DESC").
		Find(&purchases).Error
	return purchases, err
}

// UsePurchase marks the owner's purchase as redeemed.
func (s *GiftCardService) UsePurchase(userID, purchaseID string) (*models.GiftCardPurchase, error) {
	var used *models.GiftCardPurchase
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var purchase models.GiftCardPurchase
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&purchase, "id = ? AND user_id = ?", purchaseID, userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("purchase %s not found", purchaseID)
		}
		if err != nil {
			return err
		}
		return s.markUsedTx(tx, &purchase, userID, &used)
	})
	if err != nil {
		return nil, err
	}
	return used, nil
}

// RedeemByCode marks a purchase used by its code, for point-of-sale staff who
// only see the code.
func (s *GiftCardService) RedeemByCode(staffUserID, code string) (*models.GiftCardPurchase, error) {
	var used *models.GiftCardPurchase
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var purchase models.GiftCardPurchase
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&purchase, "code = ?", strings.ToUpper(strings.TrimSpace(code))).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("no purchase with that code")
		}
		if err != nil {
			return err
		}
		return s.markUsedTx(tx, &purchase, staffUserID, &used)
	})
	if err != nil {
		return nil, err
	}
	return used, nil
}

func (s *GiftCardService) markUsedTx(tx *gorm.DB, purchase *models.GiftCardPurchase, byUserID string, out **models.GiftCardPurchase) error {
	if purchase.Status != models.PurchaseActive {
		return StateConflict("purchase %s already %s", purchase.ID, purchase.Status)
	}
	now := time.Now()
	purchase.Status = models.PurchaseUsed
	purchase.UsedAt = &now
	purchase.UsedByUserID = &byUserID
	if err := tx.Save(purchase).Error; err != nil {
		return err
	}
	*out = purchase
	return nil
}
