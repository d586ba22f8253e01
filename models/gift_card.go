package models

import "time"

// GiftCard is a catalog item users buy with their available balance.
type GiftCard struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	Brand      string `gorm:"not null;uniqueIndex:uniq_brand_value" json:"brand"`
	ValueCents int64  `gorm:"not null;uniqueIndex:uniq_brand_value" json:"value_cents"`

	Timestamps
}

// PurchaseStatus is the redemption state of a purchased gift card.
type PurchaseStatus string

const (
	PurchaseActive PurchaseStatus = "ACTIVE"
	PurchaseUsed   PurchaseStatus = "USED"
)

// GiftCardPurchase is one redemption code bought by a user.
// ClientRequestID makes the purchase idempotent: a replayed request with the
// same key returns the existing purchase instead of debiting twice.
type GiftCardPurchase struct {
	ID              string         `gorm:"primaryKey;type:uuid" json:"id"`
	UserID          string         `gorm:"type:uuid;not null;index" json:"user_id"`
	GiftCardID      string         `gorm:"type:uuid;not null" json:"gift_card_id"`
	Code            string         `gorm:"uniqueIndex;not null" json:"code"`
	ClientRequestID *string        `gorm:"uniqueIndex" json:"client_request_id,omitempty"`
	Status          PurchaseStatus `gorm:"type:varchar(16);not null;default:'ACTIVE';index" json:"status"`

	PurchasedAt  time.Time  `gorm:"not null" json:"purchased_at"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
	UsedByUserID *string    `gorm:"type:uuid" json:"used_by_user_id,omitempty"`

	GiftCard *GiftCard `gorm:"foreignKey:GiftCardID" json:"gift_card,omitempty"`

	Timestamps
}
