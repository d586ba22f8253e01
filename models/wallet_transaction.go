package models

import "time"

// TransactionType indicates which balance bucket a ledger entry moves.
// CREDIT/RELEASE add, DEBIT/RESERVE subtract from the relevant pocket.
type TransactionType string

const (
	TxCredit  TransactionType = "CREDIT"  // pending -> available, or direct credit
	TxDebit   TransactionType = "DEBIT"   // available -> spent (gift cards)
	TxReserve TransactionType = "RESERVE" // mission submit, into pending
	TxRelease TransactionType = "RELEASE" // mission reject, out of pending
)

// WalletTransaction is an immutable, append-only ledger entry.
// AmountCents is always positive; the type carries the sign.
// Rows are never updated or deleted.
type WalletTransaction struct {
	ID          string          `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string          `gorm:"type:uuid;index;not null" json:"user_id"`
	Type        TransactionType `gorm:"type:varchar(16);not null;index" json:"type"`
	AmountCents int64           `gorm:"not null" json:"amount_cents"`
	Note        string          `gorm:"type:text" json:"note"`

	MissionID  *string `gorm:"type:uuid;index" json:"mission_id,omitempty"`
	AttemptID  *string `gorm:"type:uuid;index" json:"attempt_id,omitempty"`
	GiftCardID *string `gorm:"type:uuid" json:"gift_card_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
