package models

// BrandBudget tracks one brand's marketing money in three counters.
// Invariant, held at all times:
//
//	ReservedForMissionsCents + SpentCents <= TotalDepositedCents
//
// Rows are mutated only through the budget service's reserve/release/commit
// operations, never written directly.
type BrandBudget struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	BrandID string `gorm:"type:uuid;uniqueIndex;not null" json:"brand_id"`

	TotalDepositedCents      int64 `gorm:"not null;default:0" json:"total_deposited_cents"`
	ReservedForMissionsCents int64 `gorm:"not null;default:0" json:"reserved_for_missions_cents"`
	SpentCents               int64 `gorm:"not null;default:0" json:"spent_cents"`

	Timestamps
}

// AvailableCents is what the brand can still commit to new reservations.
func (b *BrandBudget) AvailableCents() int64 {
	return b.TotalDepositedCents - b.ReservedForMissionsCents - b.SpentCents
}

// CentralPoolID is the fixed primary key of the singleton pool row.
const CentralPoolID = 1

// CentralPool is the platform-wide aggregate of all brand budgets. It is a
// strict mirror: every top-up, reservation, release and commit on a brand
// budget applies the same move here. The reconciler worker cross-checks the
// pool against the per-brand sums.
type CentralPool struct {
	ID int64 `gorm:"primaryKey" json:"id"`

	TotalDepositedCents    int64 `gorm:"not null;default:0" json:"total_deposited_cents"`
	ReservedLiabilityCents int64 `gorm:"not null;default:0" json:"reserved_liability_cents"`
	TotalSpentCents        int64 `gorm:"not null;default:0" json:"total_spent_cents"`

	Timestamps
}
