package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is the caller role supplied by the gateway identity context.
type Role string

const (
	RoleUser  Role = "USER"
	RoleBrand Role = "BRAND"
	RoleAdmin Role = "ADMIN"
)

// BadgeLevel is the earning-streak tier controlling the daily cap.
type BadgeLevel string

const (
	BadgeStarter BadgeLevel = "STARTER"
	BadgeRegular BadgeLevel = "REGULAR"
	BadgeElite   BadgeLevel = "ELITE"
)

// User carries the wallet pockets and badge progression.
// AvailableCents is spendable money; PendingCents is reserved by mission
// attempts and not spendable until a reviewer approves the attempt.
// Both cached fields must always equal the signed sum of the user's
// wallet_transactions — the ledger is the source of truth.
type User struct {
	ID      string  `gorm:"primaryKey;type:uuid" json:"id"`
	Email   string  `gorm:"uniqueIndex;not null" json:"email"`
	Name    string  `json:"name"`
	Role    Role    `gorm:"type:varchar(16);not null;default:'USER'" json:"role"`
	BrandID *string `gorm:"type:uuid;index" json:"brand_id,omitempty"`

	AvailableCents int64 `gorm:"not null;default:0" json:"available_cents"`
	PendingCents   int64 `gorm:"not null;default:0" json:"pending_cents"`

	// Badge / daily cap state
	DailyCapCents   int64      `gorm:"not null;default:1000" json:"daily_cap_cents"`
	BadgeLevel      BadgeLevel `gorm:"type:varchar(16);not null;default:'STARTER'" json:"badge_level"`
	StreakDays      int        `gorm:"not null;default:0" json:"streak_days"`
	LastEarningDate string     `gorm:"type:varchar(10)" json:"last_earning_date,omitempty"` // YYYY-MM-DD, local time
	XP              int64      `gorm:"not null;default:0" json:"xp"`

	LastActiveAt *time.Time `json:"last_active_at,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
